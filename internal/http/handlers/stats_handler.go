package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evseenkov/swapwear-backend/internal/http/handlers/common"
	"github.com/evseenkov/swapwear-backend/internal/http/middleware"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/service"
)

// StatsHandler отдаёт статистику текущего пользователя.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler создаёт новый экземпляр.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// ForUser GET /api/stats
func (h *StatsHandler) ForUser(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	resp, err := h.stats.ForUser(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
