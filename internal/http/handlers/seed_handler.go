package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/http/handlers/common"
	"github.com/evseenkov/swapwear-backend/internal/service"
)

// SeedHandler наполняет базу тестовыми данными. Регистрируется только
// в development-окружении.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler создаёт новый экземпляр.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Run POST /api/dev/seed
func (h *SeedHandler) Run(c *gin.Context) {
	if err := h.seed.Run(c.Request.Context()); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "тестовые данные созданы"})
}
