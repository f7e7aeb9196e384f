package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/http/handlers/common"
	"github.com/evseenkov/swapwear-backend/internal/http/middleware"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/service"
)

// AdminHandler обрабатывает действия модерации.
// Все маршруты закрыты ролью admin.
type AdminHandler struct {
	moderation *service.ModerationService
}

// NewAdminHandler создаёт новый экземпляр.
func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// ItemQueue GET /api/admin/items — очередь модерации вещей.
func (h *AdminHandler) ItemQueue(c *gin.Context) {
	limit, offset := common.Pagination(c, 20)

	result, err := h.moderation.ListItemQueue(c.Request.Context(), limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemListResponse{
		Items:   result.Items,
		Total:   result.Total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(result.Items) < result.Total,
	})
}

// ApproveItem PUT /api/admin/items/:id/approve
func (h *AdminHandler) ApproveItem(c *gin.Context) {
	adminID, _ := middleware.UserID(c)
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	item, err := h.moderation.ApproveItem(c.Request.Context(), itemID, adminID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// RejectItem PUT /api/admin/items/:id/reject
func (h *AdminHandler) RejectItem(c *gin.Context) {
	adminID, _ := middleware.UserID(c)
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req dto.RequiredReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "причина обязательна"))
		return
	}

	item, err := h.moderation.RejectItem(c.Request.Context(), itemID, adminID, req.Reason)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// FlagItem PUT /api/admin/items/:id/flag
func (h *AdminHandler) FlagItem(c *gin.Context) {
	adminID, _ := middleware.UserID(c)
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req dto.RequiredReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "причина обязательна"))
		return
	}

	item, err := h.moderation.FlagItem(c.Request.Context(), itemID, adminID, req.Reason)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// ApproveSwap PUT /api/admin/swaps/:id/approve
func (h *AdminHandler) ApproveSwap(c *gin.Context) {
	adminID, _ := middleware.UserID(c)
	swapID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	swap, err := h.moderation.ApproveSwap(c.Request.Context(), swapID, adminID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SwapResponse{Swap: swap})
}

// RejectSwap PUT /api/admin/swaps/:id/reject
func (h *AdminHandler) RejectSwap(c *gin.Context) {
	adminID, _ := middleware.UserID(c)
	swapID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req dto.RequiredReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "причина обязательна"))
		return
	}

	swap, err := h.moderation.RejectSwap(c.Request.Context(), swapID, adminID, req.Reason)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SwapResponse{Swap: swap})
}
