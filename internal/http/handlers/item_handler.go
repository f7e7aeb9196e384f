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

// ItemHandler обрабатывает запросы каталога и вещей владельца.
type ItemHandler struct {
	items      *service.ItemService
	moderation *service.ModerationService
}

// NewItemHandler создаёт новый экземпляр.
func NewItemHandler(items *service.ItemService, moderation *service.ModerationService) *ItemHandler {
	return &ItemHandler{items: items, moderation: moderation}
}

// List GET /api/items — публичный каталог.
func (h *ItemHandler) List(c *gin.Context) {
	limit, offset := common.Pagination(c, 20)

	resp, err := h.items.List(c.Request.Context(), service.CatalogueParams{
		Category:  c.Query("category"),
		Size:      c.Query("size"),
		Condition: c.Query("condition"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	// Неавторизованный запрос видит только каталог.
	viewerID, _ := middleware.UserID(c)

	item, err := h.items.GetByID(c.Request.Context(), itemID, viewerID, middleware.Role(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// Create POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	item, err := h.items.Create(c.Request.Context(), userID, req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ItemResponse{Item: item})
}

// ListMine GET /api/items/my
func (h *ItemHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	items, err := h.items.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Update PUT /api/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	item, err := h.items.Update(c.Request.Context(), itemID, userID, req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// Flag POST /api/items/:id/flag — жалоба на вещь от любого пользователя.
// Вещь снимается с каталога до повторного рассмотрения модератором.
func (h *ItemHandler) Flag(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

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

	item, err := h.moderation.FlagItem(c.Request.Context(), itemID, userID, req.Reason)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemResponse{Item: item})
}

// Delete DELETE /api/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	if err := h.items.Delete(c.Request.Context(), itemID, userID); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "вещь снята с обмена"})
}
