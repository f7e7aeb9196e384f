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

// SwapHandler обрабатывает запросы переговоров об обмене.
type SwapHandler struct {
	swaps *service.SwapService
}

// NewSwapHandler создаёт новый экземпляр.
func NewSwapHandler(swaps *service.SwapService) *SwapHandler {
	return &SwapHandler{swaps: swaps}
}

// Propose POST /api/swaps
func (h *SwapHandler) Propose(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	swap, err := h.swaps.Propose(c.Request.Context(), userID, req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SwapResponse{Swap: swap})
}

// ListMine GET /api/swaps/user
func (h *SwapHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	swaps, err := h.swaps.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SwapListResponse{Swaps: swaps})
}

// Get GET /api/swaps/:id
func (h *SwapHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	swapID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	swap, err := h.swaps.GetByID(c.Request.Context(), swapID, userID, middleware.Role(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SwapResponse{Swap: swap})
}

// Accept PUT /api/swaps/:id/accept
func (h *SwapHandler) Accept(c *gin.Context) {
	h.transition(c, func(c *gin.Context) (interface{}, error) {
		userID, _ := middleware.UserID(c)
		swapID, err := common.ParseUUIDParam(c, "id")
		if err != nil {
			return nil, err
		}
		return h.swaps.Accept(c.Request.Context(), swapID, userID)
	})
}

// Reject PUT /api/swaps/:id/reject
func (h *SwapHandler) Reject(c *gin.Context) {
	h.transition(c, func(c *gin.Context) (interface{}, error) {
		userID, _ := middleware.UserID(c)
		swapID, err := common.ParseUUIDParam(c, "id")
		if err != nil {
			return nil, err
		}
		return h.swaps.Reject(c.Request.Context(), swapID, userID, bindReason(c))
	})
}

// Cancel PUT /api/swaps/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	h.transition(c, func(c *gin.Context) (interface{}, error) {
		userID, _ := middleware.UserID(c)
		swapID, err := common.ParseUUIDParam(c, "id")
		if err != nil {
			return nil, err
		}
		return h.swaps.Cancel(c.Request.Context(), swapID, userID, bindReason(c))
	})
}

// Complete PUT /api/swaps/:id/complete
func (h *SwapHandler) Complete(c *gin.Context) {
	h.transition(c, func(c *gin.Context) (interface{}, error) {
		userID, _ := middleware.UserID(c)
		swapID, err := common.ParseUUIDParam(c, "id")
		if err != nil {
			return nil, err
		}
		return h.swaps.Complete(c.Request.Context(), swapID, userID)
	})
}

// SendMessage POST /api/swaps/:id/messages
func (h *SwapHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	swapID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req dto.SendSwapMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	msg, err := h.swaps.SendMessage(c.Request.Context(), swapID, userID, req.Content)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// ListMessages GET /api/swaps/:id/messages
func (h *SwapHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	swapID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	messages, err := h.swaps.ListMessages(c.Request.Context(), swapID, userID, middleware.Role(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *SwapHandler) transition(c *gin.Context, fn func(*gin.Context) (interface{}, error)) {
	if _, ok := middleware.UserID(c); !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	result, err := fn(c)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"swap": result})
}

// bindReason читает необязательную причину из тела запроса.
// Пустое тело допустимо.
func bindReason(c *gin.Context) string {
	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.Reason
}
