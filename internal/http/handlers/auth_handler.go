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

// AuthHandler обрабатывает запросы регистрации и входа.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт новый экземпляр.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req, sessionMeta(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req, sessionMeta(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "сессия завершена"})
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
