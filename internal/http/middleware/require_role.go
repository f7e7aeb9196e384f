package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evseenkov/swapwear-backend/internal/dto"
)

// RequireRole пропускает запрос только при совпадении роли.
// Ставится после Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error: "недостаточно прав",
				Code:  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}
