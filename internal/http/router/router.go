package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/evseenkov/swapwear-backend/internal/config"
	"github.com/evseenkov/swapwear-backend/internal/http/handlers"
	"github.com/evseenkov/swapwear-backend/internal/http/middleware"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/service"
)

// Handlers собирает все обработчики приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Item         *handlers.ItemHandler
	Swap         *handlers.SwapHandler
	Admin        *handlers.AdminHandler
	Notification *handlers.NotificationHandler
	Stats        *handlers.StatsHandler
	Health       *handlers.HealthHandler
	Seed         *handlers.SeedHandler
}

// New настраивает маршруты и middleware.
func New(cfg *config.Config, tokens *service.TokenManager, h Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(limiter.Rate{
		Period: cfg.RateLimitPeriod,
		Limit:  cfg.RateLimitLimit,
	}))

	r.GET("/health", h.Health.Check)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.Auth(tokens), h.Auth.Me)
	}

	items := api.Group("/items")
	{
		items.GET("", h.Item.List)
		items.GET("/:id", middleware.OptionalAuth(tokens), h.Item.Get)

		authed := items.Group("", middleware.Auth(tokens))
		{
			authed.POST("", h.Item.Create)
			authed.GET("/my", h.Item.ListMine)
			authed.PUT("/:id", h.Item.Update)
			authed.DELETE("/:id", h.Item.Delete)
			authed.POST("/:id/flag", h.Item.Flag)
		}
	}

	swaps := api.Group("/swaps", middleware.Auth(tokens))
	{
		swaps.POST("", h.Swap.Propose)
		swaps.GET("/user", h.Swap.ListMine)
		swaps.GET("/:id", h.Swap.Get)
		swaps.PUT("/:id/accept", h.Swap.Accept)
		swaps.PUT("/:id/reject", h.Swap.Reject)
		swaps.PUT("/:id/cancel", h.Swap.Cancel)
		swaps.PUT("/:id/complete", h.Swap.Complete)
		swaps.POST("/:id/messages", h.Swap.SendMessage)
		swaps.GET("/:id/messages", h.Swap.ListMessages)
	}

	notifications := api.Group("/notifications", middleware.Auth(tokens))
	{
		notifications.GET("", h.Notification.List)
		notifications.POST("/read-all", h.Notification.MarkAllAsRead)
		notifications.POST("/:id/read", h.Notification.MarkAsRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	api.GET("/stats", middleware.Auth(tokens), h.Stats.ForUser)

	admin := api.Group("/admin", middleware.Auth(tokens), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/items", h.Admin.ItemQueue)
		admin.PUT("/items/:id/approve", h.Admin.ApproveItem)
		admin.PUT("/items/:id/reject", h.Admin.RejectItem)
		admin.PUT("/items/:id/flag", h.Admin.FlagItem)
		admin.PUT("/swaps/:id/approve", h.Admin.ApproveSwap)
		admin.PUT("/swaps/:id/reject", h.Admin.RejectSwap)
	}

	if cfg.Env == "development" && h.Seed != nil {
		api.POST("/dev/seed", h.Seed.Run)
	}

	return r
}
