package http

import (
	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	exchangeHandler     *handler.ExchangeHandler
	connectionHandler   *handler.ConnectionHandler
	settingsHandler     *handler.SettingsHandler
	analyticsHandler    *handler.AnalyticsHandler
	notificationHandler *handler.NotificationHandler
	eventsHandler       *handler.EventsHandler
	authMiddleware      *middleware.AuthMiddleware
	exchangeLimiter     *middleware.RateLimiter
	log                 *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	exchangeHandler *handler.ExchangeHandler,
	connectionHandler *handler.ConnectionHandler,
	settingsHandler *handler.SettingsHandler,
	analyticsHandler *handler.AnalyticsHandler,
	notificationHandler *handler.NotificationHandler,
	eventsHandler *handler.EventsHandler,
	authMiddleware *middleware.AuthMiddleware,
	exchangeLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		exchangeHandler:     exchangeHandler,
		connectionHandler:   connectionHandler,
		settingsHandler:     settingsHandler,
		analyticsHandler:    analyticsHandler,
		notificationHandler: notificationHandler,
		eventsHandler:       eventsHandler,
		authMiddleware:      authMiddleware,
		exchangeLimiter:     exchangeLimiter,
		log:                 log,
	}
}

func (r *Router) Setup() *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.log))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
			auth.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
		}

		v1.GET("/profile/platforms", r.profileHandler.Platforms)

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.POST("/me", r.profileHandler.CreateMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.GET("/me/share", r.profileHandler.Share)
				profile.POST("/suggest-bio", r.profileHandler.SuggestBio)
				profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
			}

			exchange := protected.Group("/exchange")
			exchange.Use(r.exchangeLimiter.Middleware())
			{
				exchange.POST("/preview", r.exchangeHandler.Preview)
				exchange.POST("/confirm", r.exchangeHandler.Confirm)
			}

			connections := protected.Group("/connections")
			{
				connections.GET("", r.connectionHandler.List)
				connections.GET("/:id", r.connectionHandler.Get)
				connections.PATCH("/:id/notes", r.connectionHandler.UpdateNotes)
				connections.PATCH("/:id/event", r.connectionHandler.UpdateEvent)
				connections.POST("/:id/refresh", r.connectionHandler.Refresh)
				connections.DELETE("/:id", r.connectionHandler.Delete)
			}

			protected.GET("/settings", r.settingsHandler.Get)
			protected.PUT("/settings", r.settingsHandler.Update)

			protected.GET("/analytics", r.analyticsHandler.Dashboard)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.POST("/:id/read", r.notificationHandler.MarkRead)
			}

			protected.GET("/events", r.eventsHandler.Stream)
		}
	}

	return router
}
