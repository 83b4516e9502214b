package http

import (
	"RoleChat/internal/delivery/http/controllers"
	authcontroller "RoleChat/internal/delivery/http/controllers/auth"
	messagecontroller "RoleChat/internal/delivery/http/controllers/message"
	"RoleChat/internal/delivery/http/controllers/middleware"
	"RoleChat/internal/metrics"
	"RoleChat/internal/service"
	"RoleChat/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowOrigins []string
	// LinkLimiter throttles sign-in link requests. Nil disables throttling.
	LinkLimiter *middleware.LimiterPool
	// Checks back /v1/health. An empty map always reports ready.
	Checks map[string]controllers.Pinger
}

func InitRoutes(l logger.Log, u service.Collection, rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     rc.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(config))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authn := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	statusController := controllers.NewStatusHandler()
	healthController := controllers.NewHealthHandler(rc.Checks)
	var avatars authcontroller.AvatarService
	if u.AvatarService != nil {
		avatars = u.AvatarService
	}
	authController := authcontroller.NewAuthHandler(l, u.AuthService, avatars)
	messageController := messagecontroller.NewMessageHandler(l, u.MessageService)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)
		v1.GET("/health", healthController.Ready)

		auth := v1.Group("/auth")
		{
			requestLink := []gin.HandlerFunc{authController.RequestLink}
			if rc.LinkLimiter != nil {
				requestLink = append([]gin.HandlerFunc{middleware.RateLimit(rc.LinkLimiter)}, requestLink...)
			}
			auth.POST("/email", requestLink...)
			auth.POST("/email/verify", authController.VerifyLink)
			auth.POST("/refresh", authController.Refresh)
		}

		v1.GET("/me", authn.OptionalAuth, authController.Me)
		me := v1.Group("/me", authn.AuthMiddleware)
		{
			me.PATCH("/role", authController.UpdateRole)
			me.PUT("/avatar", authController.UploadAvatar)
		}

		// Role gates for these routes live in the message service.
		messages := v1.Group("/messages", authn.AuthMiddleware)
		{
			messages.GET("", messageController.List)
			messages.POST("", messageController.Send)
			messages.GET("/search", messageController.Search)
			messages.DELETE("/:message_id", messageController.Delete)
		}
	}
	return r
}
