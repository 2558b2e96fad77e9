// Package server assembles the gin engine: middleware stack and routes.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/handlers"
	"github.com/cardfeed/backend/internal/middleware"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	Handlers *handlers.Handlers
	Auth     auth.TokenValidator

	// Redis enables the GET response cache; nil disables it
	Redis    *cache.RedisClient
	CacheTTL time.Duration

	CORSOrigins []string
	// ServiceName names the otelgin server spans when Tracing is set
	ServiceName string
	Tracing     bool
	RateLimit   bool
}

// NewRouter builds the HTTP API
func NewRouter(opts RouterOptions) *gin.Engine {
	h := opts.Handlers

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if opts.Tracing {
		r.Use(middleware.TracingMiddleware(opts.ServiceName)...)
	}
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Cache"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(opts.Auth)
	requireAdmin := middleware.RequireAdmin()
	cached := middleware.ResponseCache(opts.Redis, opts.CacheTTL)
	limit := func(mw func() gin.HandlerFunc) []gin.HandlerFunc {
		if !opts.RateLimit {
			return nil
		}
		return []gin.HandlerFunc{mw()}
	}

	api := r.Group("/api/v1")
	api.Use(limit(middleware.RateLimit)...)
	{
		authGroup := api.Group("/auth")
		authGroup.Use(limit(middleware.RateLimitAuth)...)
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", h.Logout)
			authGroup.POST("/google", h.GoogleSignIn)
			authGroup.GET("/google", h.GoogleRedirect)
			authGroup.GET("/google/callback", h.GoogleCallback)
			authGroup.GET("/me", requireAuth, h.Me)
		}

		api.GET("/categories", cached, h.ListCategories)

		posts := api.Group("/posts")
		{
			posts.GET("", cached, h.ListPosts)
			posts.GET("/slug/:slug", cached, h.GetPostBySlug)
			posts.GET("/:id", cached, h.GetPost)
			posts.POST("/:id/share", h.SharePost)

			posts.POST("", requireAuth, h.CreatePost)
			posts.PUT("/:id", requireAuth, h.UpdatePost)
			posts.DELETE("/:id", requireAuth, h.DeletePost)
			posts.POST("/:id/like", requireAuth, h.ToggleLike)
			posts.POST("/:id/comments", requireAuth, h.AddComment)
		}

		users := api.Group("/users")
		{
			users.PUT("/me", requireAuth, h.UpdateMe)
			users.GET("/:id", cached, h.GetUser)
			users.GET("/:id/posts", cached, h.GetUserPosts)
		}

		uploads := api.Group("/uploads", requireAuth)
		uploads.Use(limit(middleware.RateLimitUpload)...)
		{
			uploads.POST("/image", h.UploadImage)
		}

		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", h.GetNotifications)
			notifications.GET("/unread-count", h.GetUnreadCount)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.DELETE("/:id", h.DeleteNotification)
			notifications.DELETE("", h.ClearNotifications)
		}

		admin := api.Group("/admin", requireAuth, requireAdmin)
		{
			admin.GET("/stats", h.AdminStats)

			admin.GET("/users", h.AdminListUsers)
			admin.POST("/users", h.AdminCreateUser)
			admin.PUT("/users/:id/block", h.AdminSetBlocked)
			admin.PUT("/users/:id/role", h.AdminSetRole)
			admin.DELETE("/users/:id", h.AdminDeleteUser)

			admin.GET("/posts", h.AdminListPosts)
			admin.DELETE("/posts/:id", h.DeletePost)

			admin.POST("/announcements", h.SendAnnouncement)
			admin.GET("/announcements", h.ListAnnouncements)
			admin.GET("/announcements/:id", h.GetAnnouncement)
			admin.DELETE("/announcements/:id/notifications", h.RetractAnnouncement)
		}
	}

	return r
}
