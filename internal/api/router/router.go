package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sublimes-drive/drive-core/config"
	_ "github.com/sublimes-drive/drive-core/docs"
	"github.com/sublimes-drive/drive-core/internal/api/handler"
	"github.com/sublimes-drive/drive-core/internal/middleware"
)

// New 组装路由：写操作强制鉴权，读操作与分享打点允许匿名
func New(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.RateLimit(cfg.Server.RateLimitQPS, cfg.Server.RateBurst),
		gzip.Gzip(gzip.DefaultCompression),
		otelgin.Middleware("drive-core"),
	)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// 读接口 + 分享打点：匿名可访问，有令牌则带上身份
	public := v1.Group("", middleware.OptionalAuth(cfg.JWT.Secret))
	{
		public.GET("/items/:item_type/:item_id/counts", h.GetCounts)
		public.GET("/items/:item_type/:item_id/state", h.GetUserState)
		public.GET("/items/:item_type/:item_id/comments", h.ListComments)
		public.POST("/items/:item_type/:item_id/share", h.TrackShare)
		public.GET("/posts/:post_id", h.GetPost)
	}

	// 写接口：必须登录
	private := v1.Group("", middleware.JWTAuth(cfg.JWT.Secret))
	{
		private.POST("/items/:item_type/:item_id/like/toggle", h.ToggleLike)
		private.POST("/items/:item_type/:item_id/save/toggle", h.ToggleSave)
		private.POST("/items/:item_type/:item_id/comments", h.AddComment)
		private.DELETE("/comments/:comment_id", h.DeleteComment)
		private.GET("/users/me/saves", h.ListSaves)
		private.POST("/posts", h.CreatePost)
		private.POST("/billing/checkout", h.CreateCheckout)
		private.GET("/freya/runs", h.ListFreyaRuns)
		private.POST("/freya/annotate", h.AnnotateImage)
	}

	return r
}
