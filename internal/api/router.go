package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/config"
	"github.com/qs3c/account_go_server/internal/api/handler"
	"github.com/qs3c/account_go_server/internal/api/middleware"
	"github.com/qs3c/account_go_server/internal/pkg/response"
)

type Router struct {
	authHandler *handler.AuthHandler
	userHandler *handler.UserHandler
	sessions    middleware.SessionResolver
	limiter     middleware.RateLimiter
	cfg         *config.Config
}

// NewRouter limiter 为 nil 时不启用限流
func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	sessions middleware.SessionResolver,
	limiter middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler: authHandler,
		userHandler: userHandler,
		sessions:    sessions,
		limiter:     limiter,
		cfg:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CORS(r.cfg.CORS))
	engine.Use(middleware.ErrorHandler())

	// 本地头像
	engine.Static("/"+r.cfg.Avatar.Folder, filepath.Join(r.cfg.Avatar.PublicDir, r.cfg.Avatar.Folder))

	api := engine.Group("/api")
	if r.limiter != nil {
		api.Use(middleware.RateLimit(r.limiter))
	}

	users := api.Group("/users")
	{
		// 公开接口
		users.POST("/signup", r.authHandler.Register)
		users.POST("/login", r.authHandler.Login)
		users.GET("/verify/:verificationToken", r.authHandler.VerifyEmail)
		users.POST("/verify", r.authHandler.ResendVerification)

		// 需要认证的接口
		authenticated := users.Group("")
		authenticated.Use(middleware.Auth(r.sessions))
		{
			authenticated.POST("/logout", r.authHandler.Logout)
			authenticated.GET("/current", r.userHandler.Current)
			authenticated.PATCH("/avatars", r.userHandler.UpdateAvatar)
			authenticated.PATCH("", r.userHandler.UpdateSubscription)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		response.NotFoundError(c, "")
	})

	return engine
}
