package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/pkg/response"
)

// ErrorHandler 统一兜底：handler 通过 c.Error 交上来的意外错误，记录日志后返回 500
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log := logger.FromContext(c.Request.Context())
		for _, e := range c.Errors {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", e.Err,
			)
		}

		if !c.Writer.Written() {
			response.ServerError(c, "")
		}
	}
}

// Recovery panic 同样按 500 返回
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		response.ServerError(c, "")
		c.Abort()
	})
}
