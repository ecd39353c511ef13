package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(articles *handlers.ArticleHandler, reorders *handlers.ReorderHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	v1 := r.Group("/api/v1")

	v1.GET("/articles/low-stock", articles.LowStock)

	branch := v1.Group("/branches/:branchId")
	branch.GET("/articles", articles.List)
	branch.POST("/articles", articles.Create)
	branch.GET("/articles/:articleId", articles.Get)
	branch.PUT("/articles/:articleId", articles.Update)
	branch.DELETE("/articles/:articleId", articles.Delete)
	branch.POST("/articles/:articleId/stock", articles.AdjustStock)
	branch.POST("/articles/:articleId/reserved", articles.AdjustReserved)

	branch.GET("/reorders", reorders.List)
	branch.POST("/reorders", reorders.Create)
	branch.GET("/reorders/:reorderId", reorders.Get)
	branch.PUT("/reorders/:reorderId/status", reorders.UpdateStatus)

	v1.POST("/reorders/run", reorders.Run)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
