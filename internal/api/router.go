package api

import (
	"time"

	"goari/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the inference routes onto a gin engine
func NewRouter(handler *InferenceHandler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(internal.DefaultLogger.With("http")))

	router.GET("/healthz", handler.Health)
	v1 := router.Group("/api/v1")
	v1.POST("/infer", handler.Infer)
	v1.POST("/infer/pvalues", handler.InferPValues)
	return router
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
