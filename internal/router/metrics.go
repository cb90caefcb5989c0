package router

import (
	"net/http"
	"time"

	"github.com/atlas-shop/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 按路由模板记录请求数与耗时
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.Method == http.MethodOptions {
			return
		}
		latency := float64(time.Since(start).Microseconds()) / 1000
		metrics.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), latency)
	}
}
