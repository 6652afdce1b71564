package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records served requests.
type HTTPObserver interface {
	ObserveHTTP(method, endpoint string, status int, elapsed time.Duration)
}

// Metrics reports every request to observer, labelled by route template.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		observer.ObserveHTTP(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
