package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pictures2pages-backend/internal/observability"
)

// Metrics tracks in-flight requests. Per-route counters come from
// go-gin-prometheus in the router.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.ApiInflightInc()
		defer m.ApiInflightDec()
		c.Next()
	}
}
