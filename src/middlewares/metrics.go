package middlewares

import (
	"strconv"
	"time"
	"vrs/src/lib"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template.
func Metrics(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()

	route := ctx.FullPath()
	if route == "" {
		route = "unmatched"
	}
	lib.HTTPRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
	lib.HTTPDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
}
