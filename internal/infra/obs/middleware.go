package obs

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// quietRoutes are polled by the orchestrator and scraper and would drown the
// access log.
var quietRoutes = map[string]bool{
	"/livez":   true,
	"/readyz":  true,
	"/metrics": true,
}

type Middleware struct {
	Logger *slog.Logger
}

// RequestID keeps a caller-supplied id when it is short printable ASCII and
// mints a uuid otherwise.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// LoggerMiddleware writes one access line per request, keyed by route
// template so guest-facing slugs group together.
func (m Middleware) LoggerMiddleware() gin.HandlerFunc {
	log := m.Logger
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if log == nil || quietRoutes[route] {
			return
		}
		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		ctx := c.Request.Context()
		log.Log(ctx, level, "http",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", max(c.Writer.Size(), 0),
			"ip", c.ClientIP(),
			"duration", time.Since(start),
			"request_id", RequestIDFromContext(ctx),
		)
	}
}

type requestIDKey struct{}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
