package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyRequestID is the gin context key carrying the request id.
const KeyRequestID = "request_id"

type ridKey struct{}

// RequestIDMiddleware tags every request with a stable id: an incoming
// X-Request-Id header is trusted, otherwise one is generated. The id rides
// the gin context under KeyRequestID, the request's context.Context, and
// the response header, and every request gets one access log line.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if rid == "" {
			rid = newRequestID()
		}

		c.Set(KeyRequestID, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ridKey{}, rid))
		c.Writer.Header().Set("X-Request-Id", rid)

		start := time.Now()
		c.Next()

		log.Printf("[req] id=%s method=%s path=%s status=%d latency=%s",
			rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// RequestIDFrom extracts the request id from a context threaded through the
// middleware, or "" when there is none.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ridKey{}).(string)
	return rid
}

func newRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().UTC().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b)
}
