package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wayfare-dev/wayfare/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"

	// Caller-supplied identifiers longer than this are replaced, which keeps
	// hostile header values out of the logs.
	maxRequestIDLength = 64
)

// RequestID propagates a per-request correlation identifier. A well-formed
// caller-supplied X-Request-ID is kept so identifiers survive proxy hops;
// anything else is replaced with a fresh UUID. The identifier is echoed on
// the response and stored in the request context for the loggers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
