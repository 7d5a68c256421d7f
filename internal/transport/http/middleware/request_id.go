package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskgate/internal/pkg/traceid"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceparent = "traceparent"

	ContextTraceIDKey = "trace_id"
)

const maxRequestIDLength = 128

// RequestID picks the correlation id for the request: the W3C trace id when
// the caller is part of a trace, the caller's X-Request-ID otherwise, else a
// fresh UUID. The id is echoed back in X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := traceIDFromTraceparent(c.GetHeader(HeaderTraceparent))
		if id == "" {
			id = sanitizeRequestID(c.GetHeader(HeaderRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextTraceIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(traceid.WithContext(c.Request.Context(), id))
		c.Next()
	}
}

// traceIDFromTraceparent extracts the trace-id field of a version 00
// traceparent header ("00-<32 hex>-<16 hex>-<2 hex>").
func traceIDFromTraceparent(header string) string {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 || parts[0] != "00" || len(parts[1]) != 32 || len(parts[2]) != 16 {
		return ""
	}
	traceID := strings.ToLower(parts[1])
	if !isHex(traceID) || strings.Trim(traceID, "0") == "" {
		return ""
	}
	return traceID
}

func sanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return id
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
