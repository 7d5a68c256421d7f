package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"taskgate/internal/transport/http/response"
)

// ErrorTranslator is the outermost fault boundary. It recovers panics and
// turns errors handlers attached with c.Error into a 500 problem document,
// unless a response has already been written.
func ErrorTranslator(logger *slog.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fault, ok := r.(error)
				if !ok {
					fault = fmt.Errorf("%v", r)
				}
				if errors.Is(fault, http.ErrAbortHandler) {
					panic(r)
				}
				logFault(c, logger, fault, "stack", string(debug.Stack()))
				writeFault(c, fault, development)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		fault := c.Errors.Last().Err
		logFault(c, logger, fault)
		writeFault(c, fault, development)
	}
}

func logFault(c *gin.Context, logger *slog.Logger, fault error, extra ...any) {
	args := append([]any{
		"error", fault,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"trace_id", c.GetString(ContextTraceIDKey),
	}, extra...)
	logger.ErrorContext(c.Request.Context(), "unhandled fault", args...)
}

func writeFault(c *gin.Context, fault error, development bool) {
	c.Abort()
	if c.Writer.Written() {
		return
	}
	response.FaultProblem(c, fault, development)
}

// StatusPages gives bare error statuses (a handler that set 401 or 404
// without a body, unknown routes, disallowed methods) the problem document
// shape.
func StatusPages() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) > 0 {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			response.StatusProblem(c, status)
		}
	}
}
