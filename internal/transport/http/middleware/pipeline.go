package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type PipelineOptions struct {
	Logger         *slog.Logger
	Development    bool
	AllowedOrigins []string
}

// Pipeline returns the global middleware in the order it must run:
//
//  1. RequestID        correlation id for everything below
//  2. AccessLog        sees the final status, including translated faults
//  3. ErrorTranslator  recovers panics and attached errors
//  4. CORS             answers preflights before routing
//  5. StatusPages      shapes bare error statuses
//
// AuthJWT is attached per route group, inside this chain.
func Pipeline(opts PipelineOptions) []gin.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return []gin.HandlerFunc{
		RequestID(),
		AccessLog(logger),
		ErrorTranslator(logger, opts.Development),
		CORS(opts.AllowedOrigins, logger),
		StatusPages(),
	}
}
