package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS builds the cross-origin policy from the allowed-origin list. "*"
// allows every origin; an empty list disables the middleware.
func CORS(allowedOrigins []string, logger *slog.Logger) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", HeaderRequestID, HeaderTraceparent},
		ExposeHeaders: []string{"Location", "WWW-Authenticate", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}

	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			logger.Warn("ignore malformed cors origin", "origin", origin)
			continue
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
	}
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
