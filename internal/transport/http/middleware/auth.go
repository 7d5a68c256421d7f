package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskgate/internal/pkg/jwtutil"
	"taskgate/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

type TokenValidator interface {
	Parse(raw string) (*jwtutil.Claims, error)
}

// AuthJWT gates a route group on a valid bearer token. Valid tokens attach
// the account id and username to the context; nothing re-reads the account.
func AuthJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validator.Parse(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if errors.Is(err, jwtutil.ErrMissingSigningKey) {
				_ = c.Error(err)
				c.Abort()
				return
			}
			c.Header("WWW-Authenticate", challenge(err))
			response.StatusProblem(c, http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func challenge(err error) string {
	switch {
	case errors.Is(err, jwtutil.ErrTokenExpired):
		return `Bearer error="invalid_token", error_description="The token is expired"`
	case errors.Is(err, jwtutil.ErrTokenInvalid):
		return `Bearer error="invalid_token", error_description="The token is invalid"`
	default:
		return "Bearer"
	}
}

// CurrentAccount returns the identity AuthJWT attached.
func CurrentAccount(c *gin.Context) (uint, string, bool) {
	id, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return 0, "", false
	}
	return userID, c.GetString(ContextUsernameKey), true
}
