package middleware

import (
	"strings"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const callerIDKey = "caller_id"

// CallerID returns the user id resolved from the bearer token, or "".
func CallerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(resolver domain.IdentityResolver, onError func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			onError(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			onError(c, err)
			c.Abort()
			return
		}
		c.Set(callerIDKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is sent. A bad token is still
// rejected; a missing one is not.
func OptionalAuth(resolver domain.IdentityResolver, onError func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			onError(c, err)
			c.Abort()
			return
		}
		c.Set(callerIDKey, userID)
		c.Next()
	}
}
