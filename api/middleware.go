package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/service/identity"
)

const sessionKey = "session"

// TokenParser is the slice of the identity service the middleware needs.
type TokenParser interface {
	ParseToken(token string) (*identity.Session, error)
}

// Authenticate validates the Bearer token and stores the session on the
// request context.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		session, err := parser.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireKind rejects sessions whose role is not one of the given kinds.
func RequireKind(kinds ...domain.RoleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		for _, kind := range kinds {
			if session.Kind == kind {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

func sessionFrom(c *gin.Context) *identity.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, ok := value.(*identity.Session)
	if !ok {
		return nil
	}
	return session
}
