package middleware

import (
	"net/http"
	"strings"

	"colabora/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey  = "principal"
	SessionUserID = "user_id"
)

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	ParseToken(raw string) (services.Principal, error)
}

// LoadPrincipal resolves the caller from an Authorization bearer token or,
// failing that, the session cookie. Requests without either continue as
// services.Anonymous.
func LoadPrincipal(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := services.Anonymous

		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if p, err := tokens.ParseToken(raw); err == nil {
				who = p
			}
		} else if id, ok := sessions.Default(c).Get(SessionUserID).(string); ok && id != "" {
			who = services.Principal{UserID: id}
		}

		c.Set(PrincipalKey, who)
		c.Next()
	}
}

// AuthRequired rejects anonymous callers with 401. LoadPrincipal must run first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by LoadPrincipal.
func CurrentPrincipal(c *gin.Context) services.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Anonymous
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
