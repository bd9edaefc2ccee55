package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/sessions"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
)

// CookieName is the cookie that carries the access token for browser clients.
const CookieName = "auth_token"

const (
	claimsKey = "claims"
	userIDKey = "userId"
	rawKey    = "rawToken"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware verifies the caller's credential and stores the resolved user
// id on the context. The credential is read from a Bearer Authorization header
// or, failing that, from the auth_token cookie.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := credential(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized", "error": err.Error()})
			return
		}

		blacklisted, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), raw)
		if err != nil {
			// redis trouble must not lock everyone out
			logger.Warnf("blacklist lookup failed: %v", err)
		}
		if blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized", "error": "token revoked"})
			return
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized", "error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized", "error": "failed to parse claims"})
			return
		}
		uid := subject(claims)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized", "error": "token has no subject"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, uid)
		c.Set(rawKey, raw)
		c.Next()
	}
}

// UserID returns the authenticated caller set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RawToken returns the credential the caller authenticated with.
func RawToken(c *gin.Context) string {
	return c.GetString(rawKey)
}

// Claims returns the verified token claims, or nil outside AuthMiddleware.
func Claims(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(claimsKey); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			return cm
		}
	}
	return nil
}

func credential(c *gin.Context) (string, error) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			return "", fmt.Errorf("invalid Authorization header")
		}
		return token, nil
	}
	if v, err := c.Cookie(CookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", fmt.Errorf("missing credential")
}

// subject prefers the userId claim minted by this service and falls back to
// the standard sub claim issued by Keycloak.
func subject(claims map[string]interface{}) string {
	for _, k := range []string{"userId", "sub"} {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// limiterKey picks the rate limit key: the authenticated user when present,
// otherwise the client IP.
func limiterKey(c *gin.Context) string {
	if uid := UserID(c); uid != "" {
		return "user:" + uid
	}
	if sub := subject(Claims(c)); sub != "" {
		return "user:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
