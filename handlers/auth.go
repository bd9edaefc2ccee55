package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/sessions"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
)

// AuthHandler exposes the session endpoints used by the browser client.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Register routes under /auth. authMW must be the same middleware that guards
// the owner routes.
func (h *AuthHandler) Register(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth", authMW)
	a.GET("/validate-token", h.ValidateToken)
	a.POST("/logout", h.Logout)
}

// ValidateToken reports the caller resolved from the presented credential.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userId": middleware.UserID(c)})
}

// Logout revokes the presented access token until it expires and clears the
// auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := middleware.RawToken(c)
	ttl := h.cfg.JWT.AccessTokenTTL
	if exp, err := parseExpFromJWT(raw); err == nil {
		ttl = time.Until(exp)
	} else {
		logger.Debugf("logout: no exp claim, revoking for %s: %v", ttl, err)
	}
	if ttl > 0 {
		if err := sessions.BlacklistAccessToken(c.Request.Context(), raw, ttl); err != nil {
			logger.Errorf("logout: blacklist token for %s: %v", middleware.UserID(c), err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to revoke token"})
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.cfg.Server.Environment == "production", true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim as time.Time.
// This performs payload-only parsing (no signature verification) and is suitable
// for computing remaining TTLs for blacklisting purposes.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp *json.Number `json:"exp"`
	}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.Exp == nil {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	f, err := claims.Exp.Float64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(f), 0), nil
}
