package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/sessions"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/tokens"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authSetup(t *testing.T) (*gin.Engine, *config.Config, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	t.Cleanup(func() { sessions.SetBlacklistClient(nil) })

	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = time.Hour

	g := gin.New()
	NewAuthHandler(cfg).Register(g.Group("/api"), middleware.AuthMiddleware(tokens.NewHS256Verifier(cfg.JWT.Secret)))
	return g, cfg, m
}

func TestValidateToken(t *testing.T) {
	g, cfg, _ := authSetup(t)
	tok, err := tokens.GenerateAccessToken(cfg, "user-42", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/validate-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: tok})
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-42", body["userId"])

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/validate-token", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	g, cfg, m := authSetup(t)
	tok, err := tokens.GenerateAccessToken(cfg, "user-42", 10*time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CookieName+"=;")

	revoked, err := sessions.IsAccessTokenBlacklisted(context.Background(), tok)
	require.NoError(t, err)
	require.True(t, revoked)
	ttl := m.TTL(sessions.BlacklistKey(tok))
	assert.True(t, ttl > 9*time.Minute && ttl <= 10*time.Minute, "ttl=%s", ttl)

	// the same token no longer authenticates
	req = httptest.NewRequest(http.MethodGet, "/api/auth/validate-token", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseExpFromJWT(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "exp-secret-32-bytes-xxxxxxxxxxxxxxx"
	tok, err := tokens.GenerateAccessToken(cfg, "u", time.Hour)
	require.NoError(t, err)
	exp, err := parseExpFromJWT(tok)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	_, err = parseExpFromJWT("garbage")
	require.Error(t, err)
	_, err = parseExpFromJWT("a.eyJzdWIiOiJ4In0.b") // {"sub":"x"}
	require.Error(t, err)
}
