package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/media"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type downHost struct{ *media.MemoryHost }

func (downHost) Ready(ctx context.Context) error { return errors.New("bucket missing") }

func readyStatus(t *testing.T, rdb *redis.Client, host media.Host) (int, map[string]bool) {
	t.Helper()
	g := gin.New()
	g.GET("/ready", readyHandler(nil, rdb, host))
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var body struct {
		Deps map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body.Deps
}

func TestReadyHandler(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})

	code, deps := readyStatus(t, rdb, media.NewMemoryHost(""))
	require.Equal(t, http.StatusOK, code)
	require.True(t, deps["redis"])
	require.True(t, deps["media"])

	code, deps = readyStatus(t, rdb, downHost{media.NewMemoryHost("")})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.False(t, deps["media"])

	m.Close()
	code, deps = readyStatus(t, rdb, media.NewMemoryHost(""))
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.False(t, deps["redis"])
}

func TestNewMediaHost(t *testing.T) {
	cfg := &config.Config{}
	cfg.Media.Host = "memory"
	h, err := newMediaHost(cfg)
	require.NoError(t, err)
	require.Equal(t, "memory", h.Name())

	cfg.Media.Host = "cloudinary"
	_, err = newMediaHost(cfg)
	require.Error(t, err)

	cfg.Media.Host = "ftp"
	_, err = newMediaHost(cfg)
	require.Error(t, err)
}

func TestCORS(t *testing.T) {
	g := gin.New()
	g.Use(cors("http://localhost:5173"))
	g.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
