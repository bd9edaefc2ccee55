package tokens

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
	"github.com/stretchr/testify/require"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	return cfg
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	tokenStr, err := GenerateAccessToken(cfg, "user-123", 2*time.Minute)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "user-123", claims["userId"])
}

func TestGenerateAccessToken_NoSecret(t *testing.T) {
	_, err := GenerateAccessToken(&config.Config{}, "u", time.Minute)
	require.Error(t, err)
}

func TestHS256Verifier_RoundTrip(t *testing.T) {
	cfg := testConfig("roundtrip-secret-32-bytes-xxxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, "u-1", time.Minute)
	require.NoError(t, err)

	tok, err := NewHS256Verifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "u-1", claims["userId"])
}

func TestHS256Verifier_Expired(t *testing.T) {
	cfg := testConfig("another-secret-32-bytes-longgggg")
	tokenStr, err := GenerateAccessToken(cfg, "u2", -time.Minute)
	require.NoError(t, err)
	_, err = NewHS256Verifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestHS256Verifier_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx"), "u3", 2*time.Minute)
	require.NoError(t, err)
	_, err = NewHS256Verifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestHS256Verifier_Malformed(t *testing.T) {
	_, err := NewHS256Verifier("x").Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

// Rejected when alg=none (unsigned token)
func TestHS256Verifier_AlgNoneRejected(t *testing.T) {
	headerEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"userId":"u-none","exp":9999999999}`))
	_, err := NewHS256Verifier("x").Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

// Tampering with payload must fail signature verification
func TestHS256Verifier_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, "user-t", 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payloadBytes, _ := jwt.NewParser().DecodeSegment(parts[1])
	parts[1] = (&jwt.Token{}).EncodeSegment([]byte(strings.ReplaceAll(string(payloadBytes), "user-t", "attacker")))
	_, err = NewHS256Verifier(cfg.JWT.Secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

type stubVerifier struct{ err error }

func (s stubVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return mapToken{"userId": raw}, nil
}

func TestChain(t *testing.T) {
	_, err := Chain{}.Verify(context.Background(), "x")
	require.Error(t, err)

	boom := errors.New("boom")
	tok, err := Chain{nil, stubVerifier{err: boom}, stubVerifier{}}.Verify(context.Background(), "abc")
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "abc", claims["userId"])

	_, err = Chain{stubVerifier{err: boom}}.Verify(context.Background(), "abc")
	require.ErrorIs(t, err, boom)
}
