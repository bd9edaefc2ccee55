package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
)

// GenerateAccessToken creates a signed HS256 access token for userID.
func GenerateAccessToken(cfg *config.Config, userID string, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"sub":    userID,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

type mapToken jwt.MapClaims

func (t mapToken) Claims(v interface{}) error {
	mm, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims type %T", v)
	}
	*mm = map[string]interface{}(t)
	return nil
}

// HS256Verifier validates tokens minted by GenerateAccessToken.
type HS256Verifier struct {
	secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret)}
}

func (v *HS256Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return mapToken(claims), nil
}

// Chain tries each verifier in order and returns the first success.
type Chain []middleware.Verifier

func (ch Chain) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	var errs []error
	for _, v := range ch {
		if v == nil {
			continue
		}
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no token verifier configured")
	}
	return nil, errors.Join(errs...)
}
