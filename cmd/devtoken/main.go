// Command devtoken mints an HS256 access token for local testing of the
// my-hotels API and console.
//
//	go run ./cmd/devtoken -user 6540c1f0a1b2c3d4e5f60718
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/tokens"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
)

func main() {
	user := flag.String("user", "", "user id to place in the userId claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_ACCESS_TOKEN_TTL)")
	cookie := flag.Bool("cookie", false, "print as an auth_token cookie header")
	flag.Parse()

	if *user == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.JWT.AccessTokenTTL
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	tok, err := tokens.GenerateAccessToken(cfg, *user, lifetime)
	if err != nil {
		logger.Fatalf("mint token: %v", err)
	}
	if *cookie {
		fmt.Printf("Cookie: auth_token=%s\n", tok)
		return
	}
	fmt.Println(tok)
}
