package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/handlers"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/config"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/console"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/database"
	hotelhandler "github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/handler"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/repository"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/service"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/media"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/oidc"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/sessions"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/storage"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/tokens"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/metrics"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.LogLevel)
	defer logger.Sync()
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v media=%s", cfg.Keycloak.URL != "", cfg.MongoDB.Enabled(), cfg.Redis.Addr() != "", cfg.Media.Host)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb := connectRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		sessions.SetBlacklistClient(rdb)
	}

	repo, mongoClient := openRepository(ctx, cfg.MongoDB)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	host, err := newMediaHost(cfg)
	if err != nil {
		logger.Fatalf("media host %q: %v", cfg.Media.Host, err)
	}
	relay := media.NewRelay(host, cfg.Media.RelayTimeout)
	svc := service.New(repo, relay, service.Options{CleanupOnDelete: cfg.Media.CleanupOnDelete})

	verifier := buildVerifier(ctx, cfg)
	authMW := middleware.AuthMiddleware(verifier)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors(cfg.Console.FrontendURL))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(mongoClient, rdb, host))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg).Register(api, authMW)

	owner := api.Group("/my-hotels", authMW, middleware.SameOrigin(cfg.Console.FrontendURL))
	if cfg.RateLimit.Enabled {
		owner.Use(rateLimiter(cfg.RateLimit, rdb))
	}
	hotelhandler.RegisterHotelRoutes(owner, svc, cfg.Media.MaxUploadBytes)

	console.RegisterConsoleRoutes(r.Group("/my-hotels", authMW), svc)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting my-hotels service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// blacklist and distributed rate limiting are then disabled.
func connectRedis(ctx context.Context, rc config.RedisConfig) *redis.Client {
	if rc.Addr() == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr(), Password: rc.Password, DB: rc.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", rc.Addr(), err)
		_ = client.Close()
		return nil
	}
	logger.Infof("Connected to Redis: %s", rc.Addr())
	return client
}

// openRepository prefers MongoDB and falls back to the in-memory store when no
// URI is configured. A configured but unreachable MongoDB is fatal.
func openRepository(ctx context.Context, mc config.MongoDBConfig) (repository.Repository, *mongo.Client) {
	if !mc.Enabled() {
		logger.Warnf("MONGODB_URI not set; hotels are kept in memory")
		return repository.NewMemoryRepo(), nil
	}
	client, err := database.ConnectWithRetry(ctx, mc.URI, mc.Timeout, 5, time.Second)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	col := client.Database(mc.Database).Collection(mc.Collection)
	return repository.NewMongoRepo(col), client
}

func newMediaHost(cfg *config.Config) (media.Host, error) {
	switch cfg.Media.Host {
	case "cloudinary":
		h, err := media.NewCloudinaryHost(media.CloudinaryConfig{
			URL:       cfg.Media.CloudinaryURL,
			CloudName: cfg.Media.CloudName,
			APIKey:    cfg.Media.APIKey,
			APISecret: cfg.Media.APISecret,
			Folder:    cfg.Media.Folder,
		})
		if err != nil {
			return nil, err
		}
		return h, nil
	case "minio":
		s, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory", "":
		logger.Warnf("using in-memory media host; uploaded images are not persisted")
		return media.NewMemoryHost(""), nil
	}
	return nil, fmt.Errorf("unknown media host %q", cfg.Media.Host)
}

// buildVerifier chains the HS256 verifier for tokens minted by this service
// with the Keycloak verifier, and the insecure one when explicitly allowed.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	var chain tokens.Chain
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewHS256Verifier(cfg.JWT.Secret))
	} else {
		logger.Warnf("JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.Keycloak.Issuer() != "" {
		ver, err := oidc.NewKeycloakVerifier(ctx, cfg.Keycloak)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.JWT.AllowInsecureToken {
		logger.Warnf("enabling insecure token verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	return chain
}

func rateLimiter(rl config.RateLimitConfig, rdb *redis.Client) gin.HandlerFunc {
	if rl.UseRedis && rdb != nil {
		return middleware.RedisRateLimitMiddleware(rdb, rl.RPS, rl.Burst, rl.Window)
	}
	return middleware.RateLimitMiddleware(rl.RPS, rl.Burst)
}

// cors allows the browser client at origin to call the API with its cookie.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" && c.GetHeader("Origin") == origin {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			h.Set("Access-Control-Expose-Headers", "Content-Length")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// readyHandler returns 200 only when every configured dependency answers.
func readyHandler(mc *mongo.Client, rdb *redis.Client, host media.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := map[string]bool{}
		ready := true
		check := func(name string, err error) {
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Warnf("readiness: %s: %v", name, err)
			}
		}
		if mc != nil {
			check("mongo", mc.Ping(ctx, nil))
		}
		if rdb != nil {
			check("redis", rdb.Ping(ctx).Err())
		}
		if ch, ok := host.(media.Checker); ok {
			check("media", ch.Ready(ctx))
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}
