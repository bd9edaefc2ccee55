package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Media     MediaConfig
	Console   ConsoleConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Enabled reports whether a MongoDB URI was configured. Without one the
// service runs on the in-memory store.
func (m MongoDBConfig) Enabled() bool { return m.URI != "" }

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

// Issuer returns the realm issuer URL, or "" when Keycloak is not configured.
func (k KeycloakConfig) Issuer() string {
	if k.URL == "" || k.Realm == "" {
		return ""
	}
	return strings.TrimRight(k.URL, "/") + "/realms/" + k.Realm
}

type JWTConfig struct {
	Secret             string
	AccessTokenTTL     time.Duration
	AllowInsecureToken bool
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

type MediaConfig struct {
	// Host selects the image host: cloudinary, minio or memory.
	Host            string
	CloudinaryURL   string
	CloudName       string
	APIKey          string
	APISecret       string
	Folder          string
	RelayTimeout    time.Duration
	MaxUploadBytes  int64
	CleanupOnDelete bool
}

type ConsoleConfig struct {
	FrontendURL string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "7000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MONGODB_DATABASE", "hotelbook")
	viper.SetDefault("MONGODB_COLLECTION", "hotels")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 1440)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW", 1)
	viper.SetDefault("MEDIA_HOST", "")
	viper.SetDefault("MEDIA_FOLDER", "hotelbook")
	viper.SetDefault("MEDIA_RELAY_TIMEOUT", 30)
	viper.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 5*1024*1024)
	viper.SetDefault("MEDIA_CLEANUP_ON_DELETE", true)
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			LogLevel:     viper.GetString("LOG_LEVEL"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:          viper.GetString("KEYCLOAK_URL"),
			Realm:        viper.GetString("KEYCLOAK_REALM"),
			ClientID:     viper.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: viper.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:             os.Getenv("JWT_SECRET"),
			AccessTokenTTL:     time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			AllowInsecureToken: viper.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis: viper.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		Media: MediaConfig{
			Host:            strings.ToLower(viper.GetString("MEDIA_HOST")),
			CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
			CloudName:       viper.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:          viper.GetString("CLOUDINARY_API_KEY"),
			APISecret:       os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:          viper.GetString("MEDIA_FOLDER"),
			RelayTimeout:    time.Duration(viper.GetInt("MEDIA_RELAY_TIMEOUT")) * time.Second,
			MaxUploadBytes:  viper.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
			CleanupOnDelete: viper.GetBool("MEDIA_CLEANUP_ON_DELETE"),
		},
		Console: ConsoleConfig{
			FrontendURL: viper.GetString("FRONTEND_URL"),
		},
	}
	if cfg.Media.Host == "" {
		cfg.Media.Host = defaultMediaHost(cfg.Media)
	}
	return cfg, nil
}

// defaultMediaHost picks cloudinary when credentials are present, minio when
// an endpoint is set, and the in-memory host otherwise.
func defaultMediaHost(m MediaConfig) string {
	switch {
	case m.CloudinaryURL != "" || (m.CloudName != "" && m.APIKey != "" && m.APISecret != ""):
		return "cloudinary"
	case os.Getenv("MINIO_ENDPOINT") != "":
		return "minio"
	}
	return "memory"
}
