package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Google sign-in modes
const (
	GoogleModeMock = "mock"
	GoogleModeLive = "live"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Port        string
	Environment string
	BaseURL     string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	SQLitePath    string

	JWTSecret     string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string
	SeedDefaults  bool

	GoogleMode string
	OAuth      *OAuthConfig

	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration

	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string

	LogLevel string
	LogFile  string

	OTelEnabled      bool
	OTelEndpoint     string
	OTelSamplingRate float64

	CORSOrigins []string
}

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		BaseURL:     getEnvOrDefault("BASE_URL", "http://localhost:8787"),

		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreSQLite)),
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "cardfeed"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "cardfeed.db"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),
		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedDefaults:  getBool("SEED_DEFAULTS", false),

		GoogleMode: strings.ToLower(getEnvOrDefault("GOOGLE_OAUTH_MODE", GoogleModeMock)),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      getDuration("CACHE_TTL", 30*time.Second),

		AWSRegion:  getEnvOrDefault("AWS_REGION", "us-east-1"),
		AWSBucket:  os.Getenv("AWS_BUCKET"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "cardfeed.log"),

		OTelEnabled:      getBool("OTEL_ENABLED", false),
		OTelEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTelSamplingRate: getFloat("OTEL_SAMPLING_RATE", 1.0),

		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
	}

	if cfg.GoogleMode == GoogleModeLive {
		oauth, err := LoadOAuthConfig()
		if err != nil {
			return nil, err
		}
		cfg.OAuth = oauth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		c.JWTSecret = "cardfeed-dev-secret"
	}

	switch c.StoreDriver {
	case StoreMongo, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo, postgres or sqlite)", c.StoreDriver)
	}

	switch c.GoogleMode {
	case GoogleModeMock, GoogleModeLive:
	default:
		return fmt.Errorf("unknown GOOGLE_OAUTH_MODE %q (want mock or live)", c.GoogleMode)
	}

	if c.OTelSamplingRate < 0 || c.OTelSamplingRate > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATE must be between 0 and 1")
	}
	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisAddr returns host:port, or "" when redis is not configured
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
