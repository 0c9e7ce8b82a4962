package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	defaultJWTSecret = "dev-secret-change-me-dev-secret-change-me"
	minSecretLength  = 32
	minBcryptCost    = 4
	maxBcryptCost    = 31
)

type Config struct {
	Environment  string // ENV: production, development, etc.
	Port         string
	StoreBackend string
	MongoURI     string
	RedisURI     string // empty disables Redis rate limiting and pub/sub
	PostgresURI  string // empty disables the login audit log

	JWTSecret       string
	jwtSecretSet    bool
	TokenTTL        time.Duration
	CookieName      string
	BcryptCost      int
	HashConcurrency int

	AllowedOrigins []string
	MaxBodyBytes   int64

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	LogFormat string
	LogLevel  string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:56954", "http://localhost:60152"}
	}

	secret, secretSet := os.LookupEnv("JWT_SECRET")
	secretSet = secretSet && strings.TrimSpace(secret) != ""
	if !secretSet {
		secret = defaultJWTSecret
	}

	return &Config{
		Environment:         env,
		Port:                getEnv("PORT", "8000"),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/watchlist")),
		RedisURI:            getEnv("REDIS_URI", ""),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		JWTSecret:           secret,
		jwtSecretSet:        secretSet,
		TokenTTL:            getDuration("JWT_TTL", 15*24*time.Hour),
		CookieName:          "jwt",
		BcryptCost:          getInt("BCRYPT_COST", 10),
		HashConcurrency:     getInt("HASH_CONCURRENCY", runtime.NumCPU()),
		AllowedOrigins:      allowedOrigins,
		MaxBodyBytes:        int64(getInt("MAX_BODY_BYTES", 10<<20)),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "watchlist"),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if !c.jwtSecretSet {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		} else if len(c.JWTSecret) < minSecretLength {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters (got %d)", minSecretLength, len(c.JWTSecret)))
		}
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", minBcryptCost, maxBcryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.HashConcurrency < 1 {
		errs = append(errs, errors.New("HASH_CONCURRENCY must be at least 1"))
	}
	switch c.StoreBackend {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// CloudinaryEnabled reports whether all media host credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return d
}
