package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort       = "3001"
	defaultCORSOrigin = "http://localhost:3000"
	defaultJWTSecret  = "supersecretkey"
	defaultTokenTTL   = 24 * time.Hour

	RelayScopeGlobal   = "global"
	RelayScopeDocument = "document"
)

type Config struct {
	Port          string
	CORSOrigin    string
	JWTSecret     string
	TokenTTL      time.Duration
	DatabaseURL   string
	RelayScope    string
	WSRequireAuth bool
	LogLevel      string
}

// UsingDefaultSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsingDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// Load reads the configuration from the process environment. Callers load any
// .env file beforehand.
func Load() (Config, error) {
	cfg := Config{
		Port:       getEnv("PORT", defaultPort),
		CORSOrigin: getEnv("CORS_ORIGIN", defaultCORSOrigin),
		JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:   defaultTokenTTL,
		RelayScope: strings.ToLower(getEnv("RELAY_SCOPE", RelayScopeGlobal)),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if raw := getEnv("TOKEN_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", raw)
		}
		cfg.TokenTTL = ttl
	}

	if raw := getEnv("WS_REQUIRE_AUTH", ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WS_REQUIRE_AUTH %q", raw)
		}
		cfg.WSRequireAuth = v
	}

	switch cfg.RelayScope {
	case RelayScopeGlobal, RelayScopeDocument:
	default:
		return Config{}, fmt.Errorf("invalid RELAY_SCOPE %q", cfg.RelayScope)
	}

	cfg.DatabaseURL = databaseURL()
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete connection
// variables, returning "" when neither is set.
func databaseURL() string {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	dbHost := getEnv("host", "")
	if dbHost == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("user", ""),
		getEnv("password", ""),
		dbHost,
		getEnv("port", "5432"),
		getEnv("dbname", ""),
		getEnv("DB_SSLMODE", "require"),
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
