package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/inventory-api/utils"
)

// Auth modes accepted in AUTH_MODE
const (
	AuthModeStrict     = "strict"
	AuthModePermissive = "permissive"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      *DatabaseConfig // Optional: auth audit trail. When nil, auth events are not persisted.
	Cognito       CognitoConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Environment   string `validate:"required"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string
	Port               int `validate:"gt=0,max=65535"`
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL connection settings for the auth audit trail
type DatabaseConfig struct {
	ConnectionString string `validate:"required"` // From DATABASE_URL
	MaxOpenConns     int    `validate:"min=1"`
	MaxIdleConns     int    `validate:"min=0"`
	ConnMaxLifetime  time.Duration
}

// CognitoConfig holds the user pool settings used for token verification.
// An empty UserPoolID disables cryptographic verification entirely; an empty
// ClientID disables it for ID tokens only.
type CognitoConfig struct {
	Region     string `validate:"required"`
	UserPoolID string
	ClientID   string
	JWKSURL    string `validate:"omitempty,url"` // Overrides the pool's well-known JWKS URL
}

// AuthConfig holds request authentication settings
type AuthConfig struct {
	// Mode is "strict" (verify, fall back to decode) or "permissive" (decode only)
	Mode string `validate:"required,oneof=strict permissive"`
}

// ObservabilityConfig holds logging and metrics configuration
type ObservabilityConfig struct {
	LogLevel       string `validate:"required,oneof=debug info warn error"`
	LogFormat      string `validate:"required,oneof=json console text"`
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment: environment,
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getPort(),
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		},
		Database: loadDatabaseConfig(),
		Cognito: CognitoConfig{
			Region:     getEnv("COGNITO_REGION", "us-east-1"),
			UserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
			ClientID:   getEnv("COGNITO_CLIENT_ID", ""),
			JWKSURL:    getEnv("COGNITO_JWKS_URL", ""),
		},
		Auth: AuthConfig{
			Mode: getEnv("AUTH_MODE", defaultAuthMode(environment)),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Nested structs, including a non-nil Database, are validated too
	return utils.ValidateStruct(c)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// VerificationConfigured reports whether access tokens can be cryptographically verified
func (c *CognitoConfig) VerificationConfigured() bool {
	return c.UserPoolID != ""
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil || u.Host == "" {
		return "host=<from DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	db := strings.TrimPrefix(u.Path, "/")
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaultAuthMode verifies signatures in production and decodes only elsewhere
func defaultAuthMode(environment string) string {
	if isProduction(environment) {
		return AuthModeStrict
	}
	return AuthModePermissive
}

func isProduction(environment string) bool {
	return environment == "production" || environment == "prod"
}

// loadDatabaseConfig returns nil when DATABASE_URL is not set
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
