package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Login rate limiting configuration
	RateLimit RateLimitConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Redis configuration (payment initialization locks)
	Redis RedisConfig

	// NATS streaming configuration (domain events)
	NATS NATSConfig

	// Elasticsearch configuration (tour search)
	Elasticsearch ElasticsearchConfig

	// Reporting configuration
	Reports ReportsConfig

	// Photo upload configuration
	Upload UploadConfig

	// Scheduled jobs configuration
	Cron CronConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	RunMigrations      bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	EnableAuditLog   bool
}

// RateLimitConfig holds login attempt limits
type RateLimitConfig struct {
	MaxAttemptsPerEmail int
	MaxAttemptsPerIP    int
	WindowMinutes       int
}

// PaymentConfig holds Paystack-style gateway configuration
type PaymentConfig struct {
	Environment    string        // "sandbox" or "production"
	BaseURL        string        // gateway API base URL
	SecretKey      string        // gateway secret key (SECRET - never expose to client), also signs webhooks
	CallbackURL    string        // URL the gateway redirects the customer to after checkout
	Currency       string        // ISO currency code used for every payment
	RequestTimeout time.Duration // upper bound for a single gateway call
	LockTTL        time.Duration // per-booking initialization lock lifetime
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds NATS streaming settings
type NATSConfig struct {
	URL       string
	ClusterID string
	ClientID  string
	Subject   string
}

// ElasticsearchConfig holds search cluster settings
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// ReportsConfig holds reporting defaults
type ReportsConfig struct {
	Currency        string
	TopToursDefault int
}

// UploadConfig holds local photo storage settings
type UploadConfig struct {
	Dir        string
	PublicPath string
	MaxSizeMB  int
}

// CronConfig holds scheduled job settings
type CronConfig struct {
	Enabled           bool
	ReconcileSchedule string        // cron spec with seconds field
	ReconcileAfter    time.Duration // PENDING payments older than this are verified
	ReconcileBatch    int
	CleanupSchedule   string        // daily housekeeping of tokens, attempts and audit logs
	AuditRetention    time.Duration // audit log entries older than this are removed
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			RunMigrations:      getEnvAsBool("DATABASE_RUN_MIGRATIONS", true),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		RateLimit: RateLimitConfig{
			MaxAttemptsPerEmail: getEnvAsInt("LOGIN_MAX_ATTEMPTS_PER_EMAIL", 5),
			MaxAttemptsPerIP:    getEnvAsInt("LOGIN_MAX_ATTEMPTS_PER_IP", 20),
			WindowMinutes:       getEnvAsInt("LOGIN_RATE_WINDOW_MINUTES", 15),
		},
		Payment: PaymentConfig{
			Environment:    getEnv("PAYMENT_ENVIRONMENT", "sandbox"),
			BaseURL:        getEnv("PAYMENT_BASE_URL", "https://api.paystack.co"),
			SecretKey:      getEnv("PAYMENT_SECRET_KEY", ""),
			CallbackURL:    getEnv("PAYMENT_CALLBACK_URL", "http://localhost:8080/api/v1/payments/callback"),
			Currency:       getEnv("PAYMENT_CURRENCY", "NGN"),
			RequestTimeout: time.Duration(getEnvAsInt("PAYMENT_REQUEST_TIMEOUT", 30)) * time.Second,
			LockTTL:        time.Duration(getEnvAsInt("PAYMENT_LOCK_TTL", 60)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "test-cluster"),
			ClientID:  getEnv("NATS_CLIENT_ID", "travel-backend"),
			Subject:   getEnv("NATS_SUBJECT", "travel.events"),
		},
		Elasticsearch: ElasticsearchConfig{
			Addresses: getEnvAsSlice("ELASTICSEARCH_ADDRESSES", nil),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_TOUR_INDEX", "tours"),
		},
		Reports: ReportsConfig{
			Currency:        getEnv("REPORT_CURRENCY", getEnv("PAYMENT_CURRENCY", "NGN")),
			TopToursDefault: getEnvAsInt("REPORT_TOP_TOURS_DEFAULT", 10),
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "./uploads"),
			PublicPath: getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
			MaxSizeMB:  getEnvAsInt("UPLOAD_MAX_SIZE_MB", 5),
		},
		Cron: CronConfig{
			Enabled:           getEnvAsBool("CRON_ENABLED", true),
			ReconcileSchedule: getEnv("PAYMENT_RECONCILE_SCHEDULE", "0 */5 * * * *"),
			ReconcileAfter:    time.Duration(getEnvAsInt("PAYMENT_RECONCILE_AFTER", 900)) * time.Second,
			ReconcileBatch:    getEnvAsInt("PAYMENT_RECONCILE_BATCH", 50),
			CleanupSchedule:   getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
			AuditRetention:    time.Duration(getEnvAsInt("AUDIT_LOG_RETENTION_DAYS", 90)) * 24 * time.Hour,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Payment.Currency == "" || len(c.Payment.Currency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a 3 letter ISO code, got %q", c.Payment.Currency)
	}

	// The sandbox gateway is only allowed outside production
	if c.IsProduction() {
		if c.Payment.SecretKey == "" {
			return fmt.Errorf("PAYMENT_SECRET_KEY is required in production")
		}
		if c.Payment.Environment != "production" {
			return fmt.Errorf("PAYMENT_ENVIRONMENT must be 'production' when ENVIRONMENT=production")
		}
	}

	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be positive")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
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
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
