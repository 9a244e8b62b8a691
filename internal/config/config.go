package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string

	// Shifts / transactions
	ShiftListLimit       int
	TransactionListLimit int

	// Memberships
	ExpiringSoonDays int
	RegularTermDays  int

	// Dashboard
	DashboardCacheTTL time.Duration

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	OwnerEmail      string

	// App Defaults
	AppName string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "carwash_pos")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@carwash.example.com")
	cfg.OwnerEmail = getEnv("OWNER_EMAIL", "")
	cfg.AppName = getEnv("APP_NAME", "CarwashPOS")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "86400"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.ShiftListLimit, err = strconv.Atoi(getEnv("SHIFT_LIST_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIFT_LIST_LIMIT: %w", err)
	}

	cfg.TransactionListLimit, err = strconv.Atoi(getEnv("TRANSACTION_LIST_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSACTION_LIST_LIMIT: %w", err)
	}

	cfg.ExpiringSoonDays, err = strconv.Atoi(getEnv("MEMBERSHIP_EXPIRING_SOON_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEMBERSHIP_EXPIRING_SOON_DAYS: %w", err)
	}

	cfg.RegularTermDays, err = strconv.Atoi(getEnv("MEMBERSHIP_REGULAR_TERM_DAYS", "3650"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEMBERSHIP_REGULAR_TERM_DAYS: %w", err)
	}

	dashboardCacheTTLSeconds, err := strconv.ParseInt(getEnv("DASHBOARD_CACHE_TTL_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.DashboardCacheTTL = time.Duration(dashboardCacheTTLSeconds) * time.Second

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
