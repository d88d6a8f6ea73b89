package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/joho/godotenv"
)

// Token store drivers.
const (
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	DatabaseFile        string        // Path to SQLite database file (default: ./washpay.db)

	BackendBaseURL  string // Required: base URL of the wash backend
	BackendAPIKey   string // Optional: falls back to the key returned by login
	BackendUsername string // Email or phone used to log in when no session is stored
	BackendPassword string

	TokenStore           string        // sqlite, redis or memory (default: sqlite)
	RedisAddr            string        // Required for TOKEN_STORE=redis
	RedisPassword        string        //
	RedisDB              int           //
	StoreSealKey         string        // Optional: encrypts token values at rest when set
	TokenRefreshInterval time.Duration // Periodic refresh (default: 14m)
	TokenRefreshTimeout  time.Duration // Bound on one refresh call (default: 10s)

	Gateway      ipg.Config
	SharedSecret string // Required: IPG shared secret, never leaves the server
	SuccessPage  string // Redirect after /ipg/success (default: /success)
	FailurePage  string // Redirect after /ipg/fail (default: /failure)

	HousekeepingInterval time.Duration // Stale order sweep interval (default: 1h)
	OrderTTL             time.Duration // Pending orders older than this are abandoned (default: 24h)

	ModerateLimit httpx.RateLimitConfig
	LenientLimit  httpx.RateLimitConfig
}

// LoadConfig reads the environment, after loading a .env file if one exists.
func LoadConfig() Config {
	_ = godotenv.Load()
	return configFromEnv()
}

func configFromEnv() Config {
	gateway := ipg.DefaultConfig()
	gateway.GatewayURL = getEnvOrDefault("IPG_GATEWAY_URL", gateway.GatewayURL)
	gateway.StoreName = os.Getenv("IPG_STORE_NAME")
	gateway.Language = getEnvOrDefault("IPG_LANGUAGE", gateway.Language)
	gateway.TxnType = getEnvOrDefault("IPG_TXN_TYPE", gateway.TxnType)
	gateway.Currency = getEnvOrDefault("IPG_CURRENCY", gateway.Currency)
	gateway.PaymentMethod = os.Getenv("IPG_PAYMENT_METHOD")
	gateway.CheckoutOption = getEnvOrDefault("IPG_CHECKOUT_OPTION", gateway.CheckoutOption)
	gateway.Timezone = getEnvOrDefault("IPG_TIMEZONE", gateway.Timezone)
	gateway.ResponseSuccessURL = os.Getenv("IPG_RESPONSE_SUCCESS_URL")
	gateway.ResponseFailURL = os.Getenv("IPG_RESPONSE_FAIL_URL")
	gateway.TransactionNotificationURL = os.Getenv("IPG_NOTIFICATION_URL")
	gateway.Recurring.InstallmentCount = getEnvIntOrDefault("IPG_RECURRING_COUNT", gateway.Recurring.InstallmentCount)
	gateway.Recurring.Period = getEnvOrDefault("IPG_RECURRING_PERIOD", gateway.Recurring.Period)
	gateway.Recurring.Frequency = getEnvIntOrDefault("IPG_RECURRING_FREQUENCY", gateway.Recurring.Frequency)

	window := getEnvDurationOrDefault("RATELIMIT_WINDOW", time.Minute)

	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "washpay.db"),

		BackendBaseURL:  os.Getenv("BACKEND_BASE_URL"),
		BackendAPIKey:   os.Getenv("BACKEND_API_KEY"),
		BackendUsername: os.Getenv("BACKEND_USERNAME"),
		BackendPassword: os.Getenv("BACKEND_PASSWORD"),

		TokenStore:           strings.ToLower(getEnvOrDefault("TOKEN_STORE", TokenStoreSQLite)),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvIntOrDefault("REDIS_DB", 0),
		StoreSealKey:         os.Getenv("STORE_SEAL_KEY"),
		TokenRefreshInterval: getEnvDurationOrDefault("TOKEN_REFRESH_INTERVAL", authsdk.DefaultRefreshInterval),
		TokenRefreshTimeout:  getEnvDurationOrDefault("TOKEN_REFRESH_TIMEOUT", authsdk.DefaultRefreshTimeout),

		Gateway:      gateway,
		SharedSecret: os.Getenv("IPG_SHARED_SECRET"),
		SuccessPage:  getEnvOrDefault("SUCCESS_PAGE", "/success"),
		FailurePage:  getEnvOrDefault("FAILURE_PAGE", "/failure"),

		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		OrderTTL:             getEnvDurationOrDefault("ORDER_TTL", 24*time.Hour),

		ModerateLimit: httpx.RateLimitConfig{
			Requests: getEnvIntOrDefault("RATELIMIT_MODERATE_REQUESTS", httpx.ModerateLimit.Requests),
			Window:   window,
			Burst:    getEnvIntOrDefault("RATELIMIT_MODERATE_BURST", httpx.ModerateLimit.Burst),
		},
		LenientLimit: httpx.RateLimitConfig{
			Requests: getEnvIntOrDefault("RATELIMIT_LENIENT_REQUESTS", httpx.LenientLimit.Requests),
			Window:   window,
			Burst:    getEnvIntOrDefault("RATELIMIT_LENIENT_BURST", httpx.LenientLimit.Burst),
		},
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.BackendBaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.SharedSecret == "" {
		errs = append(errs, errors.New("IPG_SHARED_SECRET is required"))
	}
	if c.Gateway.StoreName == "" {
		errs = append(errs, errors.New("IPG_STORE_NAME is required"))
	}
	if _, err := c.Gateway.Location(); err != nil {
		errs = append(errs, fmt.Errorf("IPG_TIMEZONE: %w", err))
	}
	switch c.TokenStore {
	case TokenStoreSQLite, TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for TOKEN_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE must be sqlite, redis or memory, got %q", c.TokenStore))
	}
	if c.BackendUsername != "" && c.BackendPassword == "" {
		errs = append(errs, errors.New("BACKEND_PASSWORD is required with BACKEND_USERNAME"))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
