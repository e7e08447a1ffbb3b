package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog sources
const (
	CatalogSourceHTTP     = "http"
	CatalogSourcePostgres = "postgres"
)

// Config holds the whole application configuration, populated from env vars.
type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Store    StoreConfig
	Checkout CheckoutConfig
	Queue    QueueConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type CatalogConfig struct {
	Source       string // http | postgres
	APIURL       string // base URL of the content/catalog API
	Timeout      time.Duration
	CacheTTL     time.Duration // TTL of the last good snapshot kept in Redis
	WarmCron     string        // worker schedule for re-warming the snapshot, "off" disables
	SyncInterval time.Duration // how often the API adopts a snapshot warmed by the worker, 0 disables
	AdminRefresh bool          // exposes POST /admin/catalog/refresh
}

type StoreConfig struct {
	Namespace string // key prefix, one key per visitor session
	TTL       time.Duration
	// Sessions untouched for IdleTTL are dropped from memory; they
	// rehydrate from Redis on the next request.
	IdleTTL         time.Duration
	JanitorInterval time.Duration
	// CookieSecure is false on localhost development.
	CookieSecure bool
}

type CheckoutConfig struct {
	WhatsAppNumber string
	// NotifyEmail receives a copy of every order from the worker; empty logs only.
	NotifyEmail string
	// Requests per minute per session on POST /checkout.
	RateLimitPerMinute int
	RateLimitBurst     int
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type QueueConfig struct {
	RedisAddr   string
	Concurrency int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Holy Fit Store API"),
			Environment: env,
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			Source:       strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceHTTP)),
			APIURL:       getEnv("CATALOG_API_URL", "http://localhost:1337/api"),
			Timeout:      getEnvDuration("CATALOG_TIMEOUT", 10*time.Second),
			CacheTTL:     getEnvDuration("CATALOG_CACHE_TTL", 24*time.Hour),
			WarmCron:     getEnv("CATALOG_WARM_CRON", "*/15 * * * *"),
			SyncInterval: getEnvDuration("CATALOG_SYNC_INTERVAL", 5*time.Minute),
			AdminRefresh: getEnvBool("CATALOG_ADMIN_REFRESH", true),
		},
		Store: StoreConfig{
			Namespace:       getEnv("STORE_NAMESPACE", "holy-fit-store"),
			TTL:             getEnvDuration("STORE_TTL", 30*24*time.Hour),
			IdleTTL:         getEnvDuration("STORE_IDLE_TTL", 30*time.Minute),
			JanitorInterval: getEnvDuration("STORE_JANITOR_INTERVAL", 5*time.Minute),
			CookieSecure:    getEnvBool("STORE_COOKIE_SECURE", env == "production"),
		},
		Checkout: CheckoutConfig{
			WhatsAppNumber:     getEnv("CHECKOUT_WHATSAPP_NUMBER", ""),
			NotifyEmail:        getEnv("ORDER_NOTIFY_EMAIL", ""),
			RateLimitPerMinute: getEnvInt("CHECKOUT_RATE_LIMIT", 5),
			RateLimitBurst:     getEnvInt("CHECKOUT_RATE_BURST", 2),
		},
		Queue: QueueConfig{
			RedisAddr:   getEnv("QUEUE_REDIS_HOST", getEnv("REDIS_HOST", "localhost:6379")),
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "orders@holyfit.local"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would make the service misbehave at runtime.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceHTTP, CatalogSourcePostgres:
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q",
			CatalogSourceHTTP, CatalogSourcePostgres, c.Catalog.Source)
	}

	if strings.EqualFold(c.Catalog.WarmCron, "off") {
		c.Catalog.WarmCron = ""
	}

	if c.Store.Namespace == "" {
		return fmt.Errorf("STORE_NAMESPACE must not be empty")
	}

	if c.App.Environment == "production" && c.Checkout.WhatsAppNumber == "" {
		return fmt.Errorf("CHECKOUT_WHATSAPP_NUMBER must be set in production")
	}

	if c.Checkout.RateLimitPerMinute <= 0 {
		c.Checkout.RateLimitPerMinute = 5
	}
	if c.Checkout.RateLimitBurst <= 0 {
		c.Checkout.RateLimitBurst = 1
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvBool(key string, defaultValue bool) bool {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
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
