package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	Migrations string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GatewayBaseURL string
	GatewayKeyID   string
	GatewaySecret  string
	GatewayMock    bool

	CatalogBaseURL  string
	IdentityBaseURL string
	EmailURL        string
	SMSURL          string

	Currency string

	HTTPClientTimeout time.Duration
	SweepInterval     time.Duration
	DeliverAfter      time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is picked up when present, matching local development setups.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env file: %v", err)
	}

	return &Config{
		Port: getEnv("PORT", "8004"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "orders_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		Migrations: getEnv("MIGRATIONS_PATH", "migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GatewayBaseURL: getEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com"),
		GatewayKeyID:   getEnv("PAYMENT_GATEWAY_KEY_ID", ""),
		GatewaySecret:  getEnv("PAYMENT_GATEWAY_SECRET", ""),
		GatewayMock:    getEnvBool("PAYMENT_GATEWAY_MOCK", false),

		CatalogBaseURL:  getEnv("CATALOG_SERVICE_URL", "http://localhost:8001"),
		IdentityBaseURL: getEnv("IDENTITY_SERVICE_URL", "http://localhost:8002"),
		EmailURL:        getEnv("EMAIL_PROVIDER_URL", "http://localhost:8003/email"),
		SMSURL:          getEnv("SMS_PROVIDER_URL", "http://localhost:8003/sms"),

		Currency: getEnv("CURRENCY", "INR"),

		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		SweepInterval:     getEnvDuration("DELIVERY_SWEEP_INTERVAL", 15*time.Minute),
		DeliverAfter:      getEnvDuration("DELIVER_AFTER", 48*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
