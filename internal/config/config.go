package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Clinic defaults; the live copy is kept in the clinic store.
	ClinicName     string
	ClinicCountry  string
	ClinicTimezone string
	ClinicPhone    string
	ClinicAddress  string

	// Dialogue and booking rules
	SessionTTL            time.Duration
	BookingBuffer         time.Duration
	SlotStep              time.Duration
	SlotCacheTTL          time.Duration
	MaxBookingHorizonDays int
	ChatRateLimitPerSec   float64
	ChatRateLimitBurst    int
	CORSAllowedOrigins    []string

	// Email
	EmailProvider       string
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESFromEmail        string
	AdminNotifyEmails   []string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Workers
	EventsQueueURL       string
	OutboxPollInterval   time.Duration
	ReminderPollInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ClinicName:     getEnv("CLINIC_NAME", "Центр \"Новая Жизнь\""),
		ClinicCountry:  strings.ToUpper(getEnv("CLINIC_COUNTRY", "IL")),
		ClinicTimezone: getEnv("CLINIC_TIMEZONE", ""),
		ClinicPhone:    getEnv("CLINIC_PHONE", ""),
		ClinicAddress:  getEnv("CLINIC_ADDRESS", ""),

		SessionTTL:            getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		BookingBuffer:         getEnvAsDuration("BOOKING_BUFFER", time.Hour),
		SlotStep:              getEnvAsDuration("SLOT_STEP", 30*time.Minute),
		SlotCacheTTL:          getEnvAsDuration("SLOT_CACHE_TTL", 5*time.Minute),
		MaxBookingHorizonDays: getEnvAsInt("MAX_BOOKING_HORIZON_DAYS", 365),
		ChatRateLimitPerSec:   getEnvAsFloat("CHAT_RATE_LIMIT_PER_SEC", 2),
		ChatRateLimitBurst:    getEnvAsInt("CHAT_RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS"),

		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Новая Жизнь"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		AdminNotifyEmails:   getEnvAsList("ADMIN_NOTIFY_EMAILS"),
		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EventsQueueURL:       getEnv("EVENTS_QUEUE_URL", ""),
		OutboxPollInterval:   getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", 15*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
