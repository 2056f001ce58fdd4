package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Env  string
	Port string

	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	RefreshSecret string

	CORSOrigins string
	CronKey     string

	StatsCache        string // "memory" or "redis"
	ProfitJobInterval time.Duration
	DispatchWorkers   int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	KafkaBrokers []string
	KafkaTopic   string

	StripeSecretKey string
	StripeCurrency  string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the environment into a Config, applying defaults.
func Load() *Config {
	return &Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "3000"),

		DBHost:            GetEnv("DB_HOST", "localhost"),
		DBPort:            GetEnv("DB_PORT", "5432"),
		DBUser:            GetEnv("DB_USER", "postgres"),
		DBPassword:        GetEnv("DB_PASSWORD", "postgres"),
		DBName:            GetEnv("DB_NAME", "fintrivox"),
		DBSSLMode:         GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", ""),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		JWTSecret:     GetEnv("JWT_SECRET", "fintrivox"),
		RefreshSecret: GetEnv("REFRESH_SECRET", "fintrivox-refresh"),

		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		CronKey:     GetEnv("CRON_KEY", ""),

		StatsCache:        GetEnv("STATS_CACHE", "memory"),
		ProfitJobInterval: GetDurationEnv("PROFIT_JOB_INTERVAL", time.Hour),
		DispatchWorkers:   GetIntEnv("DISPATCH_WORKERS", 4),

		SMTPHost:     GetEnv("SMTP_HOST", ""),
		SMTPPort:     GetIntEnv("SMTP_PORT", 587),
		SMTPUser:     GetEnv("SMTP_USER", ""),
		SMTPPassword: GetEnv("SMTP_PASSWORD", ""),
		MailFrom:     GetEnv("MAIL_FROM", "no-reply@fintrivox.com"),

		KafkaBrokers: GetListEnv("KAFKA_BROKERS"),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "fintrivox.ledger"),

		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
		StripeCurrency:  GetEnv("STRIPE_CURRENCY", "usd"),
	}
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		log.Printf("Invalid %s=%q, using default: %d", key, val, defaultVal)
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using default: %s", key, val, defaultVal)
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty items.
func GetListEnv(key string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
