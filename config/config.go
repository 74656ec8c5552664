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

// Config stores the application configuration.
type Config struct {
	HTTPAddr string

	// Database
	DBDriver   string // mysql or postgres
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBLogLevel string // silent, error, warn, info

	// Object storage (S3 compatible)
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3UseSSL     bool
	S3PresignTTL time.Duration

	// Redis配置，仅用于练习集编号的作用域锁
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret     string
	JWTTTL        time.Duration
	AllowedEmails []string

	ReferenceTimezone string

	SentryDSN         string
	SentryEnvironment string

	LogLevel string
	LogFile  string

	RateLimitRPS   float64
	RateLimitBurst int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// ParseEmailList splits a comma separated allowlist, lowercasing and dropping blanks.
func ParseEmailList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DBDriver:   driver,
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", defaultPort),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "articulate"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		S3Endpoint:   getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
		S3Region:     getEnv("S3_REGION", "eu-west-2"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Bucket:     getEnv("S3_BUCKET", "articulate-recordings"),
		S3UseSSL:     getEnvBool("S3_USE_SSL", true),
		S3PresignTTL: time.Duration(getEnvInt("S3_PRESIGN_TTL_SECONDS", 3600)) * time.Second,

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getEnvDuration("JWT_TTL", 30*24*time.Hour),
		AllowedEmails: ParseEmailList(getEnv("ALLOWED_EMAILS", "")),

		ReferenceTimezone: getEnv("REFERENCE_TIMEZONE", "Europe/London"),

		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}
}

// Validate reports settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(c.AllowedEmails) == 0 {
		missing = append(missing, "ALLOWED_EMAILS")
	}
	if c.S3AccessKey == "" || c.S3SecretKey == "" {
		missing = append(missing, "S3_ACCESS_KEY/S3_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := time.LoadLocation(c.ReferenceTimezone); err != nil {
		return fmt.Errorf("invalid REFERENCE_TIMEZONE %q: %w", c.ReferenceTimezone, err)
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
