package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Email providers understood by EmailConfig.Provider
const (
	EmailProviderLog      = "log"
	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
)

type Config struct {
	Server       ServerConfig
	Data         DataConfig
	Redis        RedisConfig
	Email        EmailConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Storefront   StorefrontConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins, credentials are allowed
	TrustProxy      bool     // take the client address from X-Forwarded-For / X-Real-IP
}

type DataConfig struct {
	Dir     string // live JSON collections
	SeedDir string // pristine copies restored by cmd/seed
}

// RedisConfig is optional. An empty Host keeps verification codes in process memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type EmailConfig struct {
	Provider       string // log, smtp or sendgrid
	From           string
	FromName       string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SendGridAPIKey string
}

type VerificationConfig struct {
	CodeTTL time.Duration
}

type RateLimitConfig struct {
	EmailPerMinute int
	LoginPerMinute int
}

type StorefrontConfig struct {
	Port          string
	Root          string
	Locales       []string
	DefaultLocale string
}

// Load reads configuration from environment variables
// A .env file in the working directory is loaded first when present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	locales := getSliceEnv("STOREFRONT_LOCALES", []string{"fr", "en-US"})

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "3000"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:4200", "http://localhost:8085"}),
			TrustProxy:      getBoolEnv("TRUST_PROXY", false),
		},
		Data: DataConfig{
			Dir:     getEnv("DATA_DIR", "data"),
			SeedDir: getEnv("SEED_DIR", "seed"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
			From:           getEnv("EMAIL_FROM", "no-reply@localhost"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Shop"),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASS", ""),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		},
		Verification: VerificationConfig{
			CodeTTL: getDurationEnv("VERIFICATION_CODE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			EmailPerMinute: getIntEnv("RATE_LIMIT_EMAIL_PER_MIN", 5),
			LoginPerMinute: getIntEnv("RATE_LIMIT_LOGIN_PER_MIN", 20),
		},
		Storefront: StorefrontConfig{
			Port:          getEnv("STOREFRONT_PORT", "8085"),
			Root:          getEnv("STOREFRONT_ROOT", "dist/tp4/browser"),
			Locales:       locales,
			DefaultLocale: getEnv("STOREFRONT_DEFAULT_LOCALE", locales[0]),
		},
	}

	if err := cfg.Email.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *EmailConfig) validate() error {
	switch c.Provider {
	case EmailProviderLog:
		return nil
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER=smtp")
		}
		return nil
	case EmailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid")
		}
		return nil
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Provider)
	}
}

// Enabled reports whether a Redis server is configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getDurationEnv reads a whole number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
