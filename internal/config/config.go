package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

type Config struct {
	// Server
	Port     string `validate:"required,numeric"`
	Env      string `validate:"oneof=development staging production"`
	LogLevel string `validate:"oneof=debug info warn warning error"`

	// Redis (optional, enables cross-instance session updates)
	RedisURL string `validate:"omitempty,url"`

	// JWT
	JWTSecret       string `validate:"required,min=16"`
	SessionTTLHours int    `validate:"gte=1"`

	// Gemini AI. An empty key disables the AI features without failing startup.
	GeminiAPIKey         string
	GeminiModel          string `validate:"required"`
	GeminiRequestsPerMin int    `validate:"gte=1"`
	GeminiConcurrentReqs int    `validate:"gte=1"`

	// Rate limiting on the AI-backed routes, per client IP
	ChatRateLimitPerMin int `validate:"gte=1"`

	// Frontend
	FrontendURL string `validate:"required,url"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		RedisURL:             os.Getenv("REDIS_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionTTLHours:      getEnvAsIntOrDefault("SESSION_TTL_HOURS", 24),
		GeminiAPIKey:         os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiRequestsPerMin: getEnvAsIntOrDefault("GEMINI_REQUESTS_PER_MINUTE", 60),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ChatRateLimitPerMin:  getEnvAsIntOrDefault("CHAT_RATE_LIMIT_PER_MINUTE", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, oops.
			In("config").
			Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
