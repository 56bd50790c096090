package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the analysis service.
type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	GroqAPIKey      string
	GroqBaseURL     string
	GroqModel       string
	GroqTemperature float64
	GroqMaxTokens   int
	RequestTimeout  time.Duration

	WorkerCount       int
	QueueCapacity     int
	PromptTokenBudget int

	RetentionWindow time.Duration
	SweepInterval   time.Duration
}

// Load reads configuration from the environment with sane defaults for local
// development. A .env file in the working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8083"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqTemperature: getEnvFloat("GROQ_TEMPERATURE", 0.3),
		GroqMaxTokens:   getEnvInt("GROQ_MAX_TOKENS", 4096),
		RequestTimeout:  getEnvDuration("GROQ_REQUEST_TIMEOUT", 60*time.Second),

		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		QueueCapacity:     getEnvInt("QUEUE_CAPACITY", 256),
		PromptTokenBudget: getEnvInt("PROMPT_TOKEN_BUDGET", 6000),

		RetentionWindow: getEnvDuration("JOB_RETENTION_WINDOW", 24*time.Hour),
		SweepInterval:   getEnvDuration("JOB_SWEEP_INTERVAL", time.Hour),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
