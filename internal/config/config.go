package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	LLMTimeout   time.Duration

	Port          string
	SessionSecret string
	SessionTTL    time.Duration

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	MetricsDBPath string
}

// NewFromEnv creates a new Config object from environment variables.
// No variable is mandatory: a missing LLM credential is reported when a
// recipe request is made, not at startup.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("LLM_PROVIDER environment variable has unsupported value %q", provider)
	}

	llmTimeout, err := durationFromEnv("LLM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := durationFromEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	allowed, err := int64ListFromEnv("TELEGRAM_ALLOWED_USER_IDS")
	if err != nil {
		return nil, err
	}

	var adminID int64
	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_ID environment variable is not a valid id: %w", err)
		}
	}

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKey:           strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:            stringFromEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:             strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		GroqModel:              stringFromEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:             llmTimeout,
		Port:                   stringFromEnv("PORT", "8080"),
		SessionSecret:          os.Getenv("SESSION_SECRET"),
		SessionTTL:             sessionTTL,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
		MetricsDBPath:          os.Getenv("METRICS_DB_PATH"),
	}, nil
}

// APIKey returns the credential of the selected LLM provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderGroq {
		return c.GroqAPIKey
	}
	return c.GeminiAPIKey
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s environment variable is not a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s environment variable must be positive", key)
	}
	return d, nil
}

func int64ListFromEnv(key string) ([]int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s environment variable contains invalid id %q", key, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
