package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	Provider     string

	DatabasePath      string
	GenerationTimeout time.Duration
	SignupCredits     int

	LogLevel  string
	LogFormat string

	// Payment gateway (optional for CLI, required for purchases)
	PaymentAPIURL string
	PaymentAPIKey string

	// Telegram (optional for CLI, required for the bot)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	TelegramAdminID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("PLATEWISE_PROVIDER", "gemini")
	v.SetDefault("PLATEWISE_DB_PATH", "data/platewise.db")
	v.SetDefault("GENERATION_TIMEOUT", "45s")
	v.SetDefault("SIGNUP_CREDITS", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	geminiAPIKey := v.GetString("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := v.GetString("GROQ_API_KEY")
	if groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	provider := v.GetString("PLATEWISE_PROVIDER")
	if provider != "gemini" && provider != "groq" {
		return nil, fmt.Errorf("PLATEWISE_PROVIDER must be \"gemini\" or \"groq\", got %q", provider)
	}

	allowedIDs, err := parseUserIDs(v.GetString("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	return &Config{
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		GroqAPIKey:             groqAPIKey,
		GroqModel:              v.GetString("GROQ_MODEL"),
		Provider:               provider,
		DatabasePath:           v.GetString("PLATEWISE_DB_PATH"),
		GenerationTimeout:      v.GetDuration("GENERATION_TIMEOUT"),
		SignupCredits:          v.GetInt("SIGNUP_CREDITS"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
		PaymentAPIURL:          v.GetString("PAYMENT_API_URL"),
		PaymentAPIKey:          v.GetString("PAYMENT_API_KEY"),
		TelegramBotToken:       v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     v.GetString("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		TelegramAdminID:        v.GetInt64("TELEGRAM_ADMIN_ID"),
	}, nil
}

// parseUserIDs parses a comma-separated list of Telegram user IDs.
func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user ID", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
