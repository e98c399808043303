package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration, read once at startup and
// passed by reference into the components that need each field. There is
// no runtime reconfiguration.
type Config struct {
	// WhatsApp Business Cloud API
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	VerifyToken           string

	// Generative fallback
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Optional Telegram ops alerts
	TelegramAlertToken  string
	TelegramAlertChatID int64

	// Server
	Port  int
	Debug bool

	// Optional override for the embedded rule table
	TemplatesPath string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", "740549401652542"),
		VerifyToken:           getEnv("VERIFY_TOKEN", "resilient_equity_verify_token"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAITimeout: time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 8)) * time.Second,

		TelegramAlertToken:  getEnv("TELEGRAM_ALERT_TOKEN", ""),
		TelegramAlertChatID: getEnvInt64("TELEGRAM_ALERT_CHAT_ID", 0),

		Port:  getEnvInt("PORT", 5000),
		Debug: getEnvBool("DEBUG", false),

		TemplatesPath: getEnv("TEMPLATES_PATH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
