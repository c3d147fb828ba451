package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	BotToken        string
	SupportChatID   int64
	DBPath          string
	TruffeToken     string
	TruffeBaseURL   string
	CalendarID      string
	CalendarToken   string
	CalendarBaseURL string
	DisplayTimezone string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		SupportChatID:   getEnvInt64("SUPPORT_CHAT_ID", 0),
		DBPath:          getEnv("DB_PATH", "logibot.db"),
		TruffeToken:     getEnv("TRUFFE_TOKEN", ""),
		TruffeBaseURL:   getEnv("TRUFFE_BASE_URL", "https://truffe2.agepoly.ch"),
		CalendarID:      getEnv("CALENDAR_ID", ""),
		CalendarToken:   getEnv("CALENDAR_TOKEN", ""),
		CalendarBaseURL: getEnv("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Europe/Zurich"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
