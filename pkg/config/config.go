package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys understood by the dashboard.
const (
	KeyBaseURL              = "OPENF1_BASE_URL"
	KeySessionKey           = "SESSION_KEY"
	KeyYear                 = "YEAR"
	KeyPollIntervalSecs     = "POLL_INTERVAL_SECONDS"
	KeyStandingsRefreshMins = "STANDINGS_REFRESH_MINUTES"
	KeyWebserverAddress     = "WEBSERVER_ADDRESS"
	KeyTelegramToken        = "TELEGRAM_TOKEN"
	KeySettingsDB           = "SETTINGS_DB"
)

// Load reads .env from the working directory when present. Missing files are
// fine; system env and defaults take over.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of key, or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback when unset, empty,
// or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
