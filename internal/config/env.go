package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv loads a .env file into the process environment if one exists.
// A missing file is not an error; the deployment may use real env vars.
func LoadDotenv() {
	_ = godotenv.Load()
}

// mergeEnv overlays credential env vars onto the file config. Env wins, so
// secrets can stay out of the config file entirely.
func (c *Config) mergeEnv() {
	if v := os.Getenv("SERVICE_KEY"); v != "" {
		c.Feed.ServiceKey = v
	}
	if v := os.Getenv("SOLAPI_API_KEY"); v != "" {
		c.Messenger.Solapi.APIKey = v
	}
	if v := os.Getenv("SOLAPI_API_SECRET"); v != "" {
		c.Messenger.Solapi.APISecret = v
	}
	if v := os.Getenv("SOLAPI_SENDER"); v != "" {
		c.Messenger.Solapi.Sender = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Messenger.Telegram.Token = v
	}
}
