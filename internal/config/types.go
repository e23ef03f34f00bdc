package config

import (
	"time"

	"bidwatch/internal/feed"
	"bidwatch/internal/ledger"
	"bidwatch/internal/messenger"
	logx "bidwatch/pkg/logx"
)

// Config is the whole bidwatch configuration file (YAML or JSON).
//
// Credentials may be left out of the file and supplied via environment
// variables instead (see env.go); env always wins.
type Config struct {
	Feed      FeedConfig      `json:"feed" validate:"required"`
	Messenger MessengerConfig `json:"messenger"`
	Batch     BatchConfig     `json:"batch"`
	Ledger    LedgerConfig    `json:"ledger"`
	Logging   LoggingConfig   `json:"logging"`

	// UsersFile points at the recipients file, re-read every run.
	UsersFile string `json:"users_file,omitempty"`
}

type FeedConfig struct {
	BaseURL    string `json:"base_url,omitempty" validate:"omitempty,url"`
	ServiceKey string `json:"service_key,omitempty"`
	PageSize   int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=999"`
	// Timeout is a Go duration string (e.g. "10s").
	Timeout string `json:"timeout,omitempty"`
}

type MessengerConfig struct {
	// Driver selects the delivery channel: "solapi" (default) or "telegram".
	Driver  string `json:"driver,omitempty" validate:"omitempty,oneof=solapi telegram"`
	Timeout string `json:"timeout,omitempty"`

	Solapi   SolapiConfig   `json:"solapi,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
}

type SolapiConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token,omitempty"`
}

type BatchConfig struct {
	// Hours are the daily batch hours, strictly ascending, e.g. [9,12,15,18].
	Hours []int `json:"hours,omitempty" validate:"omitempty,dive,min=0,max=23"`

	// ResultLimit caps per-item notifications per condition (default 5).
	ResultLimit int `json:"result_limit,omitempty" validate:"omitempty,min=1"`

	// RatePerSec throttles outbound messages. 0 disables throttling.
	RatePerSec int `json:"rate_per_sec,omitempty" validate:"omitempty,min=0"`

	// Timezone applies to serve-mode cron triggers (default: local time).
	Timezone string `json:"timezone,omitempty"`
}

type LedgerConfig struct {
	Driver      string `json:"driver,omitempty" validate:"omitempty,oneof=file sqlite sqlite3"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console *bool         `json:"console,omitempty"` // nil means enabled
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Defaults, matching the reference deployment.
const (
	DefaultBaseURL    = "https://apis.data.go.kr/1230000"
	DefaultUsersFile  = "./users.json"
	DefaultLedgerPath = "./sent_notifications.json"
)

var DefaultBatchHours = []int{9, 12, 15, 18}

// applyDefaults fills the blanks after decode + env merge.
func (c *Config) applyDefaults() {
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultBaseURL
	}
	if len(c.Batch.Hours) == 0 {
		c.Batch.Hours = append([]int(nil), DefaultBatchHours...)
	}
	if c.UsersFile == "" {
		c.UsersFile = DefaultUsersFile
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = DefaultLedgerPath
	}
}

// FeedSettings converts to the feed client's config.
func (c *Config) FeedSettings() (feed.Config, error) {
	timeout, err := ParseDurationField("feed.timeout", c.Feed.Timeout)
	if err != nil {
		return feed.Config{}, err
	}
	return feed.Config{
		BaseURL:    c.Feed.BaseURL,
		ServiceKey: c.Feed.ServiceKey,
		PageSize:   c.Feed.PageSize,
		Timeout:    timeout,
	}, nil
}

// MessengerSettings converts to the messenger config.
func (c *Config) MessengerSettings() (messenger.Config, error) {
	timeout, err := ParseDurationField("messenger.timeout", c.Messenger.Timeout)
	if err != nil {
		return messenger.Config{}, err
	}
	return messenger.Config{
		Driver:  c.Messenger.Driver,
		Timeout: timeout,
		Solapi: messenger.SolapiConfig{
			APIKey:    c.Messenger.Solapi.APIKey,
			APISecret: c.Messenger.Solapi.APISecret,
			Sender:    c.Messenger.Solapi.Sender,
		},
		Telegram: messenger.TelegramConfig{Token: c.Messenger.Telegram.Token},
	}, nil
}

// LedgerSettings converts to the ledger store config.
func (c *Config) LedgerSettings() (ledger.Config, error) {
	busy, err := ParseDurationField("ledger.busy_timeout", c.Ledger.BusyTimeout)
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		Driver:      c.Ledger.Driver,
		Path:        c.Ledger.Path,
		BusyTimeout: busy,
	}, nil
}

// LogSettings converts to the logx config.
func (c *Config) LogSettings() logx.Config {
	console := true
	if c.Logging.Console != nil {
		console = *c.Logging.Console
	}
	return logx.Config{
		Level:   c.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

// ParseDurationField parses an optional Go duration string field.
func ParseDurationField(path, raw string) (time.Duration, error) {
	return parseDuration(path, raw)
}
