// Package messenger delivers one outbound message per call. The engine only
// consumes success/failure; delivery identifiers are log-only.
package messenger

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "bidwatch/pkg/logx"
)

// Receipt is the provider's delivery/group identifier. Log-only.
type Receipt struct {
	GroupID string
}

// Messenger sends one message to one recipient. A single attempt, no retry:
// the caller decides what a failed send means.
type Messenger interface {
	Send(ctx context.Context, to, text string) (Receipt, error)
}

// Config selects and configures the delivery channel.
//
// Driver values:
//   - "solapi" (default): SMS via the Solapi/CoolSMS message API
//   - "telegram": a Telegram chat instead of SMS (the user record's phone
//     field holds the chat ID); useful without an SMS account
type Config struct {
	Driver  string
	Timeout time.Duration

	Solapi   SolapiConfig
	Telegram TelegramConfig
}

type SolapiConfig struct {
	APIKey    string
	APISecret string
	Sender    string // sender phone number registered with the provider
	BaseURL   string // override for tests; defaults to the public API
}

type TelegramConfig struct {
	Token string
}

// Open initializes the configured messenger.
func Open(cfg Config, log logx.Logger) (Messenger, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "solapi":
		return newSolapi(cfg, log)
	case "telegram":
		return newTelegram(cfg, log)
	default:
		return nil, errors.New("unknown messenger driver: " + cfg.Driver)
	}
}
