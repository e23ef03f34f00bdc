package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bidwatch/internal/window"
)

var validate = validator.New()

// Validate checks the merged config. Called after env merge and defaults so
// it sees the effective values, not the raw file.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config: field %s fails %q", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}

	// Batch hours must also be strictly ascending; the struct tags only
	// cover the per-element range.
	if err := window.Validate(c.Batch.Hours); err != nil {
		return fmt.Errorf("config: batch.hours: %w", err)
	}

	if c.Feed.ServiceKey == "" {
		return errors.New("config: feed.service_key is required (file or SERVICE_KEY env)")
	}

	switch strings.ToLower(strings.TrimSpace(c.Messenger.Driver)) {
	case "", "solapi":
		s := c.Messenger.Solapi
		if s.APIKey == "" || s.APISecret == "" || s.Sender == "" {
			return errors.New("config: solapi api_key/api_secret/sender are required (file or SOLAPI_* env)")
		}
	case "telegram":
		if c.Messenger.Telegram.Token == "" {
			return errors.New("config: telegram token is required (file or TELEGRAM_TOKEN env)")
		}
	}

	if tz := strings.TrimSpace(c.Batch.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("config: batch.timezone: %w", err)
		}
	}
	return nil
}
