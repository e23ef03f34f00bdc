package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	logx "bidwatch/pkg/logx"
)

const (
	solapiBaseURL  = "https://api.solapi.com"
	solapiSendPath = "/messages/v4/send"

	defaultSendTimeout = 10 * time.Second
)

type solapiMessenger struct {
	cfg  SolapiConfig
	http *resty.Client
	log  logx.Logger
}

func newSolapi(cfg Config, log logx.Logger) (*solapiMessenger, error) {
	sc := cfg.Solapi
	if sc.APIKey == "" || sc.APISecret == "" {
		return nil, errors.New("solapi api key/secret are required")
	}
	if sc.Sender == "" {
		return nil, errors.New("solapi sender number is required")
	}
	if sc.BaseURL == "" {
		sc.BaseURL = solapiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	hc := resty.New().
		SetBaseURL(sc.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &solapiMessenger{cfg: sc, http: hc, log: log}, nil
}

func (m *solapiMessenger) Send(ctx context.Context, to, text string) (Receipt, error) {
	auth, err := m.authHeader(time.Now())
	if err != nil {
		return Receipt{}, err
	}

	var out struct {
		GroupID   string `json:"groupId"`
		GroupInfo struct {
			GroupID string `json:"groupId"`
		} `json:"groupInfo"`
	}
	resp, err := m.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetBody(map[string]any{
			"message": map[string]string{
				"from": m.cfg.Sender,
				"to":   to,
				"text": text,
			},
		}).
		SetResult(&out).
		Post(solapiSendPath)
	if err != nil {
		return Receipt{}, fmt.Errorf("solapi send: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return Receipt{}, fmt.Errorf("solapi send: status %d: %s", resp.StatusCode(), resp.String())
	}

	groupID := out.GroupID
	if groupID == "" {
		groupID = out.GroupInfo.GroupID
	}
	return Receipt{GroupID: groupID}, nil
}

// authHeader builds the provider's HMAC-SHA256 request signature.
func (m *solapiMessenger) authHeader(now time.Time) (string, error) {
	date := now.UTC().Format(time.RFC3339)
	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(saltBytes)

	mac := hmac.New(sha256.New, []byte(m.cfg.APISecret))
	mac.Write([]byte(date + salt))
	sig := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		m.cfg.APIKey, date, salt, sig), nil
}
