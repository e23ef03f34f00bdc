package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	logx "bidwatch/pkg/logx"
)

func newTestSolapi(t *testing.T) *solapiMessenger {
	t.Helper()
	m, err := newSolapi(Config{
		Driver: "solapi",
		Solapi: SolapiConfig{
			APIKey:    "key",
			APISecret: "secret",
			Sender:    "0212345678",
			BaseURL:   "https://sms.test",
		},
	}, logx.Nop())
	if err != nil {
		t.Fatalf("newSolapi error: %v", err)
	}
	httpmock.ActivateNonDefault(m.http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return m
}

func TestSolapiSend(t *testing.T) {
	m := newTestSolapi(t)

	var gotAuth string
	var gotBody map[string]map[string]string
	httpmock.RegisterResponder(http.MethodPost, "https://sms.test/messages/v4/send",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			b, _ := io.ReadAll(req.Body)
			if err := json.Unmarshal(b, &gotBody); err != nil {
				t.Fatalf("request body not json: %v", err)
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"groupInfo": map[string]any{"groupId": "G-123"},
			})
		})

	r, err := m.Send(context.Background(), "01012345678", "[입찰 공고 알림]\n테스트")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if r.GroupID != "G-123" {
		t.Fatalf("GroupID = %q, want G-123", r.GroupID)
	}

	if !strings.HasPrefix(gotAuth, "HMAC-SHA256 apiKey=key, date=") {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	msg := gotBody["message"]
	if msg["from"] != "0212345678" || msg["to"] != "01012345678" {
		t.Fatalf("unexpected message envelope: %v", msg)
	}
}

func TestSolapiSendFailureStatus(t *testing.T) {
	m := newTestSolapi(t)

	httpmock.RegisterResponder(http.MethodPost, "https://sms.test/messages/v4/send",
		httpmock.NewStringResponder(401, `{"errorCode":"InvalidAPIKey"}`))

	if _, err := m.Send(context.Background(), "01012345678", "x"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestOpenRequiresCredentials(t *testing.T) {
	t.Parallel()
	_, err := Open(Config{Driver: "solapi"}, logx.Nop())
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	_, err = Open(Config{Driver: "carrier-pigeon"}, logx.Nop())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
