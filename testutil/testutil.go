// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pokerbot/auth"
	"github.com/danielhkuo/pokerbot/cliparse"
	"github.com/danielhkuo/pokerbot/commands"
	"github.com/danielhkuo/pokerbot/poker"
	"github.com/danielhkuo/pokerbot/store"
)

// TestToken is the verification token accepted by GetTestConfig
const TestToken = "test-token"

// TestSigningSecret is used by GetSignedConfig and SignRequest
const TestSigningSecret = "test-signing-secret"

// SetupTestStore opens a fresh SQLite store in a temp directory with the full schema
func SetupTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "pokerbot.db")
	st, err := store.OpenSQL(context.Background(), store.TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// GetTestConfig returns a standard test configuration using token verification
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseType:      store.TypeSQLite,
		SlackTokens:       []string{TestToken},
		Scale:             poker.DefaultScale,
		NotifyTimeout:     time.Second,
		NotifyMaxInFlight: 4,
		NotifyMaxPerSink:  5,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// GetSignedConfig returns a test configuration using signing secret verification
func GetSignedConfig() cliparse.Config {
	cfg := GetTestConfig()
	cfg.SlackTokens = nil
	cfg.SigningSecret = TestSigningSecret
	return cfg
}

// NewTestRouter builds a command router over st without notifications
func NewTestRouter(st store.Store) *commands.Router {
	return commands.NewRouter(poker.NewEngine(st, poker.DefaultScale, nil), nil)
}

// SlashForm builds a /pokerbot slash command form for a user in channel C1
func SlashForm(token, userID, text string) url.Values {
	return url.Values{
		"token":        {token},
		"team_id":      {"T1"},
		"team_domain":  {"acme"},
		"channel_id":   {"C1"},
		"channel_name": {"planning"},
		"user_id":      {userID},
		"user_name":    {strings.ToLower(userID)},
		"command":      {"/pokerbot"},
		"text":         {text},
	}
}

// ButtonForm builds the interactive payload Slack sends when a vote button is clicked
func ButtonForm(token, userID, value string) url.Values {
	payload := map[string]any{
		"token":       token,
		"callback_id": "pokerbot_attachments",
		"team":        map[string]string{"id": "T1", "domain": "acme"},
		"channel":     map[string]string{"id": "C1", "name": "planning"},
		"user":        map[string]string{"id": userID, "name": strings.ToLower(userID)},
		"actions":     []map[string]string{{"name": "vote", "type": "button", "value": value}},
	}
	raw, _ := json.Marshal(payload)
	return url.Values{"payload": {string(raw)}}
}

// MakeFormRequest creates a form-encoded POST /slack test request
func MakeFormRequest(form url.Values, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/slack", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// MakeSignedRequest creates a POST /slack request signed with secret at now
func MakeSignedRequest(form url.Values, secret string, now time.Time) *http.Request {
	body := form.Encode()
	ts := strconv.FormatInt(now.Unix(), 10)
	return MakeFormRequest(form, map[string]string{
		"X-Slack-Request-Timestamp": ts,
		"X-Slack-Signature":         auth.Sign(secret, ts, []byte(body)),
	})
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
