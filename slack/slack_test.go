// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slack

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/pokerbot/models"
)

func slashForm(text string) url.Values {
	return url.Values{
		"token":        {"tok"},
		"team_id":      {"T1"},
		"team_domain":  {"acme"},
		"channel_id":   {"C1"},
		"channel_name": {"general"},
		"user_id":      {"U1"},
		"user_name":    {"alice"},
		"command":      {"/pokerbot"},
		"text":         {text},
		"response_url": {"https://hooks.slack.com/commands/1"},
	}
}

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest("POST", "/slack", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseRequest_Slash(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		subcommand string
		args       []string
	}{
		{"deal with subject", "deal Story 42", "deal", []string{"Story", "42"}},
		{"vote", "vote 5", "vote", []string{"5"}},
		{"uppercase subcommand", "REVEAL", "reveal", []string{}},
		{"extra whitespace", "  tally   ", "tally", []string{}},
		{"empty text", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, token, err := ParseRequest(formRequest(slashForm(tt.text)))
			if err != nil {
				t.Fatalf("ParseRequest() error = %v", err)
			}
			if token != "tok" {
				t.Errorf("token = %q, want %q", token, "tok")
			}
			if cmd.Subcommand != tt.subcommand {
				t.Errorf("Subcommand = %q, want %q", cmd.Subcommand, tt.subcommand)
			}
			if len(cmd.Args) != len(tt.args) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.args)
			}
			for i := range tt.args {
				if cmd.Args[i] != tt.args[i] {
					t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], tt.args[i])
				}
			}
			if cmd.Key() != (models.Key{TeamID: "T1", ChannelID: "C1"}) {
				t.Errorf("Key() = %v", cmd.Key())
			}
			if cmd.DisplayName() != "alice" {
				t.Errorf("DisplayName() = %q, want alice", cmd.DisplayName())
			}
			if cmd.ResponseURL != "https://hooks.slack.com/commands/1" {
				t.Errorf("ResponseURL = %q", cmd.ResponseURL)
			}
		})
	}
}

func TestParseRequest_MissingField(t *testing.T) {
	for _, field := range []string{"team_id", "channel_id", "user_id"} {
		t.Run(field, func(t *testing.T) {
			form := slashForm("tally")
			form.Del(field)

			_, token, err := ParseRequest(formRequest(form))
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("expected ErrMissingField, got %v", err)
			}
			if err != nil && !strings.Contains(err.Error(), field) {
				t.Errorf("error %q should name %s", err, field)
			}
			if token != "tok" {
				t.Errorf("token should survive a parse failure, got %q", token)
			}
		})
	}
}

const buttonPayload = `{
	"type": "interactive_message",
	"token": "tok",
	"callback_id": "pokerbot_attachments",
	"team": {"id": "T1", "domain": "acme"},
	"channel": {"id": "C1", "name": "general"},
	"user": {"id": "U1", "name": "alice"},
	"actions": [{"name": "vote", "type": "button", "value": "8"}],
	"response_url": "https://hooks.slack.com/actions/1"
}`

func TestParseRequest_Interactive(t *testing.T) {
	cmd, token, err := ParseRequest(formRequest(url.Values{"payload": {buttonPayload}}))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if token != "tok" {
		t.Errorf("token = %q", token)
	}
	if cmd.Subcommand != models.SubcommandVote {
		t.Errorf("Subcommand = %q, want vote", cmd.Subcommand)
	}
	if len(cmd.Args) != 1 || cmd.Args[0] != "8" {
		t.Errorf("Args = %v, want [8]", cmd.Args)
	}
	if cmd.UserID != "U1" || cmd.ChannelID != "C1" || cmd.TeamID != "T1" {
		t.Errorf("unexpected identifiers: %+v", cmd)
	}
	if cmd.UserName != "alice" || cmd.ChannelName != "general" || cmd.TeamDomain != "acme" {
		t.Errorf("unexpected names: %+v", cmd)
	}
	if cmd.ResponseURL != "https://hooks.slack.com/actions/1" {
		t.Errorf("ResponseURL = %q", cmd.ResponseURL)
	}
}

func TestParseRequest_InteractiveErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"not json", "{", ErrInvalidPayload},
		{"no actions", `{"token":"tok","actions":[]}`, ErrNoAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRequest(formRequest(url.Values{"payload": {tt.payload}}))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	env := models.Envelope{
		Visibility: models.VisibilityPublic,
		Text:       "*The votes are in!*",
		Attachments: []models.Attachment{
			{Text: "*3* - alice", Color: models.ColorWarning},
			{Text: "*8* - bob", Color: models.ColorGood, ImageURL: "https://img.example.com/8.png", Thumbnail: true},
			{Text: "Vote", Actions: []models.Action{{Name: "vote", Text: "5", Value: "5", Style: "primary"}}},
		},
	}

	msg := Render(env)
	if msg.ResponseType != ResponseTypeInChannel {
		t.Errorf("ResponseType = %q, want in_channel", msg.ResponseType)
	}
	if msg.ReplaceOriginal {
		t.Error("ReplaceOriginal should be false")
	}
	if len(msg.Attachments) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(msg.Attachments))
	}
	if msg.Attachments[1].ThumbURL != "https://img.example.com/8.png" || msg.Attachments[1].ImageURL != "" {
		t.Errorf("thumbnail should use thumb_url, got %+v", msg.Attachments[1])
	}
	if string(msg.Attachments[2].Actions[0].Type) != "button" {
		t.Errorf("action type = %q, want button", msg.Attachments[2].Actions[0].Type)
	}
	for _, a := range msg.Attachments {
		if a.CallbackID != CallbackID {
			t.Errorf("CallbackID = %q", a.CallbackID)
		}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"response_type":"in_channel"`, `"callback_id":"pokerbot_attachments"`, `"thumb_url":"https://img.example.com/8.png"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("JSON missing %s: %s", want, body)
		}
	}
}

func TestRender_Private(t *testing.T) {
	msg := Render(models.Envelope{Visibility: models.VisibilityPrivate, Text: "hi"})
	if msg.ResponseType != ResponseTypeEphemeral {
		t.Errorf("ResponseType = %q, want ephemeral", msg.ResponseType)
	}
	if msg.Attachments != nil {
		t.Errorf("expected no attachments, got %v", msg.Attachments)
	}
}

func TestRenderNotification(t *testing.T) {
	msg := RenderNotification(models.Notification{Sink: "https://x", Text: "alice voted"})
	if msg.Text != "alice voted" || msg.ResponseType != ResponseTypeInChannel {
		t.Errorf("unexpected message: %+v", msg)
	}
}
