// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestValidateToken(t *testing.T) {
	allowed := []string{"tok-one", "tok-two"}

	tests := []struct {
		name    string
		token   string
		allowed []string
		wantErr bool
	}{
		{"first token", "tok-one", allowed, false},
		{"second token", "tok-two", allowed, false},
		{"unknown token", "tok-three", allowed, true},
		{"empty token", "", allowed, true},
		{"prefix only", "tok", allowed, true},
		{"nothing configured", "tok-one", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.token, tt.allowed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSign(t *testing.T) {
	sig := Sign("secret", "1531420618", []byte("token=x&team_id=T1"))

	if !strings.HasPrefix(sig, "v0=") {
		t.Errorf("Sign() = %q, want v0= prefix", sig)
	}
	// "v0=" plus 64 hex chars of SHA-256
	if len(sig) != 67 {
		t.Errorf("Sign() length = %d, want 67", len(sig))
	}

	if Sign("secret", "1531420618", []byte("token=x&team_id=T1")) != sig {
		t.Error("Sign() should be deterministic")
	}
	if Sign("other", "1531420618", []byte("token=x&team_id=T1")) == sig {
		t.Error("different secrets should produce different signatures")
	}
	if Sign("secret", "1531420619", []byte("token=x&team_id=T1")) == sig {
		t.Error("different timestamps should produce different signatures")
	}
}

func signedHeader(timestamp, signature string) http.Header {
	h := http.Header{}
	if timestamp != "" {
		h.Set(TimestampHeader, timestamp)
	}
	if signature != "" {
		h.Set(SignatureHeader, signature)
	}
	return h
}

func TestValidateSignature(t *testing.T) {
	const secret = "8f742231b10e8888abcd99yyyzzz85a5"
	now := time.Now()
	body := []byte("command=%2Fpokerbot&text=deal")
	ts := strconv.FormatInt(now.Unix(), 10)
	good := Sign(secret, ts, body)

	old := strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)
	future := strconv.FormatInt(now.Add(10*time.Minute).Unix(), 10)
	edge := strconv.FormatInt(now.Add(-3*time.Minute).Unix(), 10)

	tests := []struct {
		name   string
		header http.Header
		body   []byte
		want   error
	}{
		{"valid", signedHeader(ts, good), body, nil},
		{"within window", signedHeader(edge, Sign(secret, edge, body)), body, nil},
		{"tampered body", signedHeader(ts, good), []byte("command=%2Fpokerbot&text=reset"), ErrInvalidSignature},
		{"wrong secret", signedHeader(ts, Sign("nope", ts, body)), body, ErrInvalidSignature},
		{"missing signature", signedHeader(ts, ""), body, ErrInvalidSignature},
		{"missing timestamp", signedHeader("", good), body, ErrInvalidSignature},
		{"not hex", signedHeader(ts, "v0=zzzz"), body, ErrInvalidSignature},
		{"stale", signedHeader(old, Sign(secret, old, body)), body, ErrStaleRequest},
		{"from the future", signedHeader(future, Sign(secret, future, body)), body, ErrStaleRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignature(secret, tt.header, tt.body)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateSignature() error = %v, want %v", err, tt.want)
			}
		})
	}
}
