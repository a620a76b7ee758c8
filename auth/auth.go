// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	slackgo "github.com/slack-go/slack"
)

var (
	ErrInvalidToken     = errors.New("invalid request token")
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrStaleRequest     = errors.New("request timestamp outside allowed window")
)

const (
	SignatureHeader = "X-Slack-Signature"
	TimestampHeader = "X-Slack-Request-Timestamp"
)

// ValidateToken checks a legacy verification token against the allowed set.
// Every candidate is compared so timing does not reveal which one matched.
func ValidateToken(token string, allowed []string) error {
	if token == "" {
		return ErrInvalidToken
	}
	ok := false
	for _, a := range allowed {
		if hmac.Equal([]byte(token), []byte(a)) {
			ok = true
		}
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

// ValidateSignature checks a signed request against the signing secret.
// Timestamps more than five minutes from now are rejected as stale.
func ValidateSignature(secret string, header http.Header, body []byte) error {
	sv, err := slackgo.NewSecretsVerifier(header, secret)
	if errors.Is(err, slackgo.ErrExpiredTimestamp) {
		return ErrStaleRequest
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := sv.Ensure(); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the X-Slack-Signature value Slack would send for body.
func Sign(secret, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("v0:" + timestamp + ":"))
	h.Write(body)
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}
