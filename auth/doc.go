// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies that requests really come from Slack.

# Signing Secret

Preferred. Slack signs every request with HMAC-SHA256:

	v0=hex(HMAC(secret, "v0:" + timestamp + ":" + body))

	err := auth.ValidateSignature(secret, r.Header, body)

Verification is delegated to slack-go's SecretsVerifier. Requests whose
X-Slack-Request-Timestamp is more than five minutes from now return
ErrStaleRequest; all other failures return ErrInvalidSignature.

Sign produces the header value, for tests and local tooling.

# Verification Tokens

Legacy. The request carries a token that must match one of the
configured values:

	err := auth.ValidateToken(token, cfg.SlackTokens)

Several tokens may be configured so one deployment can serve several
workspaces. Comparison is constant time.
*/
package auth
