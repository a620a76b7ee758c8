// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package slack translates between Slack's wire format and the bot's models.
The wire types come from github.com/slack-go/slack.

# Inbound

Slash commands arrive as form fields; button clicks arrive as a JSON
InteractionCallback in the "payload" form field. ParseRequest handles
both:

	cmd, token, err := slack.ParseRequest(r)

The verification token is returned even on failure so the caller can
authenticate before reporting a malformed request.

# Outbound

	msg := slack.Render(envelope)

Public envelopes become "in_channel" messages, private ones "ephemeral".
Messages never replace the original, matching slash command defaults.
Buttons are legacy attachment actions tagged with CallbackID.
*/
package slack
