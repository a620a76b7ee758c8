// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, command, and response types shared by
every layer of the bot.

# Domain Types

  - Key: (team_id, channel_id) pair that identifies a session
  - Round: one open planning poker round with its votes
  - Vote: a user's estimate, keyed by user ID inside a Round

# Command Types

  - Command: normalized slash command or button interaction

Commands are produced by the slack package and consumed by the commands
package. Struct tags drive validation of required identifiers.

# Response Types

  - Envelope: text plus attachments, classified public or private
  - Attachment: colored block with optional image and buttons
  - Notification: best-effort "someone voted" message
  - ErrorResponse: JSON error body for non-Slack failures

# Constants

Visibility values:

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"

Subcommands:

	deal, open, vote, tally, reveal, reset, help
*/
package models
