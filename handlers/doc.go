// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handler for Slack.

# SlackHandler

One handler serves both kinds of Slack request on POST /slack:

	h := handlers.NewSlackHandler(commandRouter, cfg)
	mux.HandleFunc("POST /slack", middleware.WithLogging(h.Handle))

  - Slash commands arrive as a form with team_id, channel_id, user_id,
    text and response_url.
  - Button clicks arrive as a form with a single payload field holding
    JSON. The clicked button's value becomes the vote.

# Request Flow

	read body (capped)   -> 413 when too large
	verify signature     -> 401 (when a signing secret is configured)
	parse form/payload
	verify token         -> 401 (when no signing secret is configured)
	validate command     -> 400 on missing ids or bad response_url
	dispatch             -> 200 with a Slack message

Every command that gets past validation is answered with 200. Game
errors such as voting before a deal are ephemeral messages, not HTTP
errors, because Slack shows non-200 responses as a generic failure.
*/
package handlers
