// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pokerbot server.

Pokerbot runs planning poker rounds in Slack channels. A user deals a
round with /pokerbot deal, everyone votes privately with buttons or
/pokerbot vote <n>, and /pokerbot reveal shows the results to the
channel and closes the round.

# Starting the Server

	SLACK_SIGNING_SECRET=... DATABASE_URL=file:pokerbot.db go run .

Or with flags:

	go run . -p 3318 -t badger -d ./data -signing-secret ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - SLACK_SIGNING_SECRET (-signing-secret) or SLACK_TOKENS (-tokens)
  - DATABASE_URL (-d), unless DATABASE_TYPE is memory

See package cliparse for the full list.

# Architecture

  - poker: round engine, vote scale and outcome classification
  - store: session storage (memory, SQLite, PostgreSQL, Badger)
  - commands: subcommand dispatch and message texts
  - notify: best-effort delayed messages to Slack response URLs
  - slack: Slack wire format in both directions
  - handlers, router, middleware: HTTP surface
  - auth: signing secret and token verification
  - db: SQL schema
  - models: shared types
  - cliparse: configuration parsing

On SIGINT or SIGTERM the server stops accepting requests, drains
pending notifications and closes the store.
*/
package main
