// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

	-p                    PORT                  Server port (default 3318)
	-t                    DATABASE_TYPE         memory, sqlite, postgres, badger (default sqlite)
	-d                    DATABASE_URL          DSN, or data directory for badger
	-tokens               SLACK_TOKENS          Comma separated verification tokens
	-signing-secret       SLACK_SIGNING_SECRET  Slack signing secret
	-scale                POKER_SCALE           Allowed votes (default 0,1,2,3,5,8,13,20,40,100)
	-images               IMAGE_BASE_URL        Card images at <base>/<value>.png
	-notify-timeout       NOTIFY_TIMEOUT        Per-message timeout (default 3s)
	-notify-max-inflight  NOTIFY_MAX_INFLIGHT   Concurrent delayed messages (default 16)
	-notify-max-per-sink  NOTIFY_MAX_PER_SINK   Messages per response_url (default 5)
	-log-level            LOG_LEVEL             debug, info, warn, error (default info)
	-log-format           LOG_FORMAT            text or json (default text)

CLI flags take precedence over environment variables. Before the
environment is read, the file named by -env-file (default .env) is
loaded with godotenv if it exists. Variables already set in the
environment are not overwritten by the file.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing and the database type is not memory
  - neither SLACK_SIGNING_SECRET nor SLACK_TOKENS is provided
  - the scale, timeout or numeric limits cannot be parsed
*/
package cliparse
