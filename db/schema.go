// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid for both SQLite and PostgreSQL.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropSchema removes every table created by CreateSchema.
func DropSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS poker_vote`,
		`DROP TABLE IF EXISTS poker_round`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

// One statement per entry; lib/pq and modernc.org/sqlite disagree on
// multi-statement Exec with arguments, so keep them split.
var schema = []string{
	`-- Rounds: at most one per (team, channel)
CREATE TABLE IF NOT EXISTS poker_round (
    id TEXT NOT NULL UNIQUE,
    team_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    response_url TEXT NOT NULL DEFAULT '',
    opened_at TIMESTAMP NOT NULL,
    PRIMARY KEY (team_id, channel_id)
)`,

	`-- Votes: one per user per round
CREATE TABLE IF NOT EXISTS poker_vote (
    team_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    value INTEGER NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    PRIMARY KEY (team_id, channel_id, user_id),
    FOREIGN KEY (team_id, channel_id) REFERENCES poker_round(team_id, channel_id) ON DELETE CASCADE
)`,
}
