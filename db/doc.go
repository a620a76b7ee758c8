// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL session stores.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables.
The same statements run on SQLite (modernc.org/sqlite) and PostgreSQL
(lib/pq).

# Tables

  - poker_round: one open round per (team_id, channel_id)
  - poker_vote: one vote per user per round

# Relationships

	poker_round 1──* poker_vote

Votes reference their round with ON DELETE CASCADE. The store also
deletes votes explicitly, since SQLite only enforces foreign keys when
the foreign_keys pragma is on.
*/
package db
