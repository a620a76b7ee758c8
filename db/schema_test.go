// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func tableCount(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('poker_round', 'poker_vote')`).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count tables: %v", err)
	}
	return n
}

func TestCreateSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := CreateSchema(ctx, conn); err != nil {
			t.Fatalf("CreateSchema() call %d: %v", i+1, err)
		}
	}
	if got := tableCount(t, conn); got != 2 {
		t.Errorf("Expected 2 tables, got %d", got)
	}
}

func TestDropSchema(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	if err := CreateSchema(ctx, conn); err != nil {
		t.Fatalf("CreateSchema() error: %v", err)
	}
	_, err := conn.Exec(`INSERT INTO poker_round (id, team_id, channel_id, opened_at)
		VALUES ('r1', 'T1', 'C1', CURRENT_TIMESTAMP)`)
	if err != nil {
		t.Fatalf("Failed to insert round: %v", err)
	}

	if err := DropSchema(ctx, conn); err != nil {
		t.Fatalf("DropSchema() error: %v", err)
	}
	if got := tableCount(t, conn); got != 0 {
		t.Errorf("Expected no tables after drop, got %d", got)
	}

	// Dropping twice is fine, and the schema can be recreated empty
	if err := DropSchema(ctx, conn); err != nil {
		t.Fatalf("second DropSchema() error: %v", err)
	}
	if err := CreateSchema(ctx, conn); err != nil {
		t.Fatalf("CreateSchema() after drop: %v", err)
	}
	var rounds int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM poker_round`).Scan(&rounds); err != nil {
		t.Fatalf("Failed to count rounds: %v", err)
	}
	if rounds != 0 {
		t.Errorf("Expected empty poker_round, got %d rows", rounds)
	}
}
