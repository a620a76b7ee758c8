// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pokerbot/db"
	"github.com/danielhkuo/pokerbot/models"
)

type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

const pingMaxElapsed = 30 * time.Second

// SQL stores rounds in poker_round/poker_vote. Every mutation runs in a
// transaction; on PostgreSQL the round row is locked with FOR UPDATE, on
// SQLite writers are serialized by a single connection.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OpenSQL connects to the database, waits for it to answer and creates the schema.
func OpenSQL(ctx context.Context, storeType, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("database URL required")
	}

	driver, dialect := "sqlite", DialectSQLite
	if storeType == TypePostgres {
		driver, dialect = "postgres", DialectPostgres
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = pingMaxElapsed
	err = backoff.RetryNotify(func() error {
		return conn.PingContext(ctx)
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		slog.Warn("database ping failed, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQL(conn, dialect), nil
}

// NewSQL wraps an open connection whose schema already exists.
func NewSQL(conn *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: conn, dialect: dialect, now: time.Now}
}

func (s *SQL) forUpdate() string {
	if s.dialect == DialectPostgres {
		return " FOR UPDATE OF r"
	}
	return ""
}

func (s *SQL) Exists(ctx context.Context, key models.Key) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poker_round WHERE team_id = $1 AND channel_id = $2
		)
	`, key.TeamID, key.ChannelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check round: %w", err)
	}
	return exists, nil
}

func (s *SQL) Create(ctx context.Context, key models.Key, subject, responseURL string) (models.Round, error) {
	r := models.Round{
		ID:          uuid.NewString(),
		Key:         key,
		Subject:     subject,
		ResponseURL: responseURL,
		OpenedAt:    s.now().UTC(),
		Votes:       map[string]models.Vote{},
	}

	// The primary key decides the race between two concurrent opens
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO poker_round (id, team_id, channel_id, subject, response_url, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, channel_id) DO NOTHING
	`, r.ID, key.TeamID, key.ChannelID, subject, responseURL, r.OpenedAt)
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to insert round: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to insert round: %w", err)
	}
	if n == 0 {
		return models.Round{}, ErrAlreadyExists
	}
	return r, nil
}

func (s *SQL) Get(ctx context.Context, key models.Key) (models.Round, error) {
	return s.load(ctx, s.db, key, "")
}

func (s *SQL) UpsertVote(ctx context.Context, key models.Key, vote models.Vote) (models.Round, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Round{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.load(ctx, tx, key, s.forUpdate()); err != nil {
		return models.Round{}, false, err
	}

	var replaced bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poker_vote
			WHERE team_id = $1 AND channel_id = $2 AND user_id = $3
		)
	`, key.TeamID, key.ChannelID, vote.UserID).Scan(&replaced)
	if err != nil {
		return models.Round{}, false, fmt.Errorf("failed to check vote: %w", err)
	}

	if vote.CastAt.IsZero() {
		vote.CastAt = s.now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO poker_vote (team_id, channel_id, user_id, display_name, value, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, channel_id, user_id) DO UPDATE
		SET display_name = excluded.display_name, value = excluded.value, cast_at = excluded.cast_at
	`, key.TeamID, key.ChannelID, vote.UserID, vote.DisplayName, vote.Value, vote.CastAt)
	if err != nil {
		return models.Round{}, false, fmt.Errorf("failed to upsert vote: %w", err)
	}

	r, err := s.load(ctx, tx, key, "")
	if err != nil {
		return models.Round{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return models.Round{}, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r, replaced, nil
}

func (s *SQL) ListVotes(ctx context.Context, key models.Key) ([]models.Vote, error) {
	r, err := s.load(ctx, s.db, key, "")
	if err != nil {
		return nil, err
	}
	return votesOf(r), nil
}

func (s *SQL) Take(ctx context.Context, key models.Key) (models.Round, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := s.load(ctx, tx, key, s.forUpdate())
	if err != nil {
		return models.Round{}, err
	}
	if err := deleteRound(ctx, tx, key); err != nil {
		return models.Round{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Round{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r, nil
}

func (s *SQL) Delete(ctx context.Context, key models.Key) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRound(ctx, tx, key); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// DB exposes the connection for tests and schema tooling.
func (s *SQL) DB() *sql.DB {
	return s.db
}

func deleteRound(ctx context.Context, tx *sql.Tx, key models.Key) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM poker_vote WHERE team_id = $1 AND channel_id = $2
	`, key.TeamID, key.ChannelID); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM poker_round WHERE team_id = $1 AND channel_id = $2
	`, key.TeamID, key.ChannelID); err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return nil
}

// load reads a round and its votes in a single statement so the result is
// a consistent snapshot even outside a transaction.
func (s *SQL) load(ctx context.Context, q querier, key models.Key, lock string) (models.Round, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT r.id, r.subject, r.response_url, r.opened_at,
		       v.user_id, v.display_name, v.value, v.cast_at
		FROM poker_round r
		LEFT JOIN poker_vote v
		  ON v.team_id = r.team_id AND v.channel_id = r.channel_id
		WHERE r.team_id = $1 AND r.channel_id = $2`+lock,
		key.TeamID, key.ChannelID)
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to query round: %w", err)
	}
	defer rows.Close()

	r := models.Round{Key: key, Votes: map[string]models.Vote{}}
	found := false
	for rows.Next() {
		var (
			userID, displayName sql.NullString
			value               sql.NullInt64
			castAt              sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Subject, &r.ResponseURL, &r.OpenedAt,
			&userID, &displayName, &value, &castAt); err != nil {
			return models.Round{}, fmt.Errorf("failed to scan round: %w", err)
		}
		found = true
		if !userID.Valid {
			continue
		}
		r.Votes[userID.String] = models.Vote{
			UserID:      userID.String,
			DisplayName: displayName.String,
			Value:       int(value.Int64),
			CastAt:      castAt.Time.UTC(),
		}
	}
	if err := rows.Err(); err != nil {
		return models.Round{}, fmt.Errorf("failed to read round: %w", err)
	}
	if !found {
		return models.Round{}, ErrNotFound
	}
	r.OpenedAt = r.OpenedAt.UTC()
	return r, nil
}
