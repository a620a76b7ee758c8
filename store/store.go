// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/pokerbot/models"
)

var (
	ErrNotFound      = errors.New("round not found")
	ErrAlreadyExists = errors.New("round already exists")
)

// Backend names accepted by Open
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeBadger   = "badger"
)

// Store keeps round state per (team, channel). Every operation is atomic
// with respect to a single key, and returned rounds are copies.
type Store interface {
	Exists(ctx context.Context, key models.Key) (bool, error)
	Create(ctx context.Context, key models.Key, subject, responseURL string) (models.Round, error)
	Get(ctx context.Context, key models.Key) (models.Round, error)
	// UpsertVote reports whether the user already had a vote in the round.
	UpsertVote(ctx context.Context, key models.Key, vote models.Vote) (models.Round, bool, error)
	ListVotes(ctx context.Context, key models.Key) ([]models.Vote, error)
	// Take reads and deletes the round in one step.
	Take(ctx context.Context, key models.Key) (models.Round, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key models.Key) error
	Close() error
}

func votesOf(r models.Round) []models.Vote {
	votes := make([]models.Vote, 0, len(r.Votes))
	for _, v := range r.Votes {
		votes = append(votes, v)
	}
	return votes
}

// Open builds the backend named by storeType. dsn is a database URL for
// sqlite and postgres and a directory for badger; it is ignored for memory.
func Open(ctx context.Context, storeType, dsn string) (Store, error) {
	switch storeType {
	case TypeMemory:
		return NewMemory(), nil
	case TypeSQLite, TypePostgres:
		return OpenSQL(ctx, storeType, dsn)
	case TypeBadger:
		return OpenBadger(dsn)
	default:
		return nil, fmt.Errorf("unknown store type %q", storeType)
	}
}
