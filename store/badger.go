// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/danielhkuo/pokerbot/models"
)

const conflictMaxElapsed = 2 * time.Second

// Badger keeps each round, votes included, as one CBOR value. Badger
// transactions are serializable; a commit that lost a race returns
// ErrConflict and is replayed.
type Badger struct {
	db  *badger.DB
	enc cbor.EncMode
	dec cbor.DecMode
	now func() time.Time
}

// OpenBadger opens a database in dir, or an in-memory one when dir is empty.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	b, err := NewBadger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func NewBadger(db *badger.DB) (*Badger, error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor decoder: %w", err)
	}
	return &Badger{db: db, enc: enc, dec: dec, now: time.Now}, nil
}

func roundKey(key models.Key) []byte {
	return []byte("round:" + key.TeamID + "\x00" + key.ChannelID)
}

// update replays fn while it loses transaction conflicts.
func (b *Badger) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Millisecond
	bo.MaxElapsedTime = conflictMaxElapsed

	return backoff.Retry(func() error {
		err := b.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

func (b *Badger) read(txn *badger.Txn, key models.Key) (models.Round, error) {
	item, err := txn.Get(roundKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Round{}, ErrNotFound
	}
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to read round: %w", err)
	}

	var r models.Round
	err = item.Value(func(val []byte) error {
		return b.dec.Unmarshal(val, &r)
	})
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to decode round: %w", err)
	}
	if r.Votes == nil {
		r.Votes = map[string]models.Vote{}
	}
	return r, nil
}

func (b *Badger) write(txn *badger.Txn, r models.Round) error {
	data, err := b.enc.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode round: %w", err)
	}
	return txn.Set(roundKey(r.Key), data)
}

func (b *Badger) Exists(ctx context.Context, key models.Key) (bool, error) {
	_, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *Badger) Create(ctx context.Context, key models.Key, subject, responseURL string) (models.Round, error) {
	r := models.Round{
		ID:          uuid.NewString(),
		Key:         key,
		Subject:     subject,
		ResponseURL: responseURL,
		OpenedAt:    b.now().UTC(),
		Votes:       map[string]models.Vote{},
	}

	err := b.update(ctx, func(txn *badger.Txn) error {
		_, err := b.read(txn, key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return b.write(txn, r)
	})
	if err != nil {
		return models.Round{}, err
	}
	return r, nil
}

func (b *Badger) Get(_ context.Context, key models.Key) (models.Round, error) {
	var r models.Round
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		r, err = b.read(txn, key)
		return err
	})
	return r, err
}

func (b *Badger) UpsertVote(ctx context.Context, key models.Key, vote models.Vote) (models.Round, bool, error) {
	if vote.CastAt.IsZero() {
		vote.CastAt = b.now().UTC()
	}

	var (
		r        models.Round
		replaced bool
	)
	err := b.update(ctx, func(txn *badger.Txn) error {
		var err error
		r, err = b.read(txn, key)
		if err != nil {
			return err
		}
		_, replaced = r.Votes[vote.UserID]
		r.Votes[vote.UserID] = vote
		return b.write(txn, r)
	})
	if err != nil {
		return models.Round{}, false, err
	}
	return r, replaced, nil
}

func (b *Badger) ListVotes(ctx context.Context, key models.Key) ([]models.Vote, error) {
	r, err := b.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return votesOf(r), nil
}

func (b *Badger) Take(ctx context.Context, key models.Key) (models.Round, error) {
	var r models.Round
	err := b.update(ctx, func(txn *badger.Txn) error {
		var err error
		r, err = b.read(txn, key)
		if err != nil {
			return err
		}
		return txn.Delete(roundKey(key))
	})
	if err != nil {
		return models.Round{}, err
	}
	return r, nil
}

func (b *Badger) Delete(ctx context.Context, key models.Key) error {
	return b.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(roundKey(key))
	})
}

func (b *Badger) Close() error {
	return b.db.Close()
}
