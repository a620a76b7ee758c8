// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pokerbot/models"
)

const shardCount = 32

type shard struct {
	mu     sync.Mutex
	rounds map[models.Key]*models.Round
}

// Memory is a process-local Store. Keys are spread over shards so that
// different channels rarely share a lock. State is lost on restart.
type Memory struct {
	seed   maphash.Seed
	shards [shardCount]shard
	now    func() time.Time
}

func NewMemory() *Memory {
	m := &Memory{seed: maphash.MakeSeed(), now: time.Now}
	for i := range m.shards {
		m.shards[i].rounds = make(map[models.Key]*models.Round)
	}
	return m
}

func (m *Memory) shardFor(key models.Key) *shard {
	var h maphash.Hash
	h.SetSeed(m.seed)
	h.WriteString(key.TeamID)
	h.WriteByte(0)
	h.WriteString(key.ChannelID)
	return &m.shards[h.Sum64()%shardCount]
}

func (m *Memory) Exists(_ context.Context, key models.Key) (bool, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rounds[key]
	return ok, nil
}

func (m *Memory) Create(_ context.Context, key models.Key, subject, responseURL string) (models.Round, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[key]; ok {
		return models.Round{}, ErrAlreadyExists
	}
	r := &models.Round{
		ID:          uuid.NewString(),
		Key:         key,
		Subject:     subject,
		ResponseURL: responseURL,
		OpenedAt:    m.now().UTC(),
		Votes:       map[string]models.Vote{},
	}
	s.rounds[key] = r
	return r.Clone(), nil
}

func (m *Memory) Get(_ context.Context, key models.Key) (models.Round, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[key]
	if !ok {
		return models.Round{}, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) UpsertVote(_ context.Context, key models.Key, vote models.Vote) (models.Round, bool, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[key]
	if !ok {
		return models.Round{}, false, ErrNotFound
	}
	if vote.CastAt.IsZero() {
		vote.CastAt = m.now().UTC()
	}
	_, replaced := r.Votes[vote.UserID]
	r.Votes[vote.UserID] = vote
	return r.Clone(), replaced, nil
}

func (m *Memory) ListVotes(_ context.Context, key models.Key) ([]models.Vote, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[key]
	if !ok {
		return nil, ErrNotFound
	}
	return votesOf(*r), nil
}

func (m *Memory) Take(_ context.Context, key models.Key) (models.Round, error) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[key]
	if !ok {
		return models.Round{}, ErrNotFound
	}
	delete(s.rounds, key)
	return *r, nil
}

func (m *Memory) Delete(_ context.Context, key models.Key) error {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
