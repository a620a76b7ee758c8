// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store keeps planning poker rounds, keyed by (team_id, channel_id).

# Interface

Store is the only owner of round state. Callers receive copies and must
re-fetch for every operation:

	r, err := st.Create(ctx, key, "Story 42", responseURL)
	r, replaced, err := st.UpsertVote(ctx, key, vote)
	r, err := st.Take(ctx, key) // read and delete in one step

Absence is explicit: Get, UpsertVote, ListVotes and Take return
ErrNotFound, Create returns ErrAlreadyExists. Delete is idempotent.

# Backends

	st, err := store.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

  - memory: sharded in-process maps, lost on restart
  - sqlite: modernc.org/sqlite, one connection serializes writers
  - postgres: lib/pq, round rows locked with SELECT ... FOR UPDATE
  - badger: one CBOR value per round, conflicts replayed with backoff

# Concurrency

Each operation is atomic for its key. Two racing Create calls yield one
success and one ErrAlreadyExists; a vote that races a Take either lands
in the taken snapshot or gets ErrNotFound.
*/
package store
