// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/danielhkuo/pokerbot/models"
	"github.com/danielhkuo/pokerbot/store"
)

// Notifier delivers best-effort messages. Notify must not block on
// delivery and must swallow its own failures.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.Notification) {}

type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeUnanimous
	OutcomeSplit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeUnanimous:
		return "unanimous"
	case OutcomeSplit:
		return "split"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type VoteResult struct {
	Value    int
	Replaced bool
}

type TallyResult struct {
	Subject  string
	OpenedAt time.Time
	// Names of everyone who voted, sorted
	Names []string
}

// Group lists the voters who picked Value, names sorted.
type Group struct {
	Value int
	Names []string
}

type RevealResult struct {
	Outcome Outcome
	Subject string
	// Value is the common vote when Outcome is OutcomeUnanimous
	Value int
	// Groups ascend by value; empty for OutcomeEmpty
	Groups []Group
	Voters int
}

// Engine runs the round state machine on top of a Store. It keeps no
// round state of its own.
type Engine struct {
	store    store.Store
	scale    Scale
	notifier Notifier
}

func NewEngine(st store.Store, scale Scale, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{store: st, scale: scale, notifier: notifier}
}

func (e *Engine) Scale() Scale {
	return e.scale
}

// OpenRound starts a round for key. An existing round is left untouched.
func (e *Engine) OpenRound(ctx context.Context, key models.Key, subject, responseURL string) (models.Round, error) {
	r, err := e.store.Create(ctx, key, subject, responseURL)
	if errors.Is(err, store.ErrAlreadyExists) {
		return models.Round{}, ErrAlreadyOpen
	}
	if err != nil {
		return models.Round{}, fmt.Errorf("open round: %w", err)
	}

	slog.Info("round opened", "round_id", r.ID, "team_id", key.TeamID, "channel_id", key.ChannelID)
	return r, nil
}

// CastVote records or replaces userID's vote. The first vote of a user in
// a round triggers one notification to the round's response URL.
func (e *Engine) CastVote(ctx context.Context, key models.Key, userID, displayName, raw string) (VoteResult, error) {
	if _, err := e.store.Get(ctx, key); err != nil {
		return VoteResult{}, notStarted("cast vote", err)
	}

	value, err := e.scale.Validate(raw)
	if err != nil {
		return VoteResult{}, err
	}

	r, replaced, err := e.store.UpsertVote(ctx, key, models.Vote{
		UserID:      userID,
		DisplayName: displayName,
		Value:       value,
	})
	if err != nil {
		// The round may have been revealed between the two calls
		return VoteResult{}, notStarted("cast vote", err)
	}

	if !replaced && r.ResponseURL != "" {
		e.notifier.Notify(ctx, models.Notification{
			Sink: r.ResponseURL,
			Text: displayName + " voted",
		})
	}

	slog.Info("vote cast", "round_id", r.ID, "user_id", userID, "replaced", replaced)
	return VoteResult{Value: value, Replaced: replaced}, nil
}

// Tally lists who has voted without changing the round.
func (e *Engine) Tally(ctx context.Context, key models.Key) (TallyResult, error) {
	r, err := e.store.Get(ctx, key)
	if err != nil {
		return TallyResult{}, notStarted("tally", err)
	}

	names := lo.Map(lo.Values(r.Votes), func(v models.Vote, _ int) string {
		return v.DisplayName
	})
	slices.Sort(names)

	return TallyResult{Subject: r.Subject, OpenedAt: r.OpenedAt, Names: names}, nil
}

// Reveal closes the round and reports its votes. The round is gone by the
// time Reveal returns, whatever the outcome.
func (e *Engine) Reveal(ctx context.Context, key models.Key) (RevealResult, error) {
	r, err := e.store.Take(ctx, key)
	if err != nil {
		return RevealResult{}, notStarted("reveal", err)
	}

	result := RevealResult{Subject: r.Subject, Voters: len(r.Votes)}
	byValue := lo.GroupBy(lo.Values(r.Votes), func(v models.Vote) int {
		return v.Value
	})
	values := lo.Keys(byValue)
	slices.Sort(values)

	for _, value := range values {
		names := lo.Map(byValue[value], func(v models.Vote, _ int) string {
			return v.DisplayName
		})
		slices.Sort(names)
		result.Groups = append(result.Groups, Group{Value: value, Names: names})
	}

	switch len(values) {
	case 0:
		result.Outcome = OutcomeEmpty
	case 1:
		result.Outcome = OutcomeUnanimous
		result.Value = values[0]
	default:
		result.Outcome = OutcomeSplit
	}

	slog.Info("round revealed", "round_id", r.ID, "outcome", result.Outcome.String(), "voters", result.Voters)
	return result, nil
}

// Reset drops any round for key.
func (e *Engine) Reset(ctx context.Context, key models.Key) error {
	if err := e.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	slog.Info("round reset", "team_id", key.TeamID, "channel_id", key.ChannelID)
	return nil
}

func notStarted(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoundNotStarted
	}
	return fmt.Errorf("%s: %w", op, err)
}
