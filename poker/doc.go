// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poker implements the planning poker round state machine.

# States

Each (team, channel) key is either Closed (no round) or Open:

	Closed ──OpenRound──▶ Open ──Reveal / Reset──▶ Closed

There is no revealed state: Reveal takes the round out of the store and
classifies the votes it took.

# Operations

	e := poker.NewEngine(st, scale, dispatcher)

	e.OpenRound(ctx, key, subject, responseURL) // ErrAlreadyOpen
	e.CastVote(ctx, key, userID, name, "5")      // ErrRoundNotStarted, ErrInvalidVote
	e.Tally(ctx, key)                            // sorted voter names
	e.Reveal(ctx, key)                           // OutcomeEmpty, OutcomeUnanimous, OutcomeSplit
	e.Reset(ctx, key)

A user's first vote in a round sends one "<name> voted" notification to
the response URL captured at open time. Replacing a vote sends nothing.

# Scale

Votes must be integers on the configured Scale:

	scale, err := poker.ParseScale("0,1,2,3,5,8,13,20,40,100")
	v, err := scale.Validate("7") // errors.Is(err, ErrOutOfScale)
*/
package poker
