// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import "errors"

var (
	ErrAlreadyOpen     = errors.New("a round is already in progress")
	ErrRoundNotStarted = errors.New("no round has been started")
	ErrInvalidVote     = errors.New("invalid vote")
	ErrNotANumber      = errors.New("vote is not a number")
	ErrOutOfScale      = errors.New("vote is not on the scale")
	ErrNoArgument      = errors.New("no vote value given")
)
