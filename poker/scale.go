// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultScale is the modified Fibonacci deck used when none is configured.
var DefaultScale = Scale{values: []int{0, 1, 2, 3, 5, 8, 13, 20, 40, 100}}

// Scale is the ordered set of estimates a vote may take.
type Scale struct {
	values []int
}

func NewScale(values ...int) (Scale, error) {
	if len(values) == 0 {
		return Scale{}, errors.New("scale must contain at least one value")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return Scale{}, fmt.Errorf("duplicate scale value %d", sorted[i])
		}
	}
	return Scale{values: sorted}, nil
}

// ParseScale reads a comma separated list such as "0,1,2,3,5,8".
func ParseScale(s string) (Scale, error) {
	var values []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return Scale{}, fmt.Errorf("invalid scale value %q", field)
		}
		values = append(values, v)
	}
	return NewScale(values...)
}

// Values returns the scale in ascending order.
func (s Scale) Values() []int {
	return slices.Clone(s.values)
}

func (s Scale) Contains(v int) bool {
	_, found := slices.BinarySearch(s.values, v)
	return found
}

func (s Scale) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// Validate turns a raw vote token into a value on the scale.
// Errors wrap ErrInvalidVote and one of ErrNoArgument, ErrNotANumber or ErrOutOfScale.
func (s Scale) Validate(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %w", ErrInvalidVote, ErrNoArgument)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %q", ErrInvalidVote, ErrNotANumber, raw)
	}
	if !s.Contains(v) {
		return 0, fmt.Errorf("%w: %w: %d", ErrInvalidVote, ErrOutOfScale, v)
	}
	return v, nil
}
