package engine

import (
	"errors"
	"fmt"
)

// RoundQuota counts rounds and enforces an optional ceiling.
//
// The fixpoint only terminates if every module eventually stops reporting new
// headers. The quota turns a module that never does into an explicit
// "did not converge" result instead of an endless run.
type RoundQuota struct {
	maxRounds int // zero means unlimited
	current   int
}

// NewRoundQuota creates a quota allowing maxRounds rounds. Zero disables it.
func NewRoundQuota(maxRounds int) *RoundQuota {
	return &RoundQuota{maxRounds: maxRounds}
}

// Check is called before each round. It counts the round and returns a
// *RoundLimitError when the round would exceed the ceiling.
func (q *RoundQuota) Check(step int) error {
	q.current++
	if q.maxRounds > 0 && q.current > q.maxRounds {
		return &RoundLimitError{
			Rounds: q.maxRounds,
			Step:   step,
		}
	}
	return nil
}

// Current returns the number of Check calls so far.
func (q *RoundQuota) Current() int {
	return q.current
}

// MaxRounds returns the ceiling, zero when unlimited.
func (q *RoundQuota) MaxRounds() int {
	return q.maxRounds
}

// RoundLimitError is returned when the round ceiling is reached before the
// fixpoint.
type RoundLimitError struct {
	Rounds int // rounds run
	Step   int // step that would have run next
}

// Error implements the error interface.
func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("identification did not converge within %d rounds (next step %d)", e.Rounds, e.Step)
}

// IsRoundLimitError reports whether err is or wraps a *RoundLimitError.
func IsRoundLimitError(err error) bool {
	var re *RoundLimitError
	return errors.As(err, &re)
}
