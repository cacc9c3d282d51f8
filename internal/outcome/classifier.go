// Package outcome classifies the terminal result of one trigger-evaluation
// cycle. The classification is observability metadata only: nothing ever
// branches on it.
package outcome

import (
	"errors"

	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #region outcome-enum

// Outcome is the fixed, mutually exclusive set of cycle results.
type Outcome string

const (
	SuggestionCreated   Outcome = "suggestion_created"
	DuplicateSuppressed Outcome = "duplicate_suppressed"
	GenerationFailed    Outcome = "generation_failed"
	LowConfidence       Outcome = "low_confidence"
	ConstraintViolation Outcome = "constraint_violation"
	Error               Outcome = "error"
)

// #endregion outcome-enum

// #region exit-errors

// Sentinel exit errors produced by the evaluation cycle. Each maps 1:1 to
// an outcome.
var (
	ErrCooldown         = errors.New("suggestion cooldown active")
	ErrNothingGenerated = errors.New("generator returned nothing")
	ErrLowConfidence    = errors.New("generation confidence below floor")
)

// #endregion exit-errors

// #region classify

// Classify maps a cycle's exit to exactly one outcome. nil means the
// suggestion was persisted; anything unrecognized is Error.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return SuggestionCreated
	case errors.Is(err, ErrCooldown):
		return DuplicateSuppressed
	case errors.Is(err, ErrNothingGenerated):
		return GenerationFailed
	case errors.Is(err, ErrLowConfidence):
		return LowConfidence
	case errors.Is(err, state.ErrDuplicateSuggestion):
		return ConstraintViolation
	default:
		return Error
	}
}

// #endregion classify
