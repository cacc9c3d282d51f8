package state

import (
	"errors"
	"time"
)

// #region errors
var (
	// ErrStateConflict means the entity's current state changed between
	// proposal and write. The caller re-reads and retries.
	ErrStateConflict = errors.New("care state changed since proposal")

	// ErrDuplicateSuggestion means the unique suggestion constraint fired.
	ErrDuplicateSuggestion = errors.New("duplicate suggestion for entity and trigger")

	// ErrNotFound means no care record exists for the entity.
	ErrNotFound = errors.New("care record not found")
)

// #endregion errors

// #region entity-ref
// EntityRef identifies one governed business record within a tenant.
type EntityRef struct {
	TenantID   string `json:"tenant_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// Complete reports whether all three key fields are present.
func (r EntityRef) Complete() bool {
	return r.TenantID != "" && r.EntityType != "" && r.EntityID != ""
}

// #endregion entity-ref

// #region care-record
// CareRecord is the persisted lifecycle state for one entity.
// CurrentState always equals the ToState of the last transition row.
type CareRecord struct {
	Ref          EntityRef
	CurrentState string
	UpdatedAt    time.Time
}

// #endregion care-record

// #region transition-entry
// TransitionEntry is one append-only row in the transition history.
type TransitionEntry struct {
	ID          int64
	FromState   string
	ToState     string
	Reason      string
	Actor       string
	ContextJSON string
	CreatedAt   time.Time
}

// #endregion transition-entry

// #region suggestion
// Suggestion is one generated (or suppressed) autonomous suggestion.
// Outcome is observability metadata only; it never feeds a decision.
type Suggestion struct {
	ID          string
	Ref         EntityRef
	TriggerType string
	Body        string
	Confidence  float32
	Outcome     string
	CreatedAt   time.Time
}

// #endregion suggestion
