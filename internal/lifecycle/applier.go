package lifecycle

import (
	"fmt"
	"log"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/signals"
	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #region applier

// Applier persists approved transitions with an optimistic current-state
// check and emits exactly one audit event per successful application.
type Applier struct {
	store   *state.Store
	emitter *audit.Emitter
}

// NewApplier creates an applier over the given store and audit emitter.
func NewApplier(store *state.Store, emitter *audit.Emitter) *Applier {
	return &Applier{store: store, emitter: emitter}
}

// #endregion applier

// #region apply

// Apply validates and persists one proposal. The write is guarded by the
// from state the proposal was computed against; a concurrent move surfaces
// as state.ErrStateConflict for the caller to retry.
//
// Audit emission is fire-and-forget: an emission failure is logged but
// never rolls back the applied transition.
func (a *Applier) Apply(ref state.EntityRef, from State, prop *Proposal, actor, contextJSON string) error {
	if prop == nil {
		return fmt.Errorf("apply: nil proposal")
	}
	if strings.TrimSpace(prop.Reason) == "" {
		return fmt.Errorf("apply: proposal missing reason")
	}
	if !prop.To.Valid() {
		return fmt.Errorf("apply: invalid target state %q", prop.To)
	}
	if !ref.Complete() {
		return fmt.Errorf("apply: incomplete entity ref %+v", ref)
	}
	if actor == "" {
		actor = SystemActor
	}

	entry := state.TransitionEntry{
		FromState:   string(from),
		ToState:     string(prop.To),
		Reason:      prop.Reason,
		Actor:       actor,
		ContextJSON: contextJSON,
	}
	if err := a.store.AppendTransition(ref, entry, string(from)); err != nil {
		return err
	}

	ev := audit.Event{
		EventType:        "care_transition",
		TenantID:         ref.TenantID,
		EntityType:       ref.EntityType,
		EntityID:         ref.EntityID,
		ActionOrigin:     audit.OriginCareAutonomous,
		PolicyGateResult: audit.GateAllow,
		Reason:           prop.Reason,
		Meta: map[string]string{
			"from_state": string(from),
			"to_state":   string(prop.To),
			"actor":      actor,
		},
	}
	if err := a.emitter.Emit(ev); err != nil {
		log.Printf("[APPLY] audit emit failed (transition kept): %v", err)
	}
	return nil
}

// #endregion apply

// #region reconcile

// maxApplyAttempts bounds the optimistic-conflict retry loop: the initial
// attempt plus two retries.
const maxApplyAttempts = 3

// Reconcile re-reads the entity's current state, proposes a transition, and
// applies it, retrying with exponential backoff when a concurrent writer
// moved the state first. Each retry re-proposes against the fresh state so
// causal ordering of history entries is preserved.
//
// Returns the applied proposal, or nil when no rule matched.
func (a *Applier) Reconcile(ref state.EntityRef, v signals.SignalVector, actor, contextJSON string) (*Proposal, error) {
	var applied *Proposal

	op := func() error {
		rec, err := a.store.GetOrCreate(ref)
		if err != nil {
			return backoff.Permanent(err)
		}
		prop := Propose(State(rec.CurrentState), v)
		if prop == nil {
			applied = nil
			return nil
		}
		err = a.Apply(ref, State(rec.CurrentState), prop, actor, contextJSON)
		if err == state.ErrStateConflict {
			log.Printf("[APPLY] conflict on %s/%s/%s, retrying", ref.TenantID, ref.EntityType, ref.EntityID)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		applied = prop
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxApplyAttempts-1)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("apply transition: %w", err)
	}
	return applied, nil
}

// #endregion reconcile
