package lifecycle

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/signals"
	"github.com/danielpatrickdp/care-controller/internal/state"
)

func testApplier(t *testing.T) (*Applier, *state.Store, *bytes.Buffer) {
	t.Helper()
	store, err := state.NewStore(filepath.Join(t.TempDir(), "care.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	var buf bytes.Buffer
	return NewApplier(store, audit.NewEmitter(&buf)), store, &buf
}

func testRef() state.EntityRef {
	return state.EntityRef{TenantID: "t1", EntityType: "lead", EntityID: "lead-1"}
}

func TestApplyRejectsInvalidProposals(t *testing.T) {
	a, store, _ := testApplier(t)
	ref := testRef()
	if _, err := store.GetOrCreate(ref); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := a.Apply(ref, StateUnaware, nil, "", ""); err == nil {
		t.Fatal("nil proposal must be rejected")
	}
	if err := a.Apply(ref, StateUnaware, &Proposal{To: StateAware, Reason: "  "}, "", ""); err == nil {
		t.Fatal("blank reason must be rejected")
	}
	if err := a.Apply(ref, StateUnaware, &Proposal{To: State("warp"), Reason: "r"}, "", ""); err == nil {
		t.Fatal("invalid target state must be rejected")
	}
	bad := state.EntityRef{TenantID: "t1"}
	if err := a.Apply(bad, StateUnaware, &Proposal{To: StateAware, Reason: "r"}, "", ""); err == nil {
		t.Fatal("incomplete ref must be rejected")
	}
}

func TestApplyPersistsAndEmitsOneAuditEvent(t *testing.T) {
	a, store, buf := testApplier(t)
	ref := testRef()
	if _, err := store.GetOrCreate(ref); err != nil {
		t.Fatalf("seed: %v", err)
	}

	prop := &Proposal{To: StateAware, Reason: "first inbound contact: unaware -> aware"}
	if err := a.Apply(ref, StateUnaware, prop, "", `{"inbound_contact":true}`); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	rec, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.CurrentState != string(StateAware) {
		t.Fatalf("state pointer not moved: %s", rec.CurrentState)
	}

	hist, err := store.History(ref)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(hist))
	}
	if hist[0].Actor != SystemActor {
		t.Fatalf("empty actor must default to %q, got %q", SystemActor, hist[0].Actor)
	}

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("expected exactly 1 audit line, got %d", got)
	}
	var ev audit.Event
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("unmarshal audit line: %v", err)
	}
	if ev.EventType != "care_transition" {
		t.Fatalf("unexpected event type %q", ev.EventType)
	}
	if ev.Meta["from_state"] != "unaware" || ev.Meta["to_state"] != "aware" {
		t.Fatalf("transition meta missing: %+v", ev.Meta)
	}
}

func TestApplySurfacesStaleFromAsConflict(t *testing.T) {
	a, store, _ := testApplier(t)
	ref := testRef()
	if _, err := store.GetOrCreate(ref); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The entity is in unaware; an apply computed against aware must abort.
	err := a.Apply(ref, StateAware, &Proposal{To: StateEngaged, Reason: "r"}, "", "")
	if !errors.Is(err, state.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestReconcileCreatesAndAdvances(t *testing.T) {
	a, store, _ := testApplier(t)
	ref := testRef()

	applied, err := a.Reconcile(ref, signals.SignalVector{InboundContact: true}, "", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if applied == nil || applied.To != StateAware {
		t.Fatalf("expected transition to aware, got %+v", applied)
	}

	rec, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.CurrentState != string(StateAware) {
		t.Fatalf("expected aware, got %s", rec.CurrentState)
	}
}

func TestReconcileNoMatchIsANoop(t *testing.T) {
	a, store, buf := testApplier(t)
	ref := testRef()

	applied, err := a.Reconcile(ref, signals.SignalVector{}, "", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if applied != nil {
		t.Fatalf("expected no transition, got %+v", applied)
	}
	rec, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.CurrentState != state.InitialState {
		t.Fatalf("state must stay %s, got %s", state.InitialState, rec.CurrentState)
	}
	if buf.Len() != 0 {
		t.Fatalf("no-op must not emit audit events: %q", buf.String())
	}
}

func TestReconcileAdvancesOneStepPerCycle(t *testing.T) {
	a, store, _ := testApplier(t)
	ref := testRef()

	// A vector carrying the whole forward track still moves one step at a
	// time; each cycle re-proposes against the fresh state.
	full := signals.SignalVector{
		InboundContact:     true,
		HasBidirectional:   true,
		ProposalSent:       true,
		CommitmentRecorded: true,
		ContractSigned:     true,
	}
	want := []State{StateAware, StateEngaged, StateEvaluating, StateCommitted, StateActive}
	for _, expect := range want {
		applied, err := a.Reconcile(ref, full, "", "")
		if err != nil {
			t.Fatalf("Reconcile toward %s: %v", expect, err)
		}
		if applied == nil || applied.To != expect {
			t.Fatalf("expected step to %s, got %+v", expect, applied)
		}
	}

	hist, err := store.History(ref)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != len(want) {
		t.Fatalf("expected %d history rows, got %d", len(want), len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].FromState != hist[i-1].ToState {
			t.Fatalf("history not causally chained at row %d: %s -> %s after %s",
				i, hist[i].FromState, hist[i].ToState, hist[i-1].ToState)
		}
	}
}
