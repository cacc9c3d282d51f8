package lifecycle

import (
	"testing"

	"github.com/danielpatrickdp/care-controller/internal/signals"
)

func TestProposeNoMatchReturnsNil(t *testing.T) {
	if prop := Propose(StateEngaged, signals.SignalVector{}); prop != nil {
		t.Fatalf("expected nil proposal, got %+v", prop)
	}
}

func TestProposeIsIdempotent(t *testing.T) {
	v := signals.SignalVector{SilenceDays: 20}
	first := Propose(StateEngaged, v)
	second := Propose(StateEngaged, v)
	if first == nil || second == nil {
		t.Fatal("expected proposals")
	}
	if first.To != second.To || first.Reason != second.Reason {
		t.Fatalf("identical inputs diverged: %+v vs %+v", first, second)
	}
}

func TestRejectionOverridesEverything(t *testing.T) {
	// A rejection wins even when every other signal is present.
	v := signals.SignalVector{
		OutcomeSuggestsRejection: true,
		InboundContact:           true,
		HasBidirectional:         true,
		ProposalSent:             true,
		CommitmentRecorded:       true,
		ContractSigned:           true,
		SilenceDays:              40,
	}
	for _, from := range []State{StateUnaware, StateAware, StateEngaged, StateEvaluating,
		StateCommitted, StateActive, StateAtRisk, StateDormant, StateReactivated} {
		prop := Propose(from, v)
		if prop == nil {
			t.Fatalf("from %s: expected proposal", from)
		}
		if prop.To != StateLost {
			t.Fatalf("from %s: expected lost, got %s", from, prop.To)
		}
	}
}

func TestLostNeverRefires(t *testing.T) {
	v := signals.SignalVector{OutcomeSuggestsRejection: true}
	if prop := Propose(StateLost, v); prop != nil {
		t.Fatalf("lost -> lost should never fire, got %+v", prop)
	}
}

func TestForwardTrack(t *testing.T) {
	cases := []struct {
		from State
		v    signals.SignalVector
		want State
	}{
		{StateUnaware, signals.SignalVector{InboundContact: true}, StateAware},
		{StateAware, signals.SignalVector{HasBidirectional: true}, StateEngaged},
		{StateEngaged, signals.SignalVector{ProposalSent: true}, StateEvaluating},
		{StateEvaluating, signals.SignalVector{CommitmentRecorded: true}, StateCommitted},
		{StateCommitted, signals.SignalVector{ContractSigned: true}, StateActive},
		{StateCommitted, signals.SignalVector{PaymentReceived: true}, StateActive},
	}
	for _, tc := range cases {
		prop := Propose(tc.from, tc.v)
		if prop == nil {
			t.Fatalf("from %s: expected proposal", tc.from)
		}
		if prop.To != tc.want {
			t.Fatalf("from %s: expected %s, got %s", tc.from, tc.want, prop.To)
		}
	}
}

func TestForwardSignalsDoNotSkipStates(t *testing.T) {
	// A bidirectional signal only advances from aware, not from unaware.
	if prop := Propose(StateUnaware, signals.SignalVector{HasBidirectional: true}); prop != nil {
		t.Fatalf("expected nil, got %+v", prop)
	}
	// A contract signal from engaged does not jump to active.
	if prop := Propose(StateEngaged, signals.SignalVector{ContractSigned: true}); prop != nil {
		t.Fatalf("expected nil, got %+v", prop)
	}
}

func TestSilenceMovesToAtRisk(t *testing.T) {
	prop := Propose(StateEngaged, signals.SignalVector{SilenceDays: 20})
	if prop == nil || prop.To != StateAtRisk {
		t.Fatalf("expected at_risk, got %+v", prop)
	}
	// Below threshold: nothing fires.
	if prop := Propose(StateEngaged, signals.SignalVector{SilenceDays: 13}); prop != nil {
		t.Fatalf("expected nil below threshold, got %+v", prop)
	}
}

func TestAtRiskReEvaluationIsNoOp(t *testing.T) {
	// Scenario: silence_days 20 moves engaged to at_risk; replaying the
	// same vector against the applied state matches no rule.
	v := signals.SignalVector{SilenceDays: 20}
	prop := Propose(StateEngaged, v)
	if prop == nil || prop.To != StateAtRisk {
		t.Fatalf("expected at_risk, got %+v", prop)
	}
	if again := Propose(prop.To, v); again != nil {
		t.Fatalf("expected nil after applying, got %+v", again)
	}
}

func TestExtendedSilenceMovesToDormant(t *testing.T) {
	prop := Propose(StateAtRisk, signals.SignalVector{SilenceDays: 30})
	if prop == nil || prop.To != StateDormant {
		t.Fatalf("expected dormant, got %+v", prop)
	}
	// Dormant does not bounce back to at_risk on silence alone.
	if prop := Propose(StateDormant, signals.SignalVector{SilenceDays: 45}); prop != nil {
		t.Fatalf("expected nil, got %+v", prop)
	}
}

func TestDormantReactivatesOnInbound(t *testing.T) {
	prop := Propose(StateDormant, signals.SignalVector{InboundContact: true})
	if prop == nil || prop.To != StateReactivated {
		t.Fatalf("expected reactivated, got %+v", prop)
	}
	prop = Propose(StateDormant, signals.SignalVector{RecentMessage: true})
	if prop == nil || prop.To != StateReactivated {
		t.Fatalf("expected reactivated on recent message, got %+v", prop)
	}
}

func TestActiveCanStillDecay(t *testing.T) {
	prop := Propose(StateActive, signals.SignalVector{SilenceDays: 14})
	if prop == nil || prop.To != StateAtRisk {
		t.Fatalf("expected at_risk from active, got %+v", prop)
	}
}

func TestStateValidity(t *testing.T) {
	for _, s := range []State{StateUnaware, StateAware, StateEngaged, StateEvaluating,
		StateCommitted, StateActive, StateAtRisk, StateDormant, StateReactivated, StateLost} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if State("limbo").Valid() {
		t.Fatal("unknown state should be invalid")
	}
	if !StateLost.Terminal() {
		t.Fatal("lost should be terminal")
	}
	if StateActive.Terminal() {
		t.Fatal("active should not be terminal")
	}
}
