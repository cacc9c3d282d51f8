package replay

import (
	"testing"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/signals"
)

func benignAction() gate.ProposedAction {
	return gate.ProposedAction{
		Origin:     audit.OriginCareAutonomous,
		ActionType: "note",
		Text:       "logged the conversation",
	}
}

func TestReplayThreadsStateAcrossTurns(t *testing.T) {
	turns := []Turn{
		{TurnID: "t1", Vector: signals.SignalVector{InboundContact: true}, Action: benignAction()},
		{TurnID: "t2", Vector: signals.SignalVector{HasBidirectional: true}, Action: benignAction()},
		{TurnID: "t3", Vector: signals.SignalVector{ProposalSent: true}, Action: benignAction()},
	}

	results, summary := Replay(lifecycle.StateUnaware, turns, DefaultReplayConfig())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []lifecycle.State{lifecycle.StateAware, lifecycle.StateEngaged, lifecycle.StateEvaluating}
	for i, expect := range want {
		if results[i].ToState != expect {
			t.Fatalf("turn %d: expected %s, got %s", i, expect, results[i].ToState)
		}
		if i > 0 && results[i].FromState != results[i-1].ToState {
			t.Fatalf("turn %d: state not threaded (%s after %s)", i, results[i].FromState, results[i-1].ToState)
		}
	}
	if summary.Transitions != 3 || summary.NoOps != 0 {
		t.Fatalf("summary wrong: %+v", summary)
	}
	if summary.FinalState != lifecycle.StateEvaluating {
		t.Fatalf("expected final evaluating, got %s", summary.FinalState)
	}
}

func TestReplayCountsNoOps(t *testing.T) {
	turns := []Turn{
		{TurnID: "t1", Vector: signals.SignalVector{}, Action: benignAction()},
		{TurnID: "t2", Vector: signals.SignalVector{InboundContact: true}, Action: benignAction()},
	}
	results, summary := Replay(lifecycle.StateUnaware, turns, DefaultReplayConfig())
	if results[0].ToState != lifecycle.StateUnaware || results[0].Reason != "" {
		t.Fatalf("no-match turn must hold state: %+v", results[0])
	}
	if summary.NoOps != 1 || summary.Transitions != 1 {
		t.Fatalf("summary wrong: %+v", summary)
	}
}

func TestReplayGateTally(t *testing.T) {
	turns := []Turn{
		{TurnID: "allow", Action: benignAction()},
		{TurnID: "escalate", Action: gate.ProposedAction{
			Origin: audit.OriginCareAutonomous, ActionType: "commitment", Text: "renewal terms",
		}},
		{TurnID: "block", Action: gate.ProposedAction{
			Origin: audit.OriginCareAutonomous, ActionType: "note", Text: "we guarantee a fix by Friday",
		}},
	}
	_, summary := Replay(lifecycle.StateActive, turns, DefaultReplayConfig())
	if summary.Allows != 1 || summary.Escalates != 1 || summary.Blocks != 1 {
		t.Fatalf("gate tally wrong: %+v", summary)
	}
}

func TestReplayExecutionFollowsAutonomy(t *testing.T) {
	turns := []Turn{{TurnID: "t1", Action: benignAction()}}

	cfg := DefaultReplayConfig()
	results, _ := Replay(lifecycle.StateActive, turns, cfg)
	if results[0].Executed {
		t.Fatal("autonomy off: nothing executes")
	}

	cfg.Autonomy = "true"
	results, _ = Replay(lifecycle.StateActive, turns, cfg)
	if !results[0].Executed {
		t.Fatal("autonomy on: allowed turn executes")
	}

	cfg.Shadow = "true"
	results, _ = Replay(lifecycle.StateActive, turns, cfg)
	if results[0].Executed {
		t.Fatal("shadow on: nothing executes")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	turns := []Turn{
		{TurnID: "t1", Vector: signals.SignalVector{InboundContact: true}, Action: benignAction()},
		{TurnID: "t2", Vector: signals.SignalVector{SilenceDays: 20}, Action: benignAction()},
	}
	a, sa := Replay(lifecycle.StateUnaware, turns, DefaultReplayConfig())
	b, sb := Replay(lifecycle.StateUnaware, turns, DefaultReplayConfig())
	if sa != sb {
		t.Fatalf("summaries diverged: %+v vs %+v", sa, sb)
	}
	for i := range a {
		if a[i].ToState != b[i].ToState || a[i].Gate.Decision != b[i].Gate.Decision {
			t.Fatalf("turn %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}
