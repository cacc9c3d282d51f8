// Package replay re-runs recorded signal vectors through the governance
// pipeline entirely in memory. The pipeline is deterministic, so a fixture
// either reproduces its recorded decisions exactly or the behavior changed.
package replay

import (
	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/autonomy"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/signals"
)

// #region types

// Turn is one recorded evaluation: a signal vector plus the proposed action
// that accompanied it.
type Turn struct {
	TurnID string
	Vector signals.SignalVector
	Action gate.ProposedAction
}

// ReplayConfig bundles the pipeline configuration for a run.
type ReplayConfig struct {
	GateConfig gate.GateConfig
	Autonomy   string
	Shadow     string
}

// DefaultReplayConfig returns the standard pipeline configuration.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{GateConfig: gate.DefaultGateConfig()}
}

// TurnResult captures what the pipeline decided for one turn.
type TurnResult struct {
	TurnID    string
	FromState lifecycle.State
	ToState   lifecycle.State // equals FromState when no rule matched
	Reason    string
	Gate      gate.Decision
	Executed  bool
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns  int
	Transitions int
	NoOps       int
	Allows      int
	Escalates   int
	Blocks      int
	FinalState  lifecycle.State
}

// #endregion types

// #region replay

// Replay walks the turns from startState, threading each proposed
// transition into the next turn's current state.
func Replay(startState lifecycle.State, turns []Turn, config ReplayConfig) ([]TurnResult, Summary) {
	current := startState
	g := gate.NewGate(config.GateConfig)
	enabled := autonomy.Enabled(config.Autonomy, config.Shadow)

	results := make([]TurnResult, 0, len(turns))
	summary := Summary{TotalTurns: len(turns)}

	for _, turn := range turns {
		res := TurnResult{
			TurnID:    turn.TurnID,
			FromState: current,
			ToState:   current,
		}

		if prop := lifecycle.Propose(current, turn.Vector); prop != nil {
			res.ToState = prop.To
			res.Reason = prop.Reason
			current = prop.To
			summary.Transitions++
		} else {
			summary.NoOps++
		}

		res.Gate = g.Evaluate(turn.Action)
		switch res.Gate.Decision {
		case audit.GateAllow:
			summary.Allows++
			res.Executed = enabled
		case audit.GateEscalate:
			summary.Escalates++
		case audit.GateBlock:
			summary.Blocks++
		}

		results = append(results, res)
	}

	summary.FinalState = current
	return results, summary
}

// #endregion replay
