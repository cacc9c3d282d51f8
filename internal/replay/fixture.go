package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/signals"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	StartState      string                  `json:"start_state"`
	Autonomy        string                  `json:"autonomy,omitempty"`
	Shadow          string                  `json:"shadow,omitempty"`
	Turns           []FixtureTurn           `json:"turns"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results,omitempty"`
}

// FixtureTurn mirrors replay.Turn with JSON tags.
type FixtureTurn struct {
	TurnID string               `json:"turn_id"`
	Vector signals.SignalVector `json:"vector"`
	Action FixtureAction        `json:"action"`
}

// FixtureAction mirrors gate.ProposedAction with JSON tags.
type FixtureAction struct {
	Origin     string `json:"action_origin"`
	ActionType string `json:"proposed_action_type"`
	Text       string `json:"text"`
}

// FixtureExpectedResult captures the expected decisions per turn.
type FixtureExpectedResult struct {
	TurnID  string `json:"turn_id"`
	ToState string `json:"to_state"`
	Gate    string `json:"gate"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if f.StartState == "" {
		f.StartState = string(lifecycle.StateUnaware)
	}
	if !lifecycle.State(f.StartState).Valid() {
		return Fixture{}, fmt.Errorf("fixture start_state %q is not a lifecycle state", f.StartState)
	}
	return f, nil
}

// #endregion load

// #region run

// Run replays the fixture and reports mismatches against its expected
// results. mismatches is empty when the fixture has no expectations.
func Run(f Fixture, config ReplayConfig) ([]TurnResult, Summary, []string) {
	config.Autonomy = f.Autonomy
	config.Shadow = f.Shadow

	turns := make([]Turn, len(f.Turns))
	for i, ft := range f.Turns {
		turns[i] = Turn{
			TurnID: ft.TurnID,
			Vector: ft.Vector,
			Action: gate.ProposedAction{
				Origin:     audit.ActionOrigin(ft.Action.Origin),
				ActionType: ft.Action.ActionType,
				Text:       ft.Action.Text,
			},
		}
	}

	results, summary := Replay(lifecycle.State(f.StartState), turns, config)

	byTurn := make(map[string]TurnResult, len(results))
	for _, r := range results {
		byTurn[r.TurnID] = r
	}

	var mismatches []string
	for _, exp := range f.ExpectedResults {
		got, ok := byTurn[exp.TurnID]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: no such turn", exp.TurnID))
			continue
		}
		if exp.ToState != "" && string(got.ToState) != exp.ToState {
			mismatches = append(mismatches, fmt.Sprintf("%s: to_state %s, want %s", exp.TurnID, got.ToState, exp.ToState))
		}
		if exp.Gate != "" && string(got.Gate.Decision) != exp.Gate {
			mismatches = append(mismatches, fmt.Sprintf("%s: gate %s, want %s", exp.TurnID, got.Gate.Decision, exp.Gate))
		}
	}

	return results, summary, mismatches
}

// #endregion run
