package orchestrator

// #region imports
import (
	"context"

	"github.com/danielpatrickdp/care-controller/internal/escalation"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/outcome"
	"github.com/danielpatrickdp/care-controller/internal/signals"
)

// #endregion

// #region generator-interface

// SuggestionGenerator abstracts the model layer that drafts suggestion
// text. Implementations live outside this core.
type SuggestionGenerator interface {
	Generate(ctx context.Context, tc signals.TriggerContext, vec signals.SignalVector) (body string, confidence float32, err error)
}

// #endregion

// #region engine-config

// EngineConfig holds the evaluation-cycle knobs.
type EngineConfig struct {
	CooldownHours   int
	ConfidenceFloor float32

	// Raw flag values; the autonomy resolver owns their parsing.
	Autonomy string
	Shadow   string
}

// DefaultEngineConfig returns the standard cycle knobs with autonomy off.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CooldownHours:   24,
		ConfidenceFloor: 0.5,
	}
}

// #endregion

// #region cycle-result

// CycleResult reports everything one trigger-evaluation cycle decided.
// Outcome is empty when the gate blocked before the suggestion pipeline ran.
type CycleResult struct {
	Outcome         outcome.Outcome
	Escalation      escalation.Result
	Gate            gate.Decision
	AutonomyEnabled bool
	Executed        bool
	Applied         *lifecycle.Proposal
	SuggestionID    string
}

// #endregion
