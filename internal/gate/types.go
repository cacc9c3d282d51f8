package gate

import "github.com/danielpatrickdp/care-controller/internal/audit"

// #region proposed-action

// ProposedAction is a concrete action awaiting policy classification.
type ProposedAction struct {
	Origin     audit.ActionOrigin
	ActionType string
	Text       string
	EntityRefs []string
}

// #endregion proposed-action

// #region decision

// Decision is the gate's classification of one proposed action.
type Decision struct {
	Decision audit.GateResult
	Reasons  []string
}

// #endregion decision

// #region gate-config

// GateConfig holds the risk policy knobs.
type GateConfig struct {
	// AllowedAutonomousTypes is the low-risk allow-list for autonomous
	// actions. Anything outside it escalates.
	AllowedAutonomousTypes []string

	// CommitmentTypes always escalate when proposed autonomously.
	CommitmentTypes []string

	// LargeAmountThreshold escalates user-directed text mentioning a
	// monetary amount at or above this many currency units.
	LargeAmountThreshold float64
}

// DefaultGateConfig returns the standard risk policy.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		AllowedAutonomousTypes: []string{"note", "task", "follow_up"},
		CommitmentTypes:        []string{"commitment", "contract", "offer", "payment", "renewal"},
		LargeAmountThreshold:   10000,
	}
}

// #endregion gate-config
