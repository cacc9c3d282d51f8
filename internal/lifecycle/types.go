package lifecycle

// #region state

// State is the closed set of lifecycle states an entity can carry.
type State string

const (
	StateUnaware     State = "unaware"
	StateAware       State = "aware"
	StateEngaged     State = "engaged"
	StateEvaluating  State = "evaluating"
	StateCommitted   State = "committed"
	StateActive      State = "active"
	StateAtRisk      State = "at_risk"
	StateDormant     State = "dormant"
	StateReactivated State = "reactivated"
	StateLost        State = "lost"
)

// Valid reports whether s is one of the fixed lifecycle states.
func (s State) Valid() bool {
	switch s {
	case StateUnaware, StateAware, StateEngaged, StateEvaluating, StateCommitted,
		StateActive, StateAtRisk, StateDormant, StateReactivated, StateLost:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions of its own.
func (s State) Terminal() bool {
	return s == StateLost
}

// #endregion state

// #region proposal

// Proposal is a proposed lifecycle-state change. A nil proposal means no
// rule matched and the evaluation is an idempotent no-op.
type Proposal struct {
	To     State
	Reason string
}

// #endregion proposal

// SystemActor is recorded on transitions applied without an explicit actor.
const SystemActor = "care_system"
