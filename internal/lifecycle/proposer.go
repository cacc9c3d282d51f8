package lifecycle

import (
	"fmt"

	"github.com/danielpatrickdp/care-controller/internal/signals"
)

// #region thresholds

const (
	atRiskSilenceDays  = 14
	dormantSilenceDays = 30
)

// #endregion thresholds

// #region rule-table

// rule is one row of the ordered transition table. The first rule whose
// from-set and predicate both match wins; later rules are not consulted.
type rule struct {
	name string
	from func(State) bool
	when func(signals.SignalVector) bool
	to   State
}

func fromAny(State) bool { return true }

func fromOnly(s State) func(State) bool {
	return func(cur State) bool { return cur == s }
}

var rules = []rule{
	{
		// Explicit rejection overrides every other rule.
		name: "explicit rejection signal",
		from: fromAny,
		when: func(v signals.SignalVector) bool { return v.OutcomeSuggestsRejection },
		to:   StateLost,
	},
	{
		name: "first inbound contact",
		from: fromOnly(StateUnaware),
		when: func(v signals.SignalVector) bool { return v.InboundContact },
		to:   StateAware,
	},
	{
		name: "bidirectional exchange",
		from: fromOnly(StateAware),
		when: func(v signals.SignalVector) bool { return v.HasBidirectional },
		to:   StateEngaged,
	},
	{
		name: "proposal sent",
		from: fromOnly(StateEngaged),
		when: func(v signals.SignalVector) bool { return v.ProposalSent },
		to:   StateEvaluating,
	},
	{
		name: "commitment recorded",
		from: fromOnly(StateEvaluating),
		when: func(v signals.SignalVector) bool { return v.CommitmentRecorded },
		to:   StateCommitted,
	},
	{
		name: "contract signed or payment received",
		from: fromOnly(StateCommitted),
		when: func(v signals.SignalVector) bool { return v.ContractSigned || v.PaymentReceived },
		to:   StateActive,
	},
	{
		// Dormant is excluded: at_risk is a step toward dormancy, and a
		// dormant entity flipping back to at_risk on silence alone would
		// oscillate with the rule below.
		name: "prolonged silence",
		from: func(s State) bool { return !s.Terminal() && s != StateAtRisk && s != StateDormant },
		when: func(v signals.SignalVector) bool { return v.SilenceDays >= atRiskSilenceDays },
		to:   StateAtRisk,
	},
	{
		name: "extended silence",
		from: fromOnly(StateAtRisk),
		when: func(v signals.SignalVector) bool { return v.SilenceDays >= dormantSilenceDays },
		to:   StateDormant,
	},
	{
		name: "inbound signal after dormancy",
		from: fromOnly(StateDormant),
		when: func(v signals.SignalVector) bool { return v.InboundContact || v.RecentMessage },
		to:   StateReactivated,
	},
}

// #endregion rule-table

// #region propose

// Propose evaluates the ordered rule table against the current state and
// signal vector. It is pure and deterministic: identical inputs always
// produce the identical proposal, and no match returns nil. A candidate
// target equal to the current state never fires.
func Propose(current State, v signals.SignalVector) *Proposal {
	for _, r := range rules {
		if !r.from(current) {
			continue
		}
		if r.to == current {
			continue
		}
		if !r.when(v) {
			continue
		}
		return &Proposal{
			To:     r.to,
			Reason: fmt.Sprintf("%s: %s -> %s", r.name, current, r.to),
		}
	}
	return nil
}

// #endregion propose
