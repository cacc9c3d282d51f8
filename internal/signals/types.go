package signals

import (
	"time"

	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #region signal-vector

// SignalVector is the canonical, ephemeral signal shape every raw event
// normalizes into. It is recomputed per evaluation and never persisted.
type SignalVector struct {
	SilenceDays              int     `json:"silence_days"`
	HasBidirectional         bool    `json:"has_bidirectional"`
	NegativeSentiment        bool    `json:"negative_sentiment"`
	RecentMessage            bool    `json:"recent_message"`
	HighEngagement           bool    `json:"high_engagement"`
	OutcomeSuggestsRejection bool    `json:"outcome_suggests_rejection"`
	EngagementScore          float32 `json:"engagement_score"`

	// Lifecycle-track signals consumed by the transition rule table.
	InboundContact     bool `json:"inbound_contact"`
	ProposalSent       bool `json:"proposal_sent"`
	CommitmentRecorded bool `json:"commitment_recorded"`
	ContractSigned     bool `json:"contract_signed"`
	PaymentReceived    bool `json:"payment_received"`

	Meta map[string]string `json:"meta,omitempty"`
}

// #endregion signal-vector

// #region call-outcome

// CallOutcomeContext is the raw shape of a completed-call event.
type CallOutcomeContext struct {
	Ref            state.EntityRef `json:"ref"`
	Direction      string          `json:"direction"` // "inbound" | "outbound"
	Answered       bool            `json:"answered"`
	SentimentLabel string          `json:"sentiment_label"` // "positive" | "neutral" | "negative" | ""
	SentimentScore float32         `json:"sentiment_score"`
	Transcript     string          `json:"transcript,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	ActionItems    []string        `json:"action_items,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// #endregion call-outcome

// #region trigger-type

// TriggerType enumerates the trigger-detection events the compiler emits.
type TriggerType string

const (
	TriggerLeadStagnant    TriggerType = "lead_stagnant"
	TriggerDealDecay       TriggerType = "deal_decay"
	TriggerActivityOverdue TriggerType = "activity_overdue"
	TriggerHotOpportunity  TriggerType = "hot_opportunity"
	TriggerContactInactive TriggerType = "contact_inactive"
	TriggerDealRegression  TriggerType = "deal_regression"
	TriggerAccountRisk     TriggerType = "account_risk"
	TriggerFollowupNeeded  TriggerType = "followup_needed"
)

// Known reports whether t is one of the fixed trigger types.
func (t TriggerType) Known() bool {
	switch t {
	case TriggerLeadStagnant, TriggerDealDecay, TriggerActivityOverdue,
		TriggerHotOpportunity, TriggerContactInactive, TriggerDealRegression,
		TriggerAccountRisk, TriggerFollowupNeeded:
		return true
	}
	return false
}

// #endregion trigger-type

// #region trigger-context

// TriggerContext is the raw shape of a trigger-detection event.
type TriggerContext struct {
	Type            TriggerType     `json:"type"`
	Ref             state.EntityRef `json:"ref"`
	SilenceDays     int             `json:"silence_days"`
	DaysSinceChange int             `json:"days_since_change"`
	LastMessage     string          `json:"last_message,omitempty"`
	OutcomeText     string          `json:"outcome_text,omitempty"`

	// Proposed-action payload supplied by the rule compiler.
	ProposedActionType string `json:"proposed_action_type,omitempty"`
	ProposedBody       string `json:"proposed_body,omitempty"`

	Meta map[string]string `json:"meta,omitempty"`
}

// #endregion trigger-context
