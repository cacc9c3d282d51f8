package signals

import "strings"

// #region rejection-lexicon

// rejectionPhrases mark an outcome as an explicit rejection. A hit drives
// the lost transition regardless of every other signal.
var rejectionPhrases = []string{
	"not interested",
	"no longer interested",
	"went with a competitor",
	"went with another",
	"chose another vendor",
	"declined the offer",
	"declined our proposal",
	"rejected the proposal",
	"rejected our offer",
	"decided against",
	"do not contact",
	"closed lost",
}

// #endregion rejection-lexicon

// #region commitment-lexicon

var proposalPhrases = []string{
	"sent the proposal", "sent a proposal", "proposal sent",
	"sent the quote", "quote sent", "sent over the contract draft",
}

var commitmentPhrases = []string{
	"verbal commitment", "agreed to move forward", "committed to",
	"ready to sign", "gave us the go-ahead",
}

var contractPhrases = []string{
	"contract signed", "signed the contract", "signed the agreement",
}

var paymentPhrases = []string{
	"payment received", "invoice paid", "first payment",
}

// #endregion commitment-lexicon

// #region from-call-outcome

// FromCallOutcome normalizes a completed-call event into a SignalVector.
func FromCallOutcome(c CallOutcomeContext) SignalVector {
	text := strings.ToLower(c.Summary + " " + c.Transcript)

	v := SignalVector{
		RecentMessage:  true,
		InboundContact: c.Direction == "inbound",
		Meta:           map[string]string{"source": "call_outcome"},
	}

	// A two-way conversation on an answered call counts as bidirectional.
	if c.Answered {
		v.HasBidirectional = true
	}

	v.NegativeSentiment = c.SentimentLabel == "negative" || c.SentimentScore < -0.3
	v.OutcomeSuggestsRejection = containsAny(text, rejectionPhrases)
	v.ProposalSent = containsAny(text, proposalPhrases) || actionItemsMention(c.ActionItems, proposalPhrases)
	v.CommitmentRecorded = containsAny(text, commitmentPhrases)
	v.ContractSigned = containsAny(text, contractPhrases)
	v.PaymentReceived = containsAny(text, paymentPhrases)

	v.EngagementScore = callEngagement(c)
	v.HighEngagement = v.EngagementScore >= 0.7

	return v
}

// callEngagement scores 0-1 from answered flag, direction, and sentiment.
func callEngagement(c CallOutcomeContext) float32 {
	var score float32
	if c.Answered {
		score += 0.4
	}
	if c.Direction == "inbound" {
		score += 0.3
	}
	if c.SentimentLabel == "positive" || c.SentimentScore > 0.3 {
		score += 0.3
	} else if c.SentimentLabel == "neutral" {
		score += 0.1
	}
	return clamp(score)
}

// #endregion from-call-outcome

// #region from-trigger

// FromTrigger normalizes a trigger-detection event into a SignalVector.
// Unknown trigger types produce a zero vector tagged in Meta rather than an
// error, so the cycle still runs the escalation detector over the payload.
func FromTrigger(tc TriggerContext) SignalVector {
	v := SignalVector{
		SilenceDays: tc.SilenceDays,
		Meta:        map[string]string{"source": "trigger", "trigger_type": string(tc.Type)},
	}
	for k, val := range tc.Meta {
		v.Meta[k] = val
	}

	outcome := strings.ToLower(tc.OutcomeText)
	v.OutcomeSuggestsRejection = containsAny(outcome, rejectionPhrases)

	switch tc.Type {
	case TriggerLeadStagnant, TriggerContactInactive, TriggerActivityOverdue:
		// Silence-driven triggers; SilenceDays carries the signal.
	case TriggerDealDecay:
		if v.SilenceDays == 0 {
			v.SilenceDays = tc.DaysSinceChange
		}
	case TriggerHotOpportunity:
		v.RecentMessage = true
		v.HighEngagement = true
		v.HasBidirectional = true
		v.EngagementScore = 0.9
	case TriggerDealRegression:
		v.NegativeSentiment = true
	case TriggerAccountRisk:
		v.NegativeSentiment = true
		if v.SilenceDays == 0 {
			v.SilenceDays = tc.DaysSinceChange
		}
	case TriggerFollowupNeeded:
		v.RecentMessage = true
	default:
		v.Meta["unknown_trigger"] = string(tc.Type)
	}

	if tc.LastMessage != "" {
		v.RecentMessage = true
	}
	if !v.HighEngagement {
		v.EngagementScore = triggerEngagement(v)
	}

	return v
}

// triggerEngagement derives a coarse score from the normalized flags.
func triggerEngagement(v SignalVector) float32 {
	var score float32 = 0.5
	if v.SilenceDays > 0 {
		score -= 0.02 * float32(v.SilenceDays)
	}
	if v.RecentMessage {
		score += 0.2
	}
	if v.NegativeSentiment {
		score -= 0.2
	}
	return clamp(score)
}

// #endregion from-trigger

// #region helpers

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func actionItemsMention(items []string, phrases []string) bool {
	for _, item := range items {
		if containsAny(strings.ToLower(item), phrases) {
			return true
		}
	}
	return false
}

// clamp restricts v to [0, 1].
func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
