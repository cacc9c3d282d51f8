package gate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/care-controller/internal/audit"
)

// #region hard-block-lexicons

// impersonationPhrases claim the assistant is a human employee.
var impersonationPhrases = []string{
	"i am a human",
	"i'm a human",
	"i am a real person",
	"i'm a real person",
	"i am not a bot",
	"i'm not a bot",
	"i am not an ai",
	"i'm not an ai",
	"as your account manager",
	"this is your account manager",
	"speaking as a member of our team",
}

// bindingPhrases make commitments on the business's behalf.
var bindingPhrases = []string{
	"we guarantee",
	"i guarantee",
	"i promise",
	"we promise",
	"legally binding",
	"we are committed to delivering",
	"you have my word",
	"consider it done",
	"we will refund you",
}

// negotiationPhrases negotiate price.
var negotiationPhrases = []string{
	"i can offer you a discount",
	"we can offer a discount",
	"special price",
	"i can lower the price",
	"we can lower the price",
	"we'll match their price",
	"price match",
	"best and final offer",
}

// deletionPhrases are data-subject deletion requests.
var deletionPhrases = []string{
	"delete my data",
	"delete my account",
	"delete my information",
	"erase my data",
	"remove my information",
	"remove my personal data",
	"forget me",
	"right to be forgotten",
	"right to erasure",
}

// legalPhrases escalate even user-directed actions.
var legalPhrases = []string{
	"legal",
	"lawyer",
	"attorney",
	"lawsuit",
	"liability",
	"indemnif",
	"non-disclosure",
}

// #endregion hard-block-lexicons

// #region money

var moneyPattern = regexp.MustCompile(`[$€£]\s?([0-9][0-9,]*)(\.[0-9]+)?`)

// largestAmount extracts the largest currency amount mentioned in text.
// Returns 0 when none is found.
func largestAmount(text string) float64 {
	var max float64
	for _, m := range moneyPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "") + m[2]
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > max {
			max = v
		}
	}
	return max
}

// #endregion money

// #region gate

// Gate classifies proposed actions as allow, escalate, or block.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate runs the hard-block pass first, then origin-scoped rules.
// The gate is never more permissive for autonomous actions than for
// user-directed ones: autonomy only narrows license.
func (g *Gate) Evaluate(action ProposedAction) Decision {
	// Missing required fields fail closed.
	if !action.Origin.Valid() {
		return Decision{
			Decision: audit.GateBlock,
			Reasons:  []string{"missing or invalid action_origin"},
		}
	}
	if strings.TrimSpace(action.ActionType) == "" {
		return Decision{
			Decision: audit.GateBlock,
			Reasons:  []string{"missing proposed_action_type"},
		}
	}

	lower := strings.ToLower(action.Text)

	// --- Hard block pass, regardless of origin ---
	var blocks []string
	if p := firstHit(lower, impersonationPhrases); p != "" {
		blocks = append(blocks, "impersonation language: "+p)
	}
	if p := firstHit(lower, bindingPhrases); p != "" {
		blocks = append(blocks, "binding-commitment language: "+p)
	}
	if p := firstHit(lower, negotiationPhrases); p != "" {
		blocks = append(blocks, "pricing-negotiation language: "+p)
	}
	if p := firstHit(lower, deletionPhrases); p != "" {
		blocks = append(blocks, "data-subject deletion request: "+p)
	}
	if len(blocks) > 0 {
		return Decision{Decision: audit.GateBlock, Reasons: blocks}
	}

	// --- Origin-independent escalations ---
	// These fire even for user-directed actions, so the autonomous path
	// (which adds restrictions on top) can never end up more permissive.
	var escalations []string
	if p := firstHit(lower, legalPhrases); p != "" {
		escalations = append(escalations, "legal reference: "+p)
	}
	if amt := largestAmount(action.Text); amt >= g.config.LargeAmountThreshold {
		escalations = append(escalations, "large monetary amount mentioned")
	}

	// --- Autonomous narrowing ---
	if action.Origin == audit.OriginCareAutonomous {
		if contains(g.config.CommitmentTypes, action.ActionType) {
			escalations = append(escalations, "commitment-type action proposed autonomously")
		} else if !contains(g.config.AllowedAutonomousTypes, action.ActionType) {
			escalations = append(escalations, "action type outside autonomous allow-list: "+action.ActionType)
		}
	}

	if len(escalations) > 0 {
		return Decision{Decision: audit.GateEscalate, Reasons: escalations}
	}
	return Decision{Decision: audit.GateAllow, Reasons: []string{"within policy"}}
}

// #endregion gate

// #region helpers

func firstHit(text string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// #endregion helpers
