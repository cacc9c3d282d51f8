package escalation

import "strings"

// #region lexicons

// objectionPhrases are refusal/stop requests. One hit escalates at high
// confidence on its own.
var objectionPhrases = []string{
	"stop calling",
	"stop emailing",
	"stop contacting",
	"stop messaging",
	"unsubscribe",
	"do not call",
	"do not contact",
	"don't contact me",
	"don't call me",
	"remove me from",
	"take me off",
	"leave me alone",
	"not interested",
	"never contact",
}

// pricingPhrases cover pricing, contract, and refund territory. One hit is
// medium; two or more distinct hits raise to high.
var pricingPhrases = []string{
	"price",
	"discount",
	"refund",
	"contract",
	"cancel my",
	"cancellation",
	"renewal",
	"billing",
	"invoice dispute",
	"quote",
	"terms",
}

// compliancePhrases are compliance-sensitive. One hit escalates at high.
var compliancePhrases = []string{
	"lawyer",
	"attorney",
	"legal action",
	"legal department",
	"lawsuit",
	"litigation",
	"sue you",
	"suing",
	"regulator",
	"regulatory",
	"compliance",
	"fraud",
	"subpoena",
	"gdpr",
	"data protection",
	"cease and desist",
}

// ambiguousPhrases are high-risk but not conclusive on their own. They
// fire the fail-safe detector at medium confidence.
var ambiguousPhrases = []string{
	"speak to a manager",
	"speak to your manager",
	"talk to a human",
	"talk to a real person",
	"this is unacceptable",
	"file a complaint",
	"formal complaint",
	"escalate this",
	"extremely disappointed",
	"last warning",
}

// #endregion lexicons

// #region detect

// Detect scores input for mandatory human hand-off. Detectors are additive
// and independent; the combined confidence is the maximum across everything
// that fired. Non-string or nil input is never treated as safe: it
// escalates at high confidence.
func Detect(input any, opts Options) Result {
	res := Result{
		Channel:      opts.Channel,
		ActionOrigin: opts.ActionOrigin,
		Confidence:   ConfidenceLow,
	}

	text, ok := input.(string)
	if !ok {
		res.Escalate = true
		res.Confidence = ConfidenceHigh
		res.Reasons = append(res.Reasons, "unreadable input: cannot score for safety")
		return res
	}
	lower := strings.ToLower(text)

	if phrase := firstHit(lower, objectionPhrases); phrase != "" {
		res.Escalate = true
		res.Confidence = res.Confidence.Max(ConfidenceHigh)
		res.Reasons = append(res.Reasons, "objection: "+phrase)
	}

	if hits := allHits(lower, pricingPhrases); len(hits) > 0 {
		res.Escalate = true
		conf := ConfidenceMedium
		if len(hits) >= 2 {
			conf = ConfidenceHigh
		}
		res.Confidence = res.Confidence.Max(conf)
		res.Reasons = append(res.Reasons, "pricing/contract: "+strings.Join(hits, ", "))
	}

	if phrase := firstHit(lower, compliancePhrases); phrase != "" {
		res.Escalate = true
		res.Confidence = res.Confidence.Max(ConfidenceHigh)
		res.Reasons = append(res.Reasons, "compliance-sensitive: "+phrase)
	}

	// Mild negativity alone never escalates; a firm negative label or a
	// strongly negative score does, at medium.
	if opts.SentimentLabel == "negative" || opts.SentimentScore <= -0.4 {
		res.Escalate = true
		res.Confidence = res.Confidence.Max(ConfidenceMedium)
		res.Reasons = append(res.Reasons, "negative sentiment")
	}

	// Fail-safe: ambiguous high-risk phrasing with no other trigger still
	// escalates rather than passing as benign.
	if phrase := firstHit(lower, ambiguousPhrases); phrase != "" {
		res.Escalate = true
		res.Confidence = res.Confidence.Max(ConfidenceMedium)
		res.Reasons = append(res.Reasons, "ambiguous high-risk phrasing: "+phrase)
	}

	return res
}

// #endregion detect

// #region helpers

func firstHit(text string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

func allHits(text string, phrases []string) []string {
	var hits []string
	for _, p := range phrases {
		if strings.Contains(text, p) {
			hits = append(hits, p)
		}
	}
	return hits
}

// #endregion helpers
