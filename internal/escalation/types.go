package escalation

// #region confidence

// Confidence grades how strongly the detector wants a human hand-off.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// rank orders confidences for max-combination across fired detectors.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Max returns the higher of the two confidences.
func (c Confidence) Max(other Confidence) Confidence {
	if other.rank() > c.rank() {
		return other
	}
	return c
}

// #endregion confidence

// #region options

// Options carries the optional context accompanying the scored text.
// Channel and ActionOrigin are recorded for audit only; they never
// influence the decision.
type Options struct {
	SentimentLabel string
	SentimentScore float32
	Channel        string
	ActionOrigin   string
}

// #endregion options

// #region result

// Result is the detector's verdict for one piece of text.
type Result struct {
	Escalate   bool
	Confidence Confidence
	Reasons    []string

	// Echoed audit context, not decision inputs.
	Channel      string
	ActionOrigin string
}

// #endregion result
