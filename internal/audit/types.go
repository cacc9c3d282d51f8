package audit

import (
	"fmt"
	"strings"
	"time"
)

// RecordTag is the constant discriminator carried by every emitted line so
// an external harvester can pick audit records out of a mixed log stream.
const RecordTag = "care_audit"

// #region action-origin

// ActionOrigin distinguishes a human-requested action from an
// assistant-initiated one.
type ActionOrigin string

const (
	OriginUserDirected   ActionOrigin = "user_directed"
	OriginCareAutonomous ActionOrigin = "care_autonomous"
)

// Valid reports whether o is one of the two fixed origins.
func (o ActionOrigin) Valid() bool {
	return o == OriginUserDirected || o == OriginCareAutonomous
}

// #endregion action-origin

// #region gate-result

// GateResult is the fixed policy decision enum recorded on every event.
type GateResult string

const (
	GateAllow    GateResult = "allow"
	GateEscalate GateResult = "escalate"
	GateBlock    GateResult = "block"
)

// Valid reports whether r is one of the three fixed decisions.
func (r GateResult) Valid() bool {
	return r == GateAllow || r == GateEscalate || r == GateBlock
}

// #endregion gate-result

// #region event

// Event is one structured, immutable governance decision record.
type Event struct {
	Record           string            `json:"record"`
	EventType        string            `json:"event_type"`
	TenantID         string            `json:"tenant_id"`
	EntityType       string            `json:"entity_type"`
	EntityID         string            `json:"entity_id"`
	ActionOrigin     ActionOrigin      `json:"action_origin"`
	PolicyGateResult GateResult        `json:"policy_gate_result"`
	Reason           string            `json:"reason"`
	Meta             map[string]string `json:"meta,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// Validate rejects any event missing a required field. A partial record is
// never emitted.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Reason) == "" {
		return fmt.Errorf("audit event missing reason")
	}
	if !e.ActionOrigin.Valid() {
		return fmt.Errorf("audit event invalid action_origin %q", e.ActionOrigin)
	}
	if !e.PolicyGateResult.Valid() {
		return fmt.Errorf("audit event invalid policy_gate_result %q", e.PolicyGateResult)
	}
	if e.TenantID == "" || e.EntityType == "" || e.EntityID == "" {
		return fmt.Errorf("audit event missing entity key (tenant=%q type=%q id=%q)",
			e.TenantID, e.EntityType, e.EntityID)
	}
	if e.EventType == "" {
		return fmt.Errorf("audit event missing event_type")
	}
	return nil
}

// #endregion event
