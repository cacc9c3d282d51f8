package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/autonomy"
	"github.com/danielpatrickdp/care-controller/internal/escalation"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/notify"
	"github.com/danielpatrickdp/care-controller/internal/outcome"
	"github.com/danielpatrickdp/care-controller/internal/signals"
	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #endregion

// #region engine

// Engine drives one trigger-evaluation cycle end to end: normalize, detect
// escalation, gate, resolve autonomy, apply transitions, run the suggestion
// pipeline, and classify the terminal outcome.
type Engine struct {
	store     *state.Store
	gate      *gate.Gate
	applier   *lifecycle.Applier
	emitter   *audit.Emitter
	notifier  *notify.Notifier // optional
	generator SuggestionGenerator
	config    EngineConfig
	now       func() time.Time
}

// NewEngine wires an engine. notifier and generator may be nil; a nil
// generator makes every suggestion cycle end in generation_failed.
func NewEngine(
	store *state.Store,
	g *gate.Gate,
	applier *lifecycle.Applier,
	emitter *audit.Emitter,
	notifier *notify.Notifier,
	generator SuggestionGenerator,
	config EngineConfig,
) *Engine {
	return &Engine{
		store:     store,
		gate:      g,
		applier:   applier,
		emitter:   emitter,
		notifier:  notifier,
		generator: generator,
		config:    config,
		now:       time.Now,
	}
}

// #endregion

// #region evaluate-trigger

// EvaluateTrigger runs one full governance cycle for a trigger event.
func (e *Engine) EvaluateTrigger(ctx context.Context, tc signals.TriggerContext) (CycleResult, error) {
	if !tc.Ref.Complete() {
		return CycleResult{}, fmt.Errorf("trigger missing entity ref: %+v", tc.Ref)
	}

	vec := signals.FromTrigger(tc)
	esc := escalation.Detect(triggerText(tc), escalation.Options{
		Channel:      "trigger",
		ActionOrigin: string(audit.OriginCareAutonomous),
	})

	action := gate.ProposedAction{
		Origin:     audit.OriginCareAutonomous,
		ActionType: actionType(tc),
		Text:       tc.ProposedBody,
		EntityRefs: []string{tc.Ref.EntityID},
	}
	gd := e.gate.Evaluate(action)

	// A fired escalation detector forces hand-off even when the gate
	// itself would allow.
	effective := gd
	if esc.Escalate && effective.Decision == audit.GateAllow {
		effective = gate.Decision{
			Decision: audit.GateEscalate,
			Reasons:  append([]string{"escalation detector fired"}, esc.Reasons...),
		}
	}

	enabled := autonomy.Enabled(e.config.Autonomy, e.config.Shadow)

	res := CycleResult{
		Escalation:      esc,
		Gate:            effective,
		AutonomyEnabled: enabled,
		Executed:        effective.Decision == audit.GateAllow && enabled,
	}

	log.Printf("[CYCLE] %s %s/%s/%s gate=%s escalate=%v autonomy=%v",
		tc.Type, tc.Ref.TenantID, tc.Ref.EntityType, tc.Ref.EntityID,
		effective.Decision, esc.Escalate, enabled)

	e.emitDecision(tc, effective, esc)

	// Lifecycle transition, independent of whether the action executes.
	applied, err := e.applier.Reconcile(tc.Ref, vec, lifecycle.SystemActor, contextSnapshot(vec))
	if err != nil {
		return res, fmt.Errorf("apply transition: %w", err)
	}
	res.Applied = applied

	// Hard block: no suggestion pipeline, no outcome decoration.
	if effective.Decision == audit.GateBlock {
		e.notifyEscalation(ctx, tc, effective)
		return res, nil
	}

	id, exitErr := e.runSuggestionPipeline(ctx, tc, vec)
	res.SuggestionID = id
	res.Outcome = outcome.Classify(exitErr)

	if id != "" {
		if err := e.store.SetSuggestionOutcome(id, string(res.Outcome)); err != nil {
			log.Printf("[CYCLE] outcome decoration failed: %v", err)
		}
	}

	e.emitCycleOutcome(tc, effective, res.Outcome, exitErr)

	if effective.Decision == audit.GateEscalate {
		e.notifyEscalation(ctx, tc, effective)
	}

	return res, nil
}

// #endregion evaluate-trigger

// #region evaluate-call

// EvaluateCallOutcome normalizes a completed-call event, checks it for
// escalation, and reconciles the entity's lifecycle state. Calls carry no
// proposed action, so no suggestion pipeline runs.
func (e *Engine) EvaluateCallOutcome(ctx context.Context, c signals.CallOutcomeContext) (CycleResult, error) {
	if !c.Ref.Complete() {
		return CycleResult{}, fmt.Errorf("call outcome missing entity ref: %+v", c.Ref)
	}

	vec := signals.FromCallOutcome(c)
	esc := escalation.Detect(c.Summary+" "+c.Transcript, escalation.Options{
		SentimentLabel: c.SentimentLabel,
		SentimentScore: c.SentimentScore,
		Channel:        "call",
		ActionOrigin:   string(audit.OriginUserDirected),
	})

	res := CycleResult{
		Escalation:      esc,
		AutonomyEnabled: autonomy.Enabled(e.config.Autonomy, e.config.Shadow),
	}

	gateResult := audit.GateAllow
	reason := "call outcome processed"
	if esc.Escalate {
		gateResult = audit.GateEscalate
		reason = "escalation detector fired: " + strings.Join(esc.Reasons, "; ")
	}
	res.Gate = gate.Decision{Decision: gateResult, Reasons: esc.Reasons}

	ev := audit.Event{
		EventType:        "care_call_outcome",
		TenantID:         c.Ref.TenantID,
		EntityType:       c.Ref.EntityType,
		EntityID:         c.Ref.EntityID,
		ActionOrigin:     audit.OriginUserDirected,
		PolicyGateResult: gateResult,
		Reason:           reason,
		Meta: map[string]string{
			"channel":   esc.Channel,
			"direction": c.Direction,
		},
	}
	if err := e.emitter.Emit(ev); err != nil {
		log.Printf("[CYCLE] audit emit failed: %v", err)
	}

	applied, err := e.applier.Reconcile(c.Ref, vec, lifecycle.SystemActor, contextSnapshot(vec))
	if err != nil {
		return res, fmt.Errorf("apply transition: %w", err)
	}
	res.Applied = applied

	return res, nil
}

// #endregion evaluate-call

// #region suggestion-pipeline

// runSuggestionPipeline walks the cooldown / generate / floor / persist
// chain and returns the sentinel exit error the outcome classifier maps.
func (e *Engine) runSuggestionPipeline(ctx context.Context, tc signals.TriggerContext, vec signals.SignalVector) (string, error) {
	last, ok, err := e.store.LatestSuggestionAt(tc.Ref, string(tc.Type))
	if err != nil {
		return "", fmt.Errorf("cooldown lookup: %w", err)
	}
	cooldown := time.Duration(e.config.CooldownHours) * time.Hour
	if ok && e.now().Sub(last) < cooldown {
		return "", outcome.ErrCooldown
	}

	if e.generator == nil {
		return "", outcome.ErrNothingGenerated
	}
	body, confidence, err := e.generator.Generate(ctx, tc, vec)
	if err != nil {
		return "", fmt.Errorf("generate suggestion: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return "", outcome.ErrNothingGenerated
	}
	if confidence < e.config.ConfidenceFloor {
		return "", outcome.ErrLowConfidence
	}

	id, err := e.store.InsertSuggestion(state.Suggestion{
		Ref:         tc.Ref,
		TriggerType: string(tc.Type),
		Body:        body,
		Confidence:  confidence,
		CreatedAt:   e.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// #endregion suggestion-pipeline

// #region audit-helpers

func (e *Engine) emitDecision(tc signals.TriggerContext, d gate.Decision, esc escalation.Result) {
	ev := audit.Event{
		EventType:        "care_policy_decision",
		TenantID:         tc.Ref.TenantID,
		EntityType:       tc.Ref.EntityType,
		EntityID:         tc.Ref.EntityID,
		ActionOrigin:     audit.OriginCareAutonomous,
		PolicyGateResult: d.Decision,
		Reason:           strings.Join(d.Reasons, "; "),
		Meta: map[string]string{
			"trigger_type":          string(tc.Type),
			"escalation":            fmt.Sprintf("%v", esc.Escalate),
			"escalation_confidence": string(esc.Confidence),
		},
	}
	if err := e.emitter.Emit(ev); err != nil {
		log.Printf("[CYCLE] audit emit failed: %v", err)
	}
}

func (e *Engine) emitCycleOutcome(tc signals.TriggerContext, d gate.Decision, out outcome.Outcome, exitErr error) {
	reason := "cycle completed"
	if exitErr != nil {
		reason = exitErr.Error()
	}
	ev := audit.Event{
		EventType:        "care_cycle_outcome",
		TenantID:         tc.Ref.TenantID,
		EntityType:       tc.Ref.EntityType,
		EntityID:         tc.Ref.EntityID,
		ActionOrigin:     audit.OriginCareAutonomous,
		PolicyGateResult: d.Decision,
		Reason:           reason,
		Meta: map[string]string{
			"trigger_type": string(tc.Type),
			"outcome":      string(out),
		},
	}
	if err := e.emitter.Emit(ev); err != nil {
		log.Printf("[CYCLE] audit emit failed: %v", err)
	}
}

// #endregion audit-helpers

// #region notify

// escalationPayload is the signed webhook body for hand-off notifications.
type escalationPayload struct {
	TenantID    string   `json:"tenant_id"`
	EntityType  string   `json:"entity_type"`
	EntityID    string   `json:"entity_id"`
	TriggerType string   `json:"trigger_type"`
	Decision    string   `json:"decision"`
	Reasons     []string `json:"reasons"`
}

func (e *Engine) notifyEscalation(ctx context.Context, tc signals.TriggerContext, d gate.Decision) {
	if e.notifier == nil {
		return
	}
	res := e.notifier.Deliver(ctx, escalationPayload{
		TenantID:    tc.Ref.TenantID,
		EntityType:  tc.Ref.EntityType,
		EntityID:    tc.Ref.EntityID,
		TriggerType: string(tc.Type),
		Decision:    string(d.Decision),
		Reasons:     d.Reasons,
	})
	if !res.Delivered {
		log.Printf("[CYCLE] escalation notify failed after %d attempt(s): %s", res.Attempts, res.LastError)
	}
}

// #endregion notify

// #region helpers

// actionType resolves the proposed action type, defaulting per trigger
// when the payload omits it.
func actionType(tc signals.TriggerContext) string {
	if tc.ProposedActionType != "" {
		return tc.ProposedActionType
	}
	switch tc.Type {
	case signals.TriggerFollowupNeeded:
		return "follow_up"
	case signals.TriggerHotOpportunity:
		return "task"
	default:
		return "note"
	}
}

// triggerText gathers the free text worth scoring for escalation.
func triggerText(tc signals.TriggerContext) string {
	return strings.TrimSpace(tc.LastMessage + " " + tc.OutcomeText + " " + tc.ProposedBody)
}

// contextSnapshot serializes the signal vector for the history row.
func contextSnapshot(vec signals.SignalVector) string {
	b, err := json.Marshal(vec)
	if err != nil {
		return ""
	}
	return string(b)
}

// #endregion helpers
