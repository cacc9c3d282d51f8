package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/care-controller/internal/audit"
	"github.com/danielpatrickdp/care-controller/internal/config"
	"github.com/danielpatrickdp/care-controller/internal/gate"
	"github.com/danielpatrickdp/care-controller/internal/lifecycle"
	"github.com/danielpatrickdp/care-controller/internal/notify"
	"github.com/danielpatrickdp/care-controller/internal/orchestrator"
	"github.com/danielpatrickdp/care-controller/internal/signals"
	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #region event-envelope

// event is one line of input: a trigger detection or a call outcome.
type event struct {
	Kind        string                      `json:"kind"` // "trigger" | "call_outcome"
	Trigger     *signals.TriggerContext     `json:"trigger,omitempty"`
	CallOutcome *signals.CallOutcomeContext `json:"call_outcome,omitempty"`
}

// #endregion event-envelope

// #region generator

// templateGenerator drafts suggestion text from fixed per-trigger
// templates. Confidence follows the engagement score so weak signals fall
// under the floor instead of producing noise.
type templateGenerator struct{}

var templates = map[signals.TriggerType]string{
	signals.TriggerLeadStagnant:    "Check in with this lead; no activity for %d days.",
	signals.TriggerDealDecay:       "Deal has been quiet for %d days; review next steps.",
	signals.TriggerActivityOverdue: "An activity is overdue by %d days; reschedule or close it.",
	signals.TriggerHotOpportunity:  "Engagement is high right now; consider a same-day follow-up.",
	signals.TriggerContactInactive: "Contact inactive for %d days; queue a re-engagement note.",
	signals.TriggerDealRegression:  "Deal moved backward; capture what changed in a note.",
	signals.TriggerAccountRisk:     "Account shows risk signals; flag for a health review.",
	signals.TriggerFollowupNeeded:  "A follow-up was promised; draft it while context is fresh.",
}

func (templateGenerator) Generate(_ context.Context, tc signals.TriggerContext, vec signals.SignalVector) (string, float32, error) {
	tmpl, ok := templates[tc.Type]
	if !ok {
		return "", 0, nil
	}
	body := tmpl
	if strings.Contains(tmpl, "%d") {
		body = fmt.Sprintf(tmpl, vec.SilenceDays)
	}
	confidence := 0.4 + 0.6*vec.EngagementScore
	return body, confidence, nil
}

// #endregion generator

// #region main

func main() {
	cfg, err := config.Load(os.Getenv("CARE_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	auditFile, err := os.OpenFile(cfg.AuditLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer auditFile.Close()
	emitter := audit.NewEmitter(auditFile)

	var notifier *notify.Notifier
	if cfg.Webhook.URL != "" {
		notifier = notify.NewNotifier(notify.DefaultNotifierConfig(cfg.Webhook.URL, cfg.Webhook.Secret), nil)
	}

	engine := orchestrator.NewEngine(
		store,
		gate.NewGate(cfg.GateConfig()),
		lifecycle.NewApplier(store, emitter),
		emitter,
		notifier,
		templateGenerator{},
		orchestrator.EngineConfig{
			CooldownHours:   cfg.CooldownHours,
			ConfidenceFloor: cfg.ConfidenceFloor,
			Autonomy:        cfg.Autonomy,
			Shadow:          cfg.Shadow,
		},
	)

	fmt.Printf("Care controller ready. DB: %s | Audit: %s\n", cfg.DBPath, cfg.AuditLogPath)
	fmt.Println("Reading one JSON event per line from stdin.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			log.Printf("skipping malformed event: %v", err)
			continue
		}

		switch {
		case ev.Kind == "trigger" && ev.Trigger != nil:
			res, err := engine.EvaluateTrigger(ctx, *ev.Trigger)
			if err != nil {
				log.Printf("trigger cycle failed: %v", err)
				continue
			}
			printResult(res)
		case ev.Kind == "call_outcome" && ev.CallOutcome != nil:
			res, err := engine.EvaluateCallOutcome(ctx, *ev.CallOutcome)
			if err != nil {
				log.Printf("call outcome cycle failed: %v", err)
				continue
			}
			printResult(res)
		default:
			log.Printf("skipping event with unknown kind %q", ev.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read stdin: %v", err)
	}
}

func printResult(res orchestrator.CycleResult) {
	transition := "none"
	if res.Applied != nil {
		transition = string(res.Applied.To)
	}
	fmt.Printf("gate=%s escalate=%v transition=%s outcome=%s executed=%v\n",
		res.Gate.Decision, res.Escalation.Escalate, transition, res.Outcome, res.Executed)
}

// #endregion main
