// Package config loads controller configuration from YAML with environment
// overrides. Missing file or fields fall back to safe defaults; autonomy is
// off unless explicitly enabled.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/care-controller/internal/gate"
)

// #region types

// WebhookConfig is the optional outbound notifier target.
type WebhookConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

// Config is the full controller configuration.
type Config struct {
	DBPath       string `yaml:"db_path"`
	AuditLogPath string `yaml:"audit_log_path"`

	// Autonomy flags are kept as raw strings: the resolver owns parsing
	// and its malformed-means-false semantics.
	Autonomy string `yaml:"autonomy"`
	Shadow   string `yaml:"shadow"`

	AllowedAutonomousTypes []string `yaml:"allowed_autonomous_types"`
	CommitmentTypes        []string `yaml:"commitment_types"`
	LargeAmountThreshold   float64  `yaml:"large_amount_threshold"`

	CooldownHours   int     `yaml:"cooldown_hours"`
	ConfidenceFloor float32 `yaml:"confidence_floor"`

	Webhook WebhookConfig `yaml:"webhook"`
}

// #endregion types

// #region defaults

// Default returns the safe baseline configuration.
func Default() Config {
	gc := gate.DefaultGateConfig()
	return Config{
		DBPath:                 "care_state.db",
		AuditLogPath:           "care_audit.log",
		Autonomy:               "",
		Shadow:                 "",
		AllowedAutonomousTypes: gc.AllowedAutonomousTypes,
		CommitmentTypes:        gc.CommitmentTypes,
		LargeAmountThreshold:   gc.LargeAmountThreshold,
		CooldownHours:          24,
		ConfidenceFloor:        0.5,
	}
}

// #endregion defaults

// #region load

// Load reads path (if non-empty and present) over the defaults, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CARE_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CARE_AUDIT_LOG"); v != "" {
		c.AuditLogPath = v
	}
	if v, ok := os.LookupEnv("CARE_AUTONOMY"); ok {
		c.Autonomy = v
	}
	if v, ok := os.LookupEnv("CARE_SHADOW"); ok {
		c.Shadow = v
	}
	if v := os.Getenv("CARE_WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv("CARE_WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}
}

// #endregion load

// #region gate-config

// GateConfig projects the policy knobs into the gate's config shape.
func (c Config) GateConfig() gate.GateConfig {
	return gate.GateConfig{
		AllowedAutonomousTypes: c.AllowedAutonomousTypes,
		CommitmentTypes:        c.CommitmentTypes,
		LargeAmountThreshold:   c.LargeAmountThreshold,
	}
}

// #endregion gate-config
