// Package analyses runs the contract analysis pipeline against stored
// contracts and persists the resulting reports and findings.
package analyses

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/config"
)

// Analysis is one persisted analysis run.
type Analysis struct {
	ID               uuid.UUID       `json:"id"`
	ContractID       string          `json:"contract_id"`
	ContractType     string          `json:"contract_type"`
	Tone             string          `json:"tone"`
	Focus            []string        `json:"focus"`
	RiskThreshold    float64         `json:"risk_threshold"`
	Summary          string          `json:"summary"`
	Confidence       float64         `json:"confidence"`
	RiskScore        float64         `json:"risk_score"`
	RiskLevel        string          `json:"risk_level"`
	ExceedsThreshold bool            `json:"exceeds_threshold"`
	Report           json.RawMessage `json:"report"`
	AnalyzedAt       time.Time       `json:"analyzed_at"`
}

// Finding is one persisted structured finding.
type Finding struct {
	ID         uuid.UUID `json:"id"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	ContractID string    `json:"contract_id"`
	Domain     string    `json:"domain"`
	Issue      string    `json:"issue"`
	Agent      string    `json:"agent"`
	Severity   string    `json:"severity"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats aggregates counts across all contracts and analyses.
type Stats struct {
	TotalContracts int     `json:"total_contracts"`
	TotalAnalyses  int     `json:"total_analyses"`
	AverageRisk    float64 `json:"avg_risk"`
}

// Settings shape a report. Focus narrows what is displayed; the pipeline
// always runs the full agent selection.
type Settings struct {
	Tone          string   `json:"tone"`
	Focus         []string `json:"focus"`
	RiskThreshold float64  `json:"risk_threshold"`
}

// SettingsFromConfig returns the configured default settings.
func SettingsFromConfig(cfg *config.AnalysisConfig) Settings {
	return Settings{
		Tone:          cfg.Tone,
		Focus:         slices.Clone(cfg.Focus),
		RiskThreshold: cfg.Threshold(),
	}
}

// RunCommand carries optional per-run overrides of the default settings.
type RunCommand struct {
	Tone          *string  `json:"tone,omitempty"`
	Focus         []string `json:"focus,omitempty"`
	RiskThreshold *float64 `json:"risk_threshold,omitempty"`
}

// Resolve applies cmd over defaults and validates the result.
func (cmd RunCommand) Resolve(defaults Settings) (Settings, error) {
	s := defaults
	s.Focus = slices.Clone(defaults.Focus)

	if cmd.Tone != nil {
		s.Tone = *cmd.Tone
	}
	if cmd.Focus != nil {
		s.Focus = slices.Clone(cmd.Focus)
	}
	if cmd.RiskThreshold != nil {
		s.RiskThreshold = *cmd.RiskThreshold
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks tone, focus domains, and threshold range.
func (s Settings) Validate() error {
	if !slices.Contains(config.Tones, s.Tone) {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidSettings, s.Tone)
	}
	for _, d := range s.Focus {
		if _, ok := agents.Lookup(d); !ok {
			return fmt.Errorf("%w: unknown focus domain %q", ErrInvalidSettings, d)
		}
	}
	if s.RiskThreshold < 0 || s.RiskThreshold > 1 {
		return fmt.Errorf("%w: risk_threshold must be within [0,1], got %v", ErrInvalidSettings, s.RiskThreshold)
	}
	return nil
}
