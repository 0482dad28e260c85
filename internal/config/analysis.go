package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

const (
	EnvAnalysisTone                = "COVENANT_ANALYSIS_TONE"
	EnvAnalysisFocus               = "COVENANT_ANALYSIS_FOCUS"
	EnvAnalysisRiskThreshold       = "COVENANT_ANALYSIS_RISK_THRESHOLD"
	EnvAnalysisFallbackPolicy      = "COVENANT_ANALYSIS_FALLBACK_POLICY"
	EnvAnalysisConfidenceSource    = "COVENANT_ANALYSIS_CONFIDENCE_SOURCE"
	EnvAnalysisSerializeClassifier = "COVENANT_ANALYSIS_SERIALIZE_CLASSIFIER"
	EnvAnalysisMaxTextChars        = "COVENANT_ANALYSIS_MAX_TEXT_CHARS"
	EnvAnalysisMaxPageWorkers      = "COVENANT_ANALYSIS_MAX_PAGE_WORKERS"
	EnvAnalysisTranscribeScanned   = "COVENANT_ANALYSIS_TRANSCRIBE_SCANNED_PAGES"
)

// Report tones. Tone is informational and does not alter agent prompts.
const (
	ToneExecutiveSummary = "Executive Summary"
	ToneTechnical        = "Technical Deep-Dive"
	ToneCompliance       = "Compliance-Focused"
	ToneRiskAssessment   = "Risk Assessment"
)

// Tones lists the accepted report tones.
var Tones = []string{
	ToneExecutiveSummary,
	ToneTechnical,
	ToneCompliance,
	ToneRiskAssessment,
}

// Gateway failure policies.
const (
	FallbackPropagate = "propagate"
	FallbackStatic    = "fallback"
)

// Confidence sources for report findings. A fixed source is written as
// ConfidenceFixedPrefix followed by a value in [0,1].
const (
	ConfidenceRandom         = "random"
	ConfidenceClassification = "classification"
	ConfidenceFixedPrefix    = "fixed:"
)

var domains = []string{"legal", "finance", "compliance", "operations"}

// AnalysisConfig holds default report settings and pipeline policies.
type AnalysisConfig struct {
	Tone                string   `toml:"tone"`
	Focus               []string `toml:"focus"`
	RiskThreshold       *float64 `toml:"risk_threshold"`
	FallbackPolicy      string   `toml:"fallback_policy"`
	ConfidenceSource    string   `toml:"confidence_source"`
	SerializeClassifier *bool    `toml:"serialize_classifier"`
	MaxTextChars        int      `toml:"max_text_chars"`
	MaxPageWorkers      int      `toml:"max_page_workers"`

	// TranscribeScanned sends PDF pages without a text layer to the vision
	// model. Requires ImageMagick on the host.
	TranscribeScanned bool `toml:"transcribe_scanned_pages"`
}

// Threshold returns the configured risk threshold.
func (c *AnalysisConfig) Threshold() float64 {
	if c.RiskThreshold == nil {
		return 0
	}
	return *c.RiskThreshold
}

// Serialize reports whether classifier calls are serialized.
func (c *AnalysisConfig) Serialize() bool {
	return c.SerializeClassifier == nil || *c.SerializeClassifier
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AnalysisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AnalysisConfig) Merge(overlay *AnalysisConfig) {
	if overlay.Tone != "" {
		c.Tone = overlay.Tone
	}
	if overlay.Focus != nil {
		c.Focus = overlay.Focus
	}
	if overlay.RiskThreshold != nil {
		c.RiskThreshold = overlay.RiskThreshold
	}
	if overlay.FallbackPolicy != "" {
		c.FallbackPolicy = overlay.FallbackPolicy
	}
	if overlay.ConfidenceSource != "" {
		c.ConfidenceSource = overlay.ConfidenceSource
	}
	if overlay.SerializeClassifier != nil {
		c.SerializeClassifier = overlay.SerializeClassifier
	}
	if overlay.MaxTextChars != 0 {
		c.MaxTextChars = overlay.MaxTextChars
	}
	if overlay.MaxPageWorkers != 0 {
		c.MaxPageWorkers = overlay.MaxPageWorkers
	}
	if overlay.TranscribeScanned {
		c.TranscribeScanned = true
	}
}

func (c *AnalysisConfig) loadDefaults() {
	if c.Tone == "" {
		c.Tone = ToneExecutiveSummary
	}
	if len(c.Focus) == 0 {
		c.Focus = []string{"legal", "finance", "compliance"}
	}
	if c.RiskThreshold == nil {
		t := 0.25
		c.RiskThreshold = &t
	}
	if c.FallbackPolicy == "" {
		c.FallbackPolicy = FallbackPropagate
	}
	if c.ConfidenceSource == "" {
		c.ConfidenceSource = ConfidenceRandom
	}
	if c.SerializeClassifier == nil {
		b := true
		c.SerializeClassifier = &b
	}
	if c.MaxTextChars <= 0 {
		c.MaxTextChars = 12000
	}
	if c.MaxPageWorkers <= 0 {
		c.MaxPageWorkers = 4
	}
}

func (c *AnalysisConfig) loadEnv() {
	if v := os.Getenv(EnvAnalysisTone); v != "" {
		c.Tone = v
	}
	if v := os.Getenv(EnvAnalysisFocus); v != "" {
		c.Focus = splitList(v)
	}
	if v := os.Getenv(EnvAnalysisRiskThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RiskThreshold = &f
		}
	}
	if v := os.Getenv(EnvAnalysisFallbackPolicy); v != "" {
		c.FallbackPolicy = v
	}
	if v := os.Getenv(EnvAnalysisConfidenceSource); v != "" {
		c.ConfidenceSource = v
	}
	if v := os.Getenv(EnvAnalysisSerializeClassifier); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SerializeClassifier = &b
		}
	}
	if v := os.Getenv(EnvAnalysisMaxTextChars); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTextChars = n
		}
	}
	if v := os.Getenv(EnvAnalysisMaxPageWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPageWorkers = n
		}
	}
	if v := os.Getenv(EnvAnalysisTranscribeScanned); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TranscribeScanned = b
		}
	}
}

func (c *AnalysisConfig) validate() error {
	if !slices.Contains(Tones, c.Tone) {
		return fmt.Errorf("invalid tone %q", c.Tone)
	}
	for _, d := range c.Focus {
		if !slices.Contains(domains, d) {
			return fmt.Errorf("invalid focus domain %q", d)
		}
	}
	if t := c.Threshold(); t < 0 || t > 1 {
		return fmt.Errorf("risk_threshold must be within [0,1], got %v", t)
	}
	switch c.FallbackPolicy {
	case FallbackPropagate, FallbackStatic:
	default:
		return fmt.Errorf("invalid fallback_policy %q", c.FallbackPolicy)
	}
	if err := validateConfidence(c.ConfidenceSource); err != nil {
		return err
	}
	if c.MaxTextChars < 1 {
		return fmt.Errorf("max_text_chars must be positive")
	}
	return nil
}

func validateConfidence(source string) error {
	switch source {
	case ConfidenceRandom, ConfidenceClassification:
		return nil
	}
	if v, ok := strings.CutPrefix(source, ConfidenceFixedPrefix); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return nil
		}
	}
	return fmt.Errorf("invalid confidence_source %q", source)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
