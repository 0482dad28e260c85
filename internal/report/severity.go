package report

import "strings"

// Severity is the heuristic weight of a finding.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Keyword tiers, checked HIGH first.
var (
	HighKeywords   = []string{"terminate", "penalty", "liability", "breach", "uncapped"}
	MediumKeywords = []string{"auto-renew", "increase", "unclear"}
)

// Assess returns the severity of an issue by case-insensitive keyword match.
func Assess(issue string) Severity {
	lower := strings.ToLower(issue)

	if containsAny(lower, HighKeywords) {
		return SeverityHigh
	}
	if containsAny(lower, MediumKeywords) {
		return SeverityMedium
	}
	return SeverityLow
}

// Weight maps a severity onto the risk scale.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 1.0
	case SeverityMedium:
		return 0.5
	default:
		return 0.1
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
