// Package report assembles the final contract report and derives structured
// findings, risk score, and threshold labels from raw agent analyses.
package report

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/llm"
)

// Risk appetite labels for a threshold.
const (
	LevelConservative = "Conservative"
	LevelModerate     = "Moderate"
	LevelAggressive   = "Aggressive"
)

// Finding is one structured issue from a domain analysis.
type Finding struct {
	Issue      string   `json:"issue"`
	Agent      string   `json:"agent"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// FinalReport carries the pipeline output together with the postprocessed
// summary, score, and findings.
type FinalReport struct {
	ContractClassification llm.Classification       `json:"contract_classification"`
	SelectedAgents         []string                 `json:"selected_agents"`
	Analysis               map[string]agents.Result `json:"analysis"`

	Summary    string               `json:"summary,omitempty"`
	Confidence float64              `json:"confidence"`
	RiskScore  float64              `json:"risk_score"`
	Domains    map[string][]Finding `json:"domains,omitempty"`

	Tone             string  `json:"tone,omitempty"`
	RiskThreshold    float64 `json:"risk_threshold"`
	RiskLevel        string  `json:"risk_level,omitempty"`
	ExceedsThreshold bool    `json:"exceeds_threshold"`
}

// Settings controls report shaping. None of it affects agent behavior.
type Settings struct {
	Tone          string
	RiskThreshold float64
	Confidence    ConfidenceSource
}

// Build assembles the pipeline portion of a report.
func Build(c llm.Classification, selected []string, analysis map[string]agents.Result) FinalReport {
	return FinalReport{
		ContractClassification: c,
		SelectedAgents:         slices.Clone(selected),
		Analysis:               maps.Clone(analysis),
	}
}

// Postprocess returns a copy of r with findings, risk score, summary, and
// threshold fields derived from its analyses and s.
func Postprocess(r FinalReport, s Settings) FinalReport {
	src := s.Confidence
	if src == nil {
		src = NewRandomConfidence(nil)
	}

	raw := make(map[string][]string, len(r.Analysis))
	for _, domain := range domainOrder(r) {
		res := r.Analysis[domain]
		if res.Error != "" {
			continue
		}
		raw[domain] = Issues(res.Text())
	}

	out := r
	out.Domains = Structure(raw, src)
	out.RiskScore = Score(out.Domains)
	out.Confidence = Round2(r.ContractClassification.Confidence)
	out.Summary = Summarize(r.ContractClassification, len(r.SelectedAgents), out.Domains)
	out.Tone = s.Tone
	out.RiskThreshold = s.RiskThreshold
	out.RiskLevel = ThresholdLabel(s.RiskThreshold)
	out.ExceedsThreshold = out.RiskScore >= s.RiskThreshold

	return out
}

// Structure rewrites each domain's issue strings into findings.
func Structure(domains map[string][]string, src ConfidenceSource) map[string][]Finding {
	out := make(map[string][]Finding, len(domains))

	for domain, issues := range domains {
		findings := make([]Finding, 0, len(issues))
		for _, issue := range issues {
			findings = append(findings, Finding{
				Issue:      issue,
				Agent:      agentLabel(domain),
				Severity:   Assess(issue),
				Confidence: src.Confidence(issue),
			})
		}
		out[domain] = findings
	}

	return out
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// Issues splits an analysis into its non-empty lines with list markers removed.
func Issues(analysis string) []string {
	var issues []string
	for line := range strings.Lines(analysis) {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line != "" {
			issues = append(issues, line)
		}
	}
	return issues
}

// Score is the mean severity weight over all findings, rounded to two
// decimals. Zero findings score 0.
func Score(domains map[string][]Finding) float64 {
	var (
		total float64
		n     int
	)

	for _, domain := range slices.Sorted(maps.Keys(domains)) {
		for _, f := range domains[domain] {
			total += f.Severity.Weight()
			n++
		}
	}

	if n == 0 {
		return 0
	}
	return Round2(total / float64(n))
}

// ThresholdLabel names the risk appetite of a threshold.
func ThresholdLabel(threshold float64) string {
	switch {
	case threshold < 0.4:
		return LevelConservative
	case threshold < 0.7:
		return LevelModerate
	default:
		return LevelAggressive
	}
}

// Summarize describes the report in one sentence.
func Summarize(c llm.Classification, agentCount int, domains map[string][]Finding) string {
	counts := map[Severity]int{}
	for _, findings := range domains {
		for _, f := range findings {
			counts[f.Severity]++
		}
	}

	contractType := c.ContractType
	if contractType == "" {
		contractType = "Contract"
	}

	return fmt.Sprintf(
		"%s reviewed by %d agents: %d high, %d medium, and %d low severity findings.",
		contractType, agentCount,
		counts[SeverityHigh], counts[SeverityMedium], counts[SeverityLow],
	)
}

// Focus returns a copy of r limited to the given domains. An empty focus
// returns the report unfiltered.
func (r FinalReport) Focus(domains []string) FinalReport {
	if len(domains) == 0 {
		return r
	}

	keep := func(d string) bool { return slices.Contains(domains, d) }

	out := r
	out.SelectedAgents = slices.DeleteFunc(slices.Clone(r.SelectedAgents), func(d string) bool { return !keep(d) })
	out.Analysis = maps.Clone(r.Analysis)
	maps.DeleteFunc(out.Analysis, func(d string, _ agents.Result) bool { return !keep(d) })
	out.Domains = maps.Clone(r.Domains)
	maps.DeleteFunc(out.Domains, func(d string, _ []Finding) bool { return !keep(d) })

	return out
}

// Findings flattens the structured findings, sorted by domain name.
func (r FinalReport) Findings() []Finding {
	var all []Finding
	for _, domain := range slices.Sorted(maps.Keys(r.Domains)) {
		all = append(all, r.Domains[domain]...)
	}
	return all
}

// agentLabel names the agent credited with a finding, e.g. "legalAgent".
func agentLabel(domain string) string {
	return domain + "Agent"
}

func domainOrder(r FinalReport) []string {
	order := slices.Clone(r.SelectedAgents)
	for _, d := range slices.Sorted(maps.Keys(r.Analysis)) {
		if !slices.Contains(order, d) {
			order = append(order, d)
		}
	}
	return order
}
