package analyses

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/covenant/pkg/query"
	"github.com/JaimeStill/covenant/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analyses", "a").
	Project("id", "ID").
	Project("contract_id", "ContractID").
	Project("contract_type", "ContractType").
	Project("tone", "Tone").
	Project("focus", "Focus").
	Project("risk_threshold", "RiskThreshold").
	Project("summary", "Summary").
	Project("confidence", "Confidence").
	Project("risk_score", "RiskScore").
	Project("risk_level", "RiskLevel").
	Project("exceeds_threshold", "ExceedsThreshold").
	Project("report", "Report").
	Project("analyzed_at", "AnalyzedAt")

var defaultSort = query.SortField{
	Field:      "AnalyzedAt",
	Descending: true,
}

var findingProjection = query.
	NewProjectionMap("public", "findings", "f").
	Project("id", "ID").
	Project("analysis_id", "AnalysisID").
	Project("contract_id", "ContractID").
	Project("domain", "Domain").
	Project("issue", "Issue").
	Project("agent", "Agent").
	Project("severity", "Severity").
	Project("confidence", "Confidence").
	Project("created_at", "CreatedAt")

var findingSort = []query.SortField{
	{Field: "Domain"},
	{Field: "CreatedAt"},
}

// Filters narrows analysis queries. Nil fields are ignored.
type Filters struct {
	ContractID       *string `json:"contract_id,omitempty"`
	ContractType     *string `json:"contract_type,omitempty"`
	RiskLevel        *string `json:"risk_level,omitempty"`
	ExceedsThreshold *bool   `json:"exceeds_threshold,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ContractID", f.ContractID).
		WhereEquals("ContractType", f.ContractType).
		WhereEquals("RiskLevel", f.RiskLevel).
		WhereEquals("ExceedsThreshold", f.ExceedsThreshold)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id := values.Get("contract_id"); id != "" {
		f.ContractID = &id
	}
	if ct := values.Get("contract_type"); ct != "" {
		f.ContractType = &ct
	}
	if rl := values.Get("risk_level"); rl != "" {
		f.RiskLevel = &rl
	}
	if ex := values.Get("exceeds_threshold"); ex != "" {
		if b, err := strconv.ParseBool(ex); err == nil {
			f.ExceedsThreshold = &b
		}
	}

	return f
}

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var (
		a      Analysis
		focus  []byte
		report []byte
	)

	err := s.Scan(
		&a.ID,
		&a.ContractID,
		&a.ContractType,
		&a.Tone,
		&focus,
		&a.RiskThreshold,
		&a.Summary,
		&a.Confidence,
		&a.RiskScore,
		&a.RiskLevel,
		&a.ExceedsThreshold,
		&report,
		&a.AnalyzedAt,
	)
	if err != nil {
		return Analysis{}, err
	}

	if err := json.Unmarshal(focus, &a.Focus); err != nil {
		return Analysis{}, err
	}
	a.Report = json.RawMessage(report)

	return a, nil
}

func scanFinding(s repository.Scanner) (Finding, error) {
	var f Finding
	err := s.Scan(
		&f.ID,
		&f.AnalysisID,
		&f.ContractID,
		&f.Domain,
		&f.Issue,
		&f.Agent,
		&f.Severity,
		&f.Confidence,
		&f.CreatedAt,
	)
	return f, err
}
