package contracts

import (
	"net/url"

	"github.com/JaimeStill/covenant/pkg/query"
	"github.com/JaimeStill/covenant/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "contracts", "c").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "latest_analyses", "la", "LEFT JOIN", "c.id = la.contract_id").
	Project("contract_type", "ContractType").
	Project("risk_score", "RiskScore").
	Project("confidence", "Confidence").
	Project("analyzed_at", "AnalyzedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters narrows contract queries. Nil fields are ignored. Filename uses
// case-insensitive contains matching; the rest match exactly.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	Filename     *string `json:"filename,omitempty"`
	ContentType  *string `json:"content_type,omitempty"`
	ContractType *string `json:"contract_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("ContractType", f.ContractType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}
	if t := values.Get("contract_type"); t != "" {
		f.ContractType = &t
	}

	return f
}

func scanContract(s repository.Scanner) (Contract, error) {
	var c Contract
	err := s.Scan(
		&c.ID,
		&c.Filename,
		&c.ContentType,
		&c.SizeBytes,
		&c.PageCount,
		&c.StorageKey,
		&c.Status,
		&c.UploadedAt,
		&c.UpdatedAt,
		&c.ContractType,
		&c.RiskScore,
		&c.Confidence,
		&c.AnalyzedAt,
	)
	return c, err
}
