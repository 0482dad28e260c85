// Package contracts implements contract intake: upload to blob storage,
// registration, status tracking, and lookup.
package contracts

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Status tracks a contract through analysis.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusAnalyzing, StatusAnalyzed, StatusFailed:
		return true
	}
	return false
}

// Contract is a registered contract file and the headline of its latest
// analysis, if any.
type Contract struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	PageCount    *int       `json:"page_count"`
	StorageKey   string     `json:"storage_key"`
	Status       Status     `json:"status"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ContractType *string    `json:"contract_type"`
	RiskScore    *float64   `json:"risk_score"`
	Confidence   *float64   `json:"confidence"`
	AnalyzedAt   *time.Time `json:"analyzed_at"`
}

// CreateCommand carries an uploaded file. PageCount is nil for non-PDF files.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

// NewID derives a contract ID from the filename and upload time:
// "CTR-" followed by the first eight hex digits of the MD5 digest, upper-cased.
func NewID(filename string, at time.Time) string {
	sum := md5.Sum([]byte(filename + strconv.FormatInt(at.UnixNano(), 10)))
	return "CTR-" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
