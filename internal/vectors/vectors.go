// Package vectors indexes contract text, clause windows, and agent outputs
// as embeddings and ranks stored contracts by cosine similarity.
package vectors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"net/http"
	"slices"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/clauses"
)

// Kind labels what a vector was built from.
type Kind string

const (
	KindContract Kind = "contract"
	KindClause   Kind = "clause"
	KindAgent    Kind = "agent_result"
)

// DefaultTopK is the number of matches returned when none is requested.
const DefaultTopK = 5

var (
	ErrDisabled          = errors.New("vector index is disabled")
	ErrEmptyQuery        = errors.New("query text is required")
	ErrNotIndexed        = errors.New("contract has not been indexed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// MapHTTPStatus maps vector errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotIndexed):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Record is one stored vector and the text it was built from.
type Record struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	Kind        Kind      `json:"kind"`
	ClauseIndex *int      `json:"clause_index,omitempty"`
	Agent       string    `json:"agent,omitempty"`
	Text        string    `json:"text"`
	Vector      []float32 `json:"-"`
}

// Match is a similarity search hit.
type Match struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contract_id"`
	Score      float64 `json:"score"`
}

// Records builds the unembedded records for one analyzed contract: the
// contract itself, each non-empty clause window, and each agent output
// serialized as JSON.
func Records(
	contractID, text string,
	extracted clauses.Result,
	outputs map[string]agents.Result,
) ([]Record, error) {
	records := []Record{{
		ID:         contractID,
		ContractID: contractID,
		Kind:       KindContract,
		Text:       text,
	}}

	for i, clause := range extracted.Texts() {
		if clause == "" {
			continue
		}
		records = append(records, Record{
			ID:          fmt.Sprintf("%s_clause_%d", contractID, i),
			ContractID:  contractID,
			Kind:        KindClause,
			ClauseIndex: &i,
			Text:        clause,
		})
	}

	for _, name := range slices.Sorted(maps.Keys(outputs)) {
		data, err := json.Marshal(outputs[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s output: %w", name, err)
		}
		records = append(records, Record{
			ID:         fmt.Sprintf("%s_%s", contractID, name),
			ContractID: contractID,
			Kind:       KindAgent,
			Agent:      name,
			Text:       string(data),
		})
	}

	return records, nil
}

// Cosine returns the cosine similarity of a and b. Zero vectors score 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Rank scores candidates against query and returns the best topK, highest
// first. Candidates with a different dimension are skipped.
func Rank(query []float32, candidates []Record, topK int) []Match {
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score, err := Cosine(query, c.Vector)
		if err != nil {
			continue
		}
		matches = append(matches, Match{ID: c.ID, ContractID: c.ContractID, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Encode packs a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks bytes written by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector byte length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
