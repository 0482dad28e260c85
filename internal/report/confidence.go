package report

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/JaimeStill/covenant/internal/llm"
)

// Confidence source kinds accepted by NewConfidenceSource. A fixed source
// is written as SourceFixedPrefix followed by a value in [0,1], e.g.
// "fixed:0.8".
const (
	SourceRandom         = "random"
	SourceClassification = "classification"
	SourceFixedPrefix    = "fixed:"
)

// Bounds of RandomConfidence draws.
const (
	MinRandomConfidence = 0.75
	MaxRandomConfidence = 0.92
)

// ConfidenceSource assigns a confidence to a finding.
type ConfidenceSource interface {
	Confidence(issue string) float64
}

// RandomConfidence draws uniformly from [0.75, 0.92], rounded to two
// decimals. The values are a display placeholder, not a calibrated score.
type RandomConfidence struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomConfidence creates a RandomConfidence. A nil rng uses the
// process-wide generator.
func NewRandomConfidence(rng *rand.Rand) *RandomConfidence {
	return &RandomConfidence{rng: rng}
}

func (r *RandomConfidence) Confidence(string) float64 {
	var f float64
	if r.rng == nil {
		f = rand.Float64()
	} else {
		r.mu.Lock()
		f = r.rng.Float64()
		r.mu.Unlock()
	}
	return Round2(MinRandomConfidence + f*(MaxRandomConfidence-MinRandomConfidence))
}

// FixedConfidence returns the same value for every finding.
type FixedConfidence float64

func (f FixedConfidence) Confidence(string) float64 {
	return float64(f)
}

// ClassificationConfidence reuses the classifier score for every finding.
type ClassificationConfidence struct {
	Classification llm.Classification
}

func (c ClassificationConfidence) Confidence(string) float64 {
	return Round2(c.Classification.Confidence)
}

// NewConfidenceSource selects a source by kind. Empty kind selects random.
func NewConfidenceSource(kind string, c llm.Classification, rng *rand.Rand) (ConfidenceSource, error) {
	switch kind {
	case "", SourceRandom:
		return NewRandomConfidence(rng), nil
	case SourceClassification:
		return ClassificationConfidence{Classification: c}, nil
	}

	if v, ok := strings.CutPrefix(kind, SourceFixedPrefix); ok {
		f, err := ParseFixed(v)
		if err != nil {
			return nil, err
		}
		return FixedConfidence(f), nil
	}

	return nil, fmt.Errorf("unknown confidence source: %s", kind)
}

// ParseFixed parses the value of a fixed confidence source.
func ParseFixed(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("fixed confidence must be a number in [0,1], got %q", v)
	}
	return Round2(f), nil
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
