package llm

import "errors"

var (
	// ErrBackendUnavailable wraps any failure of the model backend call.
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	// ErrClassificationFailed marks a zero-shot classification that produced
	// no usable label. It is never masked by a fallback.
	ErrClassificationFailed = errors.New("contract classification failed")
	// ErrInvalidPolicy is returned for an unrecognized fallback policy.
	ErrInvalidPolicy = errors.New("fallback policy must be propagate or fallback")
)
