package analyses

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/loader"
	"github.com/JaimeStill/covenant/internal/workflow"
)

var (
	ErrNotFound        = errors.New("analysis not found")
	ErrDuplicate       = errors.New("analysis already exists")
	ErrInvalidSettings = errors.New("invalid analysis settings")
	ErrInvalidID       = errors.New("invalid analysis id")
)

// MapHTTPStatus maps analysis errors, including those surfaced from the
// loader, workflow, and model backend, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSettings), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, loader.ErrCorruptDocument),
		errors.Is(err, loader.ErrEmptyDocument),
		errors.Is(err, workflow.ErrEmptyContract):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrBackendUnavailable),
		errors.Is(err, llm.ErrClassificationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
