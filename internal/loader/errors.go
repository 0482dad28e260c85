package loader

import (
	"errors"
	"net/http"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("document could not be read")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
	ErrTranscription     = errors.New("scanned page transcription failed")
)

// MapHTTPStatus maps loader errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrCorruptDocument), errors.Is(err, ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTranscription):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
