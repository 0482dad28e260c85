package contracts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("contract not found")
	ErrDuplicate     = errors.New("contract already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidStatus = errors.New("invalid contract status")
)

// MapHTTPStatus maps contract errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidStatus) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
