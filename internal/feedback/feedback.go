// Package feedback stores free-text reviewer feedback against contracts.
package feedback

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/contracts"
)

// MaxTextLength bounds a feedback entry in characters.
const MaxTextLength = 4000

var (
	ErrEmptyText   = errors.New("feedback text is required")
	ErrTextTooLong = errors.New("feedback text exceeds maximum length")
)

// Feedback is one stored reviewer comment.
type Feedback struct {
	ID         uuid.UUID `json:"id"`
	ContractID string    `json:"contract_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateCommand is the body of a feedback submission.
type CreateCommand struct {
	Text string `json:"text"`
}

// Normalize trims the text and checks its length.
func (c CreateCommand) Normalize() (CreateCommand, error) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return c, ErrEmptyText
	}
	if len([]rune(c.Text)) > MaxTextLength {
		return c, ErrTextTooLong
	}
	return c, nil
}

// MapHTTPStatus maps feedback errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrTextTooLong):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
