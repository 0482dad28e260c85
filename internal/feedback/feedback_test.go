package feedback_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/internal/feedback"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{"trimmed", "  Indemnity cap looks low.\n", "Indemnity cap looks low.", nil},
		{"blank", " \t\n", "", feedback.ErrEmptyText},
		{"at limit", strings.Repeat("é", feedback.MaxTextLength), strings.Repeat("é", feedback.MaxTextLength), nil},
		{"over limit", strings.Repeat("a", feedback.MaxTextLength+1), "", feedback.ErrTextTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feedback.CreateCommand{Text: tt.text}.Normalize()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{contracts.ErrNotFound, http.StatusNotFound},
		{feedback.ErrEmptyText, http.StatusBadRequest},
		{feedback.ErrTextTooLong, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := feedback.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

type fakeSystem struct {
	feedback.System
	entries map[string][]feedback.Feedback
}

func (f *fakeSystem) Create(_ context.Context, contractID string, cmd feedback.CreateCommand) (*feedback.Feedback, error) {
	cmd, err := cmd.Normalize()
	if err != nil {
		return nil, err
	}
	if _, ok := f.entries[contractID]; !ok {
		return nil, contracts.ErrNotFound
	}

	fb := feedback.Feedback{ID: uuid.New(), ContractID: contractID, Text: cmd.Text}
	f.entries[contractID] = append(f.entries[contractID], fb)
	return &fb, nil
}

func (f *fakeSystem) List(_ context.Context, contractID string) ([]feedback.Feedback, error) {
	items, ok := f.entries[contractID]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return items, nil
}

func TestHandler(t *testing.T) {
	sys := &fakeSystem{entries: map[string][]feedback.Feedback{"CTR-1": {}}}
	h := feedback.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	g := h.Routes()
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+g.Prefix+r.Pattern, r.Handler)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"create", http.MethodPost, "/feedback/CTR-1", `{"text":"Renewal terms unclear"}`, http.StatusCreated},
		{"create blank", http.MethodPost, "/feedback/CTR-1", `{"text":"  "}`, http.StatusBadRequest},
		{"create malformed", http.MethodPost, "/feedback/CTR-1", `{`, http.StatusBadRequest},
		{"create unknown contract", http.MethodPost, "/feedback/CTR-9", `{"text":"x"}`, http.StatusNotFound},
		{"list", http.MethodGet, "/feedback/CTR-1", "", http.StatusOK},
		{"list unknown contract", http.MethodGet, "/feedback/CTR-9", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}

	if got := len(sys.entries["CTR-1"]); got != 1 {
		t.Errorf("stored entries = %d, want 1", got)
	}
}
