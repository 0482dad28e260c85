package vectors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/covenant/pkg/handlers"
	"github.com/JaimeStill/covenant/pkg/routes"
)

// Handler exposes similarity search over indexed contracts.
type Handler struct {
	sys    System
	topK   int
	logger *slog.Logger
}

// SearchRequest is the body of a free-text similarity search.
type SearchRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

func NewHandler(sys System, topK int, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		topK:   topK,
		logger: logger.With("handler", "vectors"),
	}
}

// Routes mounts under /contracts alongside the contract handler.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/contracts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/similar", Handler: h.Similar},
			{Method: "POST", Pattern: "/similar", Handler: h.Search},
		},
	}
}

// Similar ranks other contracts against the stored vector of {id}.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	matches, err := h.sys.SimilarTo(r.Context(), r.PathValue("id"), h.parseTopK(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

// Search ranks contracts against free text.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyQuery)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyQuery)
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.topK
	}

	matches, err := h.sys.SearchSimilar(r.Context(), req.Text, topK)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

func (h *Handler) parseTopK(r *http.Request) int {
	if v := r.URL.Query().Get("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return h.topK
}
