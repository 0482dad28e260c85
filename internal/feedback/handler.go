package feedback

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/covenant/pkg/handlers"
	"github.com/JaimeStill/covenant/pkg/routes"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "feedback"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/feedback",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{contractId}", Handler: h.List},
			{Method: "POST", Pattern: "/{contractId}", Handler: h.Create},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context(), r.PathValue("contractId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyText)
		return
	}

	f, err := h.sys.Create(r.Context(), r.PathValue("contractId"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}
