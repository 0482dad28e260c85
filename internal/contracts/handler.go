package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/covenant/internal/loader"
	"github.com/JaimeStill/covenant/pkg/formatting"
	"github.com/JaimeStill/covenant/pkg/handlers"
	"github.com/JaimeStill/covenant/pkg/pagination"
	"github.com/JaimeStill/covenant/pkg/routes"
)

// Handler provides HTTP endpoints for contract operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "contracts"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for contract endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/contracts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.Download},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of contracts filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single contract by ID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	c, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Download streams the stored contract file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	c, data, err := h.sys.Content(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(c.Filename)),
	)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// multipartOverhead is the request body allowance for form boundaries and
// part headers on top of the file size limit.
const multipartOverhead = 64 << 10

// Upload registers a contract from a multipart form "file" field. Only PDF
// and plain-text files are accepted; PDF page counts are read with pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadSize + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > limit {
			h.rejectTooLarge(w)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		h.rejectTooLarge(w)
		return
	}

	cmd, err := NewCreateCommand(header.Filename, data)
	if err != nil {
		handlers.RespondError(w, h.logger, loader.MapHTTPStatus(err), err)
		return
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) rejectTooLarge(w http.ResponseWriter) {
	err := fmt.Errorf("%w (%s)", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 0))
	handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
}

// Delete removes a contract and its stored file.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NewCreateCommand validates an uploaded file and reads its page count.
// Failures wrap loader.ErrUnsupportedFormat or loader.ErrCorruptDocument.
func NewCreateCommand(filename string, data []byte) (CreateCommand, error) {
	cmd := CreateCommand{
		Data:        data,
		Filename:    filename,
		ContentType: loader.DetectContentType(filename, data),
	}

	switch cmd.ContentType {
	case loader.ContentTypeText:
	case loader.ContentTypePDF:
		n, err := loader.PageCount(data)
		if err != nil {
			return CreateCommand{}, err
		}
		cmd.PageCount = &n
	default:
		return CreateCommand{}, fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, cmd.ContentType)
	}

	return cmd, nil
}
