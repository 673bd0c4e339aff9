package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abdulrhmanalqassas/guidekit/internal/apperr"
	"github.com/abdulrhmanalqassas/guidekit/internal/guide"
	"github.com/abdulrhmanalqassas/guidekit/internal/guideservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *guideservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *guideservice.Service) *Handler {
	return &Handler{svc: svc}
}

// guidePath extracts the guide path from the URL (everything after /api/guides/).
// Supports encoded slashes from OpenAPI clients (e.g. frontend%2Freact.md).
func guidePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeParseError maps a guide.ParseError to 422, anything else to 500.
func writeParseError(w http.ResponseWriter, op, path string, err error) {
	var pe *guide.ParseError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "malformed document",
			"line":  pe.Line,
			"msg":   pe.Msg,
		})
		return
	}
	slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// ListGuides handles GET /api/guides with optional pagination and sorting.
func (h *Handler) ListGuides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")

	items, total, err := h.svc.ListGuides(r.Context(), limit, offset, sort)
	if err != nil {
		slog.Error("list guides failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, GuideListResponse{Guides: items, Total: total})
}

// GetGuide handles GET /api/guides/*.
func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	path := guidePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	detail, err := h.svc.GetGuide(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeParseError(w, "get guide", path, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateGuide handles POST /api/guides.
func (h *Handler) CreateGuide(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	detail, err := h.svc.CreateGuide(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("guide already exists"))
			return
		}
		writeParseError(w, "create guide", req.Path, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// UpdateGuide handles PUT /api/guides/* with optimistic concurrency.
func (h *Handler) UpdateGuide(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := guidePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req UpdateGuideRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	detail, err := h.svc.UpdateGuide(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			writeParseError(w, "update guide", path, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteGuide handles DELETE /api/guides/*.
func (h *Handler) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	path := guidePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteGuide(r.Context(), path); err != nil {
		slog.Error("delete guide failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles GET /api/validate?path=. The report enumerates every
// discrepancy; an empty report means the document is consistent.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	report, err := h.svc.Validate(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeParseError(w, "validate", path, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Report handles GET /api/report: every recorded finding across the library.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.Report(r.Context())
	if err != nil {
		slog.Error("report failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Findings: findings})
}

// Render handles GET /api/render?path=&format=. Markdown is served as
// text/markdown, html as text/html.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != guideservice.FormatMarkdown && format != guideservice.FormatHTML {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown render format"))
		return
	}
	out, err := h.svc.RenderGuide(r.Context(), path, format)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeParseError(w, "render", path, err)
		return
	}
	contentType := "text/markdown; charset=utf-8"
	if format == guideservice.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph: the guide cross-reference graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.Graph(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}
