// Package audithttp exposes the session's audit trail as a JSON timeline
// and a CSV export.
package audithttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/limitless-hr/hris/internal/audit"
	"github.com/limitless-hr/hris/internal/auth"
	"github.com/limitless-hr/hris/internal/platform/httpx"
	"github.com/limitless-hr/hris/internal/rbac"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	maxPage         = 1000
	dateLayout      = "2006-01-02"
)

// Handler serves the audit timeline.
type Handler struct {
	logger *slog.Logger
	guard  rbac.Guard
}

// NewHandler builds a Handler. Routes are protected by guard.
func NewHandler(logger *slog.Logger, guard rbac.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, guard: guard}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	filters, err := parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	result := audit.NewService(access.Audit).Timeline(r.Context(), filters)
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	filters, err := parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	rows := audit.NewService(access.Audit).Export(r.Context(), filters)
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.logger.Error("encode audit csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	access.Audit.LogAccess(r.Context(), "audit", "export", map[string]any{"rows": len(rows)})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"audit-log.csv\"")
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	var filters audit.TimelineFilters

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return audit.TimelineFilters{}, validationError{field: "from"}
		}
		filters.From = from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return audit.TimelineFilters{}, validationError{field: "to"}
		}
		// inclusive of the whole day
		filters.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.From.After(filters.To) {
		return audit.TimelineFilters{}, validationError{field: "range"}
	}

	filters.Page = 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.TimelineFilters{}, validationError{field: "page"}
		}
		filters.Page = min(parsed, maxPage)
	}
	filters.PageSize = defaultPageSize
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.TimelineFilters{}, validationError{field: "page_size"}
		}
		filters.PageSize = min(parsed, maxPageSize)
	}

	filters.Actor = strings.TrimSpace(q.Get("actor"))
	filters.Resource = strings.TrimSpace(q.Get("resource"))
	filters.Action = strings.TrimSpace(q.Get("action"))
	return filters, nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var v validationError
	if errors.As(err, &v) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+v.field)
		return
	}
	h.logger.Error("validate filters", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

type validationError struct {
	field string
}

func (validationError) Error() string {
	return "validation failed"
}
