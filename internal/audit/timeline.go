package audit

import (
	"context"
	"strings"
	"time"
)

// TimelineFilters narrows the audit timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Resource string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo is simple page metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	HasNext  bool `json:"hasNext"`
	PageSize int  `json:"pageSize"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result wraps one page of the timeline.
type Result struct {
	Rows   []Entry    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}

// Source yields raw entries oldest-first.
type Source interface {
	Logs(ctx context.Context) []Entry
}

// Service builds newest-first views over a Source.
type Service struct {
	source Source
}

// NewService wraps source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Timeline returns one page of matching entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) Result {
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	rows := s.Export(ctx, filters)
	offset := len(rows)
	if page-1 <= len(rows)/pageSize {
		offset = min((page-1)*pageSize, len(rows))
	}
	end := offset + pageSize
	hasNext := end < len(rows)
	if end > len(rows) {
		end = len(rows)
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows[offset:end], Paging: paging}
}

// Export returns every matching entry, newest first.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) []Entry {
	entries := s.source.Logs(ctx)
	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if filters.matches(entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

func (f TimelineFilters) matches(e Entry) bool {
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if actor := strings.TrimSpace(f.Actor); actor != "" && e.UserID != actor {
		return false
	}
	if res := strings.TrimSpace(f.Resource); res != "" && !strings.EqualFold(e.Resource, res) {
		return false
	}
	if act := strings.TrimSpace(f.Action); act != "" && !strings.EqualFold(e.Action, act) {
		return false
	}
	return true
}
