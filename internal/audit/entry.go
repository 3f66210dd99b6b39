package audit

import (
	"context"
	"time"

	"github.com/limitless-hr/hris/internal/rbac"
)

// ClientMeta describes the client that triggered an event.
type ClientMeta struct {
	UserAgent  string `json:"userAgent,omitempty"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	Path       string `json:"path,omitempty"`
}

// Entry is one append-only audit record.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"userId,omitempty"`
	UserRole   rbac.Role      `json:"userRole,omitempty"`
	Resource   string         `json:"resource"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	ClientMeta ClientMeta     `json:"clientMeta"`
}

type clientMetaKey struct{}

// WithClientMeta attaches client metadata for later audit entries.
func WithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

// ClientMetaFromContext extracts metadata stored by WithClientMeta.
func ClientMetaFromContext(ctx context.Context) ClientMeta {
	meta, _ := ctx.Value(clientMetaKey{}).(ClientMeta)
	return meta
}
