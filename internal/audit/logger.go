package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/limitless-hr/hris/internal/platform/storage"
	"github.com/limitless-hr/hris/internal/rbac"
)

const (
	// StorageKey is the only key the Logger writes.
	StorageKey = "hris_audit_logs"
	// Capacity bounds the persisted log; older entries are evicted first.
	Capacity = 100
)

// FailureObserver is told about persistence failures that were swallowed.
type FailureObserver interface {
	ObserveAuditFailure(op string)
}

// Logger appends access events to a bounded, persisted list.
type Logger struct {
	mu       sync.Mutex
	kv       storage.KV
	source   rbac.SubjectSource
	logger   *slog.Logger
	observer FailureObserver
	now      func() time.Time
}

// NewLogger creates a Logger writing to kv and stamping entries with the
// subject from source.
func NewLogger(kv storage.KV, source rbac.SubjectSource, logger *slog.Logger, observer FailureObserver) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{kv: kv, source: source, logger: logger, observer: observer, now: time.Now}
}

// LogAccess records an event. It never fails from the caller's point of
// view; storage problems are logged and counted.
func (l *Logger) LogAccess(ctx context.Context, resource, action string, details map[string]any) {
	if l == nil {
		return
	}
	entry := Entry{
		ID:         uuid.NewString(),
		Timestamp:  l.now().UTC(),
		Resource:   resource,
		Action:     action,
		Details:    details,
		ClientMeta: ClientMetaFromContext(ctx),
	}
	if l.source != nil {
		if subject, ok := l.source.Subject(); ok {
			entry.UserID = subject.ID
			entry.UserRole = subject.Role
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.read(ctx)
	if err != nil {
		l.fail("read", err)
		entries = nil
	}
	entries = append(entries, entry)
	if len(entries) > Capacity {
		entries = entries[len(entries)-Capacity:]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		l.fail("encode", err)
		return
	}
	if err := l.kv.Set(ctx, StorageKey, data, 0); err != nil {
		l.fail("write", err)
	}
}

// Logs returns the persisted entries oldest-first, or nothing when the log
// is missing or unreadable.
func (l *Logger) Logs(ctx context.Context) []Entry {
	if l == nil {
		return []Entry{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.read(ctx)
	if err != nil {
		l.fail("read", err)
		return []Entry{}
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}

func (l *Logger) read(ctx context.Context) ([]Entry, error) {
	if l.kv == nil {
		return nil, errors.New("audit: storage not configured")
	}
	raw, err := l.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *Logger) fail(op string, err error) {
	l.logger.Warn("audit log "+op, slog.Any("error", err))
	if l.observer != nil {
		l.observer.ObserveAuditFailure(op)
	}
}
