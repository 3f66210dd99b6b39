// Package documents tracks which required signers have signed each document.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/limitless-hr/hris/internal/signature"
)

// ErrNotEligible is returned when a record's signer has no pending entry.
var ErrNotEligible = errors.New("documents: signer not eligible")

// CompletionNotifier is told when the last required signature lands.
type CompletionNotifier interface {
	DocumentCompleted(ctx context.Context, doc Document) error
}

// Workflow applies signature records to documents.
type Workflow struct {
	repo     Repository
	notifier CompletionNotifier
	logger   *slog.Logger
}

// NewWorkflow builds a Workflow. notifier may be nil.
func NewWorkflow(repo Repository, notifier CompletionNotifier, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{repo: repo, notifier: notifier, logger: logger}
}

// CanUserSign is true iff name has a pending entry on doc.
func CanUserSign(doc Document, name string) bool {
	if name == "" {
		return false
	}
	for _, s := range doc.Signers {
		if s.Signer == name && s.Status == StatusPending {
			return true
		}
	}
	return false
}

// List returns all documents.
func (w *Workflow) List(ctx context.Context) ([]Document, error) {
	return w.repo.List(ctx)
}

// Get returns one document.
func (w *Workflow) Get(ctx context.Context, id string) (Document, error) {
	return w.repo.Get(ctx, id)
}

// Apply marks the record's signer as signed at the record's timestamp.
// Eligibility is re-checked under the repository lock.
// Signed entries never revert.
func (w *Workflow) Apply(ctx context.Context, docID string, rec signature.Record) (Document, error) {
	doc, err := w.repo.Update(ctx, docID, func(d *Document) error {
		for i := range d.Signers {
			entry := &d.Signers[i]
			if entry.Signer != rec.Signer || entry.Status != StatusPending {
				continue
			}
			at := rec.Timestamp
			entry.Status = StatusSigned
			entry.SignedAt = &at
			d.Signatures = append(d.Signatures, rec)
			return nil
		}
		return fmt.Errorf("%w: %s on %s", ErrNotEligible, rec.Signer, d.ID)
	})
	if err != nil {
		return Document{}, err
	}
	if doc.FullySigned() && w.notifier != nil {
		if err := w.notifier.DocumentCompleted(ctx, doc); err != nil {
			w.logger.Warn("notify document completed", slog.String("document", doc.ID), slog.Any("error", err))
		}
	}
	return doc, nil
}
