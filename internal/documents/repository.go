package documents

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound indicates an unknown document.
var ErrNotFound = errors.New("documents: not found")

// Repository stores documents.
type Repository interface {
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, id string) (Document, error)
	// Update loads id, applies fn and stores the result atomically.
	Update(ctx context.Context, id string, fn func(*Document) error) (Document, error)
}

// MemoryRepository keeps documents in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryRepository seeds a repository with docs.
func NewMemoryRepository(docs ...Document) *MemoryRepository {
	r := &MemoryRepository{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		r.docs[d.ID] = d.clone()
	}
	return r
}

// List returns every document ordered by ID.
func (r *MemoryRepository) List(ctx context.Context) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a copy of one document.
func (r *MemoryRepository) Get(ctx context.Context, id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d.clone(), nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(*Document) error) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	working := d.clone()
	if err := fn(&working); err != nil {
		return Document{}, err
	}
	r.docs[id] = working.clone()
	return working, nil
}

// SeedDocuments is the demo document feed.
func SeedDocuments() []Document {
	uploaded := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	signedAt := time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC)
	return []Document{
		{
			ID: "doc-001", Title: "Employment Contract - John Doe", Type: "contract", Owner: "Sarah Johnson",
			UploadedAt: uploaded,
			Signers: []SignerEntry{
				{Signer: "Sarah Johnson", Status: StatusSigned, SignedAt: &signedAt},
				{Signer: "John Doe", Status: StatusPending},
			},
		},
		{
			ID: "doc-002", Title: "Remote Work Policy Acknowledgement", Type: "policy", Owner: "Admin User",
			UploadedAt: uploaded.AddDate(0, 1, 0),
			Signers: []SignerEntry{
				{Signer: "John Doe", Status: StatusPending},
				{Signer: "Sarah Johnson", Status: StatusPending},
				{Signer: "Admin User", Status: StatusPending},
			},
		},
		{
			ID: "doc-003", Title: "Q1 Performance Review", Type: "evaluation", Owner: "Sarah Johnson",
			UploadedAt: uploaded.AddDate(0, 2, 0),
			Signers: []SignerEntry{
				{Signer: "Sarah Johnson", Status: StatusPending},
			},
		},
	}
}

var _ Repository = (*MemoryRepository)(nil)
