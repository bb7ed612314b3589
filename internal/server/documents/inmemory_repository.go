package documents

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/lifedash/internal/common"
)

// InMemoryRepository is a map-backed Repository used by tests and local runs
// without PostgreSQL.
type InMemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*Document
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*Document)}
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, collection, ownerID string) ([]*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*Document, 0)
	for _, doc := range r.byID {
		if doc.Collection == collection && doc.OwnerID == ownerID {
			out := *doc
			docs = append(docs, &out)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, doc *Document) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *doc
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, collection, id, ownerID string, payload json.RawMessage) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byID[id]
	if !ok || doc.Collection != collection || doc.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}

	doc.Payload = payload
	out := *doc
	return &out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, collection, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byID[id]
	if !ok || doc.Collection != collection || doc.OwnerID != ownerID {
		return common.ErrorNotFound
	}

	delete(r.byID, id)
	return nil
}
