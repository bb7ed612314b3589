package documents

import (
	"context"
	"encoding/json"
)

// Repository persists documents. Update and Delete are owner-filtered: a
// record that exists but belongs to a different owner reports
// common.ErrorNotFound, exactly like a missing one, so ownership cannot be
// probed through error shapes.
type Repository interface {
	ListByOwner(ctx context.Context, collection, ownerID string) ([]*Document, error)
	Create(ctx context.Context, doc *Document) (*Document, error)
	Update(ctx context.Context, collection, id, ownerID string, payload json.RawMessage) (*Document, error)
	Delete(ctx context.Context, collection, id, ownerID string) error
}
