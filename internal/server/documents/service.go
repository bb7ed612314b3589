package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lifedash/internal/common"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the owner's records in a collection, most recent first.
// An absent ownerId is a validation error, not an empty result: the contract
// never exposes other owners' data by accident.
func (s *Service) List(ctx context.Context, collection, ownerID string) ([]*Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", common.ErrorValidation)
	}
	return s.repo.ListByOwner(ctx, collection, ownerID)
}

func (s *Service) Create(ctx context.Context, collection, ownerID string, payload json.RawMessage) (*Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", common.ErrorValidation)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: payload is required", common.ErrorValidation)
	}
	return s.repo.Create(ctx, &Document{OwnerID: ownerID, Collection: collection, Payload: payload})
}

func (s *Service) Update(ctx context.Context, collection, id, ownerID string, payload json.RawMessage) (*Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", common.ErrorValidation)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: payload is required", common.ErrorValidation)
	}
	return s.repo.Update(ctx, collection, id, ownerID, payload)
}

func (s *Service) Delete(ctx context.Context, collection, id, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: ownerId is required", common.ErrorValidation)
	}
	return s.repo.Delete(ctx, collection, id, ownerID)
}
