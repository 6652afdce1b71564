package repository

import (
	"context"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

// CatalogRepository provides read access to the parts catalog plus upsert
// for administrators.
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*model.CatalogComponent, error)
	// GetByIDs returns the known components keyed by id; unknown ids are absent.
	GetByIDs(ctx context.Context, ids []string) (map[string]model.CatalogComponent, error)
	List(ctx context.Context, componentType string) ([]model.CatalogComponent, error)
	Upsert(ctx context.Context, component *model.CatalogComponent) error
}
