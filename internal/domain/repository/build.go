package repository

import (
	"context"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

// BuildRepository describes persistence operations with saved builds.
type BuildRepository interface {
	Create(ctx context.Context, build *model.Build) error
	GetByID(ctx context.Context, id string) (*model.Build, error)
	ListByUser(ctx context.Context, userID string) ([]model.Build, error)
	ListPublished(ctx context.Context) ([]model.Build, error)
	Update(ctx context.Context, build *model.Build) error
	Delete(ctx context.Context, id string) error
}
