package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
)

// BuildInput carries the editable fields of a saved build.
type BuildInput struct {
	Name       string
	Image      model.ImageRef
	Components []model.RawComponent
	Published  bool
}

// BuildUseCase manages saved builds.
type BuildUseCase struct {
	builds  repository.BuildRepository
	catalog repository.CatalogRepository
	now     func() time.Time
}

// NewBuildUseCase constructs BuildUseCase.
func NewBuildUseCase(builds repository.BuildRepository, catalog repository.CatalogRepository) *BuildUseCase {
	return &BuildUseCase{builds: builds, catalog: catalog, now: time.Now}
}

// Create saves a new build owned by actor.
func (u *BuildUseCase) Create(ctx context.Context, actor Actor, in BuildInput) (*model.Build, error) {
	if actor.Guest() {
		return nil, domainErrors.ErrForbidden
	}
	lines, err := u.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	total, _ := model.SumLines(lines)
	build := &model.Build{
		ID:         uuid.NewString(),
		UserID:     actor.UserID,
		Name:       strings.TrimSpace(in.Name),
		Components: lines,
		TotalPrice: total,
		Image:      in.Image,
		Published:  in.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := u.builds.Create(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

// Get returns a build visible to actor: published, owned, or any for admins.
func (u *BuildUseCase) Get(ctx context.Context, actor Actor, id string) (*model.Build, error) {
	build, err := u.builds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !build.Published && !actor.owns(build.UserID) && !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return build, nil
}

// ListMine returns builds owned by actor, newest first.
func (u *BuildUseCase) ListMine(ctx context.Context, actor Actor) ([]model.Build, error) {
	if actor.Guest() {
		return nil, domainErrors.ErrForbidden
	}
	return u.builds.ListByUser(ctx, actor.UserID)
}

// ListPublished returns every published build.
func (u *BuildUseCase) ListPublished(ctx context.Context) ([]model.Build, error) {
	return u.builds.ListPublished(ctx)
}

// Update replaces name, image and components of a build that was not ordered.
func (u *BuildUseCase) Update(ctx context.Context, actor Actor, id string, in BuildInput) (*model.Build, error) {
	build, err := u.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if build.Ordered() {
		return nil, domainErrors.ErrBuildLocked
	}
	lines, err := u.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	build.Name = strings.TrimSpace(in.Name)
	build.Image = in.Image
	build.Components = lines
	build.TotalPrice, _ = model.SumLines(lines)
	build.Published = in.Published
	build.UpdatedAt = u.now().UTC()
	if err := u.builds.Update(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

// SetPublished toggles the public visibility of a build.
func (u *BuildUseCase) SetPublished(ctx context.Context, actor Actor, id string, published bool) (*model.Build, error) {
	build, err := u.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if build.Published == published {
		return build, nil
	}
	build.Published = published
	build.UpdatedAt = u.now().UTC()
	if err := u.builds.Update(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

// Delete removes a build that was not ordered.
func (u *BuildUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	build, err := u.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	if build.Ordered() {
		return domainErrors.ErrBuildLocked
	}
	return u.builds.Delete(ctx, id)
}

func (u *BuildUseCase) editable(ctx context.Context, actor Actor, id string) (*model.Build, error) {
	build, err := u.builds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(build.UserID) && !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return build, nil
}

func (u *BuildUseCase) prepare(ctx context.Context, in BuildInput) ([]model.ComponentLine, error) {
	verr := &domainErrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "name is required")
	}

	lines, err := Reconcile(in.Components)
	if err != nil {
		verr.Merge("components", asValidation(err))
	} else if len(lines) == 0 {
		verr.Add("components", "at least one component is required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	lines, err = enrichLines(ctx, u.catalog, lines, pricedIDs(in.Components), verr)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// asValidation unwraps err into a ValidationError, wrapping foreign errors.
func asValidation(err error) *domainErrors.ValidationError {
	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return domainErrors.NewValidationError("", err.Error())
}
