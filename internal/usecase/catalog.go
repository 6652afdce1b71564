package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
)

// CatalogUseCase exposes the parts catalog.
type CatalogUseCase struct {
	catalog repository.CatalogRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(catalog repository.CatalogRepository) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog}
}

// List returns catalog components, optionally restricted to one type.
func (u *CatalogUseCase) List(ctx context.Context, componentType string) ([]model.CatalogComponent, error) {
	return u.catalog.List(ctx, strings.TrimSpace(componentType))
}

// Get returns a single catalog component.
func (u *CatalogUseCase) Get(ctx context.Context, id string) (*model.CatalogComponent, error) {
	return u.catalog.GetByID(ctx, id)
}

// Upsert creates or replaces a component. Admin only.
func (u *CatalogUseCase) Upsert(ctx context.Context, actor Actor, c model.CatalogComponent) (*model.CatalogComponent, error) {
	if !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}

	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Type = strings.TrimSpace(c.Type)

	verr := &domainErrors.ValidationError{}
	if c.ID == "" {
		verr.Add("id", "id is required")
	}
	if c.Name == "" {
		verr.Add("name", "name is required")
	}
	if c.Type == "" {
		verr.Add("type", "type is required")
	}
	if c.Price.IsNegative() {
		verr.Add("price", "price must not be negative")
	}
	if c.Stock < 0 {
		verr.Add("stock", "stock must not be negative")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := u.catalog.Upsert(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// enrichLines fills snapshot fields from the catalog. Catalog prices win
// over inline prices; unknown components must carry an inline price.
func enrichLines(ctx context.Context, catalog repository.CatalogRepository, lines []model.ComponentLine, priced map[string]bool, verr *domainErrors.ValidationError) ([]model.ComponentLine, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ComponentID
	}
	known, err := catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.ComponentLine, len(lines))
	for i, l := range lines {
		c, ok := known[l.ComponentID]
		if !ok {
			if !priced[l.ComponentID] {
				verr.AddAt(i, "components.price", "unknown component "+l.ComponentID+" needs an inline price")
			}
			out[i] = l
			continue
		}
		l.Price = c.Price
		if l.Name == "" {
			l.Name = c.Name
		}
		if l.Type == "" {
			l.Type = c.Type
		}
		if l.Manufacturer == "" {
			l.Manufacturer = c.Manufacturer
		}
		if l.Image == "" {
			l.Image = c.Image.URL
		}
		out[i] = l
	}
	return out, nil
}

// pricedIDs records which raw entries carried an inline price.
func pricedIDs(raw []model.RawComponent) map[string]bool {
	priced := make(map[string]bool, len(raw))
	for _, r := range raw {
		if r.Price == nil {
			continue
		}
		id := strings.TrimSpace(r.ComponentID)
		if id == "" {
			id = strings.TrimSpace(r.ID)
		}
		priced[id] = true
	}
	return priced
}

func allPriced(lines []model.ComponentLine) map[string]bool {
	priced := make(map[string]bool, len(lines))
	for _, l := range lines {
		priced[l.ComponentID] = true
	}
	return priced
}
