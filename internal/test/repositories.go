package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	Users map[string]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{Users: make(map[string]*model.User)}
}

// Create registers user unless the e-mail is taken or stub has explicit error.
func (s *UserRepositoryStub) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	for _, u := range s.Users {
		if u.Email == user.Email {
			return domainErrors.ErrAlreadyExists
		}
	}
	cp := *user
	s.Users[user.ID] = &cp
	return nil
}

// GetByEmail fetches user by e-mail or returns not found.
func (s *UserRepositoryStub) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u, ok := s.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CatalogRepositoryStub serves a fixed set of components.
type CatalogRepositoryStub struct {
	mu         sync.Mutex
	Components map[string]model.CatalogComponent
	Err        error
}

// NewCatalogRepositoryStub seeds the catalog with components.
func NewCatalogRepositoryStub(components ...model.CatalogComponent) *CatalogRepositoryStub {
	s := &CatalogRepositoryStub{Components: make(map[string]model.CatalogComponent)}
	for _, c := range components {
		s.Components[c.ID] = c
	}
	return s
}

// GetByID returns the component or not found.
func (s *CatalogRepositoryStub) GetByID(_ context.Context, id string) (*model.CatalogComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.Components[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

// GetByIDs returns the known subset of ids.
func (s *CatalogRepositoryStub) GetByIDs(_ context.Context, ids []string) (map[string]model.CatalogComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]model.CatalogComponent, len(ids))
	for _, id := range ids {
		if c, ok := s.Components[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// List returns components sorted by id, optionally of a single type.
func (s *CatalogRepositoryStub) List(_ context.Context, componentType string) ([]model.CatalogComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.CatalogComponent, 0, len(s.Components))
	for _, c := range s.Components {
		if componentType == "" || c.Type == componentType {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Upsert stores component.
func (s *CatalogRepositoryStub) Upsert(_ context.Context, component *model.CatalogComponent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Components == nil {
		s.Components = make(map[string]model.CatalogComponent)
	}
	s.Components[component.ID] = *component
	return nil
}

// BuildRepositoryStub keeps builds in memory.
type BuildRepositoryStub struct {
	mu        sync.Mutex
	Builds    map[string]*model.Build
	Err       error
	UpdateErr error
}

// NewBuildRepositoryStub seeds the repository with builds.
func NewBuildRepositoryStub(builds ...model.Build) *BuildRepositoryStub {
	s := &BuildRepositoryStub{Builds: make(map[string]*model.Build)}
	for i := range builds {
		s.Builds[builds[i].ID] = cloneBuild(&builds[i])
	}
	return s
}

// Create stores build unless the id is taken.
func (s *BuildRepositoryStub) Create(_ context.Context, build *model.Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Builds == nil {
		s.Builds = make(map[string]*model.Build)
	}
	if _, ok := s.Builds[build.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Builds[build.ID] = cloneBuild(build)
	return nil
}

// GetByID returns a copy of the stored build.
func (s *BuildRepositoryStub) GetByID(_ context.Context, id string) (*model.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	b, ok := s.Builds[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneBuild(b), nil
}

// ListByUser returns builds owned by userID, newest first.
func (s *BuildRepositoryStub) ListByUser(_ context.Context, userID string) ([]model.Build, error) {
	return s.list(func(b *model.Build) bool { return b.UserID == userID })
}

// ListPublished returns published builds, newest first.
func (s *BuildRepositoryStub) ListPublished(_ context.Context) ([]model.Build, error) {
	return s.list(func(b *model.Build) bool { return b.Published })
}

func (s *BuildRepositoryStub) list(keep func(*model.Build) bool) ([]model.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Build, 0)
	for _, b := range s.Builds {
		if keep(b) {
			out = append(out, *cloneBuild(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update replaces an existing build.
func (s *BuildRepositoryStub) Update(_ context.Context, build *model.Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.Builds[build.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Builds[build.ID] = cloneBuild(build)
	return nil
}

// Delete removes build.
func (s *BuildRepositoryStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Builds[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Builds, id)
	return nil
}

// Get returns the stored build without copying, or nil.
func (s *BuildRepositoryStub) Get(id string) *model.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Builds[id]
}

// OrderRepositoryStub keeps orders in memory.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	Orders    map[string]*model.Order
	Err       error
	CreateErr error
}

// NewOrderRepositoryStub seeds the repository with orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
	for i := range orders {
		s.Orders[orders[i].ID] = cloneOrder(&orders[i])
	}
	return s
}

// Create stores order.
func (s *OrderRepositoryStub) Create(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	if _, ok := s.Orders[order.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Orders[order.ID] = cloneOrder(order)
	return nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

// List applies filter and returns orders newest first.
func (s *OrderRepositoryStub) List(_ context.Context, filter model.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Order, 0)
	for _, o := range s.Orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.BuildStatus != filter.Status {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !o.CreatedAt.Before(filter.To) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update replaces an existing order.
func (s *OrderRepositoryStub) Update(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Orders[order.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Orders[order.ID] = cloneOrder(order)
	return nil
}

// Delete removes order.
func (s *OrderRepositoryStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Orders, id)
	return nil
}

// Len returns the number of stored orders.
func (s *OrderRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// FactoryStub bundles in-memory repositories.
type FactoryStub struct {
	UsersRepo   *UserRepositoryStub
	OrdersRepo  *OrderRepositoryStub
	BuildsRepo  *BuildRepositoryStub
	CatalogRepo *CatalogRepositoryStub
	HealthErr   error
	Closed      bool
}

// NewFactoryStub creates a factory with empty repositories.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		UsersRepo:   NewUserRepositoryStub(),
		OrdersRepo:  NewOrderRepositoryStub(),
		BuildsRepo:  NewBuildRepositoryStub(),
		CatalogRepo: NewCatalogRepositoryStub(),
	}
}

func (f *FactoryStub) Users() repository.UserRepository      { return f.UsersRepo }
func (f *FactoryStub) Orders() repository.OrderRepository    { return f.OrdersRepo }
func (f *FactoryStub) Builds() repository.BuildRepository    { return f.BuildsRepo }
func (f *FactoryStub) Catalog() repository.CatalogRepository { return f.CatalogRepo }
func (f *FactoryStub) HealthCheck(context.Context) error     { return f.HealthErr }
func (f *FactoryStub) Close()                                { f.Closed = true }

func cloneBuild(b *model.Build) *model.Build {
	cp := *b
	cp.Components = append([]model.ComponentLine(nil), b.Components...)
	return &cp
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Components = append([]model.ComponentLine(nil), o.Components...)
	if o.StepTimestamps != nil {
		cp.StepTimestamps = make(model.StepTimestamps, len(o.StepTimestamps))
		for k, v := range o.StepTimestamps {
			cp.StepTimestamps[k] = v
		}
	}
	return &cp
}

var _ repository.Factory = (*FactoryStub)(nil)
