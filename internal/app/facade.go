package app

import (
	"context"

	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// ShopFacade exposes the use cases as the single surface the HTTP layer depends on.
type ShopFacade struct {
	auth     *usecase.AuthUseCase
	catalog  *usecase.CatalogUseCase
	builds   *usecase.BuildUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
	storage  repository.Factory
}

func NewShopFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	builds *usecase.BuildUseCase,
	checkout *usecase.CheckoutUseCase,
	orders *usecase.OrderUseCase,
	storage repository.Factory,
) *ShopFacade {
	return &ShopFacade{
		auth:     auth,
		catalog:  catalog,
		builds:   builds,
		checkout: checkout,
		orders:   orders,
		storage:  storage,
	}
}

func (f *ShopFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	return f.auth.Register(ctx, in)
}

func (f *ShopFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *ShopFacade) ParseToken(ctx context.Context, token string) (*pkgAuth.Claims, error) {
	return f.auth.ParseToken(ctx, token)
}

func (f *ShopFacade) Logout(ctx context.Context, claims *pkgAuth.Claims) error {
	return f.auth.Logout(ctx, claims)
}

func (f *ShopFacade) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *ShopFacade) Components(ctx context.Context, componentType string) ([]model.CatalogComponent, error) {
	return f.catalog.List(ctx, componentType)
}

func (f *ShopFacade) Component(ctx context.Context, id string) (*model.CatalogComponent, error) {
	return f.catalog.Get(ctx, id)
}

func (f *ShopFacade) UpsertComponent(ctx context.Context, actor usecase.Actor, c model.CatalogComponent) (*model.CatalogComponent, error) {
	return f.catalog.Upsert(ctx, actor, c)
}

func (f *ShopFacade) CreateBuild(ctx context.Context, actor usecase.Actor, in usecase.BuildInput) (*model.Build, error) {
	return f.builds.Create(ctx, actor, in)
}

func (f *ShopFacade) Build(ctx context.Context, actor usecase.Actor, id string) (*model.Build, error) {
	return f.builds.Get(ctx, actor, id)
}

func (f *ShopFacade) MyBuilds(ctx context.Context, actor usecase.Actor) ([]model.Build, error) {
	return f.builds.ListMine(ctx, actor)
}

func (f *ShopFacade) PublishedBuilds(ctx context.Context) ([]model.Build, error) {
	return f.builds.ListPublished(ctx)
}

func (f *ShopFacade) UpdateBuild(ctx context.Context, actor usecase.Actor, id string, in usecase.BuildInput) (*model.Build, error) {
	return f.builds.Update(ctx, actor, id, in)
}

func (f *ShopFacade) PublishBuild(ctx context.Context, actor usecase.Actor, id string, published bool) (*model.Build, error) {
	return f.builds.SetPublished(ctx, actor, id, published)
}

func (f *ShopFacade) DeleteBuild(ctx context.Context, actor usecase.Actor, id string) error {
	return f.builds.Delete(ctx, actor, id)
}

func (f *ShopFacade) Checkout(ctx context.Context, actor usecase.Actor, in usecase.CheckoutInput) (*model.Order, error) {
	return f.checkout.Checkout(ctx, actor, in)
}

func (f *ShopFacade) Orders(ctx context.Context, actor usecase.Actor, filter model.OrderFilter) ([]model.Order, error) {
	orders, err := f.orders.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		return []model.Order{}, nil
	}
	return orders, nil
}

func (f *ShopFacade) Order(ctx context.Context, actor usecase.Actor, id string) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *ShopFacade) Invoice(ctx context.Context, actor usecase.Actor, id string) (*model.Invoice, error) {
	return f.orders.Invoice(ctx, actor, id)
}

func (f *ShopFacade) AdvanceOrder(ctx context.Context, actor usecase.Actor, id, status string) (*model.Order, error) {
	return f.orders.Advance(ctx, actor, id, status)
}

func (f *ShopFacade) DeleteOrder(ctx context.Context, actor usecase.Actor, id string) error {
	return f.orders.Delete(ctx, actor, id)
}

// HealthCheck reports whether the storage backend answers.
func (f *ShopFacade) HealthCheck(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}
