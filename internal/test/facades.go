package test

import (
	"context"

	"github.com/polkiloo/rigshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// ShopFacadeStub provides controllable behaviour for HTTP handlers. Nil
// functions fall back to a successful default.
type ShopFacadeStub struct {
	TokenParserStub

	RegisterFn     func(context.Context, usecase.RegisterInput) (*model.User, string, error)
	AuthenticateFn func(context.Context, string, string) (*model.User, string, error)
	LogoutFn       func(context.Context, *pkgAuth.Claims) error
	CurrentUserFn  func(context.Context, string) (*model.User, error)

	ComponentsFn      func(context.Context, string) ([]model.CatalogComponent, error)
	ComponentFn       func(context.Context, string) (*model.CatalogComponent, error)
	UpsertComponentFn func(context.Context, usecase.Actor, model.CatalogComponent) (*model.CatalogComponent, error)

	CreateBuildFn     func(context.Context, usecase.Actor, usecase.BuildInput) (*model.Build, error)
	BuildFn           func(context.Context, usecase.Actor, string) (*model.Build, error)
	MyBuildsFn        func(context.Context, usecase.Actor) ([]model.Build, error)
	PublishedBuildsFn func(context.Context) ([]model.Build, error)
	UpdateBuildFn     func(context.Context, usecase.Actor, string, usecase.BuildInput) (*model.Build, error)
	PublishBuildFn    func(context.Context, usecase.Actor, string, bool) (*model.Build, error)
	DeleteBuildFn     func(context.Context, usecase.Actor, string) error

	CheckoutFn func(context.Context, usecase.Actor, usecase.CheckoutInput) (*model.Order, error)

	OrdersFn       func(context.Context, usecase.Actor, model.OrderFilter) ([]model.Order, error)
	OrderFn        func(context.Context, usecase.Actor, string) (*model.Order, error)
	InvoiceFn      func(context.Context, usecase.Actor, string) (*model.Invoice, error)
	AdvanceOrderFn func(context.Context, usecase.Actor, string, string) (*model.Order, error)
	DeleteOrderFn  func(context.Context, usecase.Actor, string) error

	HealthErr error
}

// Register delegates to RegisterFn or returns a new customer.
func (s ShopFacadeStub) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return &model.User{ID: "user-1", Name: in.Name, Email: in.Email, Role: model.RoleCustomer}, "token", nil
}

// Authenticate delegates to AuthenticateFn or returns a customer.
func (s ShopFacadeStub) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return &model.User{ID: "user-1", Email: email, Role: model.RoleCustomer}, "token", nil
}

// Logout delegates to LogoutFn.
func (s ShopFacadeStub) Logout(ctx context.Context, claims *pkgAuth.Claims) error {
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx, claims)
	}
	return nil
}

// CurrentUser delegates to CurrentUserFn.
func (s ShopFacadeStub) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	if s.CurrentUserFn != nil {
		return s.CurrentUserFn(ctx, id)
	}
	return &model.User{ID: id, Role: model.RoleCustomer}, nil
}

// Components delegates to ComponentsFn.
func (s ShopFacadeStub) Components(ctx context.Context, componentType string) ([]model.CatalogComponent, error) {
	if s.ComponentsFn != nil {
		return s.ComponentsFn(ctx, componentType)
	}
	return []model.CatalogComponent{}, nil
}

// Component delegates to ComponentFn.
func (s ShopFacadeStub) Component(ctx context.Context, id string) (*model.CatalogComponent, error) {
	if s.ComponentFn != nil {
		return s.ComponentFn(ctx, id)
	}
	return &model.CatalogComponent{ID: id}, nil
}

// UpsertComponent delegates to UpsertComponentFn.
func (s ShopFacadeStub) UpsertComponent(ctx context.Context, actor usecase.Actor, c model.CatalogComponent) (*model.CatalogComponent, error) {
	if s.UpsertComponentFn != nil {
		return s.UpsertComponentFn(ctx, actor, c)
	}
	return &c, nil
}

// CreateBuild delegates to CreateBuildFn.
func (s ShopFacadeStub) CreateBuild(ctx context.Context, actor usecase.Actor, in usecase.BuildInput) (*model.Build, error) {
	if s.CreateBuildFn != nil {
		return s.CreateBuildFn(ctx, actor, in)
	}
	return &model.Build{ID: "build-1", UserID: actor.UserID, Name: in.Name}, nil
}

// Build delegates to BuildFn.
func (s ShopFacadeStub) Build(ctx context.Context, actor usecase.Actor, id string) (*model.Build, error) {
	if s.BuildFn != nil {
		return s.BuildFn(ctx, actor, id)
	}
	return &model.Build{ID: id}, nil
}

// MyBuilds delegates to MyBuildsFn.
func (s ShopFacadeStub) MyBuilds(ctx context.Context, actor usecase.Actor) ([]model.Build, error) {
	if s.MyBuildsFn != nil {
		return s.MyBuildsFn(ctx, actor)
	}
	return []model.Build{}, nil
}

// PublishedBuilds delegates to PublishedBuildsFn.
func (s ShopFacadeStub) PublishedBuilds(ctx context.Context) ([]model.Build, error) {
	if s.PublishedBuildsFn != nil {
		return s.PublishedBuildsFn(ctx)
	}
	return []model.Build{}, nil
}

// UpdateBuild delegates to UpdateBuildFn.
func (s ShopFacadeStub) UpdateBuild(ctx context.Context, actor usecase.Actor, id string, in usecase.BuildInput) (*model.Build, error) {
	if s.UpdateBuildFn != nil {
		return s.UpdateBuildFn(ctx, actor, id, in)
	}
	return &model.Build{ID: id, Name: in.Name}, nil
}

// PublishBuild delegates to PublishBuildFn.
func (s ShopFacadeStub) PublishBuild(ctx context.Context, actor usecase.Actor, id string, published bool) (*model.Build, error) {
	if s.PublishBuildFn != nil {
		return s.PublishBuildFn(ctx, actor, id, published)
	}
	return &model.Build{ID: id, Published: published}, nil
}

// DeleteBuild delegates to DeleteBuildFn.
func (s ShopFacadeStub) DeleteBuild(ctx context.Context, actor usecase.Actor, id string) error {
	if s.DeleteBuildFn != nil {
		return s.DeleteBuildFn(ctx, actor, id)
	}
	return nil
}

// Checkout delegates to CheckoutFn.
func (s ShopFacadeStub) Checkout(ctx context.Context, actor usecase.Actor, in usecase.CheckoutInput) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, actor, in)
	}
	return &model.Order{ID: "order-1", UserID: actor.UserID, BuildStatus: model.StatusPending}, nil
}

// Orders delegates to OrdersFn.
func (s ShopFacadeStub) Orders(ctx context.Context, actor usecase.Actor, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor, filter)
	}
	return []model.Order{}, nil
}

// Order delegates to OrderFn.
func (s ShopFacadeStub) Order(ctx context.Context, actor usecase.Actor, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, id)
	}
	return &model.Order{ID: id}, nil
}

// Invoice delegates to InvoiceFn.
func (s ShopFacadeStub) Invoice(ctx context.Context, actor usecase.Actor, id string) (*model.Invoice, error) {
	if s.InvoiceFn != nil {
		return s.InvoiceFn(ctx, actor, id)
	}
	return &model.Invoice{OrderID: id}, nil
}

// AdvanceOrder delegates to AdvanceOrderFn.
func (s ShopFacadeStub) AdvanceOrder(ctx context.Context, actor usecase.Actor, id, status string) (*model.Order, error) {
	if s.AdvanceOrderFn != nil {
		return s.AdvanceOrderFn(ctx, actor, id, status)
	}
	return &model.Order{ID: id, BuildStatus: model.BuildStatus(status)}, nil
}

// DeleteOrder delegates to DeleteOrderFn.
func (s ShopFacadeStub) DeleteOrder(ctx context.Context, actor usecase.Actor, id string) error {
	if s.DeleteOrderFn != nil {
		return s.DeleteOrderFn(ctx, actor, id)
	}
	return nil
}

// HealthCheck returns HealthErr.
func (s ShopFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
