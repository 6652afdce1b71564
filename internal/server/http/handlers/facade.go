package handlers

import (
	"context"

	"github.com/polkiloo/rigshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/server/http/middleware"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	middleware.TokenParser
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, claims *pkgAuth.Claims) error
	CurrentUser(ctx context.Context, id string) (*model.User, error)
}

// CatalogFacade exposes the parts catalog.
type CatalogFacade interface {
	Components(ctx context.Context, componentType string) ([]model.CatalogComponent, error)
	Component(ctx context.Context, id string) (*model.CatalogComponent, error)
	UpsertComponent(ctx context.Context, actor usecase.Actor, c model.CatalogComponent) (*model.CatalogComponent, error)
}

// BuildFacade manages saved builds.
type BuildFacade interface {
	CreateBuild(ctx context.Context, actor usecase.Actor, in usecase.BuildInput) (*model.Build, error)
	Build(ctx context.Context, actor usecase.Actor, id string) (*model.Build, error)
	MyBuilds(ctx context.Context, actor usecase.Actor) ([]model.Build, error)
	PublishedBuilds(ctx context.Context) ([]model.Build, error)
	UpdateBuild(ctx context.Context, actor usecase.Actor, id string, in usecase.BuildInput) (*model.Build, error)
	PublishBuild(ctx context.Context, actor usecase.Actor, id string, published bool) (*model.Build, error)
	DeleteBuild(ctx context.Context, actor usecase.Actor, id string) error
}

// CheckoutFacade turns builds into paid orders.
type CheckoutFacade interface {
	Checkout(ctx context.Context, actor usecase.Actor, in usecase.CheckoutInput) (*model.Order, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context, actor usecase.Actor, filter model.OrderFilter) ([]model.Order, error)
	Order(ctx context.Context, actor usecase.Actor, id string) (*model.Order, error)
	Invoice(ctx context.Context, actor usecase.Actor, id string) (*model.Invoice, error)
	AdvanceOrder(ctx context.Context, actor usecase.Actor, id, status string) (*model.Order, error)
	DeleteOrder(ctx context.Context, actor usecase.Actor, id string) error
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// ShopFacade aggregates the full set of operations used across handlers.
type ShopFacade interface {
	AuthFacade
	CatalogFacade
	BuildFacade
	CheckoutFacade
	OrderFacade
	HealthFacade
}
