package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/rigshop/internal/test"
	"github.com/polkiloo/rigshop/internal/usecase"
)

var _ handlers.ShopFacade = (*ShopFacade)(nil)

type facadeFixture struct {
	factory *testhelpers.FactoryStub
	mail    *testhelpers.MailQueueStub
	gateway *testhelpers.PaymentGatewayStub
	facade  *ShopFacade
}

func newFacadeFixture() *facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	price := decimal.RequireFromString("250")
	factory := testhelpers.NewFactoryStub()
	factory.CatalogRepo = testhelpers.NewCatalogRepositoryStub(model.CatalogComponent{
		ID: "gpu", Name: "RTX", Type: "GPU", Price: price,
	})

	f := &facadeFixture{
		factory: factory,
		mail:    &testhelpers.MailQueueStub{},
		gateway: &testhelpers.PaymentGatewayStub{},
	}
	observer := &testhelpers.ObserverStub{}
	strategy := testhelpers.StrategyStub{
		ParseFn: func(token string) (*pkgAuth.Claims, error) {
			id, ok := strings.CutPrefix(token, "token:")
			if !ok {
				return nil, pkgAuth.ErrInvalidToken
			}
			return &pkgAuth.Claims{UserID: id, Role: "customer", TokenID: "jti-" + id, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}

	f.facade = NewShopFacade(
		usecase.NewAuthUseCase(factory.Users(), testhelpers.HasherStub{}, strategy, &testhelpers.RevocationStoreStub{}, f.mail, nil, logger),
		usecase.NewCatalogUseCase(factory.Catalog()),
		usecase.NewBuildUseCase(factory.Builds(), factory.Catalog()),
		usecase.NewCheckoutUseCase(usecase.CheckoutDeps{
			Builds:   factory.Builds(),
			Orders:   factory.Orders(),
			Catalog:  factory.Catalog(),
			Users:    factory.Users(),
			Gateway:  f.gateway,
			Mail:     f.mail,
			Observer: observer,
			Pricing:  usecase.DefaultPricingPolicy(),
			Currency: "usd",
			Logger:   logger,
		}),
		usecase.NewOrderUseCase(factory.Orders(), factory.Builds(), f.mail, observer, logger),
		factory,
	)
	return f
}

func TestShopFacadeCustomerJourney(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()

	user, token, err := f.facade.Register(ctx, usecase.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret-pass", Address: "1 Main St",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := f.facade.ParseToken(ctx, token)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("expected token for %s, got %+v (%v)", user.ID, claims, err)
	}
	actor := usecase.Actor{UserID: user.ID, Role: model.RoleCustomer}

	if _, err := f.facade.Component(ctx, "gpu"); err != nil {
		t.Fatalf("component: %v", err)
	}
	build, err := f.facade.CreateBuild(ctx, actor, usecase.BuildInput{
		Name:       "Gaming",
		Components: []model.RawComponent{{ComponentID: "gpu"}},
	})
	if err != nil {
		t.Fatalf("create build: %v", err)
	}
	mine, err := f.facade.MyBuilds(ctx, actor)
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one build, got %d (%v)", len(mine), err)
	}

	order, err := f.facade.Checkout(ctx, actor, usecase.CheckoutInput{
		Source:         model.SourceSavedBuild,
		BuildID:        build.ID,
		DeliveryMethod: model.DeliveryPickup,
		PaymentMethod:  "pm_card_visa",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if f.gateway.Calls() != 1 {
		t.Fatalf("expected one payment, got %d", f.gateway.Calls())
	}

	orders, err := f.facade.Orders(ctx, actor, model.OrderFilter{})
	if err != nil || len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("expected placed order, got %+v (%v)", orders, err)
	}
	if _, err := f.facade.Invoice(ctx, actor, order.ID); err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if err := f.facade.DeleteBuild(ctx, actor, build.ID); !errors.Is(err, domainErrors.ErrBuildLocked) {
		t.Fatalf("ordered build must be locked, got %v", err)
	}

	canceled, err := f.facade.AdvanceOrder(ctx, actor, order.ID, string(model.StatusCanceled))
	if err != nil || canceled.BuildStatus != model.StatusCanceled {
		t.Fatalf("owner cancel failed: %+v (%v)", canceled, err)
	}

	if err := f.facade.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestShopFacadeOrdersNeverNil(t *testing.T) {
	f := newFacadeFixture()
	orders, err := f.facade.Orders(context.Background(), usecase.Actor{UserID: "nobody", Role: model.RoleCustomer}, model.OrderFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty slice, got %#v", orders)
	}
}

func TestShopFacadeHealthCheck(t *testing.T) {
	f := newFacadeFixture()
	if err := f.facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.factory.HealthErr = errors.New("db down")
	if err := f.facade.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}

func TestShopFacadeCatalogAdmin(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()

	component := model.CatalogComponent{ID: "ram", Name: "DDR5", Type: "RAM", Price: decimal.RequireFromString("99")}
	if _, err := f.facade.UpsertComponent(ctx, usecase.Actor{UserID: "u1", Role: model.RoleCustomer}, component); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.facade.UpsertComponent(ctx, usecase.Actor{UserID: "root", Role: model.RoleAdmin}, component); err != nil {
		t.Fatalf("admin upsert: %v", err)
	}
	list, err := f.facade.Components(ctx, "RAM")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one RAM component, got %d (%v)", len(list), err)
	}
}
