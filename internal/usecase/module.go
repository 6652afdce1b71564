package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/adapter/payment"
	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	"github.com/polkiloo/rigshop/internal/metrics"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/session"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newPricingPolicy,
	newAuthUseCase,
	NewCatalogUseCase,
	NewBuildUseCase,
	newCheckoutUseCase,
	newOrderUseCase,
	func(m *metrics.Metrics) Observer { return m },
)

func newPricingPolicy(cfg *config.Config) PricingPolicy {
	policy := DefaultPricingPolicy()
	policy.ServiceChargeBase = cfg.ServiceChargeBase
	policy.DeliveryCharge = cfg.DeliveryCharge
	policy.AssemblyCharge = cfg.AssemblyCharge
	policy.QualityTestingCharge = cfg.QualityTestingCharge
	policy.TrustClient = cfg.PricingTrustClient
	return policy
}

type authParams struct {
	fx.In

	Users       repository.UserRepository
	Hasher      pkgAuth.PasswordHasher
	Strategy    pkgAuth.Strategy
	Revocations session.RevocationStore
	Mail        MailQueue
	Config      *config.Config
	Logger      *slog.Logger
}

func newAuthUseCase(p authParams) *AuthUseCase {
	return NewAuthUseCase(p.Users, p.Hasher, p.Strategy, p.Revocations, p.Mail, p.Config.AdminEmails, p.Logger)
}

type checkoutParams struct {
	fx.In

	Builds   repository.BuildRepository
	Orders   repository.OrderRepository
	Catalog  repository.CatalogRepository
	Users    repository.UserRepository
	Gateway  payment.Gateway
	Mail     MailQueue
	Observer Observer
	Pricing  PricingPolicy
	Config   *config.Config
	Logger   *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(CheckoutDeps{
		Builds:   p.Builds,
		Orders:   p.Orders,
		Catalog:  p.Catalog,
		Users:    p.Users,
		Gateway:  p.Gateway,
		Mail:     p.Mail,
		Observer: p.Observer,
		Pricing:  p.Pricing,
		Currency: p.Config.Currency,
		Logger:   p.Logger,
	})
}

type orderParams struct {
	fx.In

	Orders   repository.OrderRepository
	Builds   repository.BuildRepository
	Mail     MailQueue
	Observer Observer
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Builds, p.Mail, p.Observer, p.Logger)
}
