package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/adapter/payment"
	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	"github.com/polkiloo/rigshop/internal/metrics"
)

const defaultInlineBuildName = "Custom build"

// InlineBuild is a cart build sent with the checkout request.
type InlineBuild struct {
	ID         string
	Name       string
	Image      model.ImageRef
	Components []model.RawComponent
}

// CheckoutInput is the discriminated checkout payload. Source selects
// whether BuildID or Build identifies the build.
type CheckoutInput struct {
	Source         model.CheckoutSource
	BuildID        string
	Build          *InlineBuild
	Components     []model.RawComponent
	Image          model.ImageRef
	Customer       model.Customer
	DeliveryMethod model.DeliveryMethod
	Options        PricingOptions
	Pricing        *ChargeOverrides
	PaymentMethod  string
}

// CheckoutUseCase turns a build into a paid order.
type CheckoutUseCase struct {
	builds     repository.BuildRepository
	orders     repository.OrderRepository
	catalog    repository.CatalogRepository
	users      repository.UserRepository
	gateway    payment.Gateway
	mail       MailQueue
	observer   Observer
	pricing    PricingPolicy
	currency   string
	logger     *slog.Logger
	now        func() time.Time
	pickupCode func() (string, error)
}

// CheckoutDeps groups the collaborators of CheckoutUseCase.
type CheckoutDeps struct {
	Builds   repository.BuildRepository
	Orders   repository.OrderRepository
	Catalog  repository.CatalogRepository
	Users    repository.UserRepository
	Gateway  payment.Gateway
	Mail     MailQueue
	Observer Observer
	Pricing  PricingPolicy
	Currency string
	Logger   *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(d CheckoutDeps) *CheckoutUseCase {
	return &CheckoutUseCase{
		builds:     d.Builds,
		orders:     d.Orders,
		catalog:    d.Catalog,
		users:      d.Users,
		gateway:    d.Gateway,
		mail:       d.Mail,
		observer:   d.Observer,
		pricing:    d.Pricing,
		currency:   d.Currency,
		logger:     d.Logger,
		now:        time.Now,
		pickupCode: NewPickupCode,
	}
}

type checkoutPlan struct {
	buildID   string
	name      string
	image     model.ImageRef
	stored    *model.Build
	lines     []model.ComponentLine
	priced    map[string]bool
	breakdown model.PricingBreakdown
	customer  model.Customer
}

// Checkout validates the request, charges the customer and persists the
// order. Nothing is stored unless the payment succeeds.
func (u *CheckoutUseCase) Checkout(ctx context.Context, actor Actor, in CheckoutInput) (*model.Order, error) {
	plan, err := u.plan(ctx, actor, in)
	if err != nil {
		u.outcome(err)
		return nil, err
	}

	now := u.now().UTC()
	order := &model.Order{
		ID:               uuid.NewString(),
		Source:           in.Source,
		BuildID:          plan.buildID,
		BuildName:        plan.name,
		BuildImage:       buildImage(plan.image, plan.stored, plan.lines),
		UserID:           actor.UserID,
		UserName:         plan.customer.Name,
		UserEmail:        plan.customer.Email,
		UserAddress:      plan.customer.Address,
		Components:       plan.lines,
		Currency:         u.currency,
		DeliveryMethod:   in.DeliveryMethod,
		BuildStatus:      model.StatusPending,
		StepTimestamps:   model.StepTimestamps{model.StatusPending: now},
		CreatedAt:        now,
		UpdatedAt:        now,
		PricingBreakdown: plan.breakdown,
	}
	if in.DeliveryMethod == model.DeliveryPickup {
		code, err := u.pickupCode()
		if err != nil {
			u.observer.CheckoutOutcome(metrics.CheckoutFailed)
			return nil, fmt.Errorf("generate pickup code: %w", err)
		}
		order.PickupCode = code
	}

	result, err := u.gateway.Authorize(ctx, payment.Request{
		AmountMinor:   MinorUnits(order.TotalCharge),
		Currency:      order.Currency,
		PaymentMethod: in.PaymentMethod,
		Description:   fmt.Sprintf("rigshop order %s", order.ID),
		ReceiptEmail:  order.UserEmail,
	})
	if err != nil {
		u.outcome(err)
		return nil, err
	}
	order.PaymentID = result.ID

	if err := u.orders.Create(ctx, order); err != nil {
		u.logger.Error("order not persisted after payment",
			slog.String("order_id", order.ID),
			slog.String("payment_id", order.PaymentID),
			slog.String("error", err.Error()),
		)
		u.observer.CheckoutOutcome(metrics.CheckoutFailed)
		return nil, err
	}

	if plan.stored != nil {
		u.linkBuild(ctx, plan.stored, order)
	}

	enqueueMail(u.mail, u.logger, func() (notify.Email, error) { return notify.OrderConfirmation(order) })
	u.observer.CheckoutOutcome(metrics.CheckoutSucceeded)
	u.logger.Info("checkout completed",
		slog.String("order_id", order.ID),
		slog.String("build_id", order.BuildID),
		slog.String("total", order.TotalCharge.StringFixed(2)),
	)
	return order, nil
}

// plan runs every check that must pass before the customer is charged.
func (u *CheckoutUseCase) plan(ctx context.Context, actor Actor, in CheckoutInput) (*checkoutPlan, error) {
	verr := &domainErrors.ValidationError{}
	plan := &checkoutPlan{image: in.Image}
	raw := in.Components

	switch in.Source {
	case model.SourceSavedBuild:
		plan.buildID = strings.TrimSpace(in.BuildID)
		if plan.buildID == "" {
			verr.Add("buildId", "buildId is required for savedBuild checkout")
		}
	case model.SourceCartInline:
		if in.Build == nil {
			verr.Add("build", "build is required for cartInline checkout")
			break
		}
		plan.buildID = strings.TrimSpace(in.Build.ID)
		if plan.buildID == "" {
			plan.buildID = model.TemporaryBuildPrefix + uuid.NewString()
		}
		plan.name = strings.TrimSpace(in.Build.Name)
		if plan.name == "" {
			plan.name = defaultInlineBuildName
		}
		if plan.image.URL == "" {
			plan.image = in.Build.Image
		}
		raw = in.Build.Components
	default:
		verr.Add("source", "source must be savedBuild or cartInline")
	}

	if len(raw) > 0 {
		lines, err := Reconcile(raw)
		if err != nil {
			verr.Merge("components", asValidation(err))
		}
		plan.lines = lines
		plan.priced = pricedIDs(raw)
	} else if in.Source == model.SourceCartInline || model.IsTemporaryBuildID(plan.buildID) {
		verr.Add("components", "at least one component is required")
	}

	customer, err := u.customer(ctx, actor, in.Customer)
	if err != nil {
		return nil, err
	}
	plan.customer = customer
	if customer.Name == "" {
		verr.Add("userName", "name is required")
	}
	if _, err := normalizeEmail(customer.Email); err != nil {
		verr.Add("userEmail", err.Error())
	}
	if !in.DeliveryMethod.Valid() {
		verr.Add("deliveryMethod", fmt.Sprintf("deliveryMethod must be %q or %q", model.DeliveryHome, model.DeliveryPickup))
	} else if in.DeliveryMethod == model.DeliveryHome && customer.Address == "" {
		verr.Add("userAddress", "address is required for home delivery")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		verr.Add("paymentMethod", "payment method is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if in.Source == model.SourceSavedBuild && !model.IsTemporaryBuildID(plan.buildID) {
		stored, err := u.builds.GetByID(ctx, plan.buildID)
		if err != nil {
			return nil, err
		}
		if stored.Ordered() {
			return nil, domainErrors.ErrAlreadyExists
		}
		if stored.UserID != "" && !stored.Published && !actor.owns(stored.UserID) && !actor.IsAdmin() {
			return nil, domainErrors.ErrForbidden
		}
		plan.stored = stored
		plan.name = stored.Name
		if len(plan.lines) == 0 {
			plan.lines = stored.Components
			plan.priced = allPriced(stored.Components)
		}
		if len(plan.lines) == 0 {
			return nil, domainErrors.NewValidationError("components", "at least one component is required")
		}
	}

	lines, err := enrichLines(ctx, u.catalog, plan.lines, plan.priced, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	plan.lines = lines
	if plan.name == "" {
		plan.name = defaultInlineBuildName
	}

	price, count := model.SumLines(lines)
	plan.breakdown, err = u.pricing.Price(price, count, in.DeliveryMethod, in.Options, in.Pricing)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// customer fills blank customer fields from the caller's account.
func (u *CheckoutUseCase) customer(ctx context.Context, actor Actor, c model.Customer) (model.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Address = strings.TrimSpace(c.Address)
	if actor.Guest() || (c.Name != "" && c.Email != "" && c.Address != "") {
		return c, nil
	}

	usr, err := u.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return c, nil
		}
		return c, err
	}
	if c.Name == "" {
		c.Name = usr.Name
	}
	if c.Email == "" {
		c.Email = usr.Email
	}
	if c.Address == "" {
		c.Address = usr.Address
	}
	return c, nil
}

func (u *CheckoutUseCase) linkBuild(ctx context.Context, build *model.Build, order *model.Order) {
	build.OrderID = order.ID
	build.BuildStatus = order.BuildStatus
	build.UpdatedAt = order.CreatedAt
	if err := u.builds.Update(ctx, build); err != nil {
		u.logger.Warn("link build to order failed",
			slog.String("build_id", build.ID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (u *CheckoutUseCase) outcome(err error) {
	var (
		verr     *domainErrors.ValidationError
		declined *domainErrors.PaymentDeclinedError
	)
	switch {
	case errors.As(err, &verr):
		u.observer.CheckoutOutcome(metrics.CheckoutInvalid)
	case errors.As(err, &declined):
		u.observer.CheckoutOutcome(metrics.CheckoutDeclined)
	default:
		u.observer.CheckoutOutcome(metrics.CheckoutFailed)
	}
}

// buildImage picks the order image: payload image, then the stored build
// image, then the image of the first Case component, even when it is empty.
func buildImage(payload model.ImageRef, stored *model.Build, lines []model.ComponentLine) string {
	if payload.URL != "" {
		return payload.URL
	}
	if stored != nil && stored.Image.URL != "" {
		return stored.Image.URL
	}
	for _, l := range lines {
		if strings.EqualFold(l.Type, model.ComponentTypeCase) {
			return l.Image
		}
	}
	return ""
}
