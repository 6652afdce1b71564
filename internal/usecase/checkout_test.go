package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/adapter/payment"
	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/metrics"
	testhelpers "github.com/polkiloo/rigshop/internal/test"
	"github.com/polkiloo/rigshop/internal/usecase"
)

type checkoutFixture struct {
	builds   *testhelpers.BuildRepositoryStub
	orders   *testhelpers.OrderRepositoryStub
	users    *testhelpers.UserRepositoryStub
	gateway  *testhelpers.PaymentGatewayStub
	mail     *testhelpers.MailQueueStub
	observer *testhelpers.ObserverStub
	uc       *usecase.CheckoutUseCase
}

func newCheckoutFixture(builds ...model.Build) *checkoutFixture {
	f := &checkoutFixture{
		builds:   testhelpers.NewBuildRepositoryStub(builds...),
		orders:   testhelpers.NewOrderRepositoryStub(),
		users:    testhelpers.NewUserRepositoryStub(),
		gateway:  &testhelpers.PaymentGatewayStub{},
		mail:     &testhelpers.MailQueueStub{},
		observer: &testhelpers.ObserverStub{},
	}
	f.uc = usecase.NewCheckoutUseCase(usecase.CheckoutDeps{
		Builds:   f.builds,
		Orders:   f.orders,
		Catalog:  seedCatalog(),
		Users:    f.users,
		Gateway:  f.gateway,
		Mail:     f.mail,
		Observer: f.observer,
		Pricing:  usecase.DefaultPricingPolicy(),
		Currency: "usd",
		Logger:   discardLogger(),
	})
	return f
}

func savedBuild() model.Build {
	return model.Build{
		ID:     "b1",
		UserID: "u1",
		Name:   "Workstation",
		Components: []model.ComponentLine{
			{ComponentID: "cpu", Quantity: 1, Price: dec("300")},
			{ComponentID: "case", Quantity: 1, Price: dec("120"), Type: "Case"},
		},
	}
}

func homeCustomer() model.Customer {
	return model.Customer{Name: "Alice", Email: "alice@example.com", Address: "1 Main St"}
}

func savedCheckout() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Source:         model.SourceSavedBuild,
		BuildID:        "b1",
		Customer:       homeCustomer(),
		DeliveryMethod: model.DeliveryHome,
		PaymentMethod:  "pm_card_visa",
	}
}

func TestCheckoutSavedBuild(t *testing.T) {
	f := newCheckoutFixture(savedBuild())

	order, err := f.uc.Checkout(context.Background(), customer, savedCheckout())
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}

	// 420 components + 1000 service + 300 delivery
	if !order.TotalCharge.Equal(dec("1720")) {
		t.Fatalf("unexpected total %s", order.TotalCharge)
	}
	if order.BuildStatus != model.StatusPending {
		t.Fatalf("expected pending, got %s", order.BuildStatus)
	}
	if _, ok := order.StepTimestamps[model.StatusPending]; !ok {
		t.Fatal("expected pending stamp")
	}
	if order.PickupCode != "" {
		t.Fatalf("home delivery must not carry a pickup code, got %q", order.PickupCode)
	}
	if order.PaymentID != "pay_1" || order.BuildName != "Workstation" || order.UserID != "u1" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.BuildImage != "https://img/case.png" {
		t.Fatalf("expected case image fallback, got %q", order.BuildImage)
	}

	if f.gateway.Calls() != 1 || f.gateway.Requests[0].AmountMinor != 172000 || f.gateway.Requests[0].Currency != "usd" {
		t.Fatalf("unexpected payment request %+v", f.gateway.Requests)
	}
	if f.orders.Len() != 1 {
		t.Fatalf("expected one stored order, got %d", f.orders.Len())
	}
	build := f.builds.Get("b1")
	if build.OrderID != order.ID || build.BuildStatus != model.StatusPending {
		t.Fatalf("expected build linked to order, got %+v", build)
	}
	if kinds := f.mail.Kinds(); len(kinds) != 1 || kinds[0] != notify.KindOrderConfirmation {
		t.Fatalf("expected confirmation mail, got %v", kinds)
	}
	if len(f.observer.Checkouts) != 1 || f.observer.Checkouts[0] != metrics.CheckoutSucceeded {
		t.Fatalf("unexpected outcomes %v", f.observer.Checkouts)
	}
}

func TestCheckoutPickupCarriesCode(t *testing.T) {
	f := newCheckoutFixture(savedBuild())
	in := savedCheckout()
	in.DeliveryMethod = model.DeliveryPickup
	in.Customer.Address = ""
	in.Options = usecase.PricingOptions{AssemblyRequired: true, QualityTesting: true}

	order, err := f.uc.Checkout(context.Background(), customer, in)
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{8}$`).MatchString(order.PickupCode) {
		t.Fatalf("unexpected pickup code %q", order.PickupCode)
	}
	// 420 + 1000 + 150 + 50, no delivery
	if !order.TotalCharge.Equal(dec("1620")) || !order.DeliveryCharge.IsZero() {
		t.Fatalf("unexpected pricing %+v", order.PricingBreakdown)
	}
}

func TestCheckoutCartInline(t *testing.T) {
	f := newCheckoutFixture()
	in := usecase.CheckoutInput{
		Source: model.SourceCartInline,
		Build: &usecase.InlineBuild{
			Components: []model.RawComponent{
				{ComponentID: "ram", Quantity: intPtr(2)},
				{ComponentID: "fan", Price: decPtr("10")},
			},
		},
		Customer:       homeCustomer(),
		DeliveryMethod: model.DeliveryHome,
		PaymentMethod:  "pm_card_visa",
	}

	order, err := f.uc.Checkout(context.Background(), guest, in)
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if !model.IsTemporaryBuildID(order.BuildID) {
		t.Fatalf("expected temporary build id, got %q", order.BuildID)
	}
	if order.BuildName != "Custom build" || order.UserID != "" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !order.ComponentsPrice.Equal(dec("101")) {
		t.Fatalf("unexpected components price %s", order.ComponentsPrice)
	}
}

func TestCheckoutRejectsNegativeInlinePrice(t *testing.T) {
	f := newCheckoutFixture()
	in := usecase.CheckoutInput{
		Source: model.SourceCartInline,
		Build: &usecase.InlineBuild{
			Components: []model.RawComponent{
				{ComponentID: "cpu"},
				{ComponentID: "ghost", Price: decPtr("-1500")},
			},
		},
		Customer:       homeCustomer(),
		DeliveryMethod: model.DeliveryHome,
		PaymentMethod:  "pm_card_visa",
	}

	_, err := f.uc.Checkout(context.Background(), guest, in)
	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	found := false
	for _, fe := range verr.Fields {
		found = found || (fe.Field == "components.price" && fe.Index == 1)
	}
	if !found {
		t.Fatalf("expected components.price failure, got %+v", verr.Fields)
	}
	if f.gateway.Calls() != 0 || f.orders.Len() != 0 {
		t.Fatal("nothing may be charged or stored for a negative price")
	}
}

func TestCheckoutFillsCustomerFromAccount(t *testing.T) {
	f := newCheckoutFixture(savedBuild())
	_ = f.users.Create(context.Background(), &model.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Address: "1 Main St"})
	in := savedCheckout()
	in.Customer = model.Customer{}

	order, err := f.uc.Checkout(context.Background(), customer, in)
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if order.UserName != "Alice" || order.UserEmail != "alice@example.com" || order.UserAddress != "1 Main St" {
		t.Fatalf("customer not filled from account: %+v", order)
	}
}

func TestCheckoutValidationRunsBeforePayment(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*usecase.CheckoutInput)
		field  string
	}{
		{"unknown source", func(in *usecase.CheckoutInput) { in.Source = "wishlist" }, "source"},
		{"missing build id", func(in *usecase.CheckoutInput) { in.BuildID = "" }, "buildId"},
		{"missing inline build", func(in *usecase.CheckoutInput) { in.Source = model.SourceCartInline }, "build"},
		{"bad delivery", func(in *usecase.CheckoutInput) { in.DeliveryMethod = "Drone" }, "deliveryMethod"},
		{"home without address", func(in *usecase.CheckoutInput) { in.Customer.Address = "" }, "userAddress"},
		{"bad email", func(in *usecase.CheckoutInput) { in.Customer.Email = "nope" }, "userEmail"},
		{"missing payment method", func(in *usecase.CheckoutInput) { in.PaymentMethod = " " }, "paymentMethod"},
		{"client total mismatch", func(in *usecase.CheckoutInput) {
			in.Pricing = &usecase.ChargeOverrides{TotalCharge: decPtr("10")}
		}, "pricingBreakdown.totalCharge"},
		{"unpriced unknown component", func(in *usecase.CheckoutInput) {
			in.Components = []model.RawComponent{{ComponentID: "gpu"}}
		}, "components.price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(savedBuild())
			in := savedCheckout()
			tc.mutate(&in)

			_, err := f.uc.Checkout(context.Background(), customer, in)
			var verr *domainErrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, fe := range verr.Fields {
				found = found || fe.Field == tc.field
			}
			if !found {
				t.Fatalf("expected field %s, got %+v", tc.field, verr.Fields)
			}
			if f.gateway.Calls() != 0 || f.orders.Len() != 0 {
				t.Fatal("nothing may be charged or stored for invalid checkout")
			}
			if f.observer.Checkouts[0] != metrics.CheckoutInvalid {
				t.Fatalf("unexpected outcome %v", f.observer.Checkouts)
			}
		})
	}
}

func TestCheckoutBuildAccess(t *testing.T) {
	ordered := savedBuild()
	ordered.OrderID = "o-old"

	f := newCheckoutFixture(ordered)
	if _, err := f.uc.Checkout(context.Background(), customer, savedCheckout()); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already ordered conflict, got %v", err)
	}

	f = newCheckoutFixture(savedBuild())
	if _, err := f.uc.Checkout(context.Background(), stranger, savedCheckout()); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign private build, got %v", err)
	}

	f = newCheckoutFixture()
	if _, err := f.uc.Checkout(context.Background(), customer, savedCheckout()); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.gateway.Calls() != 0 {
		t.Fatal("payment must not be attempted")
	}
}

func TestCheckoutPaymentFailureLeavesNoTrace(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		outcome string
	}{
		{"declined", &domainErrors.PaymentDeclinedError{Reason: "insufficient funds"}, metrics.CheckoutDeclined},
		{"upstream", &domainErrors.UpstreamError{Service: "payment gateway", Err: errors.New("timeout")}, metrics.CheckoutFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(savedBuild())
			f.gateway.AuthorizeFn = func(context.Context, payment.Request) (*payment.Result, error) {
				return nil, tc.err
			}

			_, err := f.uc.Checkout(context.Background(), customer, savedCheckout())
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected payment error, got %v", err)
			}
			if f.orders.Len() != 0 {
				t.Fatal("no order may be stored after failed payment")
			}
			if b := f.builds.Get("b1"); b.OrderID != "" || b.BuildStatus != "" {
				t.Fatalf("build must be untouched, got %+v", b)
			}
			if len(f.mail.Kinds()) != 0 {
				t.Fatal("no mail expected")
			}
			if f.observer.Checkouts[0] != tc.outcome {
				t.Fatalf("unexpected outcome %v", f.observer.Checkouts)
			}
		})
	}
}

func TestCheckoutPersistFailureAfterPayment(t *testing.T) {
	f := newCheckoutFixture(savedBuild())
	f.orders.CreateErr = errors.New("db down")

	if _, err := f.uc.Checkout(context.Background(), customer, savedCheckout()); err == nil {
		t.Fatal("expected error")
	}
	if f.gateway.Calls() != 1 {
		t.Fatal("expected payment attempt")
	}
	if b := f.builds.Get("b1"); b.OrderID != "" {
		t.Fatal("build must not be linked")
	}
}

func TestCheckoutBuildLinkFailureIsNotFatal(t *testing.T) {
	f := newCheckoutFixture(savedBuild())
	f.builds.UpdateErr = errors.New("db down")

	order, err := f.uc.Checkout(context.Background(), customer, savedCheckout())
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if f.orders.Len() != 1 || order.ID == "" {
		t.Fatal("order must be stored")
	}
}
