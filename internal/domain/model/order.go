package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethod describes how an order reaches the customer.
type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "Home Delivery"
	DeliveryPickup DeliveryMethod = "Pick up at store"
)

// Valid reports whether m is a known delivery method.
func (m DeliveryMethod) Valid() bool {
	return m == DeliveryHome || m == DeliveryPickup
}

// CheckoutSource discriminates the two checkout payload shapes.
type CheckoutSource string

const (
	SourceSavedBuild CheckoutSource = "savedBuild"
	SourceCartInline CheckoutSource = "cartInline"
)

// Valid reports whether s is a known checkout source.
func (s CheckoutSource) Valid() bool {
	return s == SourceSavedBuild || s == SourceCartInline
}

// PricingBreakdown lists every charge of an order.
type PricingBreakdown struct {
	ComponentsPrice      decimal.Decimal `json:"totalPrice"`
	ServiceCharge        decimal.Decimal `json:"serviceCharge"`
	DeliveryCharge       decimal.Decimal `json:"deliveryCharge"`
	AssemblyCharge       decimal.Decimal `json:"assemblyCharge"`
	QualityTestingCharge decimal.Decimal `json:"qualityTestingCharge"`
	TotalCharge          decimal.Decimal `json:"totalCharge"`
}

// Sum adds up the individual charges.
func (p PricingBreakdown) Sum() decimal.Decimal {
	return p.ComponentsPrice.
		Add(p.ServiceCharge).
		Add(p.DeliveryCharge).
		Add(p.AssemblyCharge).
		Add(p.QualityTestingCharge)
}

// Customer is the identity denormalized onto an order.
type Customer struct {
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"userName"`
	Email   string `json:"userEmail"`
	Address string `json:"userAddress,omitempty"`
}

// Order is the commercial record of a purchased build.
type Order struct {
	ID             string          `json:"id"`
	Source         CheckoutSource  `json:"source"`
	BuildID        string          `json:"buildId"`
	BuildName      string          `json:"buildName,omitempty"`
	BuildImage     string          `json:"buildImage,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	UserName       string          `json:"userName"`
	UserEmail      string          `json:"userEmail"`
	UserAddress    string          `json:"userAddress,omitempty"`
	Components     []ComponentLine `json:"components"`
	Currency       string          `json:"currency"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod"`
	BuildStatus    BuildStatus     `json:"buildStatus"`
	StepTimestamps StepTimestamps  `json:"stepTimestamps"`
	PickupCode     string          `json:"pickupCode,omitempty"`
	PaymentID      string          `json:"paymentId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	PricingBreakdown
}

// Advance moves the order to target and stamps the first time it is reached.
func (o *Order) Advance(target BuildStatus, now time.Time) error {
	if err := Transition(o.BuildStatus, target); err != nil {
		return err
	}
	if o.StepTimestamps == nil {
		o.StepTimestamps = StepTimestamps{}
	}
	o.BuildStatus = target
	o.StepTimestamps.Stamp(target, now)
	o.UpdatedAt = now
	return nil
}

// OrderFilter narrows order listings. Zero values are ignored.
type OrderFilter struct {
	UserID string
	Status BuildStatus
	From   time.Time
	To     time.Time
	Limit  int
}
