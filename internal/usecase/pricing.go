package usecase

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
)

const (
	// flatComponentAllowance is the number of components covered by the base charge.
	flatComponentAllowance = 8
)

var (
	defaultServiceChargeBase    = decimal.NewFromInt(1000)
	defaultServiceChargePerPart = decimal.NewFromInt(100)
	defaultDeliveryCharge       = decimal.NewFromInt(300)
	defaultAssemblyCharge       = decimal.NewFromInt(150)
	defaultQualityTestingCharge = decimal.NewFromInt(50)

	// totalTolerance is the largest accepted gap between client and server totals.
	totalTolerance = decimal.RequireFromString("0.01")
)

// PricingPolicy holds the charge amounts applied at checkout.
type PricingPolicy struct {
	ServiceChargeBase    decimal.Decimal
	ServiceChargePerPart decimal.Decimal
	DeliveryCharge       decimal.Decimal
	AssemblyCharge       decimal.Decimal
	QualityTestingCharge decimal.Decimal
	// TrustClient applies client supplied charges as given instead of
	// recomputing them.
	TrustClient bool
}

// DefaultPricingPolicy returns the stock charge amounts.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		ServiceChargeBase:    defaultServiceChargeBase,
		ServiceChargePerPart: defaultServiceChargePerPart,
		DeliveryCharge:       defaultDeliveryCharge,
		AssemblyCharge:       defaultAssemblyCharge,
		QualityTestingCharge: defaultQualityTestingCharge,
	}
}

// PricingOptions are the optional add-on services of a checkout.
type PricingOptions struct {
	AssemblyRequired bool `json:"assemblyRequired"`
	QualityTesting   bool `json:"qualityTesting"`
}

// ChargeOverrides carries charges pre-computed by a client. Nil fields are
// computed server side.
type ChargeOverrides struct {
	ServiceCharge        *decimal.Decimal `json:"serviceCharge,omitempty"`
	DeliveryCharge       *decimal.Decimal `json:"deliveryCharge,omitempty"`
	AssemblyCharge       *decimal.Decimal `json:"assemblyCharge,omitempty"`
	QualityTestingCharge *decimal.Decimal `json:"qualityTestingCharge,omitempty"`
	TotalCharge          *decimal.Decimal `json:"totalCharge,omitempty"`
}

// ServiceCharge returns the assembly labour fee for componentCount parts
// using the stock policy.
func ServiceCharge(componentCount int) decimal.Decimal {
	return DefaultPricingPolicy().ServiceCharge(componentCount)
}

// ServiceCharge returns the labour fee for componentCount parts. The base
// amount covers the first eight parts, an empty build included.
func (p PricingPolicy) ServiceCharge(componentCount int) decimal.Decimal {
	if componentCount <= flatComponentAllowance {
		return p.ServiceChargeBase
	}
	extra := decimal.NewFromInt(int64(componentCount - flatComponentAllowance))
	return p.ServiceChargeBase.Add(p.ServiceChargePerPart.Mul(extra))
}

// Calculate computes the full breakdown. Overrides are honoured as given;
// callers decide whether to pass them.
func (p PricingPolicy) Calculate(componentsPrice decimal.Decimal, componentCount int, method model.DeliveryMethod, opts PricingOptions, overrides *ChargeOverrides) model.PricingBreakdown {
	if overrides == nil {
		overrides = &ChargeOverrides{}
	}

	b := model.PricingBreakdown{
		ComponentsPrice:      componentsPrice,
		ServiceCharge:        pick(overrides.ServiceCharge, p.ServiceCharge(componentCount)),
		DeliveryCharge:       pick(overrides.DeliveryCharge, decimal.Zero),
		AssemblyCharge:       decimal.Zero,
		QualityTestingCharge: decimal.Zero,
	}
	if method == model.DeliveryHome && overrides.DeliveryCharge == nil {
		b.DeliveryCharge = p.DeliveryCharge
	}
	if opts.AssemblyRequired {
		b.AssemblyCharge = pick(overrides.AssemblyCharge, p.AssemblyCharge)
	}
	if opts.QualityTesting {
		b.QualityTestingCharge = pick(overrides.QualityTestingCharge, p.QualityTestingCharge)
	}
	b.TotalCharge = b.Sum()
	return b
}

// Price returns the authoritative breakdown for a checkout. In trusting
// mode client charges are applied; otherwise the server recomputes and a
// client total diverging beyond the tolerance is rejected.
func (p PricingPolicy) Price(componentsPrice decimal.Decimal, componentCount int, method model.DeliveryMethod, opts PricingOptions, client *ChargeOverrides) (model.PricingBreakdown, error) {
	if p.TrustClient {
		return p.Calculate(componentsPrice, componentCount, method, opts, client), nil
	}

	server := p.Calculate(componentsPrice, componentCount, method, opts, nil)
	if client != nil && client.TotalCharge != nil {
		if client.TotalCharge.Sub(server.TotalCharge).Abs().GreaterThan(totalTolerance) {
			return model.PricingBreakdown{}, domainErrors.NewValidationError(
				"pricingBreakdown.totalCharge",
				"client total "+client.TotalCharge.String()+" does not match "+server.TotalCharge.String(),
			)
		}
	}
	return server, nil
}

// MinorUnits converts a decimal amount to the smallest currency unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func pick(override *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return fallback
}
