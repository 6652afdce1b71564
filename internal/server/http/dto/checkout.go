package dto

import (
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// CheckoutBuild is the cart build of a cartInline checkout.
type CheckoutBuild struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Image      model.ImageRef       `json:"image"`
	Components []model.RawComponent `json:"components"`
}

// CheckoutRequest is the checkout payload; Source discriminates between a
// saved build reference and an inline cart build.
type CheckoutRequest struct {
	Source           string                   `json:"source"`
	BuildID          string                   `json:"buildId"`
	Build            *CheckoutBuild           `json:"build"`
	Components       []model.RawComponent     `json:"components"`
	BuildImage       string                   `json:"buildImage"`
	UserName         string                   `json:"userName"`
	UserEmail        string                   `json:"userEmail"`
	UserAddress      string                   `json:"userAddress"`
	DeliveryMethod   string                   `json:"deliveryMethod"`
	AssemblyRequired bool                     `json:"assemblyRequired"`
	QualityTesting   bool                     `json:"qualityTesting"`
	PricingBreakdown *usecase.ChargeOverrides `json:"pricingBreakdown"`
	PaymentMethod    string                   `json:"paymentMethod"`
}

// Input converts the request into the checkout use case input.
func (r CheckoutRequest) Input() usecase.CheckoutInput {
	in := usecase.CheckoutInput{
		Source:     model.CheckoutSource(r.Source),
		BuildID:    r.BuildID,
		Components: r.Components,
		Image:      model.ImageRef{URL: r.BuildImage},
		Customer: model.Customer{
			Name:    r.UserName,
			Email:   r.UserEmail,
			Address: r.UserAddress,
		},
		DeliveryMethod: model.DeliveryMethod(r.DeliveryMethod),
		Options: usecase.PricingOptions{
			AssemblyRequired: r.AssemblyRequired,
			QualityTesting:   r.QualityTesting,
		},
		Pricing:       r.PricingBreakdown,
		PaymentMethod: r.PaymentMethod,
	}
	if r.Build != nil {
		in.Build = &usecase.InlineBuild{
			ID:         r.Build.ID,
			Name:       r.Build.Name,
			Image:      r.Build.Image,
			Components: r.Build.Components,
		}
	}
	return in
}
