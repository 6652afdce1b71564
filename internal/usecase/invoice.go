package usecase

import (
	"strings"
	"time"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

const invoicePrefix = "INV-"

// BuildInvoice derives the invoice of order as of issuedAt.
func BuildInvoice(order *model.Order, issuedAt time.Time) *model.Invoice {
	lines := make([]model.InvoiceLine, 0, len(order.Components))
	for _, c := range order.Components {
		description := c.Name
		if description == "" {
			description = c.ComponentID
		}
		lines = append(lines, model.InvoiceLine{
			Description: description,
			Quantity:    c.Quantity,
			UnitPrice:   c.Price,
			Total:       c.LineTotal(),
		})
	}

	return &model.Invoice{
		Number:   invoiceNumber(order),
		OrderID:  order.ID,
		IssuedAt: issuedAt,
		Customer: model.Customer{
			UserID:  order.UserID,
			Name:    order.UserName,
			Email:   order.UserEmail,
			Address: order.UserAddress,
		},
		DeliveryMethod:   order.DeliveryMethod,
		Currency:         order.Currency,
		Lines:            lines,
		Status:           order.BuildStatus,
		PricingBreakdown: order.PricingBreakdown,
	}
}

func invoiceNumber(order *model.Order) string {
	id := strings.ReplaceAll(order.ID, "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	return invoicePrefix + order.CreatedAt.UTC().Format("20060102") + "-" + strings.ToUpper(id)
}
