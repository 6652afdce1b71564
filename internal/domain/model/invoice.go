package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLine is a priced row of an invoice.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Invoice is derived from an order on demand and never stored.
type Invoice struct {
	Number         string         `json:"number"`
	OrderID        string         `json:"orderId"`
	IssuedAt       time.Time      `json:"issuedAt"`
	Customer       Customer       `json:"customer"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
	Currency       string         `json:"currency"`
	Lines          []InvoiceLine  `json:"lines"`
	Status         BuildStatus    `json:"status"`

	PricingBreakdown
}
