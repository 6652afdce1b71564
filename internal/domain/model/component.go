package model

import "github.com/shopspring/decimal"

// ComponentTypeCase marks chassis parts; their image represents a whole build.
const ComponentTypeCase = "Case"

// ImageRef is the shape returned by the image store on upload.
type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// ComponentLine is one part in a build or order. Display fields are a
// point-in-time snapshot of the catalog entry.
type ComponentLine struct {
	ComponentID  string          `json:"componentId"`
	Quantity     int             `json:"quantity"`
	Name         string          `json:"name,omitempty"`
	Type         string          `json:"type,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
}

// LineTotal returns price multiplied by quantity.
func (l ComponentLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// RawComponent is a component entry as submitted by clients. Either
// ComponentID or ID identifies the catalog entry.
type RawComponent struct {
	ComponentID  string           `json:"componentId,omitempty"`
	ID           string           `json:"_id,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Name         string           `json:"name,omitempty"`
	Type         string           `json:"type,omitempty"`
	Manufacturer string           `json:"manufacturer,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Image        string           `json:"image,omitempty"`
}

// CatalogComponent is a product in the parts catalog.
type CatalogComponent struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Image        ImageRef        `json:"image"`
	Stock        int             `json:"stock"`
}

// SumLines returns the components subtotal and total unit count.
func SumLines(lines []ComponentLine) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, l := range lines {
		total = total.Add(l.LineTotal())
		count += l.Quantity
	}
	return total, count
}
