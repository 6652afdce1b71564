package usecase

import (
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
)

// MaxQuantity caps the units of a single line, before and after merging.
const MaxQuantity = 1000

var quantityLimitMessage = "quantity must not exceed " + strconv.Itoa(MaxQuantity)

// Reconcile merges raw component entries into unique lines. Quantities of
// repeated ids are summed, first-seen order and the first inline snapshot
// are kept. Every broken entry is reported in the returned ValidationError.
func Reconcile(raw []model.RawComponent) ([]model.ComponentLine, error) {
	verr := &domainErrors.ValidationError{}
	lines := make([]model.ComponentLine, 0, len(raw))
	positions := make(map[string]int, len(raw))

	for i, entry := range raw {
		id := strings.TrimSpace(entry.ComponentID)
		if id == "" {
			id = strings.TrimSpace(entry.ID)
		}
		if id == "" {
			verr.AddAt(i, "componentId", "componentId or _id is required")
		}

		qty := 1
		if entry.Quantity != nil {
			qty = *entry.Quantity
			switch {
			case qty <= 0:
				verr.AddAt(i, "quantity", "quantity must be positive")
			case qty > MaxQuantity:
				verr.AddAt(i, "quantity", quantityLimitMessage)
			}
		}
		negative := entry.Price != nil && entry.Price.IsNegative()
		if negative {
			verr.AddAt(i, "price", "price must not be negative")
		}
		if id == "" || qty <= 0 || qty > MaxQuantity || negative {
			continue
		}

		if pos, ok := positions[id]; ok {
			if lines[pos].Quantity > MaxQuantity-qty {
				verr.AddAt(i, "quantity", quantityLimitMessage)
				continue
			}
			lines[pos].Quantity += qty
			continue
		}

		line := model.ComponentLine{
			ComponentID:  id,
			Quantity:     qty,
			Name:         entry.Name,
			Type:         entry.Type,
			Manufacturer: entry.Manufacturer,
			Image:        entry.Image,
		}
		if entry.Price != nil {
			line.Price = *entry.Price
		}
		positions[id] = len(lines)
		lines = append(lines, line)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// RawFromLines converts reconciled lines back into raw entries.
func RawFromLines(lines []model.ComponentLine) []model.RawComponent {
	raw := make([]model.RawComponent, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity
		price := l.Price
		raw = append(raw, model.RawComponent{
			ComponentID:  l.ComponentID,
			Quantity:     &qty,
			Name:         l.Name,
			Type:         l.Type,
			Manufacturer: l.Manufacturer,
			Price:        &price,
			Image:        l.Image,
		})
	}
	return raw
}
