package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TemporaryBuildPrefix marks unsaved builds created by guests or the cart.
const TemporaryBuildPrefix = "temp-"

// IsTemporaryBuildID reports whether id refers to an unsaved build.
func IsTemporaryBuildID(id string) bool {
	return strings.HasPrefix(id, TemporaryBuildPrefix)
}

// Build is a saved parts configuration.
type Build struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId,omitempty"`
	Name        string          `json:"name"`
	Components  []ComponentLine `json:"components"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Image       ImageRef        `json:"image"`
	Published   bool            `json:"published"`
	BuildStatus BuildStatus     `json:"buildStatus,omitempty"`
	OrderID     string          `json:"orderId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Ordered reports whether the build was already checked out.
func (b *Build) Ordered() bool {
	return b.OrderID != ""
}
