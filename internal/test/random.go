package test

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random alphanumeric string with length in [minLen, maxLen].
func RandomString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(buf)
}

// RandomEmail returns a unique-looking lower-case address.
func RandomEmail() string {
	return fmt.Sprintf("user-%s@example.com", RandomString(6, 10))
}

// RandomRawComponents returns n raw cart entries drawn from a pool of ids so
// that duplicates occur. Ids alternate between componentId and _id, and
// roughly half the entries carry an inline price.
func RandomRawComponents(n, distinct int) []model.RawComponent {
	if distinct <= 0 {
		distinct = 1
	}
	out := make([]model.RawComponent, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("part-%d", rand.IntN(distinct))
		qty := 1 + rand.IntN(4)
		raw := model.RawComponent{Quantity: &qty}
		if rand.IntN(2) == 0 {
			raw.ComponentID = id
		} else {
			raw.ID = id
		}
		if rand.IntN(2) == 0 {
			price := decimal.NewFromInt(int64(10 + rand.IntN(990)))
			raw.Price = &price
		}
		out = append(out, raw)
	}
	return out
}
