package usecase

import (
	"crypto/rand"
	"math/big"
)

const (
	pickupCodeLength   = 8
	pickupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewPickupCode returns a random uppercase alphanumeric store pickup code.
func NewPickupCode() (string, error) {
	limit := big.NewInt(int64(len(pickupCodeAlphabet)))
	code := make([]byte, pickupCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = pickupCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
