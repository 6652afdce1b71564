package auth

import (
	"github.com/polkiloo/rigshop/internal/config"
	"go.uber.org/fx"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newPasswordHasher(p strategyParams) PasswordHasher {
	return NewBcryptHasher(p.Config.BcryptCost)
}

func newTokenStrategy(p strategyParams) Strategy {
	opts := Options{TTL: p.Config.TokenTTL}
	if p.Config.AuthStrategy == "hmac" {
		return NewHMACStrategy(p.Config.JWTSecret, opts)
	}
	return NewJWTStrategy(p.Config.JWTSecret, opts)
}
