package session

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/config"
)

// Module wires the Redis client and revocation store.
var Module = fx.Options(
	fx.Provide(newRedisClient),
	fx.Provide(
		fx.Annotate(
			NewRedisStore,
			fx.As(new(RevocationStore)),
		),
	),
)

type clientParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
}

func newRedisClient(p clientParams) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}
