// Package storage selects the persistence backend from the database URI.
package storage

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	"github.com/polkiloo/rigshop/internal/storage/mongo"
	"github.com/polkiloo/rigshop/internal/storage/postgres"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Module wires the configured storage backend and repository adapters.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.BuildRepository { return f.Builds() },
		func(f repository.Factory) repository.CatalogRepository { return f.Catalog() },
	),
	fx.Invoke(registerLifecycle),
)

var (
	openPostgres = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Factory, error) {
		return postgres.New(ctx, cfg.DatabaseURI, logger)
	}
	openMongo = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Factory, error) {
		return mongo.New(ctx, cfg.DatabaseURI, cfg.DatabaseName, logger)
	}
)

// Backend reports which storage backend serves uri.
func Backend(uri string) string {
	lower := strings.ToLower(uri)
	if strings.HasPrefix(lower, "mongodb://") || strings.HasPrefix(lower, "mongodb+srv://") {
		return BackendMongo
	}
	return BackendPostgres
}

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newFactory(p factoryParams) (repository.Factory, error) {
	backend := Backend(p.Config.DatabaseURI)
	p.Logger.Info("opening storage", slog.String("backend", backend))
	if backend == BackendMongo {
		return openMongo(p.Ctx, p.Config, p.Logger)
	}
	return openPostgres(p.Ctx, p.Config, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			factory.Close()
			return nil
		},
	})
}
