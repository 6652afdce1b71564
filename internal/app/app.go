package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/metrics"
	"github.com/polkiloo/rigshop/internal/server/http/handlers"
	"github.com/polkiloo/rigshop/internal/usecase"
	"github.com/polkiloo/rigshop/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewShopFacade,
		func(f *ShopFacade) handlers.ShopFacade { return f },
		newHTTPServer,
		newDispatcher,
		func(d *worker.Dispatcher) usecase.MailQueue { return d },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type dispatcherParams struct {
	fx.In

	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Config   *config.Config
	Logger   *slog.Logger
}

func newDispatcher(p dispatcherParams) *worker.Dispatcher {
	return worker.NewDispatcher(
		p.Notifier,
		p.Metrics,
		p.Config.NotifyWorkers,
		p.Config.NotifyQueueSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.Dispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting rigshop", slog.String("addr", p.Server.Addr))
			p.Dispatcher.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			if err := p.Dispatcher.Stop(shutdownCtx); err != nil {
				p.Logger.Warn("notification queue not drained", slog.String("error", err.Error()))
			}
			p.Logger.Info("rigshop stopped")
			return nil
		},
	})
}
