package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/adapter/payment"
	"github.com/polkiloo/rigshop/internal/app"
	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/logger"
	"github.com/polkiloo/rigshop/internal/metrics"
	"github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/server/http/router"
	"github.com/polkiloo/rigshop/internal/session"
	"github.com/polkiloo/rigshop/internal/storage"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// Module composes the whole service graph. Extra options are appended last
// so callers can replace or decorate any component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		session.Module,
		storage.Module,
		payment.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
