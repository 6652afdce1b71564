package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders   repository.OrderRepository
	builds   repository.BuildRepository
	mail     MailQueue
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, builds repository.BuildRepository, mail MailQueue, observer Observer, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		builds:   builds,
		mail:     mail,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns an order owned by actor, or any order for admins.
func (u *OrderUseCase) Get(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(order.UserID) && !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// List returns orders newest first. Non-admins only see their own orders.
func (u *OrderUseCase) List(ctx context.Context, actor Actor, filter model.OrderFilter) ([]model.Order, error) {
	if actor.Guest() {
		return nil, domainErrors.ErrForbidden
	}
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, domainErrors.NewValidationError("from", "from must be before to")
	}
	return u.orders.List(ctx, filter)
}

// Advance moves an order along the status lifecycle. Admins may apply any
// legal transition; owners may only cancel.
func (u *OrderUseCase) Advance(ctx context.Context, actor Actor, id, status string) (*model.Order, error) {
	target, ok := model.ParseBuildStatus(strings.TrimSpace(status))
	if !ok {
		return nil, domainErrors.NewValidationError("buildStatus", "unknown status "+status)
	}

	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.owns(order.UserID) && target == model.StatusCanceled) {
		return nil, domainErrors.ErrForbidden
	}

	from := order.BuildStatus
	if err := order.Advance(target, u.now().UTC()); err != nil {
		return nil, err
	}
	if err := u.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	u.observer.StatusTransition(string(from), string(target))

	u.syncBuild(ctx, order.BuildID, func(b *model.Build) {
		b.BuildStatus = order.BuildStatus
		b.UpdatedAt = order.UpdatedAt
	})
	enqueueMail(u.mail, u.logger, func() (notify.Email, error) { return notify.StatusChanged(order) })

	u.logger.Info("order status changed",
		slog.String("order_id", order.ID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
	)
	return order, nil
}

// Delete removes an order and releases its build. Admin only.
func (u *OrderUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return domainErrors.ErrForbidden
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.orders.Delete(ctx, id); err != nil {
		return err
	}
	u.syncBuild(ctx, order.BuildID, func(b *model.Build) {
		if b.OrderID != order.ID {
			return
		}
		b.OrderID = ""
		b.BuildStatus = ""
		b.UpdatedAt = u.now().UTC()
	})
	return nil
}

// Invoice derives the invoice of an order visible to actor.
func (u *OrderUseCase) Invoice(ctx context.Context, actor Actor, id string) (*model.Invoice, error) {
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return BuildInvoice(order, u.now().UTC()), nil
}

// syncBuild applies mutate to the saved build behind an order. Temporary
// and missing builds are skipped; other failures are logged.
func (u *OrderUseCase) syncBuild(ctx context.Context, buildID string, mutate func(*model.Build)) {
	if buildID == "" || model.IsTemporaryBuildID(buildID) {
		return
	}
	build, err := u.builds.GetByID(ctx, buildID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("load build failed", slog.String("build_id", buildID), slog.String("error", err.Error()))
		}
		return
	}
	mutate(build)
	if err := u.builds.Update(ctx, build); err != nil {
		u.logger.Warn("update build failed", slog.String("build_id", buildID), slog.String("error", err.Error()))
	}
}
