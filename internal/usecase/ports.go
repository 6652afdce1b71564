package usecase

import (
	"log/slog"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/domain/model"
)

// Actor identifies the caller of an operation. The zero value is a guest.
type Actor struct {
	UserID string
	Role   model.Role
}

// Guest reports whether the caller is anonymous.
func (a Actor) Guest() bool {
	return a.UserID == ""
}

// IsAdmin reports whether the caller has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) owns(userID string) bool {
	return !a.Guest() && a.UserID == userID
}

// MailQueue accepts e-mails for asynchronous delivery.
type MailQueue interface {
	Enqueue(email notify.Email) bool
}

// Observer receives business events for metrics.
type Observer interface {
	CheckoutOutcome(outcome string)
	StatusTransition(from, to string)
}

// enqueueMail renders and queues an e-mail. Failures are logged only.
func enqueueMail(queue MailQueue, logger *slog.Logger, render func() (notify.Email, error)) {
	if queue == nil {
		return
	}
	email, err := render()
	if err != nil {
		logger.Warn("render email failed", slog.String("error", err.Error()))
		return
	}
	queue.Enqueue(email)
}
