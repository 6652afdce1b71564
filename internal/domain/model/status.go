package model

import (
	"time"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
)

// BuildStatus describes the fulfilment lifecycle of an order and its build.
type BuildStatus string

const (
	StatusPending    BuildStatus = "Pending"
	StatusConfirmed  BuildStatus = "Confirmed"
	StatusBuilding   BuildStatus = "Building"
	StatusCompleted  BuildStatus = "Completed"
	StatusShipped    BuildStatus = "Shipped"
	StatusDelivered  BuildStatus = "Delivered"
	StatusCanceled   BuildStatus = "Canceled"
	StatusSuccessful BuildStatus = "Successful"
	StatusRefunded   BuildStatus = "Refunded"
)

// AllStatuses lists the closed status set in happy-path order.
var AllStatuses = []BuildStatus{
	StatusPending,
	StatusConfirmed,
	StatusBuilding,
	StatusCompleted,
	StatusShipped,
	StatusDelivered,
	StatusCanceled,
	StatusSuccessful,
	StatusRefunded,
}

// transitions holds the direct edges of the lifecycle graph.
var transitions = map[BuildStatus][]BuildStatus{
	StatusPending:   {StatusConfirmed, StatusSuccessful, StatusCanceled, StatusRefunded},
	StatusConfirmed: {StatusBuilding, StatusSuccessful, StatusCanceled, StatusRefunded},
	StatusBuilding:  {StatusCompleted, StatusCanceled, StatusRefunded},
	StatusCompleted: {StatusShipped, StatusDelivered, StatusCanceled, StatusRefunded},
	StatusShipped:   {StatusDelivered, StatusCanceled, StatusRefunded},
	StatusCanceled:  {StatusRefunded},
}

// ParseBuildStatus converts raw input to a known status.
func ParseBuildStatus(raw string) (BuildStatus, bool) {
	for _, s := range AllStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether no transition leaves s.
func (s BuildStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// String representation (for logging)
func (s BuildStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether target is forward-reachable from s.
// Skipping intermediate states is allowed; staying or going back is not.
func (s BuildStatus) CanTransitionTo(target BuildStatus) bool {
	if s == target {
		return false
	}
	seen := map[BuildStatus]bool{s: true}
	queue := []BuildStatus{s}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range transitions[cur] {
			if next == target {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// StepTimestamps records when each status was first reached.
type StepTimestamps map[BuildStatus]time.Time

// Stamp records at for status unless it was already reached.
func (t StepTimestamps) Stamp(status BuildStatus, at time.Time) bool {
	if _, ok := t[status]; ok {
		return false
	}
	t[status] = at
	return true
}

// Transition validates a move from current to target.
func Transition(current, target BuildStatus) error {
	if _, ok := ParseBuildStatus(string(target)); !ok {
		return domainErrors.NewValidationError("status", "unknown status "+string(target))
	}
	if !current.CanTransitionTo(target) {
		return &domainErrors.TransitionError{From: string(current), To: string(target)}
	}
	return nil
}
