package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/adapter/payment"
)

// PaymentGatewayStub records authorizations and succeeds unless overridden.
type PaymentGatewayStub struct {
	mu          sync.Mutex
	AuthorizeFn func(context.Context, payment.Request) (*payment.Result, error)
	Requests    []payment.Request
}

// Authorize records req and returns the configured result.
func (s *PaymentGatewayStub) Authorize(ctx context.Context, req payment.Request) (*payment.Result, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(ctx, req)
	}
	return &payment.Result{ID: "pay_1", Status: "succeeded"}, nil
}

// Calls returns the number of authorization attempts.
func (s *PaymentGatewayStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// MailQueueStub collects queued e-mails.
type MailQueueStub struct {
	mu     sync.Mutex
	Emails []notify.Email
	Full   bool
}

// Enqueue stores email unless the queue is marked full.
func (s *MailQueueStub) Enqueue(email notify.Email) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Full {
		return false
	}
	s.Emails = append(s.Emails, email)
	return true
}

// Kinds returns the kinds of queued e-mails in order.
func (s *MailQueueStub) Kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, 0, len(s.Emails))
	for _, e := range s.Emails {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// ObserverStub records business and HTTP events.
type ObserverStub struct {
	mu          sync.Mutex
	Checkouts   []string
	Transitions [][2]string
	Requests    []string
}

// CheckoutOutcome records outcome.
func (s *ObserverStub) CheckoutOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Checkouts = append(s.Checkouts, outcome)
}

// StatusTransition records a lifecycle move.
func (s *ObserverStub) StatusTransition(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transitions = append(s.Transitions, [2]string{from, to})
}

// ObserveHTTP records method, endpoint and status.
func (s *ObserverStub) ObserveHTTP(method, endpoint string, status int, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, fmt.Sprintf("%s %s %d", method, endpoint, status))
}

var _ payment.Gateway = (*PaymentGatewayStub)(nil)
