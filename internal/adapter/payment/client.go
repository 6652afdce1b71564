package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/sony/gobreaker/v2"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
)

const serviceName = "payment gateway"

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Request is a single card authorization.
type Request struct {
	AmountMinor   int64
	Currency      string
	PaymentMethod string
	Description   string
	ReceiptEmail  string
}

// Result is a successful authorization.
type Result struct {
	ID     string
	Status string
}

// Gateway authorizes payments. A refused payment is reported as
// *errors.PaymentDeclinedError, transport failures as *errors.UpstreamError.
type Gateway interface {
	Authorize(ctx context.Context, req Request) (*Result, error)
}

// HTTPClient implements Gateway via the provider's JSON API.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Result]
	logger     *slog.Logger
}

type authorizeRequest struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"paymentMethod"`
	Description   string `json:"description,omitempty"`
	ReceiptEmail  string `json:"receiptEmail,omitempty"`
}

type authorizeResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewHTTPClient creates a payment gateway client guarded by a circuit breaker.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment gateway url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var declined *domainErrors.PaymentDeclinedError
			return err == nil || errors.As(err, &declined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return c, nil
}

// Authorize charges req.AmountMinor on the supplied payment method.
func (c *HTTPClient) Authorize(ctx context.Context, req Request) (*Result, error) {
	if req.AmountMinor <= 0 {
		return nil, domainErrors.NewValidationError("amount", "amount must be positive")
	}
	if req.PaymentMethod == "" {
		return nil, domainErrors.NewValidationError("paymentMethod", "payment method token is required")
	}

	res, err := c.breaker.Execute(func() (*Result, error) {
		return c.authorize(ctx, req)
	})
	if err == nil {
		return res, nil
	}

	var declined *domainErrors.PaymentDeclinedError
	var upstream *domainErrors.UpstreamError
	switch {
	case errors.As(err, &declined), errors.As(err, &upstream):
		return nil, err
	default:
		return nil, &domainErrors.UpstreamError{Service: serviceName, Err: err}
	}
}

func (c *HTTPClient) authorize(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(authorizeRequest{
		Amount:        req.AmountMinor,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		ReceiptEmail:  req.ReceiptEmail,
	})
	if err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/authorizations")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domainErrors.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domainErrors.UpstreamError{Service: serviceName, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var data authorizeResponse
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, &domainErrors.UpstreamError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
		}
		if data.Status != statusSucceeded {
			reason := data.FailureReason
			if reason == "" {
				reason = data.Status
			}
			return nil, &domainErrors.PaymentDeclinedError{Reason: reason}
		}
		if data.ID == "" {
			return nil, &domainErrors.UpstreamError{Service: serviceName, Err: errors.New("missing authorization id")}
		}
		return &Result{ID: data.ID, Status: data.Status}, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, &domainErrors.PaymentDeclinedError{Reason: errorMessage(payload, statusFailed)}
	default:
		c.logger.Error("payment request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(payload)))
		return nil, &domainErrors.UpstreamError{Service: serviceName, Err: fmt.Errorf("payment gateway error: %s", resp.Status)}
	}
}

func errorMessage(payload []byte, fallback string) string {
	var data errorResponse
	if err := json.Unmarshal(payload, &data); err != nil || data.Error.Message == "" {
		return fallback
	}
	return data.Error.Message
}
