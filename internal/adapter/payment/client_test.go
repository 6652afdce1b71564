package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/polkiloo/rigshop/internal/config"
	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func validRequest() Request {
	return Request{AmountMinor: 650000, Currency: "usd", PaymentMethod: "pm_card_visa", Description: "order"}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, "sk_test", time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "", 0, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "", 0, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestAuthorizeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/authorizations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var body authorizeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Amount != 650000 || body.Currency != "usd" || body.PaymentMethod != "pm_card_visa" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_123","status":"succeeded"}`))
	})

	res, err := client.Authorize(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "pay_123" || res.Status != statusSucceeded {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAuthorizeDeclined(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		reason     string
	}{
		{"failed status", http.StatusOK, `{"id":"pay_1","status":"failed","failureReason":"insufficient funds"}`, "insufficient funds"},
		{"payment required", http.StatusPaymentRequired, `{"error":{"code":"card_declined","message":"card declined"}}`, "card declined"},
		{"payment required without body", http.StatusPaymentRequired, ``, statusFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Authorize(context.Background(), validRequest())
			var declined *domainErrors.PaymentDeclinedError
			if !errors.As(err, &declined) {
				t.Fatalf("expected declined error, got %v", err)
			}
			if declined.Reason != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, declined.Reason)
			}
		})
	}
}

func TestAuthorizeUpstreamFailures(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"server error", http.StatusInternalServerError, `boom`},
		{"bad json", http.StatusOK, `{`},
		{"missing id", http.StatusOK, `{"status":"succeeded"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Authorize(context.Background(), validRequest())
			var upstream *domainErrors.UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected upstream error, got %v", err)
			}
		})
	}
}

func TestAuthorizeValidatesRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	})
	var verr *domainErrors.ValidationError
	if _, err := client.Authorize(context.Background(), Request{PaymentMethod: "pm"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
	if _, err := client.Authorize(context.Background(), Request{AmountMinor: 1}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for missing token, got %v", err)
	}
}

func TestAuthorizeOpensBreakerAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		if _, err := client.Authorize(context.Background(), validRequest()); err == nil {
			t.Fatal("expected failure")
		}
	}

	_, err := client.Authorize(context.Background(), validRequest())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error wrapper, got %T", err)
	}
	if calls.Load() != 5 {
		t.Fatalf("expected 5 gateway calls, got %d", calls.Load())
	}
}

func TestDeclinesDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})
	for i := 0; i < 10; i++ {
		_, err := client.Authorize(context.Background(), validRequest())
		var declined *domainErrors.PaymentDeclinedError
		if !errors.As(err, &declined) {
			t.Fatalf("attempt %d: expected declined error, got %v", i, err)
		}
	}
}

func TestAuthorizeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client, err := NewHTTPClient(baseURL, "", time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	_, err = client.Authorize(context.Background(), validRequest())
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewGatewayUsesConfig(t *testing.T) {
	cfg := &config.Config{PaymentGatewayURL: "http://example.com", PaymentAPIKey: "key", PaymentTimeout: time.Second}
	gw, err := newGateway(gatewayParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client, ok := gw.(*HTTPClient)
	if !ok {
		t.Fatalf("expected *HTTPClient, got %T", gw)
	}
	if client.apiKey != "key" || client.httpClient.Timeout != time.Second {
		t.Fatalf("config not applied: %+v", client)
	}
}
