package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/metrics"
	testhelpers "github.com/polkiloo/rigshop/internal/test"
	"github.com/polkiloo/rigshop/internal/worker"
)

func newTestDispatcher() *worker.Dispatcher {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return worker.NewDispatcher(notify.NewLogNotifier(logger), nil, 1, 4, logger)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewDispatcherAcceptsMail(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	d := newDispatcher(dispatcherParams{
		Notifier: notify.NewLogNotifier(logger),
		Metrics:  metrics.New(),
		Config:   &config.Config{NotifyWorkers: 2, NotifyQueueSize: 8},
		Logger:   logger,
	})
	if d == nil {
		t.Fatal("expected dispatcher instance")
	}
	if !d.Enqueue(notify.Email{Kind: notify.KindWelcome, To: "a@example.com"}) {
		t.Fatal("expected e-mail to be queued")
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	dispatcher := newTestDispatcher()
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Dispatcher: dispatcher,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	dispatcher.Enqueue(notify.Email{Kind: notify.KindWelcome, To: "a@example.com"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := recorder.Stop(context.Background()); err != nil {
			t.Errorf("on stop failed: %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}

	if dispatcher.Enqueue(notify.Email{Kind: notify.KindWelcome}) {
		t.Fatal("dispatcher must reject mail after stop")
	}
	if shutdowner.Calls() != 0 {
		t.Fatal("clean start must not request shutdown")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	server := &http.Server{Addr: "bad addr"}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Dispatcher: newTestDispatcher(),
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = recorder.Stop(context.Background())
}

func TestLifecycleRecorderReplaysInFxOrder(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	var events []string
	for _, name := range []string{"a", "b"} {
		recorder.Append(fx.Hook{
			OnStart: func(context.Context) error { events = append(events, "start "+name); return nil },
			OnStop:  func(context.Context) error { events = append(events, "stop "+name); return nil },
		})
	}
	recorder.Append(fx.Hook{})

	_ = recorder.Start(context.Background())
	_ = recorder.Stop(context.Background())

	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(events) != len(want) {
		t.Fatalf("unexpected events %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("unexpected events %v", events)
		}
	}
}
