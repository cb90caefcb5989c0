package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atlas-shop/internal/config"
)

type stubService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func newStubService(name string, block bool, startErr error) *stubService {
	return &stubService{name: name, block: block, startErr: startErr, done: make(chan struct{})}
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if !s.block {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.done:
	}
	return nil
}

func (s *stubService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.done)
	}
	return nil
}

func (s *stubService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllWhenOneServiceFails(t *testing.T) {
	failing := newStubService("worker", false, errors.New("redis unreachable"))
	blocking := newStubService("http", true, nil)
	runner := NewRunner(blocking, nil, failing)

	if names := runner.Names(); len(names) != 2 {
		t.Fatalf("nil service should be dropped, got %v", names)
	}

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "redis unreachable" {
		t.Fatalf("want start error, got %v", err)
	}
	if !blocking.isStopped() || !failing.isStopped() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerCancelledContextReturnsNil(t *testing.T) {
	svc := newStubService("http", true, nil)
	runner := NewRunner(svc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !svc.isStopped() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: "  API "})
	if opts.Mode != ModeAPI {
		t.Fatalf("mode should be normalized, got %q", opts.Mode)
	}
	if opts.ShutdownTimeout != defaultShutdownTimeout || opts.Logger == nil {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	if normalizeOptions(Options{}).Mode != ModeAll {
		t.Fatalf("empty mode should default to all")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestBuildWorkerRequiresQueueInWorkerMode(t *testing.T) {
	cfg := &config.Config{}
	if _, err := buildWorker(cfg, nil, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
	svc, err := buildWorker(cfg, nil, ModeAll)
	if err != nil || svc != nil {
		t.Fatalf("all mode without queue should skip worker, svc=%v err=%v", svc, err)
	}
}
