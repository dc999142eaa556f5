// Package tracking wraps the device's low-power significant-change location
// delivery. The session does start/stop bookkeeping only; filtering and
// region logic belong to the monitor.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"roam/internal/platform/metrics"
)

// Transport issues the device-side monitoring commands. The device agent is
// expected to configure kilometer-scale accuracy; the session never requests
// high-frequency or high-accuracy updates.
type Transport interface {
	StartSignificantChangeMonitoring(ctx context.Context) error
	StopSignificantChangeMonitoring(ctx context.Context) error
}

// Session tracks whether significant-change monitoring is active. Start and
// Stop are idempotent: repeated calls in the same state are no-ops and issue
// no duplicate device commands.
type Session struct {
	mu        sync.Mutex
	started   bool
	transport Transport
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

func New(transport Transport, opts ...Option) (*Session, error) {
	if transport == nil {
		return nil, fmt.Errorf("tracking transport is required")
	}
	s := &Session{
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins significant-change delivery if not already active.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := s.transport.StartSignificantChangeMonitoring(ctx); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	s.started = true
	if s.metrics != nil {
		s.metrics.SessionStarts.Inc()
	}
	s.logger.InfoContext(ctx, "significant-change monitoring started")
	return nil
}

// Stop ends significant-change delivery if active.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	if err := s.transport.StopSignificantChangeMonitoring(ctx); err != nil {
		return fmt.Errorf("stop monitoring: %w", err)
	}
	s.started = false
	if s.metrics != nil {
		s.metrics.SessionStops.Inc()
	}
	s.logger.InfoContext(ctx, "significant-change monitoring stopped")
	return nil
}

// Active reports whether the session is currently started.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
