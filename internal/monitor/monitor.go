// Package monitor owns the travel-notification feature: the enabled toggle,
// permission acquisition, the monitoring session lifecycle, and the
// region-change pipeline that turns raw fixes into at most one notification
// per region transition.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roam/internal/geocode"
	"roam/internal/permission"
	"roam/internal/platform/metrics"
	"roam/internal/store"
)

// ErrStopped is returned when an operation is submitted after Run has exited.
var ErrStopped = errors.New("monitor stopped")

// Session is the monitoring session the monitor starts and stops. Both calls
// are idempotent.
type Session interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Active() bool
}

// Dispatcher submits the region-change notification.
type Dispatcher interface {
	DispatchRegionChange(ctx context.Context, region string) error
}

// RegionChange describes one accepted region transition.
type RegionChange struct {
	Previous  string
	Region    string
	Timestamp time.Time
}

// ChangePublisher streams accepted region changes to downstream consumers.
// Publishing is best-effort; failures never affect monitor state.
type ChangePublisher interface {
	PublishRegionChange(ctx context.Context, change RegionChange) error
}

// Monitor is the travel region monitor. Construct one instance at the
// composition root and share it; it has no global accessor.
type Monitor struct {
	configStore store.ConfigStore
	location    permission.LocationGateway
	notifs      permission.NotificationGateway
	session     Session
	resolver    geocode.Resolver
	dispatcher  Dispatcher
	publisher   ChangePublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics

	events  chan event
	stopped chan struct{}

	// Loop-owned state. Only the Run goroutine touches these.
	cfg       store.MonitorConfig
	state     State
	locAuth   permission.LocationAuthorization
	notifAuth permission.NotificationAuthorization

	// Read mirror for concurrent observers.
	snapMu sync.RWMutex
	snap   Snapshot
}

type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mx
	}
}

func WithPublisher(p ChangePublisher) Option {
	return func(m *Monitor) {
		m.publisher = p
	}
}

func WithQueueSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.events = make(chan event, n)
		}
	}
}

func New(
	configStore store.ConfigStore,
	location permission.LocationGateway,
	notifs permission.NotificationGateway,
	session Session,
	resolver geocode.Resolver,
	dispatcher Dispatcher,
	opts ...Option,
) (*Monitor, error) {
	if configStore == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if location == nil {
		return nil, fmt.Errorf("location gateway is required")
	}
	if notifs == nil {
		return nil, fmt.Errorf("notification gateway is required")
	}
	if session == nil {
		return nil, fmt.Errorf("monitoring session is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("region resolver is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher is required")
	}

	m := &Monitor{
		configStore: configStore,
		location:    location,
		notifs:      notifs,
		session:     session,
		resolver:    resolver,
		dispatcher:  dispatcher,
		logger:      slog.Default(),
		events:      make(chan event, 64),
		stopped:     make(chan struct{}),
		state:       StateDisabled,
		locAuth:     permission.LocationNotDetermined,
		notifAuth:   permission.NotificationNotDetermined,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run restores persisted state and then applies queued events until ctx is
// cancelled. It owns all state mutation; call it from exactly one goroutine.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.stopped)

	m.restore(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			m.handle(ctx, ev)
			if ev.done != nil {
				close(ev.done)
			}
		}
	}
}

// SetEnabled turns the feature on or off. Idempotent when the value is
// unchanged. Disabling stops the monitoring session and persists the toggle
// before returning. The returned error only reports a cancelled wait; the
// toggle itself never fails upward.
func (m *Monitor) SetEnabled(ctx context.Context, enabled bool) error {
	ev := event{kind: evSetEnabled, enabled: enabled, done: make(chan struct{})}
	if err := m.enqueue(ctx, ev); err != nil {
		return err
	}
	return await(ctx, ev)
}

// Sync re-derives both authorization statuses and reconciles the monitoring
// session against the state machine. Safe to call arbitrarily often.
func (m *Monitor) Sync(ctx context.Context) error {
	ev := event{kind: evSync, done: make(chan struct{})}
	if err := m.enqueue(ctx, ev); err != nil {
		return err
	}
	return await(ctx, ev)
}

// RequestPermissions runs the permission acquisition sequence without
// toggling the feature. Best-effort: prompt failures are swallowed and leave
// state unchanged.
func (m *Monitor) RequestPermissions(ctx context.Context) error {
	ev := event{kind: evRequestPermissions, done: make(chan struct{})}
	if err := m.enqueue(ctx, ev); err != nil {
		return err
	}
	return await(ctx, ev)
}

// OnAuthorizationChanged is invoked by the platform adapter when the device
// reports a location authorization change. Fire-and-forget; processed in
// delivery order.
func (m *Monitor) OnAuthorizationChanged(status permission.LocationAuthorization) {
	_ = m.enqueue(context.Background(), event{kind: evAuthorizationChanged, status: status})
}

// OnLocationFix is invoked by the platform adapter for every position report.
// Fire-and-forget; fixes are processed in arrival order and never dropped due
// to a concurrent toggle.
func (m *Monitor) OnLocationFix(fix Fix) {
	_ = m.enqueue(context.Background(), event{kind: evLocationFix, fix: fix})
}

// Snapshot returns the current observable state. Safe for concurrent use.
func (m *Monitor) Snapshot() Snapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snap
}

// restore derives the initial state from the persisted toggle and current
// authorization. Cold start never enters AwaitingPermissions: permission
// prompts are only triggered by an explicit user-initiated enable.
func (m *Monitor) restore(ctx context.Context) {
	cfg, err := m.configStore.Load(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to load monitor config, starting disabled", "error", err)
		cfg = store.MonitorConfig{}
	}
	m.cfg = cfg

	m.refreshAuthorizations(ctx)

	switch {
	case !m.cfg.Enabled:
		m.state = StateDisabled
	case m.locAuth.CanMonitor():
		m.state = StateMonitoring
	default:
		m.state = StateDegraded
	}
	m.reconcileSession(ctx)
	m.publish()

	m.logger.InfoContext(ctx, "monitor restored",
		"enabled", m.cfg.Enabled,
		"state", string(m.state),
		"last_region", m.cfg.LastKnownRegion,
	)
}

func (m *Monitor) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evSetEnabled:
		m.handleSetEnabled(ctx, ev.enabled)
	case evSync:
		m.handleSync(ctx)
	case evRequestPermissions:
		m.acquirePermissions(ctx)
		m.reconcile(ctx)
	case evAuthorizationChanged:
		m.handleAuthorizationChanged(ctx, ev.status)
	case evLocationFix:
		m.handleFix(ctx, ev.fix)
	}
	m.publish()
}

func (m *Monitor) handleSetEnabled(ctx context.Context, enabled bool) {
	if enabled == m.cfg.Enabled {
		return
	}

	if !enabled {
		if err := m.configStore.SetEnabled(ctx, false); err != nil {
			m.logger.ErrorContext(ctx, "failed to persist disable", "error", err)
		}
		m.cfg.Enabled = false
		m.stopSession(ctx)
		m.state = StateDisabled
		return
	}

	if err := m.configStore.SetEnabled(ctx, true); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist enable", "error", err)
	}
	m.cfg.Enabled = true
	m.state = StateAwaitingPermissions
	m.publish()

	m.acquirePermissions(ctx)
	m.reconcile(ctx)
}

func (m *Monitor) handleSync(ctx context.Context) {
	m.refreshAuthorizations(ctx)
	m.reconcile(ctx)
}

func (m *Monitor) handleAuthorizationChanged(ctx context.Context, status permission.LocationAuthorization) {
	m.locAuth = status

	// whenInUse is the one status the monitor escalates on its own: the user
	// already granted foreground access, and background monitoring needs the
	// top tier.
	if status == permission.LocationWhenInUse {
		if escalated, err := m.location.RequestAlways(ctx); err != nil {
			m.logger.WarnContext(ctx, "always escalation failed", "error", err)
		} else {
			m.locAuth = escalated
		}
	}

	m.reconcile(ctx)
}

// acquirePermissions runs the enable-time sequence: notification permission
// first, then location escalating from whenInUse to always. Each request
// either resolves immediately (already decided) or waits on exactly one
// prompt response. Failures are swallowed; status simply stays where the
// device reports it.
func (m *Monitor) acquirePermissions(ctx context.Context) {
	if st, err := m.notifs.RequestIfUndetermined(ctx); err != nil {
		m.logger.WarnContext(ctx, "notification permission request failed", "error", err)
	} else {
		m.notifAuth = st
	}

	st, err := m.location.CurrentStatus(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "location status read failed", "error", err)
		return
	}
	m.locAuth = st

	if st == permission.LocationNotDetermined {
		st, err = m.location.RequestWhenInUse(ctx)
		if err != nil {
			m.logger.WarnContext(ctx, "when-in-use request failed", "error", err)
			return
		}
		m.locAuth = st
	}

	if st == permission.LocationWhenInUse {
		st, err = m.location.RequestAlways(ctx)
		if err != nil {
			m.logger.WarnContext(ctx, "always request failed", "error", err)
			return
		}
		m.locAuth = st
	}
}

// refreshAuthorizations re-reads both statuses from the device. They can
// change outside the app at any time, so cached values are never trusted
// across a sync point.
func (m *Monitor) refreshAuthorizations(ctx context.Context) {
	if st, err := m.location.CurrentStatus(ctx); err == nil {
		m.locAuth = st
	} else {
		m.logger.WarnContext(ctx, "location status read failed", "error", err)
	}
	if st, err := m.notifs.CurrentStatus(ctx); err == nil {
		m.notifAuth = st
	} else {
		m.logger.WarnContext(ctx, "notification status read failed", "error", err)
	}
}

// reconcile applies the state machine rules: monitoring runs exactly when the
// feature is enabled and location authorization is at the top tier.
func (m *Monitor) reconcile(ctx context.Context) {
	switch {
	case !m.cfg.Enabled:
		m.state = StateDisabled
		m.stopSession(ctx)
	case m.locAuth.CanMonitor():
		m.state = StateMonitoring
		m.startSession(ctx)
	default:
		m.state = StateDegraded
		m.stopSession(ctx)
	}
}

// reconcileSession aligns the session with the already-derived state without
// re-deriving it; used on restore.
func (m *Monitor) reconcileSession(ctx context.Context) {
	if m.state == StateMonitoring {
		m.startSession(ctx)
	} else {
		m.stopSession(ctx)
	}
}

func (m *Monitor) startSession(ctx context.Context) {
	if err := m.session.Start(ctx); err != nil {
		m.logger.WarnContext(ctx, "monitoring session start failed", "error", err)
	}
}

func (m *Monitor) stopSession(ctx context.Context) {
	if err := m.session.Stop(ctx); err != nil {
		m.logger.WarnContext(ctx, "monitoring session stop failed", "error", err)
	}
}

func (m *Monitor) publish() {
	snap := Snapshot{
		Enabled:                   m.cfg.Enabled,
		State:                     m.state,
		// Derived from state alone: startSession failures are logged and
		// retried on the next reconcile, they do not demote the state.
		IsMonitoring:              m.state == StateMonitoring,
		LocationAuthorization:     m.locAuth,
		NotificationAuthorization: m.notifAuth,
		LastKnownRegion:           m.cfg.LastKnownRegion,
	}
	m.snapMu.Lock()
	m.snap = snap
	m.snapMu.Unlock()

	if m.metrics != nil {
		m.metrics.SetState(string(m.state), AllStates)
	}
}
