// Package bridge is the message-passing boundary between the device agent
// and the monitor. Outbound work becomes queued device commands the agent
// drains; inbound device callbacks become typed events pushed at the
// monitor's serialized queue. This keeps the device's threading model out of
// the core's single-writer discipline.
package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"roam/internal/monitor"
	"roam/internal/notify"
	"roam/internal/permission"
)

// CommandKind enumerates what the service can ask the device agent to do.
type CommandKind string

const (
	CommandRequestWhenInUse        CommandKind = "request_when_in_use_authorization"
	CommandRequestAlways           CommandKind = "request_always_authorization"
	CommandRequestNotificationAuth CommandKind = "request_notification_authorization"
	CommandStartMonitoring         CommandKind = "start_significant_change_monitoring"
	CommandStopMonitoring          CommandKind = "stop_significant_change_monitoring"
	CommandPresentNotification     CommandKind = "present_notification"
)

// DeviceCommand is one queued instruction for the device agent.
type DeviceCommand struct {
	ID           string               `json:"id"`
	Kind         CommandKind          `json:"kind"`
	Notification *notify.Notification `json:"notification,omitempty"`
	IssuedAt     time.Time            `json:"issuedAt"`
}

// Sink receives inbound device reports. The monitor implements it.
type Sink interface {
	OnAuthorizationChanged(status permission.LocationAuthorization)
	OnLocationFix(fix monitor.Fix)
}

// Channel is the shared device link. It caches the device's last reported
// authorization statuses, queues outbound commands, and parks permission
// requests on waiter channels until the matching report arrives.
type Channel struct {
	mu           sync.Mutex
	queue        []DeviceCommand
	locStatus    permission.LocationAuthorization
	notifStatus  permission.NotificationAuthorization
	locWaiters   []chan permission.LocationAuthorization
	notifWaiters []chan permission.NotificationAuthorization
	sink         Sink
	logger       *slog.Logger
	clock        func() time.Time
}

type Option func(*Channel)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Channel) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		locStatus:   permission.LocationNotDetermined,
		notifStatus: permission.NotificationNotDetermined,
		logger:      slog.Default(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSink attaches the inbound report consumer. Must be called before the
// bridge handler starts accepting reports.
func (c *Channel) SetSink(sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// DrainCommands returns all queued commands and clears the queue. The device
// agent polls this; commands it fails to execute are re-created by the next
// sync rather than redelivered.
func (c *Channel) DrainCommands() []DeviceCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmds := c.queue
	c.queue = nil
	return cmds
}

func (c *Channel) push(kind CommandKind, n *notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, DeviceCommand{
		ID:           uuid.NewString(),
		Kind:         kind,
		Notification: n,
		IssuedAt:     c.clock(),
	})
}

// ReportLocationAuthorization records a device-reported authorization status,
// releases any parked location permission requests, and forwards the change
// to the sink.
func (c *Channel) ReportLocationAuthorization(status permission.LocationAuthorization) {
	c.mu.Lock()
	c.locStatus = status
	waiters := c.locWaiters
	c.locWaiters = nil
	sink := c.sink
	c.mu.Unlock()

	for _, w := range waiters {
		w <- status
	}
	if sink != nil {
		sink.OnAuthorizationChanged(status)
	}
}

// ReportNotificationSettings records the device-reported notification
// authorization and releases parked notification permission requests.
func (c *Channel) ReportNotificationSettings(status permission.NotificationAuthorization) {
	c.mu.Lock()
	c.notifStatus = status
	waiters := c.notifWaiters
	c.notifWaiters = nil
	c.mu.Unlock()

	for _, w := range waiters {
		w <- status
	}
}

// ReportLocationFix forwards a position report to the sink.
func (c *Channel) ReportLocationFix(fix monitor.Fix) {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink != nil {
		sink.OnLocationFix(fix)
	}
}

func (c *Channel) awaitLocationStatus(ctx context.Context) (permission.LocationAuthorization, error) {
	w := make(chan permission.LocationAuthorization, 1)
	c.mu.Lock()
	c.locWaiters = append(c.locWaiters, w)
	c.mu.Unlock()

	select {
	case st := <-w:
		return st, nil
	case <-ctx.Done():
		c.dropLocationWaiter(w)
		return c.locationStatus(), ctx.Err()
	}
}

func (c *Channel) dropLocationWaiter(w chan permission.LocationAuthorization) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.locWaiters {
		if x == w {
			c.locWaiters = append(c.locWaiters[:i], c.locWaiters[i+1:]...)
			return
		}
	}
}

func (c *Channel) awaitNotificationStatus(ctx context.Context) (permission.NotificationAuthorization, error) {
	w := make(chan permission.NotificationAuthorization, 1)
	c.mu.Lock()
	c.notifWaiters = append(c.notifWaiters, w)
	c.mu.Unlock()

	select {
	case st := <-w:
		return st, nil
	case <-ctx.Done():
		c.dropNotificationWaiter(w)
		return c.notificationStatus(), ctx.Err()
	}
}

func (c *Channel) dropNotificationWaiter(w chan permission.NotificationAuthorization) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.notifWaiters {
		if x == w {
			c.notifWaiters = append(c.notifWaiters[:i], c.notifWaiters[i+1:]...)
			return
		}
	}
}

func (c *Channel) locationStatus() permission.LocationAuthorization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locStatus
}

func (c *Channel) notificationStatus() permission.NotificationAuthorization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifStatus
}
