package bridge

import (
	"context"

	"roam/internal/notify"
	"roam/internal/permission"
)

// LocationGateway adapts the channel to permission.LocationGateway. A prompt
// command is queued for the device agent and the call suspends until the
// matching authorization report arrives or ctx is cancelled.
type LocationGateway struct {
	channel *Channel
}

func NewLocationGateway(channel *Channel) *LocationGateway {
	return &LocationGateway{channel: channel}
}

func (g *LocationGateway) CurrentStatus(_ context.Context) (permission.LocationAuthorization, error) {
	return g.channel.locationStatus(), nil
}

func (g *LocationGateway) RequestWhenInUse(ctx context.Context) (permission.LocationAuthorization, error) {
	if st := g.channel.locationStatus(); st != permission.LocationNotDetermined {
		// A denial is terminal until the user acts in system settings; never
		// re-prompt.
		return st, nil
	}
	g.channel.push(CommandRequestWhenInUse, nil)
	return g.channel.awaitLocationStatus(ctx)
}

func (g *LocationGateway) RequestAlways(ctx context.Context) (permission.LocationAuthorization, error) {
	st := g.channel.locationStatus()
	if st.CanMonitor() || st.Terminal() {
		return st, nil
	}
	g.channel.push(CommandRequestAlways, nil)
	return g.channel.awaitLocationStatus(ctx)
}

// NotificationGateway adapts the channel to permission.NotificationGateway.
type NotificationGateway struct {
	channel *Channel
}

func NewNotificationGateway(channel *Channel) *NotificationGateway {
	return &NotificationGateway{channel: channel}
}

func (g *NotificationGateway) CurrentStatus(_ context.Context) (permission.NotificationAuthorization, error) {
	return g.channel.notificationStatus(), nil
}

func (g *NotificationGateway) RequestIfUndetermined(ctx context.Context) (permission.NotificationAuthorization, error) {
	if st := g.channel.notificationStatus(); st != permission.NotificationNotDetermined {
		return st, nil
	}
	g.channel.push(CommandRequestNotificationAuth, nil)
	return g.channel.awaitNotificationStatus(ctx)
}

// Transport adapts the channel to tracking.Transport. Start/stop are plain
// queued commands; the session layer owns idempotence.
type Transport struct {
	channel *Channel
}

func NewTransport(channel *Channel) *Transport {
	return &Transport{channel: channel}
}

func (t *Transport) StartSignificantChangeMonitoring(_ context.Context) error {
	t.channel.push(CommandStartMonitoring, nil)
	return nil
}

func (t *Transport) StopSignificantChangeMonitoring(_ context.Context) error {
	t.channel.push(CommandStopMonitoring, nil)
	return nil
}

// Submitter adapts the channel to notify.Submitter with fire-and-forget
// semantics: queueing is the submission.
type Submitter struct {
	channel *Channel
}

func NewSubmitter(channel *Channel) *Submitter {
	return &Submitter{channel: channel}
}

func (s *Submitter) Submit(_ context.Context, n notify.Notification) error {
	s.channel.push(CommandPresentNotification, &n)
	return nil
}
