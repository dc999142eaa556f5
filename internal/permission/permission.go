// Package permission models the two independently gated authorization
// subsystems (location, notifications) at their boundary. Statuses are
// re-derived from the device on every sync because the user can change them
// outside the app.
package permission

import "context"

// LocationAuthorization is the authorization tier granted for location access.
// Tiers are ordered: denied/restricted < notDetermined < whenInUse < always.
type LocationAuthorization string

const (
	LocationNotDetermined LocationAuthorization = "notDetermined"
	LocationWhenInUse     LocationAuthorization = "whenInUse"
	LocationAlways        LocationAuthorization = "always"
	LocationDenied        LocationAuthorization = "denied"
	LocationRestricted    LocationAuthorization = "restricted"
)

// CanMonitor reports whether the tier supports background significant-change
// monitoring. Only the highest tier qualifies.
func (a LocationAuthorization) CanMonitor() bool {
	return a == LocationAlways
}

// Terminal reports whether requesting again is pointless until the user acts
// in system settings.
func (a LocationAuthorization) Terminal() bool {
	return a == LocationDenied || a == LocationRestricted
}

// NotificationAuthorization is the authorization tier for local notifications.
type NotificationAuthorization string

const (
	NotificationNotDetermined NotificationAuthorization = "notDetermined"
	NotificationAuthorized    NotificationAuthorization = "authorized"
	NotificationProvisional   NotificationAuthorization = "provisional"
	NotificationDenied        NotificationAuthorization = "denied"
)

// CanNotify reports whether a notification may be presented.
func (a NotificationAuthorization) CanNotify() bool {
	return a == NotificationAuthorized || a == NotificationProvisional
}

// LocationGateway queries and requests location authorization. It holds no
// state beyond what the device reports. A denial is terminal until the user
// acts outside the app; gateways never retry denied requests.
type LocationGateway interface {
	// CurrentStatus reads the cached authorization status.
	CurrentStatus(ctx context.Context) (LocationAuthorization, error)

	// RequestWhenInUse prompts for foreground access if the status is still
	// notDetermined, suspending until the user resolves the prompt. Any other
	// status returns immediately.
	RequestWhenInUse(ctx context.Context) (LocationAuthorization, error)

	// RequestAlways escalates whenInUse to always. At most one prompt.
	RequestAlways(ctx context.Context) (LocationAuthorization, error)
}

// NotificationGateway queries and requests notification authorization.
type NotificationGateway interface {
	// CurrentStatus reads the cached authorization status.
	CurrentStatus(ctx context.Context) (NotificationAuthorization, error)

	// RequestIfUndetermined prompts once if the status is notDetermined,
	// suspending until the user resolves the prompt; otherwise it returns
	// the current status immediately.
	RequestIfUndetermined(ctx context.Context) (NotificationAuthorization, error)
}
