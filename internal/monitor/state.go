package monitor

import (
	"time"

	"roam/internal/permission"
)

// State is the monitor's lifecycle state.
type State string

const (
	// StateDisabled: the user has the feature off.
	StateDisabled State = "disabled"
	// StateAwaitingPermissions: a user-initiated enable is acquiring
	// permissions. Never entered on cold start.
	StateAwaitingPermissions State = "awaitingPermissions"
	// StateMonitoring: enabled and authorized, session active.
	StateMonitoring State = "monitoring"
	// StateDegraded: enabled but not authorized to monitor. Recovers
	// automatically when authorization is upgraded.
	StateDegraded State = "degraded"
)

// AllStates is used by the metrics gauge.
var AllStates = []string{
	string(StateDisabled),
	string(StateAwaitingPermissions),
	string(StateMonitoring),
	string(StateDegraded),
}

// Fix is one raw position report from the monitoring session. Consumed once
// by the region resolver, then discarded.
type Fix struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Snapshot is the observable view the UI boundary renders. Reads are served
// from a mirror the event loop maintains, so observers never block mutations.
type Snapshot struct {
	Enabled                   bool                                 `json:"enabled"`
	State                     State                                `json:"state"`
	IsMonitoring              bool                                 `json:"isMonitoring"`
	LocationAuthorization     permission.LocationAuthorization     `json:"locationAuthorization"`
	NotificationAuthorization permission.NotificationAuthorization `json:"notificationAuthorization"`
	LastKnownRegion           string                               `json:"lastKnownRegion,omitempty"`
}
