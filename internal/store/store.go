// Package store persists the monitor's durable configuration: the enabled
// toggle and the last known region. The store is the sole source of truth for
// whether monitoring should be active on next launch.
package store

import "context"

// Stable keys. Backends that expose raw key-value storage use these verbatim
// so state written by one backend can be inspected with standard tooling.
const (
	KeyEnabled    = "travelNotif.enabled"
	KeyLastRegion = "travelNotif.lastRegion"
)

// MonitorConfig is the durable monitor state. The zero value is the first-run
// state: disabled, no known region.
type MonitorConfig struct {
	Enabled         bool
	LastKnownRegion string
}

// ConfigStore reads and writes MonitorConfig. Writes are single-key and
// single-writer (only the monitor writes), so no transaction discipline
// beyond atomic per-key writes is required of implementations.
type ConfigStore interface {
	// Load returns the persisted config, or the zero value on first run.
	Load(ctx context.Context) (MonitorConfig, error)

	// SetEnabled persists the toggle.
	SetEnabled(ctx context.Context, enabled bool) error

	// SetLastRegion persists the last known region.
	SetLastRegion(ctx context.Context, region string) error
}
