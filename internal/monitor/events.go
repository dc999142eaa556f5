package monitor

import (
	"context"

	"roam/internal/permission"
)

// The monitor behaves as an actor: external inputs arrive as typed events on
// a single queue and are applied one at a time by the Run loop. Suspending
// work (permission prompts, geocoding, notification submission) happens
// inline within the owning event, so mutual exclusion over persisted state is
// structural rather than lock-based.

type eventKind int

const (
	evSetEnabled eventKind = iota
	evSync
	evRequestPermissions
	evAuthorizationChanged
	evLocationFix
)

type event struct {
	kind    eventKind
	enabled bool
	status  permission.LocationAuthorization
	fix     Fix

	// done, when non-nil, is closed after the event has been fully applied.
	// Callers that need completion semantics (SetEnabled, Sync) wait on it.
	done chan struct{}
}

// enqueue blocks until the queue accepts the event, preserving arrival order.
// Fixes and authorization callbacks are never dropped because of a race with
// a concurrent toggle; at worst they are applied against a state the next
// sync reconciles.
func (m *Monitor) enqueue(ctx context.Context, ev event) error {
	select {
	case m.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrStopped
	}
}

// await waits for the loop to finish applying the event.
func await(ctx context.Context, ev event) error {
	select {
	case <-ev.done:
		return nil
	case <-ctx.Done():
		// The event stays queued and will still apply; only the wait is
		// abandoned.
		return ctx.Err()
	}
}
