package monitor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"roam/internal/geocode"
	"roam/pkg/outcome"
)

// handleFix runs the region-change pipeline for one fix: resolve, compare,
// persist, dispatch. The steady-state path (same region) is a no-op and
// dominates call volume.
func (m *Monitor) handleFix(ctx context.Context, fix Fix) {
	out := m.processFix(ctx, fix)
	if out.Status == outcome.Suppressed && out.Reason == "geocode" && m.metrics != nil {
		m.metrics.GeocodeFailures.Inc()
	}
}

// processFix returns the suppressed-failure outcome so tests can assert on
// what was swallowed; the public contract discards it.
func (m *Monitor) processFix(ctx context.Context, fix Fix) outcome.Outcome {
	// Disabling while a fix is queued abandons the work up front.
	if ctx.Err() != nil {
		return outcome.Skip("cancelled")
	}

	// Only an actively monitoring state consumes fixes. A fix enqueued before
	// a disable is still processed first (strict arrival order), so this only
	// drops reports from an agent that kept posting after the stop command.
	if !m.cfg.Enabled || m.state != StateMonitoring {
		return outcome.Skip("not monitoring")
	}

	if m.metrics != nil {
		m.metrics.FixesReceived.Inc()
	}

	ctx, span := otel.Tracer("monitor").Start(ctx, "monitor.region_change")
	defer span.End()

	region, err := m.resolver.Resolve(ctx, geocode.Coordinate{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
	})
	if err != nil || region == "" {
		// No retry: the next fix from the monitoring session is the implicit
		// retry mechanism.
		m.logger.DebugContext(ctx, "region resolution failed, fix discarded", "error", err)
		return outcome.Suppress("geocode", err)
	}
	span.SetAttributes(attribute.String("region", region))

	if region == m.cfg.LastKnownRegion {
		return outcome.Skip("unchanged")
	}

	change := RegionChange{
		Previous:  m.cfg.LastKnownRegion,
		Region:    region,
		Timestamp: fix.Timestamp,
	}

	if err := m.configStore.SetLastRegion(ctx, region); err != nil {
		// Keep the in-memory value so the next fix retries the write.
		m.logger.ErrorContext(ctx, "failed to persist region change", "region", region, "error", err)
		return outcome.Suppress("persist", err)
	}
	m.cfg.LastKnownRegion = region
	if m.metrics != nil {
		m.metrics.RegionChanges.Inc()
	}
	m.logger.InfoContext(ctx, "region changed",
		"previous", change.Previous,
		"region", change.Region,
	)

	m.publishChange(ctx, change)
	return m.notifyChange(ctx, region)
}

// publishChange streams the accepted change to the event bus. Best-effort;
// a broker hiccup must never affect monitor state.
func (m *Monitor) publishChange(ctx context.Context, change RegionChange) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishRegionChange(ctx, change); err != nil {
		m.logger.WarnContext(ctx, "region change publish failed", "error", err)
		if m.metrics != nil {
			m.metrics.EventPublishFailures.Inc()
		}
		return
	}
	if m.metrics != nil {
		m.metrics.EventsPublished.Inc()
	}
}

// notifyChange dispatches exactly one notification for an accepted change,
// provided notification authorization allows it at dispatch time. The change
// is recorded either way; there is no retry.
func (m *Monitor) notifyChange(ctx context.Context, region string) outcome.Outcome {
	st, err := m.notifs.CurrentStatus(ctx)
	if err == nil {
		m.notifAuth = st
	}

	if !m.notifAuth.CanNotify() {
		if m.metrics != nil {
			m.metrics.NotificationsSuppressed.Inc()
		}
		return outcome.Skip("notifications not authorized")
	}

	if err := m.dispatcher.DispatchRegionChange(ctx, region); err != nil {
		m.logger.WarnContext(ctx, "notification dispatch failed", "region", region, "error", err)
		if m.metrics != nil {
			m.metrics.NotificationsSuppressed.Inc()
		}
		return outcome.Suppress("dispatch", err)
	}
	if m.metrics != nil {
		m.metrics.NotificationsSent.Inc()
	}
	return outcome.Ok()
}
