package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	FixesReceived           prometheus.Counter
	GeocodeFailures         prometheus.Counter
	RegionChanges           prometheus.Counter
	NotificationsSent       prometheus.Counter
	NotificationsSuppressed prometheus.Counter
	SessionStarts           prometheus.Counter
	SessionStops            prometheus.Counter
	MonitorState            *prometheus.GaugeVec
	EventsPublished         prometheus.Counter
	EventPublishFailures    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		FixesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_location_fixes_total",
			Help: "Total location fixes delivered by the monitoring session",
		}),
		GeocodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_geocode_failures_total",
			Help: "Reverse-geocoding calls that failed or returned no region",
		}),
		RegionChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_region_changes_total",
			Help: "Accepted region changes persisted by the monitor",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_notifications_dispatched_total",
			Help: "Local notifications submitted for region changes",
		}),
		NotificationsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_notifications_suppressed_total",
			Help: "Region changes recorded without a notification (denied or failed)",
		}),
		SessionStarts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_monitoring_session_starts_total",
			Help: "Times significant-change monitoring was started",
		}),
		SessionStops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_monitoring_session_stops_total",
			Help: "Times significant-change monitoring was stopped",
		}),
		MonitorState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roam_monitor_state",
			Help: "Current monitor state (1 for the active state, 0 otherwise)",
		}, []string{"state"}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_region_events_published_total",
			Help: "Region-change events published to the event stream",
		}),
		EventPublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roam_region_event_publish_failures_total",
			Help: "Region-change event publishes that failed (best-effort, dropped)",
		}),
	}
}

// SetState flips the state gauge so dashboards can show exactly one active state.
func (m *Metrics) SetState(active string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1.0
		}
		m.MonitorState.WithLabelValues(s).Set(v)
	}
}
