package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the counters exposed by the watch daemon. A nil
// *Metrics is valid and turns every recording call into a no-op, so the
// tracking core works unchanged outside daemon mode.
type Metrics struct {
	registry *prometheus.Registry

	jobsTracked         prometheus.Gauge
	pollTicks           prometheus.Counter
	pollFailures        prometheus.Counter
	jobsCompleted       prometheus.Counter
	jobsFailed          prometheus.Counter
	artifactsDownloaded prometheus.Counter
	downloadFailures    prometheus.Counter
	notifications       prometheus.Counter
}

// New creates a metric set on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shipctl_jobs_tracked",
			Help: "Number of jobs with an active poller.",
		}),
		pollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_poll_ticks_total",
			Help: "Total poll fetches issued.",
		}),
		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_poll_failures_total",
			Help: "Poll fetches that failed and terminated their poller.",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_jobs_completed_total",
			Help: "Tracked jobs that reached the completed state.",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_jobs_failed_total",
			Help: "Tracked jobs that reached the error state.",
		}),
		artifactsDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_artifacts_downloaded_total",
			Help: "Result artifacts retrieved successfully.",
		}),
		downloadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_download_failures_total",
			Help: "Artifact retrievals that failed.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipctl_notifications_total",
			Help: "Notifications pushed to the queue.",
		}),
	}

	m.registry.MustRegister(
		m.jobsTracked,
		m.pollTicks,
		m.pollFailures,
		m.jobsCompleted,
		m.jobsFailed,
		m.artifactsDownloaded,
		m.downloadFailures,
		m.notifications,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PollerStarted() {
	if m == nil {
		return
	}
	m.jobsTracked.Inc()
}

func (m *Metrics) PollerStopped() {
	if m == nil {
		return
	}
	m.jobsTracked.Dec()
}

func (m *Metrics) PollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
}

func (m *Metrics) PollFailure() {
	if m == nil {
		return
	}
	m.pollFailures.Inc()
}

func (m *Metrics) JobCompleted() {
	if m == nil {
		return
	}
	m.jobsCompleted.Inc()
}

func (m *Metrics) JobFailed() {
	if m == nil {
		return
	}
	m.jobsFailed.Inc()
}

func (m *Metrics) ArtifactDownloaded() {
	if m == nil {
		return
	}
	m.artifactsDownloaded.Inc()
}

func (m *Metrics) DownloadFailure() {
	if m == nil {
		return
	}
	m.downloadFailures.Inc()
}

func (m *Metrics) NotificationPushed() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}
