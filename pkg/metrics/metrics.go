package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	registry           *prometheus.Registry
	pollsTotal         prometheus.Counter
	fetchErrorsTotal   prometheus.Counter
	framesBuiltTotal   prometheus.Counter
	standingsRefreshes prometheus.Counter
	websocketClients   prometheus.Gauge
	notificationsTotal prometheus.Counter
}

// New creates and registers the dashboard collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pollsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openf1_polls_total",
		Help: "Total number of completed poll cycles",
	})
	fetchErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openf1_fetch_errors_total",
		Help: "Total number of failed fetch cycles",
	})
	framesBuiltTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openf1_timeline_frames_built_total",
		Help: "Total number of timeline frames derived",
	})
	standingsRefreshes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openf1_standings_refreshes_total",
		Help: "Total number of successful standings aggregations",
	})
	websocketClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "openf1_websocket_clients",
		Help: "Number of connected live dashboard clients",
	})
	notificationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openf1_flag_notifications_total",
		Help: "Total number of flag alerts sent",
	})

	registry.MustRegister(
		pollsTotal,
		fetchErrorsTotal,
		framesBuiltTotal,
		standingsRefreshes,
		websocketClients,
		notificationsTotal,
	)

	return &Metrics{
		registry:           registry,
		pollsTotal:         pollsTotal,
		fetchErrorsTotal:   fetchErrorsTotal,
		framesBuiltTotal:   framesBuiltTotal,
		standingsRefreshes: standingsRefreshes,
		websocketClients:   websocketClients,
		notificationsTotal: notificationsTotal,
	}
}

func (m *Metrics) IncPolls() {
	m.pollsTotal.Inc()
}

func (m *Metrics) IncFetchErrors() {
	m.fetchErrorsTotal.Inc()
}

func (m *Metrics) AddFramesBuilt(n int) {
	m.framesBuiltTotal.Add(float64(n))
}

func (m *Metrics) IncStandingsRefreshes() {
	m.standingsRefreshes.Inc()
}

func (m *Metrics) IncWebsocketClients() {
	m.websocketClients.Inc()
}

func (m *Metrics) DecWebsocketClients() {
	m.websocketClients.Dec()
}

func (m *Metrics) IncNotifications() {
	m.notificationsTotal.Inc()
}

// Handler serves the registry for Prometheus scrapes.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
