package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "photos_stats"

// Metrics holds the counters of one invocation on a private registry.
// They are only written out when a metrics file is configured.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.GaugeVec
	lastRun         *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.initMetrics()
	return m
}

func (m *Metrics) initMetrics() {
	m.queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queries_total",
		Help:      "Total number of library queries, by query and status",
	}, []string{"query", "status"})
	m.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Duration of library queries",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"query"})
	m.commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of commands run, by command and outcome",
	}, []string{"command", "outcome"})
	m.commandDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of the last run of each command",
	}, []string{"command"})
	m.lastRun = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last run of each command",
	}, []string{"command"})

	m.registry.MustRegister(m.queriesTotal, m.queryDuration, m.commandsTotal, m.commandDuration, m.lastRun)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveQuery implements library.Recorder
func (m *Metrics) ObserveQuery(name string, d time.Duration, err error) {
	m.queriesTotal.WithLabelValues(name, status(err)).Inc()
	m.queryDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveCommand records the outcome of one command run
func (m *Metrics) ObserveCommand(command, outcome string, d time.Duration) {
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Set(d.Seconds())
	m.lastRun.WithLabelValues(command).SetToCurrentTime()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
