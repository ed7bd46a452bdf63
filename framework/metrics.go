package framework

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsTestLogger is a TestLogger that records test outcomes and durations as Prometheus metrics.
// The metrics can be written out in the node_exporter textfile format at the end of a run.
type MetricsTestLogger struct {
	registry      *prometheus.Registry
	results       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	phaseResults  *prometheus.CounterVec
	phaseDuration *prometheus.GaugeVec
}

func NewMetricsTestLogger() *MetricsTestLogger {
	m := &MetricsTestLogger{
		registry: prometheus.NewRegistry(),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ryff_api_tests",
			Name:      "tests_total",
			Help:      "Number of tests finished, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ryff_api_tests",
			Name:      "test_duration_seconds",
			Help:      "Wall-clock duration of each test including setup and teardown.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"test"}),
		phaseResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ryff_api_tests",
			Name:      "phases_total",
			Help:      "Number of install and uninstall phases finished, by phase and result.",
		}, []string{"phase", "result"}),
		phaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ryff_api_tests",
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of the last install or uninstall phase.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(m.results, m.duration, m.phaseResults, m.phaseDuration)
	return m
}

func (m *MetricsTestLogger) TestStarted(TestID) {}

func (m *MetricsTestLogger) TestError(TestID, error) {}

func (m *MetricsTestLogger) TestFinished(id TestID, failed bool, elapsed time.Duration, _ CapturedOutput) {
	result := "passed"
	if failed {
		result = "failed"
	}
	if id.Phase {
		m.phaseResults.WithLabelValues(id.String(), result).Inc()
		m.phaseDuration.WithLabelValues(id.String()).Set(elapsed.Seconds())
		return
	}
	m.results.WithLabelValues(result).Inc()
	m.duration.WithLabelValues(id.String()).Observe(elapsed.Seconds())
}

func (m *MetricsTestLogger) TestSkipped(TestID, string) {
	m.results.WithLabelValues("skipped").Inc()
}

func (m *MetricsTestLogger) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metric values to the given path.
func (m *MetricsTestLogger) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
