package light

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this package.
	MetricsSubsystem = "light"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of slot verifications, labeled by outcome.
	SlotsVerified metrics.Counter
	// Number of blocks fetched for vote scanning.
	BlocksFetched metrics.Counter
	// Number of retries waiting on not-yet-available data, labeled by operation.
	Retries metrics.Counter
	// Number of votes credited to a tally.
	VotesCounted metrics.Counter
	// Number of vote transactions skipped, labeled by reason.
	VotesSkipped metrics.Counter
	// Time spent scanning a vote window, in seconds.
	TallySeconds metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		SlotsVerified: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "slots_verified",
			Help:      "Number of slot verifications, labeled by outcome.",
		}, append(labels, "outcome")).With(labelsAndValues...),
		BlocksFetched: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "blocks_fetched",
			Help:      "Number of blocks fetched for vote scanning.",
		}, labels).With(labelsAndValues...),
		Retries: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "retries",
			Help:      "Number of retries waiting on not-yet-available data, labeled by operation.",
		}, append(labels, "op")).With(labelsAndValues...),
		VotesCounted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "votes_counted",
			Help:      "Number of votes credited to a tally.",
		}, labels).With(labelsAndValues...),
		VotesSkipped: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "votes_skipped",
			Help:      "Number of vote transactions skipped, labeled by reason.",
		}, append(labels, "reason")).With(labelsAndValues...),
		TallySeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "tally_seconds",
			Help:      "Time spent scanning a vote window, in seconds.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		SlotsVerified: discard.NewCounter(),
		BlocksFetched: discard.NewCounter(),
		Retries:       discard.NewCounter(),
		VotesCounted:  discard.NewCounter(),
		VotesSkipped:  discard.NewCounter(),
		TallySeconds:  discard.NewHistogram(),
	}
}
