// Package metrics exposes Prometheus collectors for the party search server.
// A single Metrics value implements the storage, snapshot and feed hooks and
// is served on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partysearch"

// Submission outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
)

// Metrics owns a private registry and every collector registered on it.
type Metrics struct {
	reg *prometheus.Registry

	storeReadSeconds    prometheus.Histogram
	storeReadBytes      prometheus.Counter
	batchCommitSeconds  prometheus.Histogram
	batchOps            prometheus.Counter
	batchBytes          prometheus.Counter
	batchErrors         prometheus.Counter
	snapshotLoadSeconds prometheus.Histogram
	snapshotLoadErrors  prometheus.Counter
	snapshotPartitions  prometheus.Gauge
	feedSubscribers     prometheus.Gauge
	feedDelivered       prometheus.Counter
	feedDropped         prometheus.Counter
	submissions         *prometheus.CounterVec
	rateLimited         prometheus.Counter
}

// New registers all collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		storeReadSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "read_duration_seconds", Help: "Duration of store reads and scans.",
			Buckets: prometheus.DefBuckets,
		}),
		storeReadBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "read_bytes_total", Help: "Bytes returned by store reads and scans.",
		}),
		batchCommitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "batch_commit_duration_seconds", Help: "Duration of atomic batch commits.",
			Buckets: prometheus.DefBuckets,
		}),
		batchOps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "batch_ops_total", Help: "Row operations in committed batches.",
		}),
		batchBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "batch_bytes_total", Help: "Encoded size of committed batches.",
		}),
		batchErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "batch_errors_total", Help: "Batch commits that failed.",
		}),
		snapshotLoadSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "snapshot",
			Name: "load_duration_seconds", Help: "Duration of full snapshot loads.",
			Buckets: prometheus.DefBuckets,
		}),
		snapshotLoadErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "snapshot",
			Name: "load_errors_total", Help: "Snapshot loads that failed.",
		}),
		snapshotPartitions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "snapshot",
			Name: "partitions", Help: "Partitions in the last loaded snapshot.",
		}),
		feedSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "feed",
			Name: "subscribers", Help: "Connected live feed subscribers.",
		}),
		feedDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "feed",
			Name: "frames_delivered_total", Help: "Frames queued to subscribers.",
		}),
		feedDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "feed",
			Name: "frames_dropped_total", Help: "Frames dropped for slow subscribers.",
		}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "submissions",
			Name: "total", Help: "Party search submissions by outcome.",
		}, []string{"outcome"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "rate_limited_total", Help: "Requests rejected by the rate limiter.",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveRead(elapsed time.Duration, bytes int) {
	m.storeReadSeconds.Observe(elapsed.Seconds())
	m.storeReadBytes.Add(float64(bytes))
}

func (m *Metrics) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int, err error) {
	m.batchCommitSeconds.Observe(elapsed.Seconds())
	if err != nil {
		m.batchErrors.Inc()
		return
	}
	m.batchOps.Add(float64(numOps))
	m.batchBytes.Add(float64(bytes))
}

func (m *Metrics) ObserveLoad(elapsed time.Duration, partitions int, err error) {
	m.snapshotLoadSeconds.Observe(elapsed.Seconds())
	if err != nil {
		m.snapshotLoadErrors.Inc()
		return
	}
	m.snapshotPartitions.Set(float64(partitions))
}

func (m *Metrics) SetSubscribers(n int) { m.feedSubscribers.Set(float64(n)) }

func (m *Metrics) ObserveBroadcast(delivered, dropped int) {
	m.feedDelivered.Add(float64(delivered))
	m.feedDropped.Add(float64(dropped))
}

// ObserveSubmission counts one submission with one of the Outcome* labels.
func (m *Metrics) ObserveSubmission(outcome string) { m.submissions.WithLabelValues(outcome).Inc() }

// ObserveRateLimited counts one rejected request.
func (m *Metrics) ObserveRateLimited() { m.rateLimited.Inc() }
