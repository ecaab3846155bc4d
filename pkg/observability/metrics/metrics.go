// Package metrics records generator and tool events as Prometheus metrics.
//
// A [Recorder] implements both [observability.GeneratorHooks] and
// [observability.ToolHooks]. It keeps its own registry, so several recorders
// can coexist in one process, and writes it in the text exposition format
// for the node_exporter textfile collector.
//
//	rec := metrics.NewRecorder()
//	observability.SetGeneratorHooks(rec)
//	observability.SetToolHooks(rec)
//	// ... run ...
//	err := rec.WriteTextfile("/var/lib/node_exporter/streamgen.prom")
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/streamgen/pkg/errors"
)

const namespace = "streamgen"

// Result label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Recorder converts hook events into counters and histograms.
type Recorder struct {
	registry *prometheus.Registry

	generated        *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	exportedUpdates  *prometheus.CounterVec
	exportBatches    *prometheus.CounterVec
	exportDuration   *prometheus.HistogramVec
	toolRuns         *prometheus.CounterVec
	toolUpdates      *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	buckets := prometheus.ExponentialBuckets(0.001, 4, 10) // 1ms .. ~4min

	return &Recorder{
		registry: reg,
		generated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generators_built_total",
			Help:      "Generators constructed, by generator and result.",
		}, []string{"generator", "result"}),
		generateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Time to construct a generator.",
			Buckets:   buckets,
		}, []string{"generator"}),
		exportedUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_updates_total",
			Help:      "Updates written to streams by export.",
		}, []string{"generator"}),
		exportBatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_batches_total",
			Help:      "Batches flushed by export.",
		}, []string{"generator"}),
		exportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time to export a generator to a stream.",
			Buckets:   buckets,
		}, []string{"generator", "result"}),
		toolRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_runs_total",
			Help:      "Stream tool runs, by tool and result.",
		}, []string{"tool", "result"}),
		toolUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_updates_total",
			Help:      "Updates processed by stream tools.",
		}, []string{"tool"}),
		toolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Stream tool run time.",
			Buckets:   buckets,
		}, []string{"tool"}),
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// Gatherer exposes the recorder's registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write metrics to %s", path)
	}
	return nil
}

func (r *Recorder) OnGenerateStart(context.Context, string, uint64) {}

func (r *Recorder) OnGenerateComplete(_ context.Context, generator string, _ uint64, d time.Duration, err error) {
	r.generated.WithLabelValues(generator, result(err)).Inc()
	if err == nil {
		r.generateDuration.WithLabelValues(generator).Observe(d.Seconds())
	}
}

// OnExportBatch counts batches; updates are counted once at completion.
func (r *Recorder) OnExportBatch(_ context.Context, generator string, _, _ uint64) {
	r.exportBatches.WithLabelValues(generator).Inc()
}

func (r *Recorder) OnExportComplete(_ context.Context, generator string, written uint64, d time.Duration, err error) {
	r.exportedUpdates.WithLabelValues(generator).Add(float64(written))
	r.exportDuration.WithLabelValues(generator, result(err)).Observe(d.Seconds())
}

func (r *Recorder) OnToolStart(context.Context, string, string, uint64) {}

func (r *Recorder) OnToolComplete(_ context.Context, tool, _ string, processed uint64, d time.Duration, err error) {
	r.toolRuns.WithLabelValues(tool, result(err)).Inc()
	r.toolUpdates.WithLabelValues(tool).Add(float64(processed))
	r.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}
