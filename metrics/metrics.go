// Package metrics exposes prometheus collectors for the outcomes and
// latencies of fit, transform and predict operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/guide"
	"github.com/xh3b4sd/mushroom/preprocessor"
)

const (
	OpFit       = "fit"
	OpPredict   = "predict"
	OpTransform = "transform"
)

type Metrics struct {
	dur *prometheus.HistogramVec
	lab *prometheus.CounterVec
	ops *prometheus.CounterVec
	reg *prometheus.Registry
	row *prometheus.CounterVec
}

// New registers all collectors with a private registry, so that multiple
// instances can coexist, e.g. in tests.
func New() *Metrics {
	m := &Metrics{
		dur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mushroom",
			Name:      "operation_duration_seconds",
			Help:      "Duration of preprocessing and prediction operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		lab: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mushroom",
			Name:      "predictions_total",
			Help:      "Predicted class labels.",
		}, []string{"label"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mushroom",
			Name:      "operations_total",
			Help:      "Preprocessing and prediction operations by outcome.",
		}, []string{"op", "outcome"}),
		reg: prometheus.NewRegistry(),
		row: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mushroom",
			Name:      "rows_total",
			Help:      "Rows entering and leaving transform.",
		}, []string{"stage"}),
	}

	m.reg.MustRegister(m.dur, m.lab, m.ops, m.row)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe records the outcome and the duration since sta of operation op.
func (m *Metrics) Observe(op string, sta time.Time, err error) {
	m.dur.WithLabelValues(op).Observe(time.Since(sta).Seconds())
	m.ops.WithLabelValues(op, Outcome(err)).Inc()
}

// Rows records the rows submitted to and produced by transform.
func (m *Metrics) Rows(inp int, out int) {
	m.row.WithLabelValues("input").Add(float64(inp))
	m.row.WithLabelValues("output").Add(float64(out))
}

func (m *Metrics) Labels(lab []string) {
	for _, l := range lab {
		m.lab.WithLabelValues(l).Inc()
	}
}

// Outcome classifies err into a low cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case preprocessor.IsMissingColumns(err):
		return "missing_columns"
	case preprocessor.IsEmptyResult(err):
		return "empty_result"
	case preprocessor.IsUnfittedState(err):
		return "unfitted_state"
	case batch.IsInvalidType(err):
		return "invalid_type"
	case guide.IsUnknownValue(err):
		return "unknown_value"
	}

	return "error"
}
