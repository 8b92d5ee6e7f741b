package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/preprocessor"
)

func Test_Metrics_Outcome(t *testing.T) {
	testCases := []struct {
		err error
		out string
	}{
		{err: nil, out: "ok"},
		{err: tracer.Mask(&preprocessor.MissingColumnsError{Stage: "input", Columns: []string{"a"}}), out: "missing_columns"},
		{err: &preprocessor.EmptyResultError{Stage: "filter", Before: 1}, out: "empty_result"},
		{err: &preprocessor.UnfittedStateError{Op: "transform"}, out: "unfitted_state"},
		{err: errors.New("connection refused"), out: "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.out, func(t *testing.T) {
			require.Equal(t, tc.out, Outcome(tc.err))
		})
	}
}

func Test_Metrics_Observe(t *testing.T) {
	m := New()

	m.Observe(OpTransform, time.Now(), nil)
	m.Observe(OpTransform, time.Now(), nil)
	m.Observe(OpTransform, time.Now(), &preprocessor.EmptyResultError{Stage: "filter", Before: 1})
	m.Rows(3, 2)
	m.Labels([]string{"e", "p", "p"})

	require.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues(OpTransform, "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues(OpTransform, "empty_result")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.row.WithLabelValues("input")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.row.WithLabelValues("output")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.lab.WithLabelValues("p")))
}

func Test_Metrics_Handler(t *testing.T) {
	m := New()
	m.Labels([]string{"e"})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `mushroom_predictions_total{label="e"} 1`))
}
