// Package scaler standardizes continuous features to zero mean and unit
// variance.
package scaler

import (
	"math"

	"github.com/xh3b4sd/tracer"
	"gonum.org/v1/gonum/stat"
)

// Standard holds per column centering and scaling statistics. Std is the
// population standard deviation, and a constant column gets Std 1 so that
// transforming it yields zeros instead of NaN.
//
// Fields are exported for gob encoding. Treat them as read-only after Fit.
type Standard struct {
	Mean  []float64
	Std   []float64
	Ready bool
}

// Fit learns column statistics from row-major X. NaN values are ignored. A
// column without any observed value gets mean 0 and std 1. Fitting zero rows
// with a known width is allowed and yields the same neutral statistics.
func (s *Standard) Fit(col int, X [][]float64) error {
	mea := make([]float64, col)
	std := make([]float64, col)

	for j := 0; j < col; j++ {
		var val []float64
		for i, r := range X {
			if len(r) != col {
				return tracer.Maskf(invalidShapeError, "row %d has %d columns, expected %d", i, len(r), col)
			}
			if !math.IsNaN(r[j]) {
				val = append(val, r[j])
			}
		}

		if len(val) == 0 {
			mea[j], std[j] = 0, 1
			continue
		}

		mea[j], std[j] = stat.PopMeanStdDev(val, nil)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	s.Mean = mea
	s.Std = std
	s.Ready = true

	return nil
}

// Transform returns a standardized copy of X using the frozen statistics.
// NaN values propagate unchanged.
func (s *Standard) Transform(X [][]float64) ([][]float64, error) {
	if !s.Ready {
		return nil, tracer.Mask(notFittedError)
	}

	out := make([][]float64, len(X))
	for i, r := range X {
		if len(r) != len(s.Mean) {
			return nil, tracer.Maskf(invalidShapeError, "row %d has %d columns, expected %d", i, len(r), len(s.Mean))
		}

		out[i] = make([]float64, len(r))
		for j, v := range r {
			out[i][j] = (v - s.Mean[j]) / s.Std[j]
		}
	}

	return out, nil
}

func (s *Standard) Width() int {
	return len(s.Mean)
}
