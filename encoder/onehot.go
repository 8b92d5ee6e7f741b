// Package encoder expands categorical features into indicator columns.
package encoder

import (
	"sort"

	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/matrix"
)

// OneHot maps each categorical column to one indicator per category seen at
// fit time. Categories are sorted per column so that the output layout only
// depends on the set of observed values, never on row order. A value not seen
// at fit time yields an all-zero block for its column.
//
// Fields are exported for gob encoding. Treat them as read-only after Fit.
type OneHot struct {
	Names      []string
	Categories [][]string
	Ready      bool
}

// Fit learns the categories of every column. obs[j] holds the observed values
// of column nam[j]; missing values must already be excluded.
func (o *OneHot) Fit(nam []string, obs [][]string) error {
	if len(nam) != len(obs) {
		return tracer.Maskf(invalidShapeError, "%d names for %d columns", len(nam), len(obs))
	}

	cat := make([][]string, len(obs))
	for j, col := range obs {
		see := map[string]bool{}
		for _, v := range col {
			if !see[v] {
				see[v] = true
				cat[j] = append(cat[j], v)
			}
		}
		sort.Strings(cat[j])
	}

	o.Names = append([]string(nil), nam...)
	o.Categories = cat
	o.Ready = true

	return nil
}

// Transform encodes row-major values. Every row must hold one value per
// fitted column, in fitted column order.
func (o *OneHot) Transform(X [][]string) (*matrix.CSR, error) {
	if !o.Ready {
		return nil, tracer.Mask(notFittedError)
	}

	off := o.offsets()
	bui := matrix.NewBuilder(o.Width())

	for i, r := range X {
		if len(r) != len(o.Categories) {
			return nil, tracer.Maskf(invalidShapeError, "row %d has %d columns, expected %d", i, len(r), len(o.Categories))
		}

		var idx []int
		var val []float64
		for j, v := range r {
			k, ok := o.lookup(j, v)
			if !ok {
				continue
			}

			idx = append(idx, off[j]+k)
			val = append(val, 1)
		}

		bui.Row(idx, val)
	}

	m, err := bui.Build()
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return m, nil
}

// Width is the total number of indicator columns.
func (o *OneHot) Width() int {
	var w int
	for _, c := range o.Categories {
		w += len(c)
	}

	return w
}

// FeatureNames returns "column=category" for every indicator column, in
// output order.
func (o *OneHot) FeatureNames() []string {
	var out []string
	for j, c := range o.Categories {
		for _, v := range c {
			out = append(out, o.Names[j]+"="+v)
		}
	}

	return out
}

func (o *OneHot) lookup(j int, v string) (int, bool) {
	cat := o.Categories[j]

	k := sort.SearchStrings(cat, v)
	if k < len(cat) && cat[k] == v {
		return k, true
	}

	return 0, false
}

func (o *OneHot) offsets() []int {
	off := make([]int, len(o.Categories))
	for j := 1; j < len(off); j++ {
		off[j] = off[j-1] + len(o.Categories[j-1])
	}

	return off
}
