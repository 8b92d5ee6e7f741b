// Package matrix provides the sparse design matrix produced by the
// preprocessor. CSR satisfies gonum's mat.Matrix, so it can be handed to any
// gonum based consumer without conversion.
package matrix

import (
	"fmt"

	"github.com/xh3b4sd/tracer"
	"gonum.org/v1/gonum/mat"
)

var _ mat.Matrix = (*CSR)(nil)

// CSR is an immutable compressed sparse row matrix. Explicit zeros are never
// stored, so two matrices with equal values have equal internal slices, which
// makes byte-level comparison of outputs meaningful.
type CSR struct {
	row int
	col int
	// ptr[i]:ptr[i+1] is the range of idx and val for row i.
	ptr []int
	idx []int
	val []float64
}

// FromRows builds a CSR matrix from dense rows. All rows must have length
// col.
func FromRows(col int, rows [][]float64) (*CSR, error) {
	m := &CSR{row: len(rows), col: col, ptr: make([]int, 1, len(rows)+1)}

	for i, r := range rows {
		if len(r) != col {
			return nil, tracer.Maskf(invalidShapeError, "row %d has %d columns, expected %d", i, len(r), col)
		}

		for j, v := range r {
			if v != 0 {
				m.idx = append(m.idx, j)
				m.val = append(m.val, v)
			}
		}

		m.ptr = append(m.ptr, len(m.idx))
	}

	return m, nil
}

// Builder appends rows of sparse entries. Column indices within a row must be
// strictly increasing.
type Builder struct {
	m   *CSR
	err error
}

func NewBuilder(col int) *Builder {
	return &Builder{m: &CSR{col: col, ptr: []int{0}}}
}

// Row appends one row given its non-zero column indices and values.
func (b *Builder) Row(idx []int, val []float64) {
	if b.err != nil {
		return
	}

	if len(idx) != len(val) {
		b.err = tracer.Maskf(invalidShapeError, "row %d has %d indices and %d values", b.m.row, len(idx), len(val))
		return
	}

	for k, j := range idx {
		if j < 0 || j >= b.m.col || (k > 0 && j <= idx[k-1]) {
			b.err = tracer.Maskf(invalidShapeError, "row %d has invalid column index %d", b.m.row, j)
			return
		}

		if val[k] == 0 {
			continue
		}

		b.m.idx = append(b.m.idx, j)
		b.m.val = append(b.m.val, val[k])
	}

	b.m.ptr = append(b.m.ptr, len(b.m.idx))
	b.m.row++
}

func (b *Builder) Build() (*CSR, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.m, nil
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (int, int) {
	return m.row, m.col
}

// At returns the value at row i and column j. It panics on out of range
// access, like every gonum matrix.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.row {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.col {
		panic(mat.ErrColAccess)
	}

	for k := m.ptr[i]; k < m.ptr[i+1]; k++ {
		if m.idx[k] == j {
			return m.val[k]
		}
		if m.idx[k] > j {
			break
		}
	}

	return 0
}

// T returns the implicit transpose.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the number of stored non-zero values.
func (m *CSR) NNZ() int {
	return len(m.val)
}

// Row returns a dense copy of row i.
func (m *CSR) Row(i int) []float64 {
	out := make([]float64, m.col)
	for k := m.ptr[i]; k < m.ptr[i+1]; k++ {
		out[m.idx[k]] = m.val[k]
	}

	return out
}

// Rows returns dense copies of all rows.
func (m *CSR) Rows() [][]float64 {
	out := make([][]float64, m.row)
	for i := range out {
		out[i] = m.Row(i)
	}

	return out
}

// Dense materializes the matrix as a gonum dense matrix. A matrix without
// rows or columns cannot be represented by mat.Dense and yields nil.
func (m *CSR) Dense() *mat.Dense {
	if m.row == 0 || m.col == 0 {
		return nil
	}

	d := mat.NewDense(m.row, m.col, nil)
	for i := 0; i < m.row; i++ {
		for k := m.ptr[i]; k < m.ptr[i+1]; k++ {
			d.Set(i, m.idx[k], m.val[k])
		}
	}

	return d
}

// Equal reports whether both matrices have the same shape and stored values.
func (m *CSR) Equal(o *CSR) bool {
	if m.row != o.row || m.col != o.col || len(m.val) != len(o.val) {
		return false
	}

	for i := range m.ptr {
		if m.ptr[i] != o.ptr[i] {
			return false
		}
	}

	for k := range m.val {
		if m.idx[k] != o.idx[k] || m.val[k] != o.val[k] {
			return false
		}
	}

	return true
}

func (m *CSR) String() string {
	return fmt.Sprintf("csr(%dx%d, nnz=%d)", m.row, m.col, len(m.val))
}

// HStack concatenates matrices horizontally. All inputs must have the same
// number of rows. Column order follows argument order.
func HStack(blo ...*CSR) (*CSR, error) {
	if len(blo) == 0 {
		return &CSR{ptr: []int{0}}, nil
	}

	row := blo[0].row
	col := 0
	for i, m := range blo {
		if m.row != row {
			return nil, tracer.Maskf(invalidShapeError, "block %d has %d rows, expected %d", i, m.row, row)
		}
		col += m.col
	}

	out := &CSR{row: row, col: col, ptr: make([]int, 1, row+1)}
	for i := 0; i < row; i++ {
		off := 0
		for _, m := range blo {
			for k := m.ptr[i]; k < m.ptr[i+1]; k++ {
				out.idx = append(out.idx, m.idx[k]+off)
				out.val = append(out.val, m.val[k])
			}
			off += m.col
		}
		out.ptr = append(out.ptr, len(out.idx))
	}

	return out, nil
}
