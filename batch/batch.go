package batch

import (
	"github.com/xh3b4sd/tracer"
)

// Batch is an immutable table of named columns with equal length. Column
// order is preserved as given. Every operation returns a new Batch and leaves
// the receiver untouched, so a Batch handed to a caller can be shared freely.
type Batch struct {
	col []*Column
	idx map[string]int
	row int
}

// New creates a batch from the given columns. All columns must have the same
// length and unique names.
func New(col ...*Column) (*Batch, error) {
	b := &Batch{
		idx: map[string]int{},
	}

	for i, c := range col {
		if _, ok := b.idx[c.Name()]; ok {
			return nil, tracer.Maskf(invalidInputError, "duplicate column %q", c.Name())
		}

		if i == 0 {
			b.row = c.Len()
		} else if c.Len() != b.row {
			return nil, tracer.Maskf(invalidInputError, "column %q has %d rows, expected %d", c.Name(), c.Len(), b.row)
		}

		b.idx[c.Name()] = i
		b.col = append(b.col, c)
	}

	return b, nil
}

func (b *Batch) Rows() int {
	return b.row
}

// Names returns the column names in batch order.
func (b *Batch) Names() []string {
	nam := make([]string, len(b.col))
	for i, c := range b.col {
		nam[i] = c.Name()
	}

	return nam
}

func (b *Batch) Has(nam string) bool {
	_, ok := b.idx[nam]
	return ok
}

func (b *Batch) Column(nam string) (*Column, bool) {
	i, ok := b.idx[nam]
	if !ok {
		return nil, false
	}

	return b.col[i], true
}

// Missing returns the subset of nam that is not present in the batch, in the
// order given.
func (b *Batch) Missing(nam ...string) []string {
	var mis []string

	for _, n := range nam {
		if !b.Has(n) {
			mis = append(mis, n)
		}
	}

	return mis
}

// Select returns a batch restricted to the named columns, in the given order.
// Names not present in the batch are skipped; use Missing to detect them.
func (b *Batch) Select(nam ...string) *Batch {
	out := &Batch{idx: map[string]int{}, row: b.row}

	for _, n := range nam {
		c, ok := b.Column(n)
		if !ok {
			continue
		}

		if _, ok := out.idx[n]; ok {
			continue
		}

		out.idx[n] = len(out.col)
		out.col = append(out.col, c)
	}

	return out
}

// Drop returns a batch without the named columns.
func (b *Batch) Drop(nam ...string) *Batch {
	drp := map[string]bool{}
	for _, n := range nam {
		drp[n] = true
	}

	var kep []string
	for _, n := range b.Names() {
		if !drp[n] {
			kep = append(kep, n)
		}
	}

	return b.Select(kep...)
}

// Replace returns a batch where the column with the same name as c is swapped
// for c. Replacing an unknown column or changing the row count is an
// invalidInputError.
func (b *Batch) Replace(c *Column) (*Batch, error) {
	i, ok := b.idx[c.Name()]
	if !ok {
		return nil, tracer.Maskf(invalidInputError, "column %q does not exist", c.Name())
	}

	if c.Len() != b.row {
		return nil, tracer.Maskf(invalidInputError, "column %q has %d rows, expected %d", c.Name(), c.Len(), b.row)
	}

	out := &Batch{idx: b.idx, row: b.row, col: make([]*Column, len(b.col))}
	copy(out.col, b.col)
	out.col[i] = c

	return out, nil
}

// Filter returns a batch holding only the rows p keeps, in original order.
func (b *Batch) Filter(p Predicate) *Batch {
	var idx []int

	for i := 0; i < b.row; i++ {
		if p.Keep(b, i) {
			idx = append(idx, i)
		}
	}

	return b.take(idx)
}

func (b *Batch) take(idx []int) *Batch {
	out := &Batch{idx: b.idx, row: len(idx), col: make([]*Column, len(b.col))}

	for i, c := range b.col {
		out.col[i] = c.take(idx)
	}

	return out
}
