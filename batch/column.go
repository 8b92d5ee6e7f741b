package batch

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xh3b4sd/tracer"
)

// Kind is the storage type of a column. Numeric columns hold float64 values
// where NaN marks a missing entry. Text columns hold raw string values plus an
// explicit missing mask, so that an empty string can still be a real value.
type Kind int

const (
	Text Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}

	return "text"
}

// Column is an immutable named vector of values. All methods returning a
// Column return a fresh copy and never mutate the receiver.
type Column struct {
	nam string
	kin Kind
	num []float64
	str []string
	nul []bool
}

// NewNumeric creates a numeric column. NaN values are treated as missing.
func NewNumeric(nam string, val []float64) *Column {
	num := make([]float64, len(val))
	copy(num, val)

	return &Column{nam: nam, kin: Numeric, num: num}
}

// NewText creates a text column. nul may be nil, in which case no value is
// missing. Otherwise nul must have the same length as val.
func NewText(nam string, val []string, nul []bool) *Column {
	str := make([]string, len(val))
	copy(str, val)

	msk := make([]bool, len(val))
	copy(msk, nul)

	return &Column{nam: nam, kin: Text, str: str, nul: msk}
}

func (c *Column) Kind() Kind {
	return c.kin
}

func (c *Column) Len() int {
	if c.kin == Numeric {
		return len(c.num)
	}

	return len(c.str)
}

func (c *Column) Name() string {
	return c.nam
}

// Missing reports whether the value at row i is absent.
func (c *Column) Missing(i int) bool {
	if c.kin == Numeric {
		return math.IsNaN(c.num[i])
	}

	return c.nul[i]
}

// Float returns the numeric value at row i. For text columns use Numeric
// first.
func (c *Column) Float(i int) float64 {
	return c.num[i]
}

// String returns the value at row i as text. Numeric values are formatted
// with the shortest representation that round-trips.
func (c *Column) String(i int) string {
	if c.kin == Numeric {
		return strconv.FormatFloat(c.num[i], 'g', -1, 64)
	}

	return c.str[i]
}

// Observed returns all non-missing values as text, in row order.
func (c *Column) Observed() []string {
	var out []string

	for i := 0; i < c.Len(); i++ {
		if !c.Missing(i) {
			out = append(out, c.String(i))
		}
	}

	return out
}

// Floats returns all non-missing numeric values, in row order.
func (c *Column) Floats() []float64 {
	var out []float64

	for _, v := range c.num {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}

// Mode returns the most frequent non-missing value. Ties resolve to the
// smallest value in lexical order, which makes the result independent of row
// order. The second return value is false if every value is missing.
func (c *Column) Mode() (string, bool) {
	cou := map[string]int{}
	for _, v := range c.Observed() {
		cou[v]++
	}

	if len(cou) == 0 {
		return "", false
	}

	var key []string
	for k := range cou {
		key = append(key, k)
	}
	sort.Strings(key)

	var mod string
	var max int
	for _, k := range key {
		if cou[k] > max {
			mod, max = k, cou[k]
		}
	}

	return mod, true
}

// Median returns the median of the non-missing numeric values. Even counts
// average the two middle values. The second return value is false if every
// value is missing.
func (c *Column) Median() (float64, bool) {
	val := c.Floats()
	if len(val) == 0 {
		return 0, false
	}

	return Median(val), true
}

// Median returns the median of x without modifying it.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}

	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)

	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}

	return cp[mid]
}

// Fill returns a copy of the column with every missing value replaced. For
// numeric columns v must parse as a float.
func (c *Column) Fill(v string) (*Column, error) {
	if c.kin == Numeric {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, tracer.Maskf(invalidTypeError, "column %q cannot be filled with %q", c.nam, v)
		}

		return c.FillFloat(f), nil
	}

	out := NewText(c.nam, c.str, c.nul)
	for i := range out.str {
		if out.nul[i] {
			out.str[i] = v
			out.nul[i] = false
		}
	}

	return out, nil
}

// FillFloat returns a copy of a numeric column with every NaN replaced by v.
func (c *Column) FillFloat(v float64) *Column {
	out := NewNumeric(c.nam, c.num)
	for i := range out.num {
		if math.IsNaN(out.num[i]) {
			out.num[i] = v
		}
	}

	return out
}

// Numeric converts the column to numeric storage. Text values are trimmed and
// parsed; missing tokens stay missing. A value that does not parse is an
// invalidTypeError naming the column and the offending value.
func (c *Column) Numeric() (*Column, error) {
	if c.kin == Numeric {
		return c, nil
	}

	num := make([]float64, len(c.str))
	for i, s := range c.str {
		if c.nul[i] || IsMissingToken(s) {
			num[i] = math.NaN()
			continue
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, tracer.Maskf(invalidTypeError, "column %q row %d value %q is not numeric", c.nam, i, s)
		}

		num[i] = f
	}

	return &Column{nam: c.nam, kin: Numeric, num: num}, nil
}

// Text converts the column to text storage. Numeric NaN becomes missing.
func (c *Column) Text() *Column {
	if c.kin == Text {
		return c
	}

	str := make([]string, len(c.num))
	nul := make([]bool, len(c.num))
	for i := range c.num {
		if math.IsNaN(c.num[i]) {
			nul[i] = true
			continue
		}

		str[i] = c.String(i)
	}

	return &Column{nam: c.nam, kin: Text, str: str, nul: nul}
}

func (c *Column) take(idx []int) *Column {
	if c.kin == Numeric {
		num := make([]float64, len(idx))
		for i, j := range idx {
			num[i] = c.num[j]
		}

		return &Column{nam: c.nam, kin: Numeric, num: num}
	}

	str := make([]string, len(idx))
	nul := make([]bool, len(idx))
	for i, j := range idx {
		str[i] = c.str[j]
		nul[i] = c.nul[j]
	}

	return &Column{nam: c.nam, kin: Text, str: str, nul: nul}
}

// IsMissingToken reports whether s is one of the raw tokens that mark an
// absent value in tabular input.
func IsMissingToken(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "nan", "null":
		return true
	}

	return false
}
