package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/xh3b4sd/tracer"
)

// FromRecords builds a batch from row mappings, e.g. decoded JSON objects or
// a single form submission. Columns follow the order of nam. A key absent
// from a record, or a nil value, is missing. A column is numeric if every
// present value is a number, text otherwise. Booleans become "true" and
// "false".
func FromRecords(nam []string, rec []map[string]any) (*Batch, error) {
	var col []*Column

	for _, n := range nam {
		val := make([]any, len(rec))
		for i, r := range rec {
			val[i] = r[n]
		}

		c, err := column(n, val)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		col = append(col, c)
	}

	return New(col...)
}

func column(nam string, val []any) (*Column, error) {
	num := make([]float64, len(val))
	isn := true

	for i, v := range val {
		if v == nil {
			num[i] = math.NaN()
			continue
		}

		f, ok := number(v)
		if !ok {
			isn = false
			break
		}

		num[i] = f
	}

	if isn && observed(val) {
		return NewNumeric(nam, num), nil
	}

	str := make([]string, len(val))
	nul := make([]bool, len(val))
	for i, v := range val {
		switch x := v.(type) {
		case nil:
			nul[i] = true
		case string:
			str[i] = x
		case bool:
			str[i] = strconv.FormatBool(x)
		default:
			f, ok := number(v)
			if !ok {
				return nil, tracer.Maskf(invalidTypeError, "column %q row %d has unsupported type %T", nam, i, v)
			}
			if math.IsNaN(f) {
				nul[i] = true
			} else {
				str[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
		}
	}

	return NewText(nam, str, nul), nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}

	return 0, false
}

func observed(val []any) bool {
	for _, v := range val {
		if v != nil {
			return true
		}
	}

	return false
}

// Records is the inverse of FromRecords. Missing values map to nil.
func (b *Batch) Records() []map[string]any {
	out := make([]map[string]any, b.row)

	for i := range out {
		out[i] = map[string]any{}
		for _, c := range b.col {
			switch {
			case c.Missing(i):
				out[i][c.Name()] = nil
			case c.Kind() == Numeric:
				out[i][c.Name()] = c.Float(i)
			default:
				out[i][c.Name()] = c.String(i)
			}
		}
	}

	return out
}

// String renders a short description, mostly for logs.
func (b *Batch) String() string {
	return fmt.Sprintf("batch(rows=%d, cols=%v)", b.row, b.Names())
}
