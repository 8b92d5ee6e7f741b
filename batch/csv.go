package batch

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/xh3b4sd/tracer"
)

// CSV reads a header-first delimited table into a batch.
type CSV struct {
	// Com is the field delimiter, defaults to ','. The secondary mushroom
	// data set ships with ';'.
	Com rune
	// Kin optionally forces column kinds by name. Columns not listed here are
	// numeric if every non-missing value parses as a float, text otherwise.
	Kin map[string]Kind
}

func (c CSV) Read(r io.Reader) (*Batch, error) {
	rea := csv.NewReader(r)
	rea.FieldsPerRecord = -1
	if c.Com != 0 {
		rea.Comma = c.Com
	}

	var hea []string
	{
		rec, err := rea.Read()
		if err == io.EOF {
			return New()
		} else if err != nil {
			return nil, tracer.Mask(err)
		}

		for _, h := range rec {
			hea = append(hea, strings.TrimSpace(h))
		}
	}

	raw := make([][]string, len(hea))
	for lin := 2; ; lin++ {
		rec, err := rea.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, tracer.Mask(err)
		}

		if len(rec) != len(hea) {
			return nil, tracer.Maskf(invalidInputError, "line %d has %d fields, expected %d", lin, len(rec), len(hea))
		}

		for i, v := range rec {
			raw[i] = append(raw[i], v)
		}
	}

	var col []*Column
	for i, h := range hea {
		kin, ok := c.Kin[h]
		if !ok {
			kin = infer(raw[i])
		}

		txt := textColumn(h, raw[i])

		if kin == Numeric {
			num, err := txt.Numeric()
			if err != nil {
				return nil, tracer.Mask(err)
			}

			col = append(col, num)
		} else {
			col = append(col, txt)
		}
	}

	return New(col...)
}

// Write emits the batch as a header-first delimited table. Missing values are
// written as empty fields.
func (c CSV) Write(w io.Writer, b *Batch) error {
	wri := csv.NewWriter(w)
	if c.Com != 0 {
		wri.Comma = c.Com
	}

	{
		err := wri.Write(b.Names())
		if err != nil {
			return tracer.Mask(err)
		}
	}

	for i := 0; i < b.Rows(); i++ {
		rec := make([]string, len(b.col))
		for j, col := range b.col {
			if !col.Missing(i) {
				rec[j] = col.String(i)
			}
		}

		err := wri.Write(rec)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	wri.Flush()

	{
		err := wri.Error()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func infer(val []string) Kind {
	var see bool

	for _, v := range val {
		if IsMissingToken(v) {
			continue
		}

		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Text
		}

		see = true
	}

	// A column without a single observed value carries no numeric evidence.
	if !see {
		return Text
	}

	return Numeric
}

func textColumn(nam string, val []string) *Column {
	str := make([]string, len(val))
	nul := make([]bool, len(val))

	for i, v := range val {
		if IsMissingToken(v) {
			nul[i] = true
			continue
		}

		str[i] = strings.TrimSpace(v)
	}

	return NewText(nam, str, nul)
}
