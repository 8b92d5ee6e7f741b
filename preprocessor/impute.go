package preprocessor

import (
	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/batch"
)

// impute coerces every role column present in dat to the storage kind of its
// role and fills missing entries according to the imputation policy. Role
// columns absent from dat are left for the post-filter presence check.
func (p *Preprocessor) impute(sta *state, dat *batch.Batch) (*batch.Batch, error) {
	var err error

	for j, n := range sta.Cat {
		c, ok := dat.Column(n)
		if !ok {
			continue
		}

		c = c.Text()

		fil := sta.Mod[j]
		if p.con.Imp == ImputeBatch {
			mod, ok := c.Mode()
			if ok {
				fil = mod
			} else {
				fil = Unknown
			}
		}

		c, err = c.Fill(fil)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		dat, err = dat.Replace(c)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	for j, n := range sta.Con {
		c, ok := dat.Column(n)
		if !ok {
			continue
		}

		c, err = c.Numeric()
		if err != nil {
			return nil, tracer.Mask(err)
		}

		fil := sta.Med[j]
		if p.con.Imp == ImputeBatch {
			med, ok := c.Median()
			if ok {
				fil = med
			}
		}

		dat, err = dat.Replace(c.FillFloat(fil))
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return dat, nil
}
