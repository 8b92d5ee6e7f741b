package preprocessor

import (
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/batch"
)

// predicates returns the validity filter pipeline in its fixed order, one
// step per categorical column with configured valid values. The ring type
// column is only constrained for rows that have a ring.
func (p *Preprocessor) predicates(sta *state) []batch.Predicate {
	if p.con.Val == nil {
		return nil
	}

	var pre []batch.Predicate
	for _, n := range sta.Cat {
		val, ok := p.con.Val[n]
		if !ok {
			continue
		}

		in := batch.In{Col: n, Set: batch.NewSet(val...)}

		if n == p.con.Rin.Typ {
			pre = append(pre, RingRule(p.con.Rin, in))
		} else {
			pre = append(pre, in)
		}
	}

	return pre
}

// RingRule guards the valid value check of the ring type column with the
// has-ring column, so that rows without a ring are exempt.
func RingRule(r Ring, in batch.In) batch.Predicate {
	return batch.When{
		If:   batch.Matches{Col: r.Has, Val: r.Tok},
		Then: in,
	}
}

func (p *Preprocessor) filter(sta *state, dat *batch.Batch) *batch.Batch {
	for _, pre := range p.predicates(sta) {
		bef := dat.Rows()
		dat = dat.Filter(pre)

		if dat.Rows() != bef {
			p.con.Log.Debug("dropped invalid rows", zap.String("step", pre.Name()), zap.Int("before", bef), zap.Int("after", dat.Rows()))
		}
	}

	return dat
}
