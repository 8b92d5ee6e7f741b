// Package preprocessor turns raw mushroom records into the fixed-width
// design matrix the classifier was trained against.
//
// A Preprocessor is fitted once against a reference batch. Fitting decides the
// role of every feature column, continuous or categorical, and learns the
// scaler and encoder statistics. Transform then applies the same column
// contract, imputation and validity filtering to any compatible batch,
// including single-row inference requests.
//
//	pre, err := preprocessor.New(preprocessor.Config{
//	    Col: []string{"cap-diameter", "cap-shape", "has-ring", "ring-type"},
//	    Tar: "class",
//	    Val: gui.ValidValues(),
//	})
//	...
//	_, err = pre.Fit(ref)
//	...
//	X, y, err := pre.Transform(inp)
//
// Fitted state is published atomically. Transform calls may run concurrently
// with each other and with Fit, and each Transform call observes exactly one
// fitted state. UnmarshalBinary also replaces the configuration and must not
// run concurrently with any other method.
package preprocessor

import (
	"sync/atomic"

	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/encoder"
	"github.com/xh3b4sd/mushroom/matrix"
	"github.com/xh3b4sd/mushroom/scaler"
)

// Role is the fixed treatment of a feature column, decided once at fit time.
type Role int

const (
	Continuous Role = iota + 1
	Categorical
)

func (r Role) String() string {
	switch r {
	case Continuous:
		return "continuous"
	case Categorical:
		return "categorical"
	}

	return "unknown"
}

// state is everything learned by Fit. A state is never modified after it got
// published.
type state struct {
	// Con and Cat are the continuous and categorical feature columns in input
	// order.
	Con []string
	Cat []string
	// Med is the fit-time median per continuous column, aligned with Con.
	Med []float64
	// Mod is the fit-time mode per categorical column, aligned with Cat.
	Mod []string
	Sca scaler.Standard
	Enc encoder.OneHot
}

type Preprocessor struct {
	con Config
	sta atomic.Pointer[state]
}

func New(c Config) (*Preprocessor, error) {
	c.defaults()

	see := map[string]bool{}
	for _, n := range c.Col {
		if n == "" {
			return nil, tracer.Maskf(invalidConfigError, "Config.Col must not contain empty names")
		}
		if see[n] {
			return nil, tracer.Maskf(invalidConfigError, "Config.Col contains %q twice", n)
		}
		if n == c.Tar {
			return nil, tracer.Maskf(invalidConfigError, "Config.Col must not contain the target column %q", n)
		}
		see[n] = true
	}

	p := &Preprocessor{
		con: c,
	}

	return p, nil
}

// Fit learns column roles, scaler and encoder from ref and returns the
// receiver for chaining. ref is never modified. Rows with a categorical value
// outside the configured valid values do not contribute to the learned
// statistics. A reference batch leaving no valid row is an EmptyResultError,
// since the learned state would be meaningless.
func (p *Preprocessor) Fit(ref *batch.Batch) (*Preprocessor, error) {
	dat := ref

	if len(p.con.Col) != 0 {
		mis := dat.Missing(p.con.Col...)
		if len(mis) != 0 {
			return nil, &MissingColumnsError{Stage: "fit", Columns: mis}
		}

		dat = dat.Select(p.con.Col...)
	}

	if p.con.Tar != "" {
		dat = dat.Drop(p.con.Tar)
	}

	sta := &state{}
	for _, n := range dat.Names() {
		c, _ := dat.Column(n)
		if c.Kind() == batch.Numeric {
			sta.Con = append(sta.Con, n)
		} else {
			sta.Cat = append(sta.Cat, n)
		}
	}

	if p.con.Val != nil {
		bef := dat.Rows()
		for _, n := range sta.Cat {
			val, ok := p.con.Val[n]
			if !ok {
				continue
			}

			dat = dat.Filter(batch.In{Col: n, Set: batch.NewSet(val...)})
		}

		p.con.Log.Debug("filtered reference data", zap.Int("before", bef), zap.Int("after", dat.Rows()))
	}

	if dat.Rows() == 0 {
		return nil, &EmptyResultError{Stage: "fit", Before: ref.Rows(), After: 0}
	}

	{
		var obs [][]string
		for _, n := range sta.Cat {
			c, _ := dat.Column(n)

			mod, ok := c.Mode()
			if !ok {
				mod = Unknown
			}

			obs = append(obs, c.Observed())
			sta.Mod = append(sta.Mod, mod)
		}

		err := sta.Enc.Fit(sta.Cat, obs)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	{
		for _, n := range sta.Con {
			c, _ := dat.Column(n)

			med, ok := c.Median()
			if !ok {
				med = 0
			}

			sta.Med = append(sta.Med, med)
		}

		err := sta.Sca.Fit(len(sta.Con), floats(dat, sta.Con))
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	p.sta.Store(sta)

	p.con.Log.Debug(
		"fitted preprocessor",
		zap.Strings("continuous", sta.Con),
		zap.Strings("categorical", sta.Cat),
		zap.Int("features", sta.Sca.Width()+sta.Enc.Width()),
		zap.Int("rows", dat.Rows()),
	)

	return p, nil
}

// Transform maps inp to the design matrix. If the target column is present in
// inp, its values are returned as labels aligned with the matrix rows,
// otherwise the labels are nil. Every failure aborts the whole call and no
// partial result is returned.
func (p *Preprocessor) Transform(inp *batch.Batch) (*matrix.CSR, []string, error) {
	sta := p.sta.Load()
	if sta == nil {
		return nil, nil, &UnfittedStateError{Op: "transform"}
	}

	tar := p.con.Tar != "" && inp.Has(p.con.Tar)
	dat := inp

	if len(p.con.Col) != 0 {
		mis := dat.Missing(p.con.Col...)
		if len(mis) != 0 {
			return nil, nil, &MissingColumnsError{Stage: "input", Columns: mis}
		}

		nam := p.con.Col
		if tar {
			nam = append(append([]string(nil), p.con.Col...), p.con.Tar)
		}

		dat = dat.Select(nam...)
	}

	var err error

	{
		dat, err = p.impute(sta, dat)
		if err != nil {
			return nil, nil, tracer.Mask(err)
		}
	}

	{
		bef := dat.Rows()
		dat = p.filter(sta, dat)
		if dat.Rows() == 0 {
			return nil, nil, &EmptyResultError{Stage: "input", Before: bef, After: 0}
		}
	}

	{
		mis := dat.Missing(append(append([]string(nil), sta.Con...), sta.Cat...)...)
		if len(mis) != 0 {
			return nil, nil, &MissingColumnsError{Stage: "filtered", Columns: mis}
		}
	}

	var lab []string
	if tar {
		c, _ := dat.Column(p.con.Tar)
		lab = make([]string, dat.Rows())
		for i := range lab {
			if !c.Missing(i) {
				lab[i] = c.String(i)
			}
		}

		dat = dat.Drop(p.con.Tar)
	}

	X, err := encode(sta, dat)
	if err != nil {
		return nil, nil, tracer.Mask(err)
	}

	return X, lab, nil
}

// Continuous returns the continuous feature columns in output order.
func (p *Preprocessor) Continuous() []string {
	sta := p.sta.Load()
	if sta == nil {
		return nil
	}

	return append([]string(nil), sta.Con...)
}

// Categorical returns the categorical feature columns in output order.
func (p *Preprocessor) Categorical() []string {
	sta := p.sta.Load()
	if sta == nil {
		return nil
	}

	return append([]string(nil), sta.Cat...)
}

// Role returns the fitted role of column nam. The second return value is
// false for unknown columns and before Fit.
func (p *Preprocessor) Role(nam string) (Role, bool) {
	sta := p.sta.Load()
	if sta == nil {
		return 0, false
	}

	for _, n := range sta.Con {
		if n == nam {
			return Continuous, true
		}
	}
	for _, n := range sta.Cat {
		if n == nam {
			return Categorical, true
		}
	}

	return 0, false
}

// FeatureNames returns the name of every output column: the continuous
// columns followed by one "column=category" entry per indicator column.
func (p *Preprocessor) FeatureNames() []string {
	sta := p.sta.Load()
	if sta == nil {
		return nil
	}

	return append(append([]string(nil), sta.Con...), sta.Enc.FeatureNames()...)
}

// Width is the number of output columns, 0 before Fit.
func (p *Preprocessor) Width() int {
	sta := p.sta.Load()
	if sta == nil {
		return 0
	}

	return sta.Sca.Width() + sta.Enc.Width()
}

func (p *Preprocessor) Fitted() bool {
	return p.sta.Load() != nil
}

// Stats returns copies of the frozen scaler statistics, aligned with
// Continuous, and the encoder categories, aligned with Categorical.
func (p *Preprocessor) Stats() (mea []float64, std []float64, cat [][]string) {
	sta := p.sta.Load()
	if sta == nil {
		return nil, nil, nil
	}

	mea = append([]float64(nil), sta.Sca.Mean...)
	std = append([]float64(nil), sta.Sca.Std...)
	for _, c := range sta.Enc.Categories {
		cat = append(cat, append([]string(nil), c...))
	}

	return mea, std, cat
}

func encode(sta *state, dat *batch.Batch) (*matrix.CSR, error) {
	var con *matrix.CSR
	{
		sca, err := sta.Sca.Transform(floats(dat, sta.Con))
		if err != nil {
			return nil, tracer.Mask(err)
		}

		con, err = matrix.FromRows(len(sta.Con), sca)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	var cat *matrix.CSR
	{
		str := make([][]string, dat.Rows())
		for i := range str {
			str[i] = make([]string, len(sta.Cat))
		}
		for j, n := range sta.Cat {
			c, _ := dat.Column(n)
			for i := range str {
				str[i][j] = c.String(i)
			}
		}

		var err error
		cat, err = sta.Enc.Transform(str)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	X, err := matrix.HStack(con, cat)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return X, nil
}

func floats(dat *batch.Batch, nam []string) [][]float64 {
	out := make([][]float64, dat.Rows())
	for i := range out {
		out[i] = make([]float64, len(nam))
	}

	for j, n := range nam {
		c, _ := dat.Column(n)
		for i := range out {
			out[i][j] = c.Float(i)
		}
	}

	return out
}
