package preprocessor

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/batch"
)

var shapes = []string{"x", "b", "f"}

// reference returns 100 rows where cap-diameter cycles through 1..10 and
// cap-shape cycles through x, b, f.
func reference(t *testing.T) *batch.Batch {
	t.Helper()

	var sha, cla, has, typ []string
	var dia []float64
	for i := 0; i < 100; i++ {
		sha = append(sha, shapes[i%3])
		dia = append(dia, float64(i%10)+1)
		if i%2 == 0 {
			cla = append(cla, "e")
			has = append(has, "t")
			typ = append(typ, "e")
		} else {
			cla = append(cla, "p")
			has = append(has, "f")
			typ = append(typ, "f")
		}
	}

	b, err := batch.New(
		batch.NewText("class", cla, nil),
		batch.NewNumeric("cap-diameter", dia),
		batch.NewText("cap-shape", sha, nil),
		batch.NewText("has-ring", has, nil),
		batch.NewText("ring-type", typ, nil),
	)
	require.NoError(t, err)

	return b
}

func fitted(t *testing.T, c Config) *Preprocessor {
	t.Helper()

	p, err := New(c)
	require.NoError(t, err)

	out, err := p.Fit(reference(t))
	require.NoError(t, err)
	require.Same(t, p, out)

	return p
}

func records(t *testing.T, nam []string, rec ...map[string]any) *batch.Batch {
	t.Helper()

	b, err := batch.FromRecords(nam, rec)
	require.NoError(t, err)

	return b
}

var ringColumns = []string{"cap-diameter", "cap-shape", "has-ring", "ring-type"}

func ringConfig() Config {
	return Config{
		Col: ringColumns,
		Tar: "class",
		Val: map[string][]string{
			"cap-shape": {"x", "b", "f", "c"},
			"has-ring":  {"t", "f"},
			"ring-type": {"e", "f", "g"},
		},
	}
}

func Test_Preprocessor_Fit_Roles(t *testing.T) {
	p := fitted(t, ringConfig())

	assert.Equal(t, []string{"cap-diameter"}, p.Continuous())
	assert.Equal(t, []string{"cap-shape", "has-ring", "ring-type"}, p.Categorical())

	r, ok := p.Role("cap-diameter")
	require.True(t, ok)
	assert.Equal(t, Continuous, r)

	r, ok = p.Role("ring-type")
	require.True(t, ok)
	assert.Equal(t, Categorical, r)

	_, ok = p.Role("class")
	assert.False(t, ok)

	assert.Equal(t, []string{
		"cap-diameter",
		"cap-shape=b", "cap-shape=f", "cap-shape=x",
		"has-ring=f", "has-ring=t",
		"ring-type=e", "ring-type=f",
	}, p.FeatureNames())
	assert.Equal(t, 8, p.Width())

	mea, std, cat := p.Stats()
	assert.Equal(t, []float64{5.5}, mea)
	assert.InDelta(t, math.Sqrt(8.25), std[0], 1e-12)
	assert.Equal(t, []string{"b", "f", "x"}, cat[0])
}

func Test_Preprocessor_Fit_Filters_Reference(t *testing.T) {
	c := ringConfig()
	c.Val["cap-shape"] = []string{"x", "b"}

	p := fitted(t, c)

	_, _, cat := p.Stats()
	assert.Equal(t, []string{"b", "x"}, cat[0])
}

func Test_Preprocessor_Fit_Errors(t *testing.T) {
	t.Run("missing needed column", func(t *testing.T) {
		p, err := New(Config{Col: []string{"cap-shape", "odor"}})
		require.NoError(t, err)

		_, err = p.Fit(reference(t))
		require.Error(t, err)
		assert.True(t, IsMissingColumns(err))

		var mis *MissingColumnsError
		require.True(t, errors.As(err, &mis))
		assert.Equal(t, []string{"odor"}, mis.Columns)
		assert.Equal(t, "fit", mis.Stage)
		assert.False(t, p.Fitted())
	})

	t.Run("no valid reference row", func(t *testing.T) {
		p, err := New(Config{Col: []string{"cap-shape"}, Val: map[string][]string{"cap-shape": {"q"}}})
		require.NoError(t, err)

		_, err = p.Fit(reference(t))
		assert.True(t, IsEmptyResult(err))
		assert.False(t, p.Fitted())

		var emp *EmptyResultError
		require.True(t, errors.As(err, &emp))
		assert.Equal(t, "fit", emp.Stage)
		assert.Equal(t, 100, emp.Before)
		assert.Equal(t, 0, emp.After)
	})

	t.Run("masked by the caller", func(t *testing.T) {
		p, err := New(Config{Col: []string{"odor"}})
		require.NoError(t, err)

		_, err = p.Fit(reference(t))
		assert.True(t, IsMissingColumns(tracer.Mask(tracer.Mask(err))))
		assert.False(t, IsEmptyResult(tracer.Mask(err)))
	})
}

func Test_Preprocessor_New_Invalid(t *testing.T) {
	testCases := []Config{
		{Col: []string{"a", "a"}},
		{Col: []string{""}},
		{Col: []string{"a", "class"}, Tar: "class"},
	}

	for _, c := range testCases {
		_, err := New(c)
		assert.True(t, IsInvalidConfig(err), "%v", c.Col)
	}
}

// Scenario C.
func Test_Preprocessor_Transform_Unfitted(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)

	_, _, err = p.Transform(reference(t))
	require.Error(t, err)
	assert.True(t, IsUnfittedState(err))
	assert.Nil(t, p.FeatureNames())
	assert.Equal(t, 0, p.Width())
}

// Scenario A.
func Test_Preprocessor_Transform_Single_Row(t *testing.T) {
	p := fitted(t, Config{Col: []string{"cap-shape", "cap-diameter"}, Tar: "class"})

	t.Run("missing value without batch evidence", func(t *testing.T) {
		X, y, err := p.Transform(records(t, []string{"cap-shape", "cap-diameter"},
			map[string]any{"cap-shape": "x", "cap-diameter": nil},
		))
		require.NoError(t, err)
		assert.Nil(t, y)

		r, c := X.Dims()
		assert.Equal(t, 1, r)
		assert.Equal(t, 4, c)
		assert.Equal(t, []float64{0, 0, 0, 1}, X.Row(0))
	})

	t.Run("present value is its own median", func(t *testing.T) {
		X, _, err := p.Transform(records(t, []string{"cap-shape", "cap-diameter"},
			map[string]any{"cap-shape": "b", "cap-diameter": 5.5 + math.Sqrt(8.25)},
		))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, X.At(0, 0), 1e-12)
		assert.Equal(t, 1.0, X.At(0, 1))
	})

	t.Run("missing category falls back to unknown", func(t *testing.T) {
		X, _, err := p.Transform(records(t, []string{"cap-shape", "cap-diameter"},
			map[string]any{"cap-shape": nil, "cap-diameter": 5.5},
		))
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0, 0}, X.Row(0))
	})
}

func Test_Preprocessor_Transform_Batch_Imputation(t *testing.T) {
	p := fitted(t, Config{Col: []string{"cap-shape", "cap-diameter"}})

	inp := records(t, []string{"cap-shape", "cap-diameter"},
		map[string]any{"cap-shape": "f", "cap-diameter": 1.0},
		map[string]any{"cap-shape": "f", "cap-diameter": 3.0},
		map[string]any{"cap-shape": "x", "cap-diameter": nil},
		map[string]any{"cap-shape": nil, "cap-diameter": 2.0},
	)

	X, _, err := p.Transform(inp)
	require.NoError(t, err)

	_, std, _ := p.Stats()
	assert.InDelta(t, (2.0-5.5)/std[0], X.At(2, 0), 1e-12)
	assert.Equal(t, []float64{0, 1, 0}, X.Row(3)[1:])

	c, _ := inp.Column("cap-diameter")
	assert.True(t, c.Missing(2))
}

func Test_Preprocessor_Transform_Fitted_Imputation(t *testing.T) {
	p := fitted(t, Config{Col: []string{"cap-shape", "cap-diameter"}, Imp: ImputeFitted})

	X, _, err := p.Transform(records(t, []string{"cap-shape", "cap-diameter"},
		map[string]any{"cap-shape": "f", "cap-diameter": 1.0},
		map[string]any{"cap-shape": nil, "cap-diameter": nil},
	))
	require.NoError(t, err)

	// The reference mode of cap-shape is x, the reference median of
	// cap-diameter is 5.5, which scales to 0.
	assert.Equal(t, []float64{0, 0, 0, 1}, X.Row(1))
}

// P4 and Scenario B.
func Test_Preprocessor_Transform_Ring_Exemption(t *testing.T) {
	p := fitted(t, ringConfig())

	t.Run("ring present and invalid ring type", func(t *testing.T) {
		_, _, err := p.Transform(records(t, ringColumns,
			map[string]any{"cap-diameter": 4.0, "cap-shape": "x", "has-ring": "t", "ring-type": "z"},
		))
		require.Error(t, err)
		assert.True(t, IsEmptyResult(err))
	})

	t.Run("no ring and invalid ring type", func(t *testing.T) {
		X, _, err := p.Transform(records(t, ringColumns,
			map[string]any{"cap-diameter": 4.0, "cap-shape": "x", "has-ring": "f", "ring-type": "z"},
		))
		require.NoError(t, err)

		r, _ := X.Dims()
		assert.Equal(t, 1, r)
		// The unknown ring type encodes as an all-zero block.
		assert.Equal(t, []float64{0, 0}, X.Row(0)[6:])
	})

	t.Run("mixed batch", func(t *testing.T) {
		X, _, err := p.Transform(records(t, ringColumns,
			map[string]any{"cap-diameter": 4.0, "cap-shape": "x", "has-ring": "t", "ring-type": "z"},
			map[string]any{"cap-diameter": 4.0, "cap-shape": "b", "has-ring": "f", "ring-type": "z"},
			map[string]any{"cap-diameter": 4.0, "cap-shape": "f", "has-ring": "t", "ring-type": "g"},
		))
		require.NoError(t, err)

		r, _ := X.Dims()
		assert.Equal(t, 2, r)
	})
}

// Boolean form values arrive as "true", and has-ring carries no valid value
// entry of its own here, so only the ring rule can drop the row.
func Test_Preprocessor_Transform_Ring_Truthy_Tokens(t *testing.T) {
	c := ringConfig()
	delete(c.Val, "has-ring")

	p := fitted(t, c)

	testCases := []struct {
		has any
		out int
	}{
		{has: "t", out: 0},
		{has: "true", out: 0},
		{has: "True", out: 0},
		{has: true, out: 0},
		{has: "f", out: 1},
		{has: false, out: 1},
	}

	for _, tc := range testCases {
		X, _, err := p.Transform(records(t, ringColumns,
			map[string]any{"cap-diameter": 4.0, "cap-shape": "x", "has-ring": tc.has, "ring-type": "z"},
		))

		if tc.out == 0 {
			assert.True(t, IsEmptyResult(err), "has-ring=%v", tc.has)
			continue
		}

		require.NoError(t, err, "has-ring=%v", tc.has)
		r, _ := X.Dims()
		assert.Equal(t, tc.out, r, "has-ring=%v", tc.has)
	}
}

// P6.
func Test_Preprocessor_Transform_All_Invalid(t *testing.T) {
	p := fitted(t, ringConfig())

	_, _, err := p.Transform(records(t, ringColumns,
		map[string]any{"cap-diameter": 4.0, "cap-shape": "q", "has-ring": "f", "ring-type": "f"},
		map[string]any{"cap-diameter": 4.0, "cap-shape": "w", "has-ring": "f", "ring-type": "f"},
	))
	require.Error(t, err)
	assert.True(t, IsEmptyResult(err))

	var emp *EmptyResultError
	require.True(t, errors.As(err, &emp))
	assert.Equal(t, 2, emp.Before)
	assert.Equal(t, 0, emp.After)
}

// P5.
func Test_Preprocessor_Transform_Missing_Column(t *testing.T) {
	p := fitted(t, ringConfig())

	X, y, err := p.Transform(records(t, []string{"cap-diameter", "has-ring", "ring-type"},
		map[string]any{"cap-diameter": 4.0, "has-ring": "f", "ring-type": "f"},
	))
	require.Error(t, err)
	assert.Nil(t, X)
	assert.Nil(t, y)
	assert.True(t, IsMissingColumns(err))

	var mis *MissingColumnsError
	require.True(t, errors.As(err, &mis))
	assert.Equal(t, []string{"cap-shape"}, mis.Columns)
	assert.Equal(t, "input", mis.Stage)
}

func Test_Preprocessor_Transform_Missing_Role_Column(t *testing.T) {
	p := fitted(t, Config{Tar: "class"})

	_, _, err := p.Transform(reference(t).Drop("ring-type"))
	require.Error(t, err)

	var mis *MissingColumnsError
	require.True(t, errors.As(err, &mis))
	assert.Equal(t, []string{"ring-type"}, mis.Columns)
	assert.Equal(t, "filtered", mis.Stage)
}

func Test_Preprocessor_Transform_Invalid_Type(t *testing.T) {
	p := fitted(t, Config{Col: []string{"cap-shape", "cap-diameter"}})

	_, _, err := p.Transform(records(t, []string{"cap-shape", "cap-diameter"},
		map[string]any{"cap-shape": "x", "cap-diameter": "large"},
	))
	require.Error(t, err)
	assert.True(t, batch.IsInvalidType(err))
}

// I5.
func Test_Preprocessor_Transform_Labels(t *testing.T) {
	p := fitted(t, ringConfig())

	X, y, err := p.Transform(reference(t))
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 100, r)
	assert.Equal(t, 8, c)
	require.Len(t, y, 100)
	assert.Equal(t, "e", y[0])
	assert.Equal(t, "p", y[1])
}

// P1.
func Test_Preprocessor_Transform_Deterministic(t *testing.T) {
	p := fitted(t, ringConfig())
	inp := reference(t)

	X1, y1, err := p.Transform(inp)
	require.NoError(t, err)
	X2, y2, err := p.Transform(inp)
	require.NoError(t, err)

	assert.True(t, X1.Equal(X2))
	assert.Equal(t, y1, y2)
}

// P2 and I4.
func Test_Preprocessor_Transform_Column_Stability(t *testing.T) {
	p := fitted(t, ringConfig())

	XA, _, err := p.Transform(reference(t))
	require.NoError(t, err)
	XB, _, err := p.Transform(records(t, ringColumns,
		map[string]any{"cap-diameter": 40.0, "cap-shape": "c", "has-ring": "f", "ring-type": "g"},
	))
	require.NoError(t, err)

	_, ca := XA.Dims()
	_, cb := XB.Dims()
	assert.Equal(t, ca, cb)
	assert.Equal(t, p.Width(), cb)
}

// I2.
func Test_Preprocessor_Transform_Frozen_State(t *testing.T) {
	p := fitted(t, ringConfig())

	mea, std, cat := p.Stats()

	_, _, err := p.Transform(records(t, ringColumns,
		map[string]any{"cap-diameter": 1000.0, "cap-shape": "c", "has-ring": "t", "ring-type": "g"},
	))
	require.NoError(t, err)

	m2, s2, c2 := p.Stats()
	assert.Equal(t, mea, m2)
	assert.Equal(t, std, s2)
	assert.Equal(t, cat, c2)
}

func Test_Preprocessor_Transform_Concurrent(t *testing.T) {
	p := fitted(t, ringConfig())
	ref := reference(t)

	exp, _, err := p.Transform(ref)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				X, _, err := p.Transform(ref)
				assert.NoError(t, err)
				assert.True(t, exp.Equal(X))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := p.Fit(ref)
		assert.NoError(t, err)
	}()

	wg.Wait()
}

func Test_Preprocessor_Snapshot(t *testing.T) {
	p := fitted(t, ringConfig())

	byt, err := p.MarshalBinary()
	require.NoError(t, err)

	again, err := p.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byt, again)

	r, err := Restore(byt, nil)
	require.NoError(t, err)

	assert.Equal(t, p.FeatureNames(), r.FeatureNames())

	m1, s1, c1 := p.Stats()
	m2, s2, c2 := r.Stats()
	assert.Equal(t, m1, m2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, c1, c2)

	inp := records(t, ringColumns,
		map[string]any{"cap-diameter": 4.0, "cap-shape": "x", "has-ring": "t", "ring-type": "z"},
		map[string]any{"cap-diameter": 2.5, "cap-shape": "b", "has-ring": "f", "ring-type": "z"},
	)

	X1, _, err := p.Transform(inp)
	require.NoError(t, err)
	X2, _, err := r.Transform(inp)
	require.NoError(t, err)
	assert.True(t, X1.Equal(X2))
}

func Test_Preprocessor_Snapshot_Unfitted(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)

	_, err = p.MarshalBinary()
	assert.True(t, IsUnfittedState(err))

	err = p.UnmarshalBinary([]byte("garbage"))
	assert.Error(t, err)
}

func Test_RingRule(t *testing.T) {
	b, err := batch.New(
		batch.NewText("has-ring", []string{"t", "f"}, nil),
		batch.NewText("ring-type", []string{"z", "z"}, nil),
	)
	require.NoError(t, err)

	pre := RingRule(Ring{Typ: "ring-type", Has: "has-ring", Tok: []string{"t"}}, batch.In{Col: "ring-type", Set: batch.NewSet("e")})

	assert.False(t, pre.Keep(b, 0))
	assert.True(t, pre.Keep(b, 1))
}
