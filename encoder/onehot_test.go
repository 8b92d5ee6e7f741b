package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OneHot_Fit_Transform(t *testing.T) {
	var o OneHot

	err := o.Fit(
		[]string{"cap-shape", "season"},
		[][]string{
			{"x", "b", "x", "f"},
			{"u", "a"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"b", "f", "x"}, {"a", "u"}}, o.Categories)
	assert.Equal(t, 5, o.Width())
	assert.Equal(t, []string{"cap-shape=b", "cap-shape=f", "cap-shape=x", "season=a", "season=u"}, o.FeatureNames())

	m, err := o.Transform([][]string{
		{"x", "a"},
		{"b", "u"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{0, 0, 1, 1, 0},
		{1, 0, 0, 0, 1},
	}, m.Rows())
}

func Test_OneHot_Unknown_Category(t *testing.T) {
	var o OneHot

	require.NoError(t, o.Fit([]string{"cap-shape", "season"}, [][]string{{"x"}, {"a", "u"}}))

	m, err := o.Transform([][]string{{"never-seen", "u"}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 1}}, m.Rows())
}

func Test_OneHot_Order_Independent(t *testing.T) {
	var a, b OneHot

	require.NoError(t, a.Fit([]string{"c"}, [][]string{{"z", "a", "m"}}))
	require.NoError(t, b.Fit([]string{"c"}, [][]string{{"m", "z", "a"}}))

	assert.Equal(t, a.Categories, b.Categories)
}

func Test_OneHot_Errors(t *testing.T) {
	var o OneHot

	_, err := o.Transform([][]string{{"x"}})
	assert.True(t, IsNotFitted(err))

	assert.True(t, IsInvalidShape(o.Fit([]string{"a"}, nil)))

	require.NoError(t, o.Fit([]string{"a"}, [][]string{{"x"}}))
	_, err = o.Transform([][]string{{"x", "y"}})
	assert.True(t, IsInvalidShape(err))
}
