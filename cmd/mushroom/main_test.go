package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xh3b4sd/mushroom/store"
)

const dataset = `class;cap-diameter;cap-shape;has-ring;ring-type
p;15.26;x;t;g
e;3.1;b;f;
p;9.5;x;t;e
e;4.0;f;f;f
`

const parameters = `{
	"cap-diameter": {"type": "number"},
	"cap-shape": {"type": "text"},
	"has-ring": {"type": "bool"},
	"ring-type": {"type": "text", "prerequisites": ["has-ring"]}
}`

const reference = `{
	"version": "test",
	"features": {
		"cap-shape": {"Convex": "x", "Bell": "b", "Flat": "f"},
		"ring-type": {"Evanescent": "e", "Flaring": "f"}
	}
}`

func write(t *testing.T, nam string, con string) string {
	t.Helper()

	pat := filepath.Join(t.TempDir(), nam)
	require.NoError(t, os.WriteFile(pat, []byte(con), 0600))

	return pat
}

func Test_Cmd_Fit_Transform_Inspect(t *testing.T) {
	roo := t.TempDir()
	t.Setenv("MUSHROOM_STORE_DRIVER", "fs")
	t.Setenv("MUSHROOM_STORE_FS_ROOT", roo)

	dat := write(t, "dataset.csv", dataset)
	sch := write(t, "parameters.json", parameters)
	gui := write(t, "guide.json", reference)
	out := filepath.Join(t.TempDir(), "matrix.csv")

	{
		err := cmd.Dispatch([]string{"fit", "-csv", dat, "-schema", sch, "-guide", gui, "-name", "test"})
		require.NoError(t, err)
	}

	ctx := context.Background()

	sto, err := store.Open(ctx)
	require.NoError(t, err)

	pre, err := store.Load(ctx, sto, "test", nil)
	require.NoError(t, err)

	// The ring types g and missing are not valid, so only the last two rows
	// contribute to the fitted statistics.
	require.Equal(t, []string{"cap-diameter"}, pre.Continuous())
	require.Equal(t, []string{"cap-shape", "has-ring", "ring-type"}, pre.Categorical())
	require.Equal(t, []string{
		"cap-diameter",
		"cap-shape=f", "cap-shape=x",
		"has-ring=f", "has-ring=t",
		"ring-type=e", "ring-type=f",
	}, pre.FeatureNames())

	{
		err := cmd.Dispatch([]string{"transform", "-csv", dat, "-schema", sch, "-name", "test", "-out", out})
		require.NoError(t, err)
	}

	byt, err := os.ReadFile(out)
	require.NoError(t, err)

	lin := strings.Split(strings.TrimSpace(string(byt)), "\n")
	require.Len(t, lin, 4)
	// The first row has a ring of invalid type. The second row has no ring, so
	// its missing ring type is exempt.
	require.Equal(t, "cap-diameter,cap-shape=f,cap-shape=x,has-ring=f,has-ring=t,ring-type=e,ring-type=f,label", lin[0])

	var buf bytes.Buffer
	{
		nam, err := store.Names(ctx, sto)
		require.NoError(t, err)
		require.NoError(t, describe(&buf, nam, pre))
	}

	require.True(t, strings.Contains(buf.String(), "stored  test"))
	require.True(t, strings.Contains(buf.String(), "categorical  cap-shape     f x"))
}

func Test_Cmd_Imputation(t *testing.T) {
	_, err := imputation("median")
	require.True(t, IsInvalidFlag(err))
}
