// Package storetest verifies that a store driver behaves like every other
// store driver.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xh3b4sd/mushroom/store/core"
)

// Conformance runs the shared store behaviour against an empty store s.
func Conformance(t *testing.T, s core.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(ctx, "none")
		require.True(t, core.IsNotFound(err), err)

		err = s.Delete(ctx, "none")
		require.True(t, core.IsNotFound(err), err)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "state/v1/latest", []byte("a")))
		require.NoError(t, s.Put(ctx, "state/v1/latest", []byte{0x00, 0xff, '\n'}))

		byt, err := s.Get(ctx, "state/v1/latest")
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0xff, '\n'}, byt)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "state/v1/b", []byte("b")))
		require.NoError(t, s.Put(ctx, "state/v1/a", []byte("a")))
		require.NoError(t, s.Put(ctx, "other/a", []byte("a")))

		key, err := s.List(ctx, "state/v1/")
		require.NoError(t, err)
		require.Equal(t, []string{"state/v1/a", "state/v1/b", "state/v1/latest"}, key)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "state/v1/a"))

		_, err := s.Get(ctx, "state/v1/a")
		require.True(t, core.IsNotFound(err), err)
	})

	t.Run("key", func(t *testing.T) {
		err := s.Put(ctx, "../escape", []byte("a"))
		require.True(t, core.IsInvalidKey(err), err)

		err = s.Put(ctx, "", []byte("a"))
		require.True(t, core.IsInvalidKey(err), err)
	})
}
