package sqldb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xh3b4sd/mushroom/store/core"
	"github.com/xh3b4sd/mushroom/store/storetest"
)

func Test_Store_SQLite_Conformance(t *testing.T) {
	s, err := Open(context.Background(), Config{Dri: core.DriverSQLite, DSN: filepath.Join(t.TempDir(), "state.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.Equal(t, core.DriverSQLite, s.Driver())

	storetest.Conformance(t, s)
}

func Test_Store_SQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "state.db")

	{
		s, err := Open(ctx, Config{Dri: core.DriverSQLite, DSN: dsn})
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, "state/v1/latest", []byte("abc")))
		require.NoError(t, s.Close())
	}

	{
		s, err := Open(ctx, Config{Dri: core.DriverSQLite, DSN: dsn})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		byt, err := s.Get(ctx, "state/v1/latest")
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), byt)
	}
}

// Test_Store_Postgres_Conformance runs against a real database when
// MUSHROOM_TEST_POSTGRES_DSN is set.
func Test_Store_Postgres_Conformance(t *testing.T) {
	dsn := os.Getenv("MUSHROOM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MUSHROOM_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()

	s, err := Open(ctx, Config{Dri: core.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.dbs.ExecContext(ctx, `DELETE FROM state`)
	require.NoError(t, err)

	storetest.Conformance(t, s)
}

func Test_Store_Invalid_Driver(t *testing.T) {
	_, err := Open(context.Background(), Config{Dri: core.DriverS3})
	require.True(t, IsInvalidConfig(err))
}
