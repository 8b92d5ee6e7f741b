// Package sqldb implements a store keeping payloads in a single relational
// table, either in SQLite or in Postgres.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/xh3b4sd/tracer"
	_ "modernc.org/sqlite"

	"github.com/xh3b4sd/mushroom/store/core"
)

const (
	defaultPostgres = "postgres://localhost/mushroom?sslmode=disable"
	defaultSQLite   = "mushroom.db"
)

type Config struct {
	// Dri is either core.DriverSQLite or core.DriverPostgres.
	Dri core.Driver
	// DSN is the file path for SQLite and the connection URL for Postgres.
	DSN string
}

type Store struct {
	dbs *sql.DB
	dri core.Driver
}

func Open(ctx context.Context, c Config) (*Store, error) {
	var nam string
	var ddl string

	switch c.Dri {
	case core.DriverSQLite:
		if c.DSN == "" {
			c.DSN = defaultSQLite
		}

		err := os.MkdirAll(filepath.Dir(c.DSN), 0o750)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		nam = "sqlite"
		ddl = `CREATE TABLE IF NOT EXISTS state (name TEXT PRIMARY KEY, payload BLOB NOT NULL)`
	case core.DriverPostgres:
		if c.DSN == "" {
			c.DSN = defaultPostgres
		}

		nam = "pgx"
		ddl = `CREATE TABLE IF NOT EXISTS state (name TEXT PRIMARY KEY, payload BYTEA NOT NULL)`
	default:
		return nil, tracer.Maskf(invalidConfigError, "driver %q is not a sql driver", c.Dri)
	}

	dbs, err := sql.Open(nam, c.DSN)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	{
		err := dbs.PingContext(ctx)
		if err != nil {
			dbs.Close()
			return nil, tracer.Mask(err)
		}
	}

	{
		_, err := dbs.ExecContext(ctx, ddl)
		if err != nil {
			dbs.Close()
			return nil, tracer.Mask(err)
		}
	}

	s := &Store{
		dbs: dbs,
		dri: c.Dri,
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.dbs.Close()
}

func (s *Store) Driver() core.Driver { return s.dri }

// arg returns the n-th bind parameter in the driver's dialect.
func (s *Store) arg(n int) string {
	if s.dri == core.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

func (s *Store) Put(ctx context.Context, key string, byt []byte) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	if byt == nil {
		byt = []byte{}
	}

	qry := fmt.Sprintf(
		`INSERT INTO state (name, payload) VALUES (%s, %s) ON CONFLICT (name) DO UPDATE SET payload = excluded.payload`,
		s.arg(1), s.arg(2),
	)

	{
		_, err := s.dbs.ExecContext(ctx, qry, key, byt)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := core.Key(key)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	var byt []byte

	err = s.dbs.QueryRowContext(ctx, `SELECT payload FROM state WHERE name = `+s.arg(1), key).Scan(&byt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tracer.Maskf(core.NotFoundError, "%s", key)
	} else if err != nil {
		return nil, tracer.Mask(err)
	}

	return byt, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	res, err := s.dbs.ExecContext(ctx, `DELETE FROM state WHERE name = `+s.arg(1), key)
	if err != nil {
		return tracer.Mask(err)
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return tracer.Mask(err)
	}

	if aff == 0 {
		return tracer.Maskf(core.NotFoundError, "%s", key)
	}

	return nil
}

// List filters in Go, since LIKE patterns and collations differ between the
// two dialects.
func (s *Store) List(ctx context.Context, pre string) ([]string, error) {
	row, err := s.dbs.QueryContext(ctx, `SELECT name FROM state`)
	if err != nil {
		return nil, tracer.Mask(err)
	}
	defer row.Close()

	var key []string
	for row.Next() {
		var k string

		err := row.Scan(&k)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		if strings.HasPrefix(k, pre) {
			key = append(key, k)
		}
	}

	{
		err := row.Err()
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	sort.Strings(key)

	return key, nil
}
