// Package store selects a store driver from the process environment and
// persists fitted preprocessor state under versioned keys.
package store

import (
	"context"
	"encoding"
	"os"

	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/preprocessor"
	"github.com/xh3b4sd/mushroom/store/core"
	"github.com/xh3b4sd/mushroom/store/fs"
	"github.com/xh3b4sd/mushroom/store/memory"
	"github.com/xh3b4sd/mushroom/store/s3"
	"github.com/xh3b4sd/mushroom/store/sqldb"
)

// Prefix namespaces all state keys by snapshot layout, so that incompatible
// layouts never share keys.
const Prefix = "state/v1/"

// Open selects a store implementation using environment variables.
//
//	MUSHROOM_STORE_DRIVER   fs|memory|s3|sqlite|postgres (default fs)
//	MUSHROOM_STORE_FS_ROOT  directory root when driver=fs (default ./statedata)
//	MUSHROOM_STORE_DSN      file path for sqlite, connection URL for postgres
//	MUSHROOM_STORE_S3_*     see s3.OpenFromEnv
func Open(ctx context.Context) (core.Store, error) {
	dri := core.Driver(os.Getenv("MUSHROOM_STORE_DRIVER"))
	if dri == "" {
		dri = core.DriverFilesystem
	}

	switch dri {
	case core.DriverFilesystem:
		s, err := fs.New(os.Getenv("MUSHROOM_STORE_FS_ROOT"))
		if err != nil {
			return nil, tracer.Mask(err)
		}
		return s, nil
	case core.DriverMemory:
		return memory.New(), nil
	case core.DriverS3:
		s, err := s3.OpenFromEnv(ctx)
		if err != nil {
			return nil, tracer.Mask(err)
		}
		return s, nil
	case core.DriverSQLite, core.DriverPostgres:
		s, err := sqldb.Open(ctx, sqldb.Config{Dri: dri, DSN: os.Getenv("MUSHROOM_STORE_DSN")})
		if err != nil {
			return nil, tracer.Mask(err)
		}
		return s, nil
	}

	return nil, tracer.Maskf(unknownDriverError, "%s", dri)
}

// Save stores the binary form of a fitted preprocessor under nam.
func Save(ctx context.Context, sto core.Store, nam string, pre encoding.BinaryMarshaler) error {
	byt, err := pre.MarshalBinary()
	if err != nil {
		return tracer.Mask(err)
	}

	{
		err := sto.Put(ctx, Prefix+nam, byt)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

// Load restores the preprocessor stored under nam. log may be nil.
func Load(ctx context.Context, sto core.Store, nam string, log *zap.Logger) (*preprocessor.Preprocessor, error) {
	byt, err := sto.Get(ctx, Prefix+nam)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	pre, err := preprocessor.Restore(byt, log)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return pre, nil
}

// Names lists the names of all stored states.
func Names(ctx context.Context, sto core.Store) ([]string, error) {
	key, err := sto.List(ctx, Prefix)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	var nam []string
	for _, k := range key {
		nam = append(nam, k[len(Prefix):])
	}

	return nam, nil
}
