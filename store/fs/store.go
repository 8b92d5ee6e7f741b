// Package fs implements a store keeping one file per key below a root
// directory.
package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/store/core"
)

type Store struct {
	roo string
}

// New creates the root directory if needed. An empty root defaults to
// ./statedata.
func New(roo string) (*Store, error) {
	if roo == "" {
		roo = "./statedata"
	}

	{
		err := os.MkdirAll(roo, 0o750)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return &Store{roo: roo}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

func (s *Store) path(key string) (string, error) {
	key, err := core.Key(key)
	if err != nil {
		return "", tracer.Mask(err)
	}

	return filepath.Join(s.roo, filepath.FromSlash(key)), nil
}

// Put writes to a temporary file first and renames it, so that readers never
// observe partial payloads.
func (s *Store) Put(_ context.Context, key string, byt []byte) error {
	pat, err := s.path(key)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		err := os.MkdirAll(filepath.Dir(pat), 0o750)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	fil, err := os.CreateTemp(filepath.Dir(pat), ".tmp-*")
	if err != nil {
		return tracer.Mask(err)
	}
	defer os.Remove(fil.Name())

	{
		_, err := fil.Write(byt)
		if err != nil {
			fil.Close()
			return tracer.Mask(err)
		}
	}

	{
		err := fil.Close()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		err := os.Rename(fil.Name(), pat)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	pat, err := s.path(key)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	byt, err := os.ReadFile(pat)
	if errors.Is(err, os.ErrNotExist) {
		return nil, tracer.Maskf(core.NotFoundError, "%s", key)
	} else if err != nil {
		return nil, tracer.Mask(err)
	}

	return byt, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	pat, err := s.path(key)
	if err != nil {
		return tracer.Mask(err)
	}

	err = os.Remove(pat)
	if errors.Is(err, os.ErrNotExist) {
		return tracer.Maskf(core.NotFoundError, "%s", key)
	} else if err != nil {
		return tracer.Mask(err)
	}

	return nil
}

func (s *Store) List(_ context.Context, pre string) ([]string, error) {
	var key []string

	err := filepath.WalkDir(s.roo, func(pat string, ent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ent.IsDir() || strings.HasPrefix(ent.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.roo, pat)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, pre) {
			key = append(key, rel)
		}

		return nil
	})
	if err != nil {
		return nil, tracer.Mask(err)
	}

	sort.Strings(key)

	return key, nil
}
