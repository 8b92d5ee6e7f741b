// Package memory implements a process local store, mainly for tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/store/core"
)

type Store struct {
	mut sync.RWMutex
	obj map[string][]byte
}

func New() *Store {
	return &Store{obj: map[string][]byte{}}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Put(_ context.Context, key string, byt []byte) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	s.obj[key] = append([]byte(nil), byt...)

	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	key, err := core.Key(key)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	s.mut.RLock()
	defer s.mut.RUnlock()

	byt, ok := s.obj[key]
	if !ok {
		return nil, tracer.Maskf(core.NotFoundError, "%s", key)
	}

	return append([]byte(nil), byt...), nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	_, ok := s.obj[key]
	if !ok {
		return tracer.Maskf(core.NotFoundError, "%s", key)
	}

	delete(s.obj, key)

	return nil
}

func (s *Store) List(_ context.Context, pre string) ([]string, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var key []string
	for k := range s.obj {
		if strings.HasPrefix(k, pre) {
			key = append(key, k)
		}
	}

	sort.Strings(key)

	return key, nil
}
