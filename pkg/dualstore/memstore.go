package dualstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory DocumentStore for tests and ephemeral setups.
type MemStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{docs: map[string][]byte{}}
}

func (s *MemStore) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemStore) Write(ctx context.Context, path string, mutate MutatorFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, found := s.docs[path]
	next, err := mutate(cur, found)
	if err != nil {
		return &MutateError{Err: err}
	}
	s.docs[path] = next
	return nil
}

func (s *MemStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, path)
	return nil
}

func (s *MemStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := []string{}
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
