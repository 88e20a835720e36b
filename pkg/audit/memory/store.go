// Package memory is an in-process audit.Store.
package memory

import (
	"context"
	"sync"

	"github.com/paw-chain/pawswap/pkg/audit"
)

// Store keeps records in insertion order.
type Store struct {
	mu      sync.RWMutex
	records []audit.Record
	byID    map[string]int
}

// Compile-time interface check.
var _ audit.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Append adds a record. Returns ErrDuplicateKey if the id exists.
func (s *Store) Append(_ context.Context, r audit.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ID]; exists {
		return audit.ErrDuplicateKey
	}
	r.Payload = append([]byte(nil), r.Payload...)
	s.byID[r.ID] = len(s.records)
	s.records = append(s.records, r)
	return nil
}

// Get returns a record by id.
func (s *Store) Get(_ context.Context, id string) (audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return audit.Record{}, audit.ErrNotFound
	}
	return s.records[i], nil
}

// Query walks the log backwards so results are newest first.
func (s *Store) Query(_ context.Context, f audit.Filter) ([]audit.Record, error) {
	f = f.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Record, 0, min(f.Limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < f.Limit; i-- {
		if f.Matches(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
