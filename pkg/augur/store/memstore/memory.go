// Package memstore is an in-memory store.Store implementation for tests and
// archive-disabled runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/civicsignal/augur/pkg/augur/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
	order   []string // insertion order of record IDs
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{records: make(map[string]store.Record)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRecord stores a copy of the record keyed by its ID.
func (s *Store) SaveRecord(ctx context.Context, r store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.records[r.ID] = copyRecord(r)
	return nil
}

// GetRecord returns the record with the given ID, if present.
func (s *Store) GetRecord(ctx context.Context, id string) (store.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return store.Record{}, false, nil
	}
	return copyRecord(r), true, nil
}

// ListRecords returns records for a document id, newest first by record ID
// (ULIDs sort by creation time).
func (s *Store) ListRecords(ctx context.Context, docID string, limit int) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Record
	for _, id := range s.order {
		r := s.records[id]
		if r.DocID == docID {
			out = append(out, copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRecord(r store.Record) store.Record {
	out := r
	out.Events = make([]store.Event, len(r.Events))
	copy(out.Events, r.Events)
	return out
}
