// Package memory provides an in-memory EntryStore (for testing/dev).
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/warp/fiscal-engine/fiscal"
)

// Store implements fiscal.EntryStore in memory.
type Store struct {
	mu      sync.RWMutex
	entries map[fiscal.EntryID]fiscal.Entry
}

var _ fiscal.EntryStore = (*Store)(nil)

func New() *Store {
	return &Store{entries: make(map[fiscal.EntryID]fiscal.Entry)}
}

func (s *Store) SaveEntry(_ context.Context, e fiscal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *Store) ListEntries(_ context.Context, year int) ([]fiscal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []fiscal.Entry
	for _, e := range s.entries {
		if t, err := time.Parse("2006-01-02", e.Date); err == nil && t.Year() == year {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteEntry(_ context.Context, id fiscal.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.entries, id)
	return nil
}
