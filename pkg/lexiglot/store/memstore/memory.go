// Package memstore is an in-memory store.Store implementation for tests
// and examples.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
)

// Store is an in-memory lexicon store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]lexicon.Entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]lexicon.Entry)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertEntry inserts or replaces an entry, keyed by lowercased term.
func (s *Store) UpsertEntry(ctx context.Context, e lexicon.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(e.Term))
	if term == "" {
		return nil
	}
	e.Term = term
	s.entries[term] = e
	return nil
}

// GetEntry looks up an entry by term.
func (s *Store) GetEntry(ctx context.Context, term string) (lexicon.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[strings.ToLower(term)]
	return e, ok, nil
}

// DeleteEntry removes an entry. Deleting an absent term is a no-op.
func (s *Store) DeleteEntry(ctx context.Context, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, strings.ToLower(term))
	return nil
}

// ListEntries returns all entries sorted by term.
func (s *Store) ListEntries(ctx context.Context) ([]lexicon.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lexicon.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.entries)), nil
}
