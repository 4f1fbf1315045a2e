// Package store defines the lexicon persistence interface. The detection
// engine never touches a store directly; it consumes snapshots
// materialized from one.
package store

import (
	"context"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
)

// Store persists lexicon entries, keyed by canonical term.
type Store interface {
	Close() error

	UpsertEntry(ctx context.Context, e lexicon.Entry) error
	GetEntry(ctx context.Context, term string) (lexicon.Entry, bool, error)
	DeleteEntry(ctx context.Context, term string) error

	// ListEntries returns all entries in a stable order, suitable for
	// snapshot materialization.
	ListEntries(ctx context.Context) ([]lexicon.Entry, error)
	Count(ctx context.Context) (int64, error)
}

// Snapshot materializes an immutable lexicon snapshot from a store.
func Snapshot(ctx context.Context, st Store) (*lexicon.Snapshot, error) {
	entries, err := st.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return lexicon.NewSnapshot(entries), nil
}
