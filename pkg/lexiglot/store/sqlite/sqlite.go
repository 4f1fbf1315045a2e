// Package sqlite implements store.Store on SQLite via modernc.org/sqlite
// (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite lexicon database with WAL mode enabled and
// initializes the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS entries (
	term TEXT PRIMARY KEY,
	gloss TEXT NOT NULL DEFAULT '',
	senses TEXT NOT NULL DEFAULT '[]',
	variants TEXT NOT NULL DEFAULT '[]',
	confidence REAL NOT NULL DEFAULT 0,
	age_rating INTEGER NOT NULL DEFAULT 1,
	content_flags TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertEntry inserts or replaces an entry, keyed by lowercased term.
func (s *sqliteStore) UpsertEntry(ctx context.Context, e lexicon.Entry) error {
	term := strings.ToLower(strings.TrimSpace(e.Term))
	if term == "" {
		return nil
	}

	gloss := ""
	if g, ok := e.DefaultGloss(); ok {
		gloss = g
	}
	senses, err := json.Marshal(senseList(e))
	if err != nil {
		return err
	}
	variants, err := json.Marshal(orEmpty(e.Variants))
	if err != nil {
		return err
	}
	flags, err := json.Marshal(orEmpty(e.ContentFlags))
	if err != nil {
		return err
	}
	tags, err := json.Marshal(orEmpty(e.Tags))
	if err != nil {
		return err
	}

	age := e.Age
	if age == 0 {
		age = lexicon.Everyone
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (term, gloss, senses, variants, confidence, age_rating, content_flags, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET
			gloss = excluded.gloss,
			senses = excluded.senses,
			variants = excluded.variants,
			confidence = excluded.confidence,
			age_rating = excluded.age_rating,
			content_flags = excluded.content_flags,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`, term, gloss, string(senses), string(variants), e.Confidence, int(age), string(flags), string(tags),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetEntry looks up an entry by term.
func (s *sqliteStore) GetEntry(ctx context.Context, term string) (lexicon.Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT term, gloss, senses, variants, confidence, age_rating, content_flags, tags
		FROM entries WHERE term = ?
	`, strings.ToLower(term))

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return lexicon.Entry{}, false, nil
	}
	if err != nil {
		return lexicon.Entry{}, false, err
	}
	return e, true, nil
}

// DeleteEntry removes an entry. Deleting an absent term is a no-op.
func (s *sqliteStore) DeleteEntry(ctx context.Context, term string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE term = ?`, strings.ToLower(term))
	return err
}

// ListEntries returns all entries ordered by term.
func (s *sqliteStore) ListEntries(ctx context.Context) ([]lexicon.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT term, gloss, senses, variants, confidence, age_rating, content_flags, tags
		FROM entries ORDER BY term
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lexicon.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (s *sqliteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (lexicon.Entry, error) {
	var (
		e                             lexicon.Entry
		gloss                         string
		senses, variants, flags, tags string
		age                           int
	)
	if err := row.Scan(&e.Term, &gloss, &senses, &variants, &e.Confidence, &age, &flags, &tags); err != nil {
		return lexicon.Entry{}, err
	}

	var senseList []lexicon.Sense
	if err := json.Unmarshal([]byte(senses), &senseList); err != nil {
		return lexicon.Entry{}, fmt.Errorf("decode senses for %q: %w", e.Term, err)
	}
	if err := json.Unmarshal([]byte(variants), &e.Variants); err != nil {
		return lexicon.Entry{}, fmt.Errorf("decode variants for %q: %w", e.Term, err)
	}
	if err := json.Unmarshal([]byte(flags), &e.ContentFlags); err != nil {
		return lexicon.Entry{}, fmt.Errorf("decode content flags for %q: %w", e.Term, err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return lexicon.Entry{}, fmt.Errorf("decode tags for %q: %w", e.Term, err)
	}

	e.Age = lexicon.AgeRating(age)
	switch {
	case len(senseList) > 0:
		e.Gloss = lexicon.Senses(senseList)
	case gloss != "":
		e.Gloss = lexicon.Simple(gloss)
	}
	return e, nil
}

func senseList(e lexicon.Entry) []lexicon.Sense {
	if s := e.SenseList(); s != nil {
		return s
	}
	return []lexicon.Sense{}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
