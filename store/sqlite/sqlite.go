/*
Package sqlite persists entries and computed snapshots.

PURPOSE:
  The persistence collaborator sits entirely outside the fiscal core:
  the core is handed a read-only entry list per computation and returns
  a value object; loading and saving both is this package's job. The
  same patterns apply to PostgreSQL with minor dialect differences.

KEY TABLES:
  entries:    canonical input facts per fiscal year
  snapshots:  serialized FiscalSnapshot per (year, fiscal hash), kept
              for audit: a stored hash can always be matched against a
              recomputation

WAL MODE:
  SQLite is opened with WAL so readers do not block the single writer.

USAGE:
  st, err := sqlite.New("./data/fiscal.db")
  if err != nil { ... }
  defer st.Close()
  entries, err := st.ListEntries(ctx, 2025)

SEE ALSO:
  - fiscal/types.go: EntryStore contract
  - store/memory: in-memory implementation used in tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/fiscal-engine/fiscal"
)

// Store implements fiscal.EntryStore plus snapshot persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ fiscal.EntryStore = (*Store)(nil)

// New opens (or creates) the database and migrates the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id           TEXT PRIMARY KEY,
		nature       TEXT NOT NULL,
		label        TEXT NOT NULL DEFAULT '',
		amount_ttc   INTEGER NOT NULL,
		vat_rate     INTEGER NOT NULL,
		date         TEXT NOT NULL,
		scope        TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		subcategory  TEXT NOT NULL DEFAULT '',
		periodicity  TEXT NOT NULL DEFAULT '',
		year         INTEGER NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_year ON entries(year);

	CREATE TABLE IF NOT EXISTS snapshots (
		year        INTEGER NOT NULL,
		fiscal_hash TEXT NOT NULL,
		payload     BLOB NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (year, fiscal_hash)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntry inserts or replaces one entry. The fiscal year is derived
// from the anchor date; unparseable dates default to the current year
// so the record stays reachable.
func (s *Store) SaveEntry(ctx context.Context, e fiscal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := time.Now().UTC().Year()
	if t, err := time.Parse("2006-01-02", e.Date); err == nil {
		year = t.Year()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries
		(id, nature, label, amount_ttc, vat_rate, date, scope, category, subcategory, periodicity, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.Nature), e.Label, e.AmountTTC, e.VATRate,
		e.Date, string(e.Scope), e.Category, e.Subcategory, string(e.Periodicity),
		year, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	return nil
}

// ListEntries returns every entry anchored in the given year, ordered
// by (date, id) for stable output.
func (s *Store) ListEntries(ctx context.Context, year int) ([]fiscal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nature, label, amount_ttc, vat_rate, date, scope, category, subcategory, periodicity
		FROM entries WHERE year = ? ORDER BY date, id`, year)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []fiscal.Entry
	for rows.Next() {
		var e fiscal.Entry
		var id, nature, scope, periodicity string
		if err := rows.Scan(&id, &nature, &e.Label, &e.AmountTTC, &e.VATRate,
			&e.Date, &scope, &e.Category, &e.Subcategory, &periodicity); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.ID = fiscal.EntryID(id)
		e.Nature = fiscal.Nature(nature)
		e.Scope = fiscal.Scope(scope)
		e.Periodicity = fiscal.Periodicity(periodicity)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entry by id. Returns sql.ErrNoRows when the
// id does not exist.
func (s *Store) DeleteEntry(ctx context.Context, id fiscal.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// SaveSnapshot stores a serialized snapshot keyed by year + hash.
// Recomputing identical inputs produces the same hash, so replays
// overwrite rather than accumulate.
func (s *Store) SaveSnapshot(ctx context.Context, year int, fiscalHash string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (year, fiscal_hash, payload, computed_at)
		VALUES (?, ?, ?, ?)`,
		year, fiscalHash, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot %d/%s: %w", year, fiscalHash, err)
	}
	return nil
}

// LatestSnapshot returns the most recently stored snapshot payload for
// a year, or sql.ErrNoRows.
func (s *Store) LatestSnapshot(ctx context.Context, year int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE year = ?
		ORDER BY computed_at DESC LIMIT 1`, year).Scan(&payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
