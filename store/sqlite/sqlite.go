/*
Package sqlite provides the SQLite-backed calculation audit store.

PURPOSE:
  Persists every calculation run as an immutable record: the exact input,
  the exact output, and enough denormalized columns (kind, limiting factor,
  reason codes) to filter history without unpacking JSON. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  Regulatory calculations are audit evidence. The store exposes no UPDATE
  and no DELETE on the calculations table; a corrected calculation is a new
  record with a new ID.

KEY TABLES:
  calculations:  Immutable record of every calculator run

INDEXES:
  idx_calculations_kind_created: History listing per calculator (hot path)
  idx_calculations_limiting:     Filtering by binding constraint

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/mortgage.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api/handlers.go: Writes a record per calculation request
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Calculation kinds as stored in the kind column.
const (
	KindEligibility = "eligibility"
	KindCompliance  = "compliance"
	KindRefinance   = "refinance"
)

// timeLayout is fixed-width (nine fractional digits, always UTC) so that
// lexical ordering of the created_at column matches chronological ordering.
// RFC3339Nano trims trailing zeros and breaks that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CalculationRecord is one immutable calculator run.
type CalculationRecord struct {
	ID             string
	Kind           string
	InputJSON      string
	OutputJSON     string
	LimitingFactor string
	ReasonCodes    []string
	CreatedAt      time.Time
}

// ListFilter narrows a history listing. Zero values mean "no filter".
type ListFilter struct {
	Kind           string
	LimitingFactor string
	Limit          int
}

// Store persists calculation records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Calculations (append-only audit record)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		input_json TEXT NOT NULL,
		output_json TEXT NOT NULL,
		limiting_factor TEXT NOT NULL DEFAULT '',
		reason_codes_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	-- History listing per calculator (hot path)
	CREATE INDEX IF NOT EXISTS idx_calculations_kind_created
		ON calculations(kind, created_at DESC);

	-- Filtering by binding constraint
	CREATE INDEX IF NOT EXISTS idx_calculations_limiting
		ON calculations(limiting_factor) WHERE limiting_factor != '';
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveCalculation appends one record. The caller supplies the ID; records
// are never updated afterwards.
func (s *Store) SaveCalculation(ctx context.Context, rec CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		return fmt.Errorf("calculation record requires an id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	codes, err := json.Marshal(rec.ReasonCodes)
	if err != nil {
		return fmt.Errorf("failed to encode reason codes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calculations (id, kind, input_json, output_json, limiting_factor, reason_codes_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.InputJSON, rec.OutputJSON,
		rec.LimitingFactor, string(codes), rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// GetCalculation returns one record by ID, or nil when absent.
func (s *Store) GetCalculation(ctx context.Context, id string) (*CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, input_json, output_json, limiting_factor, reason_codes_json, created_at
		FROM calculations WHERE id = ?`, id)

	rec, err := scanCalculation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	return rec, nil
}

// ListCalculations returns records newest-first, narrowed by the filter.
func (s *Store) ListCalculations(ctx context.Context, filter ListFilter) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, kind, input_json, output_json, limiting_factor, reason_codes_json, created_at
		FROM calculations WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.LimitingFactor != "" {
		query += " AND limiting_factor = ?"
		args = append(args, filter.LimitingFactor)
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	records := []CalculationRecord{}
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountCalculations returns the total number of records for a kind.
// An empty kind counts everything.
func (s *Store) CountCalculations(ctx context.Context, kind string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	var err error
	if kind == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculations`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculations WHERE kind = ?`, kind).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count calculations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row rowScanner) (*CalculationRecord, error) {
	var rec CalculationRecord
	var codesJSON, createdAt string
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.InputJSON, &rec.OutputJSON,
		&rec.LimitingFactor, &codesJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(codesJSON), &rec.ReasonCodes); err != nil {
		return nil, fmt.Errorf("corrupt reason codes for %s: %w", rec.ID, err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp for %s: %w", rec.ID, err)
	}
	rec.CreatedAt = ts
	return &rec, nil
}
