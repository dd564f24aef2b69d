// Package sqlite persists finalized datasets so the serve command and
// operator review tooling can query a run's output after the batch exits.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lawatlas/disaster-law-etl/internal/dataset"
	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

// Store manages the dataset SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the dataset database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open dataset db: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jurisdictions (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			region TEXT,
			score REAL,
			completeness REAL NOT NULL,
			fields TEXT NOT NULL,
			extra TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS unresolved (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source_file TEXT NOT NULL,
			raw_text TEXT,
			stage TEXT NOT NULL,
			reason TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// SaveDataset replaces the stored dataset with ds, atomically.
func (s *Store) SaveDataset(ds *dataset.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{`DELETE FROM jurisdictions`, `DELETE FROM unresolved`, `DELETE FROM meta`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("save dataset: %w", err)
		}
	}

	for _, rec := range ds.All() {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("save dataset: marshal fields for %s: %w", rec.JurisdictionID, err)
		}
		extra, err := json.Marshal(rec.Extra)
		if err != nil {
			return fmt.Errorf("save dataset: marshal extra for %s: %w", rec.JurisdictionID, err)
		}
		var score sql.NullFloat64
		if rec.Score != nil {
			score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
		}
		_, err = tx.Exec(
			`INSERT INTO jurisdictions (id, display_name, region, score, completeness, fields, extra)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.JurisdictionID, rec.DisplayName, rec.Region, score, rec.Completeness, string(fields), string(extra),
		)
		if err != nil {
			return fmt.Errorf("save dataset: insert %s: %w", rec.JurisdictionID, err)
		}
	}

	for _, u := range ds.Unresolved() {
		_, err := tx.Exec(
			`INSERT INTO unresolved (source_file, raw_text, stage, reason) VALUES (?, ?, ?, ?)`,
			u.SourceFile, u.RawText, u.Stage, u.Reason,
		)
		if err != nil {
			return fmt.Errorf("save dataset: insert unresolved: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('built_at', ?)`,
		ds.BuiltAt().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// LoadDataset reads the stored dataset back.
func (s *Store) LoadDataset() (*dataset.Dataset, error) {
	rows, err := s.db.Query(
		`SELECT id, display_name, region, score, completeness, fields, extra FROM jurisdictions`,
	)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var records []domain.ConsolidatedRecord
	for rows.Next() {
		var rec domain.ConsolidatedRecord
		var score sql.NullFloat64
		var fields, extra string
		if err := rows.Scan(&rec.JurisdictionID, &rec.DisplayName, &rec.Region, &score, &rec.Completeness, &fields, &extra); err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		if score.Valid {
			v := score.Float64
			rec.Score = &v
		}
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, fmt.Errorf("load dataset: fields for %s: %w", rec.JurisdictionID, err)
		}
		if err := json.Unmarshal([]byte(extra), &rec.Extra); err != nil {
			return nil, fmt.Errorf("load dataset: extra for %s: %w", rec.JurisdictionID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	unresolved, err := s.loadUnresolved()
	if err != nil {
		return nil, err
	}

	builtAt, err := s.loadBuiltAt()
	if err != nil {
		return nil, err
	}

	return dataset.Restore(records, unresolved, builtAt)
}

func (s *Store) loadUnresolved() ([]domain.Unresolved, error) {
	rows, err := s.db.Query(`SELECT source_file, raw_text, stage, reason FROM unresolved ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("load unresolved: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []domain.Unresolved
	for rows.Next() {
		var u domain.Unresolved
		if err := rows.Scan(&u.SourceFile, &u.RawText, &u.Stage, &u.Reason); err != nil {
			return nil, fmt.Errorf("load unresolved: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) loadBuiltAt() (time.Time, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'built_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load built_at: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("load built_at: %w", err)
	}
	return t, nil
}
