// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes saved OPA responses into a SQLite database so
// scraped properties and their valuation history can be queried without
// re-reading the download directory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/opa-api/internal/opa"
	"github.com/pdiddy/opa-api/pkg/types"
)

// ErrNotFound is returned when an account is not indexed.
var ErrNotFound = errors.New("account not found")

// Store manages the SQLite index.
type Store struct {
	db *sql.DB
}

// IngestSummary counts the files processed by one Ingest call.
type IngestSummary struct {
	RunID   string
	Indexed int
	Skipped int
	Failed  int
}

// Open opens or creates the database at cfg.DBPath and creates the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			account_number TEXT PRIMARY KEY,
			full_address TEXT,
			zip TEXT,
			owner_name TEXT,
			fields TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS valuations (
			account_number TEXT NOT NULL REFERENCES properties(account_number) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			certification_year TEXT,
			market_value TEXT,
			fields TEXT NOT NULL,
			PRIMARY KEY (account_number, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_zip ON properties(zip)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			source_dir TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			indexed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Ingest indexes every <id>.json response in dir. Each file is written in
// its own transaction, replacing any previous copy of the account.
// Non-success responses are skipped; unreadable or malformed files are
// reported on w and counted as failed.
func (s *Store) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	summary := IngestSummary{RunID: uuid.NewString()}

	files, err := responseFiles(dir)
	if err != nil {
		return summary, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		body, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}
		rec, err := opa.Decode(body)
		if errors.Is(err, opa.ErrNotSuccess) {
			summary.Skipped++
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}

		if err := s.Put(ctx, rec); err != nil {
			return summary, err
		}
		summary.Indexed++
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source_dir, ingested_at, indexed, skipped, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, dir, time.Now().UTC().Format(time.RFC3339), summary.Indexed, summary.Skipped, summary.Failed,
	); err != nil {
		return summary, fmt.Errorf("recording run: %w", err)
	}

	fmt.Fprintf(w, "Index summary: %d indexed, %d skipped, %d failed\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

// responseFiles lists the saved response files in dir, sorted by name.
func responseFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading download directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Put upserts one record and replaces its valuation history.
func (s *Store) Put(ctx context.Context, rec *opa.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fields := rec.Fields()
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO properties (account_number, full_address, zip, owner_name, fields, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_number) DO UPDATE SET
			full_address = excluded.full_address,
			zip = excluded.zip,
			owner_name = excluded.owner_name,
			fields = excluded.fields,
			indexed_at = excluded.indexed_at`,
		rec.AccountNumber, fields["full_address"], fields["zip"], fields["owner_name"],
		string(fieldsJSON), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("upserting property %s: %w", rec.AccountNumber, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM valuations WHERE account_number = ?`, rec.AccountNumber); err != nil {
		return fmt.Errorf("clearing valuations for %s: %w", rec.AccountNumber, err)
	}
	for i := range rec.Valuations {
		vf := rec.ValuationFields(i)
		vfJSON, err := json.Marshal(vf)
		if err != nil {
			return fmt.Errorf("marshaling valuation: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO valuations (account_number, seq, certification_year, market_value, fields) VALUES (?, ?, ?, ?, ?)`,
			rec.AccountNumber, i, vf["certification_year"], vf["market_value"], string(vfJSON),
		); err != nil {
			return fmt.Errorf("inserting valuation for %s: %w", rec.AccountNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", rec.AccountNumber, err)
	}
	return nil
}

// Write indexes rec with a background context. It lets a Store serve as a
// scrape sink so records are indexed as they arrive.
func (s *Store) Write(rec *opa.Record) error {
	return s.Put(context.Background(), rec)
}

// Property returns the indexed property for account.
func (s *Store) Property(ctx context.Context, account string) (*types.Property, error) {
	var p types.Property
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_number, full_address, zip, owner_name, fields FROM properties WHERE account_number = ?`,
		account,
	).Scan(&p.AccountNumber, &p.FullAddress, &p.Zip, &p.OwnerName, &fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", account, err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &p.Fields); err != nil {
		return nil, fmt.Errorf("decoding fields for %s: %w", account, err)
	}
	return &p, nil
}

// Valuations returns the valuation history for account in source order.
func (s *Store) Valuations(ctx context.Context, account string) ([]types.Valuation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_number, seq, certification_year, market_value, fields
		 FROM valuations WHERE account_number = ? ORDER BY seq`,
		account,
	)
	if err != nil {
		return nil, fmt.Errorf("querying valuations for %s: %w", account, err)
	}
	defer rows.Close()

	var vals []types.Valuation
	for rows.Next() {
		var v types.Valuation
		var fieldsJSON string
		if err := rows.Scan(&v.AccountNumber, &v.Seq, &v.CertificationYear, &v.MarketValue, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning valuation: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &v.Fields); err != nil {
			return nil, fmt.Errorf("decoding valuation fields: %w", err)
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}

// Counts returns the number of indexed properties and valuations.
func (s *Store) Counts(ctx context.Context) (properties, valuations int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM properties`).Scan(&properties); err != nil {
		return 0, 0, fmt.Errorf("counting properties: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM valuations`).Scan(&valuations); err != nil {
		return 0, 0, fmt.Errorf("counting valuations: %w", err)
	}
	return properties, valuations, nil
}
