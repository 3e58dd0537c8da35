// Package store persists decision bundles in SQLite. Bundle ids are
// write-once: Put inserts and never overwrites, which gives the
// at-most-one-writer-per-identifier semantics the pipeline relies on.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"culturebridge/internal/types"
)

// VariantStore stores complete variant specs keyed by variant id.
type VariantStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// NewVariantStore opens (creating if needed) the SQLite database at path.
func NewVariantStore(path string) (*VariantStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}

	s := &VariantStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *VariantStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS variants (
			variant_id  TEXT PRIMARY KEY,
			region      TEXT NOT NULL,
			audit_score INTEGER NOT NULL,
			payload     TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Put stores a variant. The id must be fresh; storing an existing id is an
// error rather than an overwrite.
func (s *VariantStore) Put(v *types.VariantSpec) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal variant: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO variants (variant_id, region, audit_score, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.VariantID, v.Region, v.AuditScore, string(payload), v.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("store variant %s: %w", v.VariantID, err)
	}
	return nil
}

// Get retrieves a variant by id. Returns types.ErrNotFound for unknown ids.
func (s *VariantStore) Get(variantID string) (*types.VariantSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM variants WHERE variant_id = ?`, variantID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("variant %s: %w", variantID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load variant %s: %w", variantID, err)
	}

	var v types.VariantSpec
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, fmt.Errorf("unmarshal variant %s: %w", variantID, err)
	}
	return &v, nil
}

// UpdateAudit replaces the stored audit fields after an audit re-run.
func (s *VariantStore) UpdateAudit(variantID string, audit *types.AuditResult) error {
	v, err := s.Get(variantID)
	if err != nil {
		return err
	}
	v.RiskFlags = audit.RiskFlags
	v.AuditScore = audit.AuditScore

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal variant: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`UPDATE variants SET audit_score = ?, payload = ? WHERE variant_id = ?`,
		audit.AuditScore, string(payload), variantID,
	)
	if err != nil {
		return fmt.Errorf("update audit for %s: %w", variantID, err)
	}
	return nil
}

// List returns all stored variant ids, oldest first.
func (s *VariantStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT variant_id FROM variants ORDER BY created_at, variant_id`)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan variant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a variant. Reports whether it existed.
func (s *VariantStore) Delete(variantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM variants WHERE variant_id = ?`, variantID)
	if err != nil {
		return false, fmt.Errorf("delete variant %s: %w", variantID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *VariantStore) Close() error {
	return s.db.Close()
}
