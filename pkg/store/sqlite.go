package store

import (
	"database/sql"
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite (pure Go driver).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddRule stores a rule.
func (s *SQLiteStore) AddRule(r *types.Rule) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO rules (rule_id, structural_id, name, pattern)
		VALUES (?, ?, ?, ?)
	`, r.RuleID, r.StructuralID, r.Name, r.Pattern)
	if err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

// AddFinding stores a finding (deduplicated).
func (s *SQLiteStore) AddFinding(f *types.Finding) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO findings (id, rule_name, rule_id, filename, line, value, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID,
		f.RuleName,
		f.RuleID,
		f.Location.Filename,
		f.Location.Line,
		f.Value,
		f.Verified,
	)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}
	return nil
}

// GetFindings retrieves all findings.
func (s *SQLiteStore) GetFindings() ([]*types.Finding, error) {
	rows, err := s.db.Query(`
		SELECT id, rule_name, rule_id, filename, line, value, verified
		FROM findings
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var findings []*types.Finding
	for rows.Next() {
		f := &types.Finding{}
		if err := rows.Scan(&f.ID, &f.RuleName, &f.RuleID, &f.Location.Filename, &f.Location.Line, &f.Value, &f.Verified); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// FindingExists checks if a finding with this ID exists.
func (s *SQLiteStore) FindingExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM findings WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking finding: %w", err)
	}
	return exists, nil
}

// RuleCount returns the number of distinct rules recorded.
func (s *SQLiteStore) RuleCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM rules").Scan(&n)
	return n, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
