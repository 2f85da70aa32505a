package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
    as_of      TEXT NOT NULL,
    name       TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (as_of, name)
);`

// Store persists pipeline checkpoints as JSON payloads keyed by as-of date
// and stage name.
type Store struct {
	db *sqlx.DB
}

type DateSummary struct {
	AsOf   string `db:"as_of"`
	Stages int    `db:"stages"`
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load decodes the checkpoint into v. It reports false when none exists.
func (s *Store) Load(ctx context.Context, asOf, name string, v any) (bool, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM checkpoints WHERE as_of = ? AND name = ?`, asOf, name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading checkpoint %s/%s: %w", asOf, name, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("decoding checkpoint %s/%s: %w", asOf, name, err)
	}
	return true, nil
}

func (s *Store) Save(ctx context.Context, asOf, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding checkpoint %s/%s: %w", asOf, name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (as_of, name, payload) VALUES (?, ?, ?)
		ON CONFLICT (as_of, name) DO UPDATE SET payload = excluded.payload, created_at = CURRENT_TIMESTAMP`,
		asOf, name, string(payload))
	if err != nil {
		return fmt.Errorf("saving checkpoint %s/%s: %w", asOf, name, err)
	}
	return nil
}

// Dates lists the checkpointed as-of dates, newest first.
func (s *Store) Dates(ctx context.Context) ([]DateSummary, error) {
	var dates []DateSummary
	err := s.db.SelectContext(ctx, &dates, `
		SELECT as_of, COUNT(*) AS stages FROM checkpoints
		GROUP BY as_of ORDER BY as_of DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoint dates: %w", err)
	}
	return dates, nil
}

// Prune keeps the checkpoints of the newest keep dates and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints WHERE as_of NOT IN (
			SELECT DISTINCT as_of FROM checkpoints ORDER BY as_of DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning checkpoints: %w", err)
	}
	return res.RowsAffected()
}
