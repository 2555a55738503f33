package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Promptonauts/embate/pkg/models"
)

// SQLiteStore keeps each record as a JSON document keyed by id.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS embates (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_embates_status ON embates(status);
	CREATE INDEX IF NOT EXISTS idx_embates_seq ON embates(seq);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec *models.EmbateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(rec)
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal embate: %w", err)
	}

	// seq keeps first-insert order across overwrites.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embates (id, seq, status, data, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM embates), ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, rec.ID, string(rec.Status), string(data), rec.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("upsert embate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.EmbateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM embates WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query embate: %w", err)
	}
	return decode(data)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.EmbateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT data FROM embates ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("list embates: %w", err)
	}
	defer rows.Close()

	var results []*models.EmbateRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM embates WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete embate: %w", err)
	}
	return nil
}

func decode(data string) (*models.EmbateRecord, error) {
	var rec models.EmbateRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal embate: %w", err)
	}
	return &rec, nil
}
