// Package sqlite provides a SQLite-backed ports.HistoryStore.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS histories (
	page_id     TEXT PRIMARY KEY,
	body        TEXT NOT NULL,
	attempts    INTEGER NOT NULL DEFAULT 0,
	last_status TEXT NOT NULL DEFAULT '',
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS histories_updated_at ON histories (updated_at);
`

// Store persists page histories in SQLite. The full history is kept as JSON;
// attempt count and last status are denormalized for listing queries.
type Store struct {
	sqlDB *sql.DB
}

var _ ports.HistoryStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the history of a page.
func (s *Store) Save(ctx context.Context, pageID string, history *domain.History) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(pageID) == "" {
		return fmt.Errorf("page id is required")
	}
	body, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	lastStatus := ""
	if last, ok := history.Last(); ok {
		lastStatus = string(last.Outcome.Status)
	}
	updatedAt := history.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO histories (page_id, body, attempts, last_status, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET
		   body = excluded.body,
		   attempts = excluded.attempts,
		   last_status = excluded.last_status,
		   updated_at = excluded.updated_at`,
		pageID, string(body), len(history.Attempts), lastStatus, toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save history %s: %w", pageID, err)
	}
	return nil
}

// Load reads the history of a page.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.History, error) {
	var body string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM histories WHERE page_id = ?`, pageID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", pageID, err)
	}

	var history domain.History
	if err := json.Unmarshal([]byte(body), &history); err != nil {
		return nil, fmt.Errorf("unmarshal history %s: %w", pageID, err)
	}
	return &history, nil
}

// Delete removes the history of a page.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM histories WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("delete history %s: %w", pageID, err)
	}
	return nil
}

// List returns page IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT page_id FROM histories ORDER BY updated_at DESC, page_id`)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Summary is one row of the history listing.
type Summary struct {
	PageID     string
	Attempts   int
	LastStatus domain.SubmissionStatus
	UpdatedAt  time.Time
}

// Summaries lists histories without decoding their bodies.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT page_id, attempts, last_status, updated_at FROM histories ORDER BY updated_at DESC, page_id`)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum    Summary
			status string
			millis int64
		)
		if err := rows.Scan(&sum.PageID, &sum.Attempts, &status, &millis); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.LastStatus = domain.SubmissionStatus(status)
		sum.UpdatedAt = time.UnixMilli(millis).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}
