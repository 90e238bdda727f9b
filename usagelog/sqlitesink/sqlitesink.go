// Package sqlitesink persists usage entries to a local SQLite database,
// the append-only log sink that survives the process. It is both a
// usagelog.Sink and a query surface (Stats, Recent, Top) for tooling that
// aggregates usage across processes, such as the CLI stats command.
package sqlitesink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/skosovsky/unversion/usagelog"
)

var _ usagelog.Sink = (*Sink)(nil)

// timeLayout is a fixed-width RFC 3339 variant. Timestamps are stored as
// text and ordered lexicographically by SQLite, so the fractional part must
// not be trimmed: with variable-width fractions "…00Z" sorts after "…00.5Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Sink stores entries in a SQLite usage table, append-only.
type Sink struct {
	db *sql.DB
}

// DefaultPath returns the conventional database location, ~/.unversion/usage.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".unversion", "usage.db")
	}
	return filepath.Join(home, ".unversion", "usage.db")
}

// Open creates or opens the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlitesink: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: open database: %w", err)
	}
	s := &Sink{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitesink: migrate: %w", err)
	}
	return s, nil
}

// OpenDB wraps an existing connection, creating the schema as needed.
func OpenDB(db *sql.DB) (*Sink, error) {
	s := &Sink{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlitesink: migrate: %w", err)
	}
	return s, nil
}

func (s *Sink) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS usage (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			prompt_key TEXT NOT NULL,
			stage TEXT,
			model TEXT,
			session_id TEXT,
			metadata TEXT,
			success INTEGER NOT NULL DEFAULT 1,
			latency_ms REAL NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_usage_key ON usage(prompt_key);
		CREATE INDEX IF NOT EXISTS idx_usage_stage ON usage(stage);
		CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage(timestamp);
	`)
	return err
}

// Close closes the database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Write appends one entry.
func (s *Sink) Write(ctx context.Context, e usagelog.Entry) error {
	var meta []byte
	if len(e.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(e.Metadata); err != nil {
			meta = nil
		}
	}
	success := 0
	if e.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage (id, timestamp, prompt_key, stage, model, session_id, metadata, success, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Timestamp.UTC().Format(timeLayout), e.Key, e.Stage, e.Model, e.Session, string(meta), success, e.LatencyMS)
	if err != nil {
		return fmt.Errorf("sqlitesink: insert: %w", err)
	}
	return nil
}

// Stats aggregates persisted entries for key. A key with no entries yields
// zeroed stats, matching usagelog.Log.Stats.
func (s *Sink) Stats(ctx context.Context, key string) (usagelog.Stats, error) {
	st := usagelog.Stats{Key: key, ByStage: make(map[string]int)}
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(AVG(CASE WHEN latency_ms > 0 THEN latency_ms END), 0),
		       COALESCE(SUM(CASE WHEN latency_ms > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(MAX(timestamp), '')
		FROM usage WHERE prompt_key = ?
	`, key)
	var lastUsed string
	if err := row.Scan(&st.TotalUsage, &st.SuccessCount, &st.AvgLatencyMS, &st.LatencySamples, &lastUsed); err != nil {
		return usagelog.Stats{}, fmt.Errorf("sqlitesink: stats: %w", err)
	}
	if lastUsed != "" {
		if ts, err := time.Parse(timeLayout, lastUsed); err == nil {
			st.LastUsed = ts
		}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, COUNT(*) FROM usage
		WHERE prompt_key = ? AND stage <> ''
		GROUP BY stage
	`, key)
	if err != nil {
		return usagelog.Stats{}, fmt.Errorf("sqlitesink: stats by stage: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return usagelog.Stats{}, fmt.Errorf("sqlitesink: stats by stage: %w", err)
		}
		st.ByStage[stage] = count
	}
	if err := rows.Err(); err != nil {
		return usagelog.Stats{}, fmt.Errorf("sqlitesink: stats by stage: %w", err)
	}
	return st, nil
}

// Recent returns up to limit persisted entries, most recent first.
func (s *Sink) Recent(ctx context.Context, limit int) ([]usagelog.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, prompt_key, stage, model, session_id, metadata, success, latency_ms
		FROM usage
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []usagelog.Entry
	for rows.Next() {
		var e usagelog.Entry
		var ts, meta string
		var success int
		if err := rows.Scan(&e.ID, &ts, &e.Key, &e.Stage, &e.Model, &e.Session, &meta, &success, &e.LatencyMS); err != nil {
			return nil, fmt.Errorf("sqlitesink: recent: %w", err)
		}
		if parsed, err := time.Parse(timeLayout, ts); err == nil {
			e.Timestamp = parsed
		}
		e.Success = success == 1
		if meta != "" {
			_ = json.Unmarshal([]byte(meta), &e.Metadata)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitesink: recent: %w", err)
	}
	return out, nil
}

// Top returns up to limit keys by persisted usage count, descending,
// ties broken by key ascending.
func (s *Sink) Top(ctx context.Context, limit int) ([]usagelog.KeyCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT prompt_key, COUNT(*) AS usage_count
		FROM usage
		GROUP BY prompt_key
		ORDER BY usage_count DESC, prompt_key ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: top: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []usagelog.KeyCount
	for rows.Next() {
		var kc usagelog.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, fmt.Errorf("sqlitesink: top: %w", err)
		}
		out = append(out, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitesink: top: %w", err)
	}
	return out, nil
}
