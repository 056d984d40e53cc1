// Package sqlite keeps the query log in a local SQLite file. It is the
// default driver and needs no external service.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	_ "modernc.org/sqlite"
)

const createQueryLogTableSQL = `
CREATE TABLE IF NOT EXISTS query_log (
	id               TEXT PRIMARY KEY,
	query            TEXT NOT NULL,
	kind             TEXT NOT NULL,
	tier             TEXT NOT NULL,
	confidence       REAL NOT NULL DEFAULT 0,
	result_count     INTEGER NOT NULL DEFAULT 0,
	empty            INTEGER NOT NULL DEFAULT 0,
	cached           INTEGER NOT NULL DEFAULT 0,
	narrative_source TEXT NOT NULL DEFAULT '',
	duration_ms      INTEGER NOT NULL DEFAULT 0,
	created_at_utc   TEXT NOT NULL
)`

const createQueryLogIndexSQL = `CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at_utc DESC)`

const insertQueryLogSQL = `
INSERT INTO query_log (
	id, query, kind, tier, confidence, result_count, empty, cached,
	narrative_source, duration_ms, created_at_utc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRecentSQL = `
SELECT id, query, kind, tier, confidence, result_count, empty, cached,
       narrative_source, duration_ms, created_at_utc
FROM query_log
ORDER BY created_at_utc DESC, id
LIMIT ? OFFSET ?`

// createdAtLayout is fixed width so text order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type queryLogRepository struct{ db *sql.DB }

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (repository.QueryLogRepository, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range []string{createQueryLogTableSQL, createQueryLogIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create query_log schema: %w", err)
		}
	}
	return &queryLogRepository{db: db}, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

func (r *queryLogRepository) Record(ctx context.Context, e model.QueryLogEntry) error {
	_, err := r.db.ExecContext(ctx, insertQueryLogSQL,
		e.ID, e.Query, string(e.Kind), string(e.Tier), e.Confidence, e.ResultCount,
		boolToInt(e.Empty), boolToInt(e.Cached), string(e.NarrativeSource), e.DurationMS,
		e.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

func (r *queryLogRepository) Recent(ctx context.Context, p repository.Page) (repository.PageResult[model.QueryLogEntry], error) {
	limit, offset := p.Window()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_log`).Scan(&total); err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, fmt.Errorf("count query log: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectRecentSQL, limit, offset)
	if err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, fmt.Errorf("select query log: %w", err)
	}
	defer rows.Close()

	res := repository.PageResult[model.QueryLogEntry]{Items: make([]model.QueryLogEntry, 0, limit), Total: total}
	for rows.Next() {
		var (
			e                      model.QueryLogEntry
			kind, tier, source, ts string
			empty, cached          int
		)
		if err := rows.Scan(&e.ID, &e.Query, &kind, &tier, &e.Confidence, &e.ResultCount,
			&empty, &cached, &source, &e.DurationMS, &ts); err != nil {
			return repository.PageResult[model.QueryLogEntry]{}, fmt.Errorf("scan query log: %w", err)
		}
		e.Kind, e.Tier, e.NarrativeSource = model.Kind(kind), model.Tier(tier), model.NarrativeSource(source)
		e.Empty, e.Cached = empty != 0, cached != 0
		if e.CreatedAt, err = time.Parse(createdAtLayout, ts); err != nil {
			return repository.PageResult[model.QueryLogEntry]{}, fmt.Errorf("parse created_at %q: %w", ts, err)
		}
		res.Items = append(res.Items, e)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, fmt.Errorf("iterate query log: %w", err)
	}
	return res, nil
}

func (r *queryLogRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *queryLogRepository) Close() error { return r.db.Close() }

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
