package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS query_log (
		id               TEXT PRIMARY KEY,
		query            TEXT NOT NULL,
		kind             TEXT NOT NULL,
		tier             TEXT NOT NULL,
		confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
		result_count     INTEGER NOT NULL DEFAULT 0,
		empty            BOOLEAN NOT NULL DEFAULT FALSE,
		cached           BOOLEAN NOT NULL DEFAULT FALSE,
		narrative_source TEXT NOT NULL DEFAULT '',
		duration_ms      BIGINT NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS query_log_created_at_idx ON query_log (created_at DESC)`,
}

type queryLogRepository struct{ pool *pgxpool.Pool }

// NewQueryLogRepository creates the query_log table when missing.
// The repository owns the pool and closes it on Close.
func NewQueryLogRepository(ctx context.Context, pool *pgxpool.Pool) (repository.QueryLogRepository, error) {
	if err := ensurePool(pool); err != nil {
		return nil, err
	}
	err := withinTx(ctx, pool, func(ctx context.Context) error {
		exec := getQ(ctx, pool)
		for _, stmt := range schema {
			if _, err := exec.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("migrate query_log: %w", err)
	}
	return &queryLogRepository{pool: pool}, nil
}

func (r *queryLogRepository) Record(ctx context.Context, e model.QueryLogEntry) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := getQ(ctx, r.pool).Exec(ctx,
		`INSERT INTO query_log
		 (id, query, kind, tier, confidence, result_count, empty, cached, narrative_source, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Query, string(e.Kind), string(e.Tier), e.Confidence, e.ResultCount,
		e.Empty, e.Cached, string(e.NarrativeSource), e.DurationMS, e.CreatedAt,
	)
	return repository.MapPgError(err)
}

func (r *queryLogRepository) Recent(ctx context.Context, p repository.Page) (repository.PageResult[model.QueryLogEntry], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, err
	}
	limit, offset := p.Window()
	db := getQ(ctx, r.pool)

	// A window count yields no rows past the last page, so count separately.
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM query_log`).Scan(&total); err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, repository.MapPgError(err)
	}

	rows, err := db.Query(ctx,
		`SELECT id, query, kind, tier, confidence, result_count, empty, cached,
		        narrative_source, duration_ms, created_at
		 FROM query_log
		 ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.QueryLogEntry]{Items: make([]model.QueryLogEntry, 0, limit), Total: total}
	for rows.Next() {
		var (
			e                  model.QueryLogEntry
			kind, tier, source string
		)
		if err := rows.Scan(&e.ID, &e.Query, &kind, &tier, &e.Confidence, &e.ResultCount,
			&e.Empty, &e.Cached, &source, &e.DurationMS, &e.CreatedAt); err != nil {
			return repository.PageResult[model.QueryLogEntry]{}, repository.MapPgError(err)
		}
		e.Kind, e.Tier, e.NarrativeSource = model.Kind(kind), model.Tier(tier), model.NarrativeSource(source)
		res.Items = append(res.Items, e)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.QueryLogEntry]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *queryLogRepository) Ping(ctx context.Context) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return r.pool.Ping(ctx)
}

func (r *queryLogRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}
