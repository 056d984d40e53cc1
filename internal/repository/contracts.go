package repository

import (
	"context"

	"github.com/maxviazov/soccer-scout-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueryLogRepository persists processed queries for auditing.
// Implementations must accept concurrent Record calls.
type QueryLogRepository interface {
	Pinger
	Record(ctx context.Context, e model.QueryLogEntry) error
	// Recent lists entries newest first.
	Recent(ctx context.Context, p Page) (PageResult[model.QueryLogEntry], error)
	Close() error
}
