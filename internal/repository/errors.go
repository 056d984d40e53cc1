package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors I prefer to bubble up from repository implementations.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrSchemaMissing = errors.New("query log schema missing")
	ErrUnavailable   = errors.New("query log unavailable")
)

// MapPgError translates the Postgres error codes the query log cares about.
// Everything else passes through untouched.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.UndefinedTable:
			return ErrSchemaMissing
		case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
			return errors.Join(ErrUnavailable, err)
		}
	}
	return err
}
