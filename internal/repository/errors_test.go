package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	plain := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "unique violation", in: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: ErrAlreadyExists},
		{name: "undefined table", in: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, want: ErrSchemaMissing},
		{name: "too many connections", in: &pgconn.PgError{Code: pgerrcode.TooManyConnections}, want: ErrUnavailable},
		{name: "other pg error passes through", in: &pgconn.PgError{Code: pgerrcode.SyntaxError}, want: nil},
		{name: "non pg error passes through", in: plain, want: plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPgError(tt.in)
			switch {
			case tt.in == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Same(t, tt.in, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		page               Page
		wantLimit, wantOff int
	}{
		{Page{}, defaultPageLimit, 0},
		{Page{Limit: 5, Offset: 10}, 5, 10},
		{Page{Limit: -1, Offset: -3}, defaultPageLimit, 0},
		{Page{Limit: 10_000}, maxPageLimit, 0},
	}
	for _, tt := range tests {
		limit, offset := tt.page.Window()
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOff, offset)
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{Host: "db", Port: 5432, User: "scout", Password: "p@ss word", DBName: "scout", SSLMode: "disable"})
	assert.Equal(t, "postgres://scout:p%40ss%20word@db:5432/scout?sslmode=disable", dsn)
}
