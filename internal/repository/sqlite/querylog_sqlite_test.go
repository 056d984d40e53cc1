package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/repository/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQueryLog(t *testing.T) (repository.QueryLogRepository, func()) {
	path := filepath.Join(t.TempDir(), "nested", "query_log.db")
	repo, err := Open(context.Background(), path)
	require.NoError(t, err)
	return repo, func() { _ = repo.Close() }
}

func TestQueryLog_SqliteContract(t *testing.T) {
	contract.RunQueryLogContract(t, makeQueryLog)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query_log.db")
	ctx := context.Background()

	repo, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, model.QueryLogEntry{
		ID:        "persisted",
		Query:     "compare Saka and Foden",
		Kind:      model.KindComparison,
		Tier:      model.TierPattern,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Recent(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "persisted", res.Items[0].ID)
	assert.Equal(t, model.KindComparison, res.Items[0].Kind)
}
