package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/internal/store"
)

const standardCSV = `league,season,team,player,nation,pos,age,minutes,goals,assists,goals_per_90
ENG-Premier League,2425,Arsenal,Bukayo Saka,eng ENG,"FW,MF",23-150,2450,12,10,0.44
ENG-Premier League,2425,Man City,Phil Foden,eng ENG,"MF,FW",24-200,2100,7,3,0.30
ESP-La Liga,2425,Barcelona,Pedri,es ESP,MF,22-100,1900,4,6,0.19
`

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "standard.csv")
	require.NoError(t, os.WriteFile(path, []byte(standardCSV), 0o644))

	return &config.Config{
		Data:     config.DataConfig{Sources: []store.Source{{Name: "standard", Path: path}}},
		Query:    config.QueryConfig{MaxLength: 500, Timeout: 5 * time.Second},
		Cache:    config.CacheConfig{Enabled: true, Capacity: 10},
		QueryLog: config.QueryLogConfig{Driver: driver},
		Sqlite:   config.SqliteConfig{Path: filepath.Join(dir, "log", "query_log.db")},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(t, "sqlite"), zerolog.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Store)
	require.NotNil(t, a.Ready())
	assert.Equal(t, 3, a.Store.Len())

	out, err := a.Service.Query(ctx, "compare Saka vs Foden")
	require.NoError(t, err)
	assert.Equal(t, model.KindComparison, out.Request.Kind())
	assert.Equal(t, model.NarrativeTemplate, out.Narrative.Source)

	recent, err := a.Service.RecentQueries(ctx, repository.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, recent.Total)
	assert.Equal(t, "compare Saka vs Foden", recent.Items[0].Query)

	assert.Equal(t, "healthy", a.Service.Health(ctx).Status)
	assert.False(t, a.Service.Capabilities().LLMEnabled)
}

func TestBuild_MissingDataIsNotReady(t *testing.T) {
	cfg := testConfig(t, "none")
	cfg.Data.Sources = []store.Source{{Name: "standard", Path: filepath.Join(t.TempDir(), "nope.csv")}}

	a, err := Build(context.Background(), cfg, zerolog.New(io.Discard), WithoutMetrics())
	require.NoError(t, err)

	assert.Nil(t, a.Store)
	assert.Nil(t, a.Ready())
	assert.Nil(t, a.Metrics)

	_, err = a.Service.Query(context.Background(), "find young midfielders")
	assert.ErrorIs(t, err, service.ErrNotReady)
	assert.Equal(t, "unavailable", a.Service.Health(context.Background()).Status)
}

func TestBuild_UnreachablePostgresFallsBackToNop(t *testing.T) {
	cfg := testConfig(t, "postgres")
	cfg.Postgres = config.PostgresConfig{Host: "127.0.0.1", Port: 1, User: "scout", DBName: "scout", SSLMode: "disable"}

	a, err := Build(context.Background(), cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.IsType(t, repository.NopQueryLog{}, a.QueryLog)
}

func TestBuild_NilConfig(t *testing.T) {
	_, err := Build(context.Background(), nil, zerolog.Nop())
	assert.Error(t, err)
}
