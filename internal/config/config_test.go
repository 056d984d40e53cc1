package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

const baseYAML = `
app:
  name: soccer-scout-service
  env: test
  port: 18080

logger:
  level: info
  format: json

data:
  sources:
    - name: standard
      path: data/standard.csv
    - name: shooting
      path: data/shooting.csv
`

func TestConfigLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("APP_LLM_API_KEY", "")

	cfg, err := Load(writeTempConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Len(t, cfg.Data.Sources, 2)
	assert.Equal(t, "shooting", cfg.Data.Sources[1].Name)
	assert.Equal(t, 500, cfg.Query.MaxLength)
	assert.Equal(t, 50*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 10*time.Second, cfg.LLM.ParseTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.Equal(t, "sqlite", cfg.QueryLog.Driver)
	assert.False(t, cfg.LLM.Enabled())
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	yaml := baseYAML + `
query_log:
  driver: postgres

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1
`
	path := writeTempConfig(t, yaml)

	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")
	t.Setenv("APP_QUERY_TIMEOUT", "20s")
	t.Setenv("APP_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
	assert.Equal(t, 20*time.Second, cfg.Query.Timeout)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Enabled())
}

func TestConfigLoad_PostgresMissingCredentialsFails(t *testing.T) {
	yaml := baseYAML + `
query_log:
  driver: postgres
`
	path := writeTempConfig(t, yaml)

	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_DB", "")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissing))
	assert.Contains(t, err.Error(), "postgres.user")
	assert.Contains(t, err.Error(), "postgres.db")
}

func TestConfigLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no sources",
			yaml: `
app:
  name: soccer-scout-service
  env: test
`,
		},
		{
			name: "source without path",
			yaml: `
app:
  name: soccer-scout-service
  env: test
data:
  sources:
    - name: standard
`,
		},
		{
			name: "unknown query log driver",
			yaml: baseYAML + `
query_log:
  driver: mongo
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("APP_CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv("APP_CONFIG_PATH", "/etc/scout/config.yaml")
	assert.Equal(t, "/etc/scout/config.yaml", Path())
}
