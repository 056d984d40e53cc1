package config

import (
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/logger"
	"github.com/maxviazov/soccer-scout-service/internal/store"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Data     DataConfig          `mapstructure:"data"`
	LLM      LLMConfig           `mapstructure:"llm"`
	Query    QueryConfig         `mapstructure:"query"`
	Cache    CacheConfig         `mapstructure:"cache"`
	QueryLog QueryLogConfig      `mapstructure:"query_log"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Sqlite   SqliteConfig        `mapstructure:"sqlite"`
	Metrics  MetricsConfig       `mapstructure:"metrics"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig lists the statistical CSV sources, one per category.
type DataConfig struct {
	Sources []store.Source `mapstructure:"sources" validate:"required,min=1,dive"`
}

// LLMConfig is optional: an empty APIKey disables every model-backed path.
type LLMConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	Endpoint         string        `mapstructure:"endpoint"`
	ParseTimeout     time.Duration `mapstructure:"parse_timeout"`
	NarrativeTimeout time.Duration `mapstructure:"narrative_timeout"`
}

func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

type QueryConfig struct {
	MaxLength int           `mapstructure:"max_length" validate:"min=1"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Capacity int  `mapstructure:"capacity" validate:"min=0"`
}

// QueryLogConfig selects where processed queries are recorded.
type QueryLogConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres none"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns          int32 `mapstructure:"max_conns"`
	MinConns          int32 `mapstructure:"min_conns"`
	MaxConnLifetime   int   `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int   `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int   `mapstructure:"health_check_period"`
}

type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Runtime adds Go runtime and process collectors.
	Runtime bool `mapstructure:"runtime"`
}
