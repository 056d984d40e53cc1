package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"app.name":             "soccer-scout-service",
	"app.version":          "0.1.0",
	"app.env":              "prod",
	"app.port":             8080,
	"app.shutdown_timeout": 10 * time.Second,

	"llm.api_key":           "",
	"llm.model":             "gpt-4o-mini",
	"llm.endpoint":          "",
	"llm.parse_timeout":     10 * time.Second,
	"llm.narrative_timeout": 30 * time.Second,

	"query.max_length": 500,
	"query.timeout":    50 * time.Second,

	"cache.enabled":  true,
	"cache.capacity": 100,

	"query_log.driver": "sqlite",
	"sqlite.path":      "data/query_log.db",

	"postgres.host":                "localhost",
	"postgres.port":                5432,
	"postgres.user":                "",
	"postgres.password":            "",
	"postgres.db":                  "",
	"postgres.sslmode":             "disable",
	"postgres.max_conns":           5,
	"postgres.min_conns":           1,
	"postgres.max_conn_lifetime":   300,
	"postgres.max_conn_idle_time":  60,
	"postgres.health_check_period": 30,

	"metrics.enabled": true,
	"metrics.runtime": false,
}

// DefaultPath is used when APP_CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

// Path returns the config file location from APP_CONFIG_PATH.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("APP_CONFIG_PATH")); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path and overlays APP_* environment variables, e.g.
// APP_QUERY_TIMEOUT=20s or APP_POSTGRES_PASSWORD. The LLM key is also read
// from OPENAI_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.BindEnv("llm.api_key", "APP_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind llm key: %w", err)
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	// The logger section is validated by logger.New once its defaults apply.
	v := validator.New()
	for _, section := range []any{c.App, c.Data, c.Query, c.Cache, c.QueryLog} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("config validation error: %w", err)
		}
	}
	if c.QueryLog.Driver == "postgres" {
		var missing []string
		if c.Postgres.User == "" {
			missing = append(missing, "postgres.user")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "postgres.db")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config validation error: %w: %s", errMissing, strings.Join(missing, ", "))
		}
	}
	return nil
}

var errMissing = errors.New("required for the postgres query log")
