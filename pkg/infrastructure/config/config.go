// Package config loads lotrecon configuration from YAML with LOTRECON_*
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for unusable settings
var ErrInvalidConfig = errors.New("invalid config")

// Source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config is the top-level application configuration
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SourceConfig selects where the three source row lists come from
type SourceConfig struct {
	Kind        string `yaml:"kind"`
	ScenarioDir string `yaml:"scenarioDir"`
	Production  string `yaml:"production"`
	Quality     string `yaml:"quality"`
	Shipping    string `yaml:"shipping"`
}

// Files resolves the three csv paths. Explicit paths win over the scenario directory.
func (s SourceConfig) Files() (production, quality, shipping string) {
	pick := func(explicit, name string) string {
		if explicit != "" || s.ScenarioDir == "" {
			return explicit
		}
		return filepath.Join(s.ScenarioDir, name)
	}
	return pick(s.Production, "production.csv"),
		pick(s.Quality, "quality.csv"),
		pick(s.Shipping, "shipping.csv")
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Persist         bool          `yaml:"persist"`
}

// DSN returns a lib/pq-compatible data source name
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds the report cache connection
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	ReportTTL time.Duration `yaml:"reportTTL"`
}

// KafkaConfig holds the flag review queue settings
type KafkaConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Brokers   []string `yaml:"brokers"`
	FlagTopic string   `yaml:"flagTopic"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig points at a node-exporter textfile; empty disables writing
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind: SourceCSV,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "lotrecon",
			User:            "lotrecon",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			ReportTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:   []string{"localhost:9092"},
			FlagTopic: "lot-flags",
		},
		Output: OutputConfig{
			Format: FormatText,
			Dir:    "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate rejects settings no run could use
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceCSV:
		production, quality, shipping := c.Source.Files()
		if production == "" || quality == "" || shipping == "" {
			return fmt.Errorf("%w: csv source needs a scenario directory or all three files", ErrInvalidConfig)
		}
	case SourcePostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("%w: postgres source needs host and database", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q (expected: csv or postgres)", ErrInvalidConfig, c.Source.Kind)
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatCSV:
	default:
		return fmt.Errorf("%w: unknown output format %q (expected: text, json, or csv)", ErrInvalidConfig, c.Output.Format)
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.FlagTopic == "") {
		return fmt.Errorf("%w: kafka needs brokers and a flag topic", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.ReportTTL <= 0 {
		return fmt.Errorf("%w: redis report TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides reads LOTRECON_* environment variables
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOTRECON_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("LOTRECON_SCENARIO_DIR"); v != "" {
		cfg.Source.ScenarioDir = v
	}
	if v := os.Getenv("LOTRECON_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("LOTRECON_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("LOTRECON_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("LOTRECON_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("LOTRECON_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("LOTRECON_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("LOTRECON_REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("LOTRECON_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LOTRECON_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LOTRECON_KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = enabled
		}
	}
	if v := os.Getenv("LOTRECON_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOTRECON_KAFKA_FLAG_TOPIC"); v != "" {
		cfg.Kafka.FlagTopic = v
	}
	if v := os.Getenv("LOTRECON_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("LOTRECON_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOTRECON_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOTRECON_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
}
