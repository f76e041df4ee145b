// Package config defines all configuration structures for the minorchanges
// variant engine.  No I/O or parsing logic lives here, only plain data types
// and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// EngineConfig selects transformations and preprocessing.
type EngineConfig struct {
	// Rules lists rule names; "all" enables every rule.
	Rules                   []string `mapstructure:"rules"`
	MaxVariants             int      `mapstructure:"max_variants"`
	MaxFragmentAtoms        int      `mapstructure:"max_fragment_atoms"`
	MinSupport              int      `mapstructure:"min_support"`
	AtomTyping              string   `mapstructure:"atom_typing"` // "element" | "ring"
	OnlyProcessQueries      []string `mapstructure:"only_process_queries"`
	ReduceToLargestFragment bool     `mapstructure:"reduce_to_largest_fragment"`
	RemoveIsotopes          bool     `mapstructure:"remove_isotopes"`
	Neutralise              bool     `mapstructure:"neutralise"`
	// ElementTransformations entries look like "I=Cl".
	ElementTransformations []string `mapstructure:"element_transformations"`
}

// LibrariesConfig locates the fragment and reaction libraries.  A value
// starting with s3:// is fetched from object storage.
type LibrariesConfig struct {
	Fragments         string `mapstructure:"fragments"`
	BivalentFragments string `mapstructure:"bivalent_fragments"`
	Reactions         string `mapstructure:"reactions"`
}

// WorkerConfig holds the molecule fan-out parameters.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	QueueDepth  int `mapstructure:"queue_depth"`
}

// OutputConfig controls where variants go.
type OutputConfig struct {
	Format      string   `mapstructure:"format"` // "smiles" | "json"
	WriteParent bool     `mapstructure:"write_parent"`
	Sinks       []string `mapstructure:"sinks"` // "stdout", "postgres", "kafka"
}

// HasSink reports whether name is among the configured sinks.
func (o OutputConfig) HasSink(name string) bool {
	for _, s := range o.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxMolecules bounds the molecules accepted in one request.
	MaxMolecules int `mapstructure:"max_molecules"`
	// L1CacheSize is the in-process LRU size in front of Redis.
	L1CacheSize int `mapstructure:"l1_cache_size"`
	// RateLimitRPS is the per-client request rate on /v1; 0 disables it.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the variant
// store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters for the variant cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the variant publisher parameters.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
	// InputTopic, GroupID and DeadLetterTopic are used by the worker.
	InputTopic      string `mapstructure:"input_topic"`
	GroupID         string `mapstructure:"group_id"`
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters used to
// fetch libraries.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Engine    EngineConfig      `mapstructure:"engine"`
	Libraries LibrariesConfig   `mapstructure:"libraries"`
	Worker    WorkerConfig      `mapstructure:"worker"`
	Output    OutputConfig      `mapstructure:"output"`
	Log       logging.LogConfig `mapstructure:"log"`
	Server    ServerConfig      `mapstructure:"server"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Postgres  DatabaseConfig    `mapstructure:"postgres"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	MinIO     MinIOConfig       `mapstructure:"minio"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal.  Rule names and library contents are checked later when the engine
// is built.
func (c *Config) Validate() error {
	// Engine
	if c.Engine.MaxVariants < 0 {
		return fmt.Errorf("config: engine.max_variants must be ≥ 0, got %d", c.Engine.MaxVariants)
	}
	if c.Engine.MaxFragmentAtoms < 1 {
		return fmt.Errorf("config: engine.max_fragment_atoms must be ≥ 1, got %d", c.Engine.MaxFragmentAtoms)
	}
	if c.Engine.MinSupport < 0 {
		return fmt.Errorf("config: engine.min_support must be ≥ 0, got %d", c.Engine.MinSupport)
	}
	switch c.Engine.AtomTyping {
	case "element", "ring":
	default:
		return fmt.Errorf("config: engine.atom_typing %q is invalid; expected element|ring", c.Engine.AtomTyping)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Output
	switch c.Output.Format {
	case "smiles", "json":
	default:
		return fmt.Errorf("config: output.format %q is invalid; expected smiles|json", c.Output.Format)
	}
	for _, s := range c.Output.Sinks {
		switch strings.ToLower(s) {
		case "stdout", "postgres", "kafka":
		default:
			return fmt.Errorf("config: output.sinks entry %q is invalid; expected stdout|postgres|kafka", s)
		}
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Postgres, only when used.
	if c.Output.HasSink("postgres") {
		if c.Postgres.Host == "" {
			return fmt.Errorf("config: postgres.host is required for the postgres sink")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("config: postgres.user is required for the postgres sink")
		}
		if c.Postgres.DBName == "" {
			return fmt.Errorf("config: postgres.db_name is required for the postgres sink")
		}
	}

	// Kafka, only when used.
	if c.Output.HasSink("kafka") {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required for the kafka sink")
		}
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}

	// MinIO, only when a library lives in object storage.
	for _, p := range []string{c.Libraries.Fragments, c.Libraries.BivalentFragments, c.Libraries.Reactions} {
		if strings.HasPrefix(p, "s3://") && c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for library %q", p)
		}
	}

	// Log
	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
