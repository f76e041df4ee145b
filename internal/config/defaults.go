package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultMaxVariants      = 0
	DefaultMaxFragmentAtoms = 4
	DefaultMinSupport       = 1
	DefaultAtomTyping       = "element"

	DefaultWorkerConcurrency = 4
	DefaultWorkerQueueDepth  = 64

	DefaultOutputFormat = "smiles"
	DefaultOutputSink   = "stdout"

	DefaultServerPort         = 8080
	DefaultServerMode         = "release"
	DefaultServerMaxMolecules = 100
	DefaultL1CacheSize        = 1024

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "minorchanges"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "minorchanges:"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "minorchanges.variants"
	DefaultKafkaInput  = "minorchanges.molecules"
	DefaultKafkaGroup  = "minorchanges-workers"

	DefaultMetricsNamespace = "minorchanges"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// registerDefaults seeds v with every default.  Registering keys is also what
// lets AutomaticEnv resolve MINORCHANGES_* variables during Unmarshal, and it
// is the only place boolean defaults can be expressed.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("engine.rules", []string{})
	v.SetDefault("engine.max_variants", DefaultMaxVariants)
	v.SetDefault("engine.max_fragment_atoms", DefaultMaxFragmentAtoms)
	v.SetDefault("engine.min_support", DefaultMinSupport)
	v.SetDefault("engine.atom_typing", DefaultAtomTyping)
	v.SetDefault("engine.only_process_queries", []string{})
	v.SetDefault("engine.reduce_to_largest_fragment", true)
	v.SetDefault("engine.remove_isotopes", true)
	v.SetDefault("engine.neutralise", false)
	v.SetDefault("engine.element_transformations", []string{})

	v.SetDefault("libraries.fragments", "")
	v.SetDefault("libraries.bivalent_fragments", "")
	v.SetDefault("libraries.reactions", "")

	v.SetDefault("worker.concurrency", DefaultWorkerConcurrency)
	v.SetDefault("worker.queue_depth", DefaultWorkerQueueDepth)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.write_parent", false)
	v.SetDefault("output.sinks", []string{DefaultOutputSink})

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_body_size", int64(4<<20))
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_molecules", DefaultServerMaxMolecules)
	v.SetDefault("server.l1_cache_size", DefaultL1CacheSize)
	v.SetDefault("server.rate_limit_rps", 0.0)
	v.SetDefault("server.rate_limit_burst", 20)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.default_ttl", 24*time.Hour)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("postgres.host", DefaultDBHost)
	v.SetDefault("postgres.port", DefaultDBPort)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", DefaultDBName)
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", DefaultDBMaxConns)
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.topic", DefaultKafkaTopic)
	v.SetDefault("kafka.input_topic", DefaultKafkaInput)
	v.SetDefault("kafka.group_id", DefaultKafkaGroup)
	v.SetDefault("kafka.dead_letter_topic", "")
	v.SetDefault("kafka.max_retries", 3)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// already set are left unchanged so that explicit configuration always wins.
// Booleans cannot be told apart from "unset" and are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.MaxFragmentAtoms == 0 {
		cfg.Engine.MaxFragmentAtoms = DefaultMaxFragmentAtoms
	}
	if cfg.Engine.MinSupport == 0 {
		cfg.Engine.MinSupport = DefaultMinSupport
	}
	if cfg.Engine.AtomTyping == "" {
		cfg.Engine.AtomTyping = DefaultAtomTyping
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.QueueDepth == 0 {
		cfg.Worker.QueueDepth = DefaultWorkerQueueDepth
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if len(cfg.Output.Sinks) == 0 {
		cfg.Output.Sinks = []string{DefaultOutputSink}
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.MaxMolecules == 0 {
		cfg.Server.MaxMolecules = DefaultServerMaxMolecules
	}
	if cfg.Server.L1CacheSize == 0 {
		cfg.Server.L1CacheSize = DefaultL1CacheSize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultDBHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultDBPort
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultDBName
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultDBMaxConns
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.InputTopic == "" {
		cfg.Kafka.InputTopic = DefaultKafkaInput
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroup
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
