package cli

import (
	"context"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/minorchanges/internal/application/variants"
	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/database/postgres"
	"github.com/turtacn/minorchanges/internal/infrastructure/database/redis"
	"github.com/turtacn/minorchanges/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/minorchanges/internal/infrastructure/storage/minio"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// app wires infrastructure for one command invocation and releases it in
// reverse order on Close.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	closers []func()

	minio    *minio.Client
	redis    *redis.Client
	pool     *pgxpool.Pool
	producer *kafka.Producer
}

func newApp(cc *CLIContext) *app {
	return &app{cfg: cc.Config, logger: cc.Logger}
}

func (a *app) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close releases everything opened so far.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// engineInputs builds the engine options and loads the libraries, reaching
// for object storage only when a library lives there.
func (a *app) engineInputs(ctx context.Context) (minorchanges.Options, variants.LoadedLibraries, error) {
	opts, err := variants.BuildOptions(a.cfg.Engine)
	if err != nil {
		return opts, variants.LoadedLibraries{}, err
	}

	var remote variants.ObjectOpener
	libs := a.cfg.Libraries
	if minio.IsURI(libs.Fragments) || minio.IsURI(libs.BivalentFragments) || minio.IsURI(libs.Reactions) {
		client, err := a.objectStore(ctx)
		if err != nil {
			return opts, variants.LoadedLibraries{}, err
		}
		remote = minio.NewLibraryRepository(client, a.logger)
	}

	loaded, err := variants.NewLibraryLoader(remote, a.logger).Load(ctx, libs, a.cfg.Engine.MinSupport)
	if err != nil {
		return opts, variants.LoadedLibraries{}, err
	}
	return opts, loaded, nil
}

func (a *app) objectStore(ctx context.Context) (*minio.Client, error) {
	if a.minio != nil {
		return a.minio, nil
	}
	client, err := minio.NewClient(ctx, a.cfg.MinIO, a.logger)
	if err != nil {
		return nil, err
	}
	a.minio = client
	return client, nil
}

// metrics returns the variant metrics and, when enabled, the collector whose
// registry backs them.
func (a *app) metrics() (*prometheus.VariantMetrics, prometheus.MetricsCollector, error) {
	if !a.cfg.Metrics.Enabled {
		return prometheus.NewNoopVariantMetrics(), nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            a.cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return prometheus.NewVariantMetrics(collector), collector, nil
}

// cache connects to Redis when enabled.  A nil cache means caching is off.
func (a *app) cache(ctx context.Context, recorder redis.AccessRecorder) (redis.VariantCache, error) {
	rc := a.cfg.Redis
	if !rc.Enabled {
		return nil, nil
	}
	client, err := redis.NewClient(ctx, redis.Config{
		Addr:         rc.Addr,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.onClose(func() { _ = client.Close() })

	opts := []redis.CacheOption{redis.WithL1(a.cfg.Server.L1CacheSize)}
	if rc.KeyPrefix != "" {
		opts = append(opts, redis.WithPrefix(rc.KeyPrefix))
	}
	if rc.DefaultTTL > 0 {
		opts = append(opts, redis.WithTTL(rc.DefaultTTL))
	}
	if recorder != nil {
		opts = append(opts, redis.WithRecorder(recorder))
	}
	return redis.NewVariantCache(client, a.logger, opts...), nil
}

// store opens the PostgreSQL pool, applying migrations first when
// auto_migrate is set.
func (a *app) store(ctx context.Context) (postgres.VariantStore, error) {
	if a.pool != nil {
		return postgres.NewVariantStore(a.pool, a.logger), nil
	}
	if a.cfg.Postgres.AutoMigrate {
		if err := a.migrate(ctx); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewConnectionPool(ctx, a.cfg.Postgres, a.logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.onClose(func() { postgres.Close(pool) })
	return postgres.NewVariantStore(pool, a.logger), nil
}

// migrate applies the schema migrations.  With Redis available, replicas
// starting together take turns.
func (a *app) migrate(ctx context.Context) error {
	run := func() error {
		return postgres.RunMigrations(postgres.ConnString(a.cfg.Postgres), a.logger)
	}
	if a.redis == nil {
		return run()
	}
	return redis.WithLock(ctx, redis.NewMutex(a.redis, a.cfg.Redis.KeyPrefix, "migrations", a.logger), run)
}

// kafkaProducer returns the shared producer, creating it on first use.
func (a *app) kafkaProducer() (*kafka.Producer, error) {
	if a.producer != nil {
		return a.producer, nil
	}
	kc := a.cfg.Kafka
	p, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      kc.Brokers,
		Acks:         acksName(kc.RequiredAcks),
		MaxAttempts:  kc.MaxAttempts,
		BatchSize:    kc.BatchSize,
		BatchTimeout: kc.BatchTimeout,
		Compression:  kc.Compression,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.producer = p
	a.onClose(func() { _ = p.Close() })
	return p, nil
}

// acksName maps the numeric required_acks setting to the producer's names.
func acksName(n int) string {
	switch n {
	case 0:
		return "none"
	case 1:
		return "one"
	default:
		return "all"
	}
}

// sinks builds the configured output sinks.  stdout variants go to w.
func (a *app) sinks(ctx context.Context, w io.Writer) ([]variants.Sink, error) {
	out := a.cfg.Output
	names := out.Sinks
	if len(names) == 0 {
		names = []string{"stdout"}
	}
	sinks := make([]variants.Sink, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "stdout":
			s, err := variants.NewStreamSink(w, out.Format, out.WriteParent)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "postgres":
			st, err := a.store(ctx)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, variants.NewStoreSink(st))
		case "kafka":
			p, err := a.kafkaProducer()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, variants.NewPublisherSink(kafka.NewVariantPublisher(p, a.cfg.Kafka.Topic, a.logger)))
		default:
			return nil, errors.New(errors.CodeConfigInvalid, "unknown output sink").WithDetail(name)
		}
	}
	return sinks, nil
}

//Personal.AI order the ending
