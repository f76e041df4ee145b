package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/application/variants"
	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	httpiface "github.com/turtacn/minorchanges/internal/interfaces/http"
	"github.com/turtacn/minorchanges/internal/interfaces/http/handlers"
	"github.com/turtacn/minorchanges/internal/interfaces/http/middleware"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve variant generation over HTTP",
		Long: "Starts the HTTP API: POST /v1/variants generates variants for the\n" +
			"molecules in the request body, GET /v1/rules lists the rules and\n" +
			"GET /v1/runs/{id}/variants reads stored runs when the postgres sink is\n" +
			"configured.  Stops gracefully on SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cc.Config.Server.Port = port
			}
			return runServe(cmd.Context(), cc)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func runServe(ctx context.Context, cc *CLIContext) error {
	cfg := cc.Config
	logger := cc.Logger
	a := newApp(cc)
	defer a.Close()

	opts, libs, err := a.engineInputs(ctx)
	if err != nil {
		return err
	}
	metrics, collector, err := a.metrics()
	if err != nil {
		return err
	}
	cache, err := a.cache(ctx, metrics)
	if err != nil {
		return err
	}

	svc, err := variants.NewService(opts, libs, variants.ServiceConfig{
		MaxMolecules: cfg.Server.MaxMolecules,
		Concurrency:  cfg.Worker.Concurrency,
		Cache:        cache,
		Metrics:      metrics,
	}, logger)
	if err != nil {
		return err
	}

	var runs handlers.RunLister
	if cfg.Output.HasSink("postgres") {
		store, err := a.store(ctx)
		if err != nil {
			return err
		}
		runs = store
	}

	rc := httpiface.RouterConfig{
		Mode:           cfg.Server.Mode,
		VariantHandler: handlers.NewVariantHandler(svc, runs, logger),
		HealthHandler:  handlers.NewHealthHandler(Version, a.healthCheckers()...),
		Logger:         logger,
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		HTTPRecorder:   metrics,
		MaxBodySize:    cfg.Server.MaxBodySize,
	}
	if collector != nil {
		rc.MetricsHandler = collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	var limiter *middleware.TokenBucketLimiter
	if cfg.Server.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimitRPS
		rl.BurstSize = cfg.Server.RateLimitBurst
		limiter = middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.CleanupInterval)
		defer limiter.Stop()
		rc.RateLimiter = limiter
		rc.RateLimit = rl
	}

	if cc.ConfigPath != "" {
		live := &liveSettings{logger: logger, levelPinned: cc.LevelPinned, svc: svc, limiter: limiter}
		if err := config.Watch(cc.ConfigPath, live.apply, func(err error) {
			logger.Warn("config reload rejected", logging.String("path", cc.ConfigPath), logging.Err(err))
		}); err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	srv := httpiface.NewServer(cfg.Server, httpiface.NewRouter(rc), logger)
	logger.Info("serving variants",
		logging.String("addr", srv.Addr()),
		logging.String("fingerprint", svc.Fingerprint()),
		logging.Int("rules", len(opts.Rules)))
	return srv.ListenAndServe(ctx)
}

// liveSettings applies the settings of a reloaded config file to a running
// server: log level, request molecule limit and rate limits.  Everything else
// needs a restart.
type liveSettings struct {
	logger      logging.Logger
	levelPinned bool
	svc         interface{ SetMaxMolecules(n int) }
	limiter     *middleware.TokenBucketLimiter
}

func (s *liveSettings) apply(cfg *config.Config) {
	if !s.levelPinned {
		logging.SetLevel(s.logger, cfg.Log.Level)
	}
	s.svc.SetMaxMolecules(cfg.Server.MaxMolecules)
	switch {
	case s.limiter != nil && cfg.Server.RateLimitRPS > 0:
		s.limiter.SetRate(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	case (s.limiter != nil) != (cfg.Server.RateLimitRPS > 0):
		s.logger.Warn("enabling or disabling rate limiting needs a restart")
	}
	s.logger.Info("configuration reloaded",
		logging.String("log_level", cfg.Log.Level),
		logging.Int("max_molecules", cfg.Server.MaxMolecules),
		logging.Float64("rate_limit_rps", cfg.Server.RateLimitRPS))
}

// healthCheckers reports on every backing service opened so far.
func (a *app) healthCheckers() []handlers.HealthChecker {
	var out []handlers.HealthChecker
	if a.redis != nil {
		out = append(out, handlers.CheckFunc{Label: "redis", Fn: a.redis.Ping})
	}
	if a.pool != nil {
		out = append(out, handlers.CheckFunc{Label: "postgres", Fn: a.pool.Ping})
	}
	if a.minio != nil {
		out = append(out, handlers.CheckFunc{Label: a.minio.Name(), Fn: a.minio.HealthCheck})
	}
	return out
}

//Personal.AI order the ending
