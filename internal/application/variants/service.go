package variants

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/database/redis"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// Service answers ad-hoc generation requests.  It is safe for concurrent
// use: engines are forked from a template and pooled.
type Service struct {
	opts         minorchanges.Options
	libs         LoadedLibraries
	template     *minorchanges.Engine
	pool         sync.Pool
	gen          *generator
	maxMolecules atomic.Int64
	concurrency  int
	logger       logging.Logger
}

// ServiceConfig bounds request handling.
type ServiceConfig struct {
	MaxMolecules int
	Concurrency  int
	Cache        redis.VariantCache
	Metrics      Metrics
}

// NewService builds the default engine from opts and libs.
func NewService(opts minorchanges.Options, libs LoadedLibraries, cfg ServiceConfig, logger logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	eng, err := minorchanges.NewEngine(opts, libs.Libraries, logger)
	if err != nil {
		return nil, err
	}
	eng.WithObserver(cfg.Metrics)

	s := &Service{
		opts:        opts,
		libs:        libs,
		template:    eng,
		concurrency: cfg.Concurrency,
		logger:      logger.Named("variant_service"),
	}
	s.maxMolecules.Store(int64(cfg.MaxMolecules))
	s.gen = &generator{
		fingerprint: Fingerprint(opts, libs.Digest),
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
		logger:      s.logger,
		now:         time.Now,
	}
	s.pool.New = func() any { return s.template.Fork() }
	return s, nil
}

// Fingerprint identifies the default engine configuration.
func (s *Service) Fingerprint() string { return s.gen.fingerprint }

// Rules lists every rule with its library requirement and default state.
func (s *Service) Rules() []variant.RuleInfo { return DescribeRules(s.opts) }

// DescribeRules lists every rule, marking those opts enables.
func DescribeRules(opts minorchanges.Options) []variant.RuleInfo {
	enabled := make(map[minorchanges.RuleID]bool, len(opts.Rules))
	for _, id := range opts.Rules {
		enabled[id] = true
	}
	ids := minorchanges.AllRuleIDs()
	out := make([]variant.RuleInfo, len(ids))
	for i, id := range ids {
		out[i] = variant.RuleInfo{
			ID:             int(id),
			Name:           id.String(),
			NeedsLibrary:   id.NeedsLibrary(),
			EnabledDefault: enabled[id],
		}
	}
	return out
}

// SetMaxMolecules changes the per-request molecule limit; 0 disables it.
func (s *Service) SetMaxMolecules(n int) { s.maxMolecules.Store(int64(n)) }

// Generate processes req.Molecules concurrently and returns the results in
// request order.  Per-molecule failures are reported in the result; only
// invalid requests fail the call.
func (s *Service) Generate(ctx context.Context, req variant.GenerateRequest) (*variant.GenerateResponse, error) {
	if len(req.Molecules) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one molecule is required")
	}
	if limit := int(s.maxMolecules.Load()); limit > 0 && len(req.Molecules) > limit {
		return nil, errors.Newf(errors.ErrCodeValidation, "too many molecules: %d > %d", len(req.Molecules), limit)
	}

	acquire, release, gen, err := s.engineFor(req)
	if err != nil {
		return nil, err
	}

	resp := &variant.GenerateResponse{RunID: common.NewID(), Results: make([]variant.MoleculeResult, len(req.Molecules))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, m := range req.Molecules {
		in := Input{Index: i, Line: i + 1, SMILES: m.SMILES, Name: m.Name}
		if in.Name == "" {
			in.Name = defaultName(i)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eng := acquire()
			defer release(eng)
			resp.Results[in.Index], _ = gen.generate(gctx, eng, resp.RunID, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	return resp, nil
}

// engineFor returns engine acquire/release functions and a generator for
// req.  Requests without overrides share the pooled default engine.
func (s *Service) engineFor(req variant.GenerateRequest) (func() *minorchanges.Engine, func(*minorchanges.Engine), *generator, error) {
	if len(req.Rules) == 0 && req.MaxVariants == nil {
		acquire := func() *minorchanges.Engine { return s.pool.Get().(*minorchanges.Engine) }
		release := func(e *minorchanges.Engine) { s.pool.Put(e) }
		return acquire, release, s.gen, nil
	}

	opts := s.opts
	if len(req.Rules) > 0 {
		rules, err := minorchanges.ParseRules(req.Rules)
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Rules = rules
	}
	if req.MaxVariants != nil {
		if *req.MaxVariants < 0 {
			return nil, nil, nil, errors.New(errors.ErrCodeValidation, "max_variants must not be negative")
		}
		opts.MaxVariants = *req.MaxVariants
	}
	eng, err := minorchanges.NewEngine(opts, s.libs.Libraries, s.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	eng.WithObserver(s.gen.metrics)
	gen := *s.gen
	gen.fingerprint = Fingerprint(opts, s.libs.Digest)

	var mu sync.Mutex
	free := []*minorchanges.Engine{eng}
	acquire := func() *minorchanges.Engine {
		mu.Lock()
		defer mu.Unlock()
		if n := len(free); n > 0 {
			e := free[n-1]
			free = free[:n-1]
			return e
		}
		return eng.Fork()
	}
	release := func(e *minorchanges.Engine) {
		mu.Lock()
		free = append(free, e)
		mu.Unlock()
	}
	return acquire, release, &gen, nil
}

//Personal.AI order the ending
