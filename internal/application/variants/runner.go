package variants

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/database/redis"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// SinkErrorRecorder is told which sink failed.
type SinkErrorRecorder interface {
	RecordSinkError(sink string)
}

// Runner fans a molecule stream out over a fixed set of workers, each with
// its own forked engine, and writes results to its sinks in input order.
type Runner struct {
	engine      *minorchanges.Engine
	fingerprint string
	sinks       []Sink
	cache       redis.VariantCache
	metrics     Metrics
	sinkErrors  SinkErrorRecorder
	concurrency int
	queueDepth  int
	logger      logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSinks sets the result sinks.
func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

// WithCache consults c before running the engine.
func WithCache(c redis.VariantCache) RunnerOption {
	return func(r *Runner) { r.cache = c }
}

// WithMetrics reports engine and molecule events to m.  When m also
// implements SinkErrorRecorder, sink failures are reported too.
func WithMetrics(m Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
		if rec, ok := m.(SinkErrorRecorder); ok {
			r.sinkErrors = rec
		}
	}
}

// WithConcurrency sets the worker count and the depth of the work queue.
func WithConcurrency(workers, queueDepth int) RunnerOption {
	return func(r *Runner) {
		if workers > 0 {
			r.concurrency = workers
		}
		if queueDepth > 0 {
			r.queueDepth = queueDepth
		}
	}
}

// NewRunner returns a Runner around engine.  engine is used only as the
// template for per-worker forks.
func NewRunner(engine *minorchanges.Engine, fingerprint string, logger logging.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &Runner{
		engine:      engine,
		fingerprint: fingerprint,
		metrics:     noopMetrics{},
		concurrency: 1,
		queueDepth:  16,
		logger:      logger.Named("runner"),
	}
	for _, o := range opts {
		o(r)
	}
	r.engine.WithObserver(r.metrics)
	return r
}

// RunResult summarises a finished run.
type RunResult struct {
	RunID common.ID
	// Stats aggregates every worker engine.  Molecules served from the
	// cache or rejected by the parser never reach an engine.
	Stats             *minorchanges.RunStats
	MoleculesRead     int
	MoleculesWithHits int
	VariantsGenerated int
	ParseFailures     int
	ProcessFailures   int
	CacheHits         int
	Duration          time.Duration
}

// Report writes the engine report followed by the run-level counters.
func (r *RunResult) Report(w io.Writer) error {
	if err := r.Stats.Report(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run %s: %d molecules, %d with variants, %d variants, %d cache hits, %d unparseable, %d failed, %s\n",
		r.RunID, r.MoleculesRead, r.MoleculesWithHits, r.VariantsGenerated, r.CacheHits, r.ParseFailures,
		r.ProcessFailures, r.Duration.Round(time.Millisecond))
	return err
}

type outcome struct {
	index  int
	result variant.MoleculeResult
	kind   outcomeKind
}

// Run reads molecules from in until EOF and processes them.  Cancelling ctx
// stops feeding new molecules.  A sink error aborts the run.
func (r *Runner) Run(ctx context.Context, in io.Reader) (*RunResult, error) {
	start := time.Now()
	run := RunInfo{ID: common.NewID(), Fingerprint: r.fingerprint}
	for _, rule := range r.engine.Rules() {
		run.Rules = append(run.Rules, rule.Name())
	}
	for _, s := range r.sinks {
		if err := s.Begin(ctx, run); err != nil {
			r.recordSinkError(s)
			return nil, errors.Wrap(err, errors.CodeUnknown, "sink failed to start run").WithDetail(s.Name())
		}
	}

	gen := &generator{fingerprint: r.fingerprint, cache: r.cache, metrics: r.metrics, logger: r.logger, now: time.Now}
	res := &RunResult{RunID: run.ID, Stats: minorchanges.NewRunStats()}
	jobs := make(chan Input, r.queueDepth)
	results := make(chan outcome, r.queueDepth)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return ReadInputs(gctx, in, func(in Input) error {
			select {
			case jobs <- in:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	engines := make([]*minorchanges.Engine, r.concurrency)
	var workers sync.WaitGroup
	for i := range engines {
		eng := r.engine.Fork()
		engines[i] = eng
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for in := range jobs {
				mr, kind := gen.generate(gctx, eng, run.ID, in)
				select {
				case results <- outcome{index: in.Index, result: mr, kind: kind}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		pending := make(map[int]outcome)
		next := 0
		for o := range results {
			pending[o.index] = o
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := r.collect(gctx, res, p); err != nil {
					return err
				}
			}
		}
		return nil
	})

	err := g.Wait()
	for _, eng := range engines {
		res.Stats.Merge(eng.Stats())
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	sum := RunSummary{MoleculesRead: res.MoleculesRead, MoleculesWithHits: res.MoleculesWithHits, VariantsGenerated: res.VariantsGenerated}
	for _, s := range r.sinks {
		if err := s.End(ctx, run, sum); err != nil {
			r.recordSinkError(s)
			return res, errors.Wrap(err, errors.CodeUnknown, "sink failed to finish run").WithDetail(s.Name())
		}
	}
	r.logger.Info("Run finished",
		logging.String("run_id", string(run.ID)),
		logging.Int("molecules", res.MoleculesRead),
		logging.Int("variants", res.VariantsGenerated),
		logging.Int("cache_hits", res.CacheHits),
		logging.Duration("duration", res.Duration))
	return res, nil
}

func (r *Runner) collect(ctx context.Context, res *RunResult, o outcome) error {
	res.MoleculesRead++
	switch o.kind {
	case outcomeParseFailed:
		res.ParseFailures++
		return nil
	case outcomeProcessFailed:
		res.ProcessFailures++
		return nil
	}
	if o.result.Cached {
		res.CacheHits++
	}
	if o.result.Count == 0 {
		return nil
	}
	res.MoleculesWithHits++
	res.VariantsGenerated += o.result.Count
	for _, s := range r.sinks {
		if err := s.Write(ctx, o.result); err != nil {
			r.recordSinkError(s)
			return errors.Wrap(err, errors.CodeUnknown, "sink write failed").WithDetail(s.Name())
		}
	}
	return nil
}

func (r *Runner) recordSinkError(s Sink) {
	r.logger.Error("Sink failed", logging.String("sink", s.Name()))
	if r.sinkErrors != nil {
		r.sinkErrors.RecordSinkError(s.Name())
	}
}

//Personal.AI order the ending
