package variants

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

func newTestEngine(t *testing.T, ids ...minorchanges.RuleID) *minorchanges.Engine {
	t.Helper()
	opts := minorchanges.DefaultOptions()
	opts.Rules = ids
	eng, err := minorchanges.NewEngine(opts, minorchanges.Libraries{}, nil)
	require.NoError(t, err)
	return eng
}

func canonicalKey(t *testing.T, smiles string) string {
	t.Helper()
	m, err := chem.ParseSMILES(smiles)
	require.NoError(t, err)
	return m.CanonicalKey()
}

func keysOfRecords(t *testing.T, recs []variant.Record) []string {
	t.Helper()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = canonicalKey(t, r.SMILES)
	}
	return out
}

// memoryCache is an in-process VariantCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]variant.Record
	hits    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]variant.Record{}}
}

func (c *memoryCache) Get(_ context.Context, fp, key string) ([]variant.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, ok := c.entries[fp+"|"+key]
	if !ok {
		return nil, stderrors.New("miss")
	}
	return recs, nil
}

func (c *memoryCache) Set(_ context.Context, fp, key string, recs []variant.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp+"|"+key] = recs
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, fp string, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, fp+"|"+k)
	}
	return nil
}

func (c *memoryCache) GetOrCompute(ctx context.Context, fp, key string,
	compute func(context.Context) ([]variant.Record, error)) ([]variant.Record, bool, error) {
	if recs, err := c.Get(ctx, fp, key); err == nil {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return recs, true, nil
	}
	recs, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, fp, key, recs)
	return recs, false, nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

// recordingSink keeps everything it is given.
type recordingSink struct {
	mu       sync.Mutex
	name     string
	begun    []RunInfo
	results  []variant.MoleculeResult
	ended    []RunSummary
	writeErr error
}

func (s *recordingSink) Name() string {
	if s.name == "" {
		return "recording"
	}
	return s.name
}

func (s *recordingSink) Begin(_ context.Context, run RunInfo) error {
	s.begun = append(s.begun, run)
	return nil
}

func (s *recordingSink) Write(_ context.Context, res variant.MoleculeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.results = append(s.results, res)
	return nil
}

func (s *recordingSink) End(_ context.Context, _ RunInfo, sum RunSummary) error {
	s.ended = append(s.ended, sum)
	return nil
}

// countingMetrics counts events.
type countingMetrics struct {
	mu         sync.Mutex
	accepted   int
	rejected   int
	molecules  []int
	sinkErrors []string
}

func (m *countingMetrics) VariantAccepted(minorchanges.RuleID) {
	m.mu.Lock()
	m.accepted++
	m.mu.Unlock()
}

func (m *countingMetrics) CandidateRejected(minorchanges.RuleID) {
	m.mu.Lock()
	m.rejected++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordMolecule(n int, _ time.Duration) {
	m.mu.Lock()
	m.molecules = append(m.molecules, n)
	m.mu.Unlock()
}

func (m *countingMetrics) RecordSinkError(sink string) {
	m.mu.Lock()
	m.sinkErrors = append(m.sinkErrors, sink)
	m.mu.Unlock()
}

//Personal.AI order the ending
