package variants

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/database/redis"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// Metrics receives engine events and per-molecule outcomes.
// *prometheus.VariantMetrics satisfies it.
type Metrics interface {
	minorchanges.Observer
	RecordMolecule(n int, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) VariantAccepted(minorchanges.RuleID)   {}
func (noopMetrics) CandidateRejected(minorchanges.RuleID) {}
func (noopMetrics) RecordMolecule(int, time.Duration)     {}

// generator turns one Input into a MoleculeResult with a given engine,
// consulting the cache when one is configured.
type generator struct {
	fingerprint string
	cache       redis.VariantCache
	metrics     Metrics
	logger      logging.Logger
	now         func() time.Time
}

// outcomeKind classifies a generated result.
type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeParseFailed
	outcomeProcessFailed
)

// generate never fails: problems are reported in the result's Error field
// and classified by kind.
func (g *generator) generate(ctx context.Context, eng *minorchanges.Engine, runID common.ID, in Input) (res variant.MoleculeResult, kind outcomeKind) {
	res = variant.MoleculeResult{Parent: in.Name, ParentSMILES: in.SMILES}

	m, err := chem.ParseSMILES(in.SMILES)
	if err != nil {
		g.logger.Warn("skipping unparseable molecule",
			logging.Int("line", in.Line), logging.String("name", in.Name), logging.Err(err))
		g.metrics.RecordMolecule(-1, 0)
		res.Error = err.Error()
		return res, outcomeParseFailed
	}
	m.Name = in.Name

	compute := func(context.Context) ([]variant.Record, error) {
		start := time.Now()
		n, mols := eng.Process(m)
		g.metrics.RecordMolecule(n, time.Since(start))
		if n < 0 {
			return nil, errors.New(errors.CodeProcessFailed, "variant generation failed").WithDetail(in.Name)
		}
		return g.records(runID, in, mols), nil
	}

	var recs []variant.Record
	if g.cache == nil {
		recs, err = compute(ctx)
	} else {
		var hit bool
		recs, hit, err = g.cache.GetOrCompute(ctx, g.fingerprint, m.CanonicalKey(), compute)
		if hit {
			recs = g.rebrand(recs, runID, in)
			res.Cached = true
		}
	}
	if err != nil {
		res.Error = err.Error()
		return res, outcomeProcessFailed
	}
	res.Variants = recs
	res.Count = len(recs)
	return res, outcomeOK
}

func (g *generator) records(runID common.ID, in Input, mols []*chem.Molecule) []variant.Record {
	now := common.Timestamp(g.now().UTC())
	out := make([]variant.Record, len(mols))
	for i, v := range mols {
		out[i] = variant.Record{
			ID:           common.NewID(),
			RunID:        runID,
			Parent:       in.Name,
			ParentSMILES: in.SMILES,
			Ordinal:      i + 1,
			Name:         v.Name,
			SMILES:       v.CanonicalSMILES(),
			Rule:         variant.RuleFromName(v.Name),
			CreatedAt:    now,
		}
	}
	return out
}

// rebrand rewrites cached records, which may have been generated for
// another run or under another name, as belonging to in.
func (g *generator) rebrand(cached []variant.Record, runID common.ID, in Input) []variant.Record {
	now := common.Timestamp(g.now().UTC())
	out := make([]variant.Record, len(cached))
	for i, r := range cached {
		r.ID = common.NewID()
		r.RunID = runID
		r.Parent = in.Name
		r.ParentSMILES = in.SMILES
		r.Name = fmt.Sprintf("%s.%d %s", in.Name, r.Ordinal, r.Rule)
		r.CreatedAt = now
		out[i] = r
	}
	return out
}

//Personal.AI order the ending
