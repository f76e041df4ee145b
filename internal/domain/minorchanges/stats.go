package minorchanges

import (
	"fmt"
	"io"
	"sort"
)

// Accumulator tracks count, total, min and max of integer observations.
type Accumulator struct {
	N     int
	Total int
	Min   int
	Max   int
}

// Add records one observation.
func (a *Accumulator) Add(v int) {
	if a.N == 0 || v < a.Min {
		a.Min = v
	}
	if a.N == 0 || v > a.Max {
		a.Max = v
	}
	a.N++
	a.Total += v
}

// Mean is Total/N, or 0 when empty.
func (a *Accumulator) Mean() float64 {
	if a.N == 0 {
		return 0
	}
	return float64(a.Total) / float64(a.N)
}

// Merge folds o into a.
func (a *Accumulator) Merge(o Accumulator) {
	if o.N == 0 {
		return
	}
	if a.N == 0 {
		*a = o
		return
	}
	if o.Min < a.Min {
		a.Min = o.Min
	}
	if o.Max > a.Max {
		a.Max = o.Max
	}
	a.N += o.N
	a.Total += o.Total
}

// RunStats aggregates productivity over many Process calls.  A RunStats is
// owned by one worker; workers' stats are combined with Merge.
type RunStats struct {
	MoleculesRead     int
	MoleculesWithHits int
	VariantsGenerated int
	InvalidValence    int
	Failures          int
	EmptyAfterPrep    int
	// PerRule is the distribution of accepted variants per molecule for each
	// enabled rule.
	PerRule map[RuleID]*Accumulator
	// Histogram[k] is the number of molecules that produced k variants.
	Histogram []int
}

// NewRunStats returns zeroed stats.
func NewRunStats() *RunStats {
	return &RunStats{PerRule: map[RuleID]*Accumulator{}}
}

func (s *RunStats) rule(id RuleID) *Accumulator {
	acc, ok := s.PerRule[id]
	if !ok {
		acc = &Accumulator{}
		s.PerRule[id] = acc
	}
	return acc
}

func (s *RunStats) recordMolecule(total int, perRule map[RuleID]int, rules []Rule) {
	for len(s.Histogram) <= total {
		s.Histogram = append(s.Histogram, 0)
	}
	s.Histogram[total]++
	s.VariantsGenerated += total
	if total > 0 {
		s.MoleculesWithHits++
	}
	for _, r := range rules {
		s.rule(r.ID()).Add(perRule[r.ID()])
	}
}

// Merge folds o into s.
func (s *RunStats) Merge(o *RunStats) {
	s.MoleculesRead += o.MoleculesRead
	s.MoleculesWithHits += o.MoleculesWithHits
	s.VariantsGenerated += o.VariantsGenerated
	s.InvalidValence += o.InvalidValence
	s.Failures += o.Failures
	s.EmptyAfterPrep += o.EmptyAfterPrep
	for id, acc := range o.PerRule {
		s.rule(id).Merge(*acc)
	}
	for len(s.Histogram) < len(o.Histogram) {
		s.Histogram = append(s.Histogram, 0)
	}
	for k, n := range o.Histogram {
		s.Histogram[k] += n
	}
}

// Report writes a human readable summary.
func (s *RunStats) Report(w io.Writer) error {
	p := &errWriter{w: w}
	p.printf("read %d molecules, %d produced variants, %d variants generated\n",
		s.MoleculesRead, s.MoleculesWithHits, s.VariantsGenerated)
	p.printf("%d candidates rejected for invalid valence, %d failures, %d empty after preprocessing\n",
		s.InvalidValence, s.Failures, s.EmptyAfterPrep)

	ids := make([]RuleID, 0, len(s.PerRule))
	for id := range s.PerRule {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		acc := s.PerRule[id]
		p.printf("%-30s %6d molecules %8d variants min %d max %d ave %.2f\n",
			id.String(), acc.N, acc.Total, acc.Min, acc.Max, acc.Mean())
	}
	for k, n := range s.Histogram {
		if n > 0 {
			p.printf("%d molecules generated %d variants\n", n, k)
		}
	}
	return p.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

//Personal.AI order the ending
