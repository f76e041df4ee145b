package minorchanges

import (
	"fmt"
	"io"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/chem"
)

// Observer receives per-candidate events.  Implementations must be safe for
// concurrent use when shared between forked engines.
type Observer interface {
	VariantAccepted(rule RuleID)
	CandidateRejected(rule RuleID)
}

// Engine runs the enabled rules over one molecule at a time.  An Engine is
// not safe for concurrent use; call Fork to get one engine per worker.
type Engine struct {
	opts     Options
	libs     Libraries
	rules    []Rule
	logger   logging.Logger
	observer Observer

	session *Session
	stats   *RunStats
}

// NewEngine validates opts against libs and builds the rule list.
func NewEngine(opts Options, libs Libraries, logger logging.Logger) (*Engine, error) {
	if opts.AtomTyping == "" {
		opts.AtomTyping = TypingElement
	}
	if err := CheckConditions(opts, libs); err != nil {
		return nil, err
	}
	rules, err := NewRegistry(libs, opts.MaxFragmentAtoms).Select(opts.Rules)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		opts:    opts,
		libs:    libs,
		rules:   rules,
		logger:  logger.Named("engine"),
		session: NewSession(),
		stats:   NewRunStats(),
	}, nil
}

// WithObserver attaches o to e and returns e.
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Fork returns an engine sharing options, libraries, rules and observer with
// e but owning a fresh Session and RunStats.
func (e *Engine) Fork() *Engine {
	return &Engine{
		opts:     e.opts,
		libs:     e.libs,
		rules:    e.rules,
		logger:   e.logger,
		observer: e.observer,
		session:  NewSession(),
		stats:    NewRunStats(),
	}
}

// Rules returns the enabled rules in dispatch order.
func (e *Engine) Rules() []Rule { return e.rules }

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// Stats returns the statistics accumulated by this engine.
func (e *Engine) Stats() *RunStats { return e.stats }

// Report writes the accumulated statistics.
func (e *Engine) Report(w io.Writer) error { return e.stats.Report(w) }

// Preprocess applies the configured standardisation to m in place and
// reports whether anything is left to work on.
func (e *Engine) Preprocess(m *chem.Molecule) bool {
	if m.NumAtoms() == 0 {
		return false
	}
	m.Aromatize()
	if e.opts.ReduceToLargestFragment {
		m.ReduceToLargestFragment()
	}
	if len(e.opts.ElementTransformations) > 0 {
		for a := 0; a < m.NumAtoms(); a++ {
			at := m.Atom(a)
			if to, ok := e.opts.ElementTransformations[at.Element]; ok {
				at.Element = to
			}
		}
	}
	if e.opts.Neutralise {
		neutralise(m)
	}
	if e.opts.RemoveIsotopes {
		m.ClearIsotopes()
	}
	return m.HeavyAtomCount() > 0
}

// neutralise removes the charge from N, O and S atoms that are not part of a
// charge-separated pair, keeping the change only if the atom stays valid.
func neutralise(m *chem.Molecule) {
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		if at.Charge == 0 || (at.Element != chem.N && at.Element != chem.O && at.Element != chem.S) {
			continue
		}
		paired := false
		for _, nb := range m.Neighbours(a) {
			if c := m.Atom(nb).Charge; c != 0 && (c > 0) != (at.Charge > 0) {
				paired = true
				break
			}
		}
		if paired {
			continue
		}
		saved := *at
		at.Charge = 0
		at.HCount = -1
		if !m.AtomValid(a) {
			*at = saved
		}
	}
}

// Process generates the variants of m.  m itself is not modified.  It
// returns the number of variants and the variants in generation order, or a
// negative count when a rule failed internally.
func (e *Engine) Process(m *chem.Molecule) (n int, results []*chem.Molecule) {
	e.stats.MoleculesRead++
	var current Rule
	defer func() {
		if r := recover(); r != nil {
			e.stats.Failures++
			rule := ""
			if current != nil {
				rule = current.Name()
			}
			e.logger.Warn("variant generation failed",
				logging.String("molecule", m.Name),
				logging.String("rule", rule),
				logging.Any("panic", r))
			n, results = -1, nil
		}
	}()

	mol := m.Clone()
	if !e.Preprocess(mol) {
		e.stats.EmptyAfterPrep++
		e.stats.recordMolecule(0, nil, e.rules)
		return 0, nil
	}

	md := NewMoleculeData(mol, e.opts.AtomTyping, e.opts.OnlyProcess)
	e.session.Reset()
	e.session.Offer(mol.CanonicalKey())

	perRule := make(map[RuleID]int, len(e.rules))
	capped := func() bool {
		return e.opts.MaxVariants > 0 && len(results) >= e.opts.MaxVariants
	}
	emit := func(c *chem.Molecule) bool {
		if capped() {
			return false
		}
		c.Aromatize()
		if !c.Valid() {
			e.stats.InvalidValence++
			if e.observer != nil {
				e.observer.CandidateRejected(current.ID())
			}
			return true
		}
		if !e.session.Offer(c.CanonicalKey()) {
			return true
		}
		c.Name = fmt.Sprintf("%s.%d %s", m.Name, len(results)+1, current.Name())
		results = append(results, c)
		perRule[current.ID()]++
		if e.observer != nil {
			e.observer.VariantAccepted(current.ID())
		}
		return !capped()
	}

	if md.EligibleCount() == 0 {
		e.logger.Debug("no eligible atoms", logging.String("molecule", m.Name))
		e.stats.recordMolecule(0, perRule, e.rules)
		return 0, nil
	}

	for _, rule := range e.rules {
		current = rule
		before := len(results)
		rule.Generate(mol, md, emit)
		if !md.Describes(mol) {
			panic(fmt.Sprintf("rule %s modified the molecule it was given", rule.Name()))
		}
		e.logger.Debug("rule applied",
			logging.String("molecule", m.Name),
			logging.String("rule", rule.Name()),
			logging.Int("variants", len(results)-before))
		if capped() {
			break
		}
	}

	e.stats.recordMolecule(len(results), perRule, e.rules)
	return len(results), results
}

//Personal.AI order the ending
