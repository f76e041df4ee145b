package minorchanges

import (
	"strings"

	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// Default option values.
const (
	DefaultMaxFragmentAtoms = 4
	DefaultMaxVariants      = 0
)

// Options configures an Engine.  Options are immutable once the engine is
// built.
type Options struct {
	// Rules enabled, in any order; dispatch is always by ascending ID.
	Rules []RuleID
	// MaxVariants caps the variants kept per molecule; 0 means no cap.
	MaxVariants int
	// MaxFragmentAtoms bounds terminal substituents removed or replaced.
	MaxFragmentAtoms int

	ReduceToLargestFragment bool
	RemoveIsotopes          bool
	Neutralise              bool
	// ElementTransformations maps atomic numbers applied during
	// preprocessing, e.g. I → Cl.
	ElementTransformations map[int]int

	AtomTyping AtomTyping
	// OnlyProcess restricts edits to atoms covered by any of these queries.
	OnlyProcess []*chem.Query
}

// DefaultOptions enables every rule that needs no library.
func DefaultOptions() Options {
	var rules []RuleID
	for _, id := range AllRuleIDs() {
		if !needsLibrary(id) {
			rules = append(rules, id)
		}
	}
	return Options{
		Rules:                   rules,
		MaxVariants:             DefaultMaxVariants,
		MaxFragmentAtoms:        DefaultMaxFragmentAtoms,
		ReduceToLargestFragment: true,
		RemoveIsotopes:          true,
		AtomTyping:              TypingElement,
	}
}

// NeedsLibrary reports whether the rule draws on a fragment or reaction
// library.
func (id RuleID) NeedsLibrary() bool { return needsLibrary(id) }

func needsLibrary(id RuleID) bool {
	switch id {
	case RuleAddFragments, RuleReplaceTerminalFragments,
		RuleInsertBivalentFragments, RuleReplaceInnerFragments, RuleReactions:
		return true
	}
	return false
}

// ParseRules resolves rule names.  "all" expands to every rule.
func ParseRules(names []string) ([]RuleID, error) {
	var out []RuleID
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "all") {
			out = append(out, AllRuleIDs()...)
			continue
		}
		id, err := ParseRuleID(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// ParseElementTransformations parses entries of the form "I=Cl".
func ParseElementTransformations(specs []string) (map[int]int, error) {
	out := map[int]int{}
	for _, s := range specs {
		from, to, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errors.New(errors.CodeConfigInvalid, "element transformation must look like X=Y").WithDetail(s)
		}
		zf, ok1 := chem.ElementNumber(strings.TrimSpace(from))
		zt, ok2 := chem.ElementNumber(strings.TrimSpace(to))
		if !ok1 || !ok2 {
			return nil, errors.New(errors.CodeConfigInvalid, "unknown element in transformation").WithDetail(s)
		}
		out[zf] = zt
	}
	return out, nil
}

// CompileScope compiles only-process queries.
func CompileScope(sources []string) ([]*chem.Query, error) {
	var out []*chem.Query
	for _, s := range sources {
		q, err := chem.CompileQuery(s)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Libraries groups the shared, read-only libraries.  Any member may be nil.
type Libraries struct {
	Fragments *FragmentLibrary
	Bivalent  *BivalentLibrary
	Reactions *ReactionLibrary
}

// CheckConditions verifies that the options describe a runnable engine: at
// least one rule, sane limits, and a non-empty library for every rule that
// needs one.
func CheckConditions(opts Options, libs Libraries) error {
	if len(opts.Rules) == 0 {
		return errors.New(errors.ErrCodeNoRulesEnabled, "no transformations enabled")
	}
	if opts.MaxVariants < 0 {
		return errors.New(errors.CodeConfigInvalid, "max_variants must not be negative")
	}
	if opts.MaxFragmentAtoms < 1 {
		return errors.New(errors.CodeConfigInvalid, "max_fragment_atoms must be positive")
	}
	if _, err := ParseAtomTyping(string(opts.AtomTyping)); err != nil {
		return err
	}
	for _, id := range opts.Rules {
		var have int
		switch id {
		case RuleAddFragments, RuleReplaceTerminalFragments:
			have = libs.Fragments.Len()
		case RuleInsertBivalentFragments, RuleReplaceInnerFragments:
			have = libs.Bivalent.Len()
		case RuleReactions:
			have = libs.Reactions.Len()
		default:
			continue
		}
		if have == 0 {
			return errors.New(errors.ErrCodeLibraryMissing, "rule needs a library").WithDetail(id.String())
		}
	}
	return nil
}

//Personal.AI order the ending
