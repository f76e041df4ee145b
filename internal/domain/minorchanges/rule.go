// Package minorchanges implements the variant engine: given one molecule, a
// set of enabled structural edit rules and optional fragment and reaction
// libraries, it produces a deduplicated, bounded set of chemically valid
// derivatives and keeps per-rule productivity statistics.
package minorchanges

import (
	"sort"
	"strings"

	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// RuleID identifies a transformation.  Values are stable and used as the
// dispatch order and as report keys.
type RuleID int

const (
	RuleAddFragments               RuleID = 2
	RuleReplaceTerminalFragments   RuleID = 3
	RuleSingleToDoubleBond         RuleID = 4
	RuleDoubleToSingleBond         RuleID = 5
	RuleUnspiro                    RuleID = 6
	RuleMakeThreeMemberedRings     RuleID = 7
	RuleCarbonToNitrogen           RuleID = 8
	RuleCarbonToOxygen             RuleID = 9
	RuleNitrogenToCarbon           RuleID = 10
	RuleInsertCH2                  RuleID = 11
	RuleRemoveCH2                  RuleID = 12
	RuleDestroyAromaticRings       RuleID = 13
	RuleDestroyAromaticRingSystems RuleID = 14
	RuleSwapAdjacentAtoms          RuleID = 15
	RuleRemoveFragment             RuleID = 16
	RuleInsertBivalentFragments    RuleID = 23
	RuleReplaceInnerFragments      RuleID = 24
	RuleRemoveFusedAromatic        RuleID = 25
	RuleReactions                  RuleID = 28
)

var ruleNames = map[RuleID]string{
	RuleAddFragments:               "add_fragments",
	RuleReplaceTerminalFragments:   "replace_terminal_fragments",
	RuleSingleToDoubleBond:         "single_to_double_bond",
	RuleDoubleToSingleBond:         "double_to_single_bond",
	RuleUnspiro:                    "unspiro",
	RuleMakeThreeMemberedRings:     "make_three_membered_rings",
	RuleCarbonToNitrogen:           "carbon_to_nitrogen",
	RuleCarbonToOxygen:             "carbon_to_oxygen",
	RuleNitrogenToCarbon:           "nitrogen_to_carbon",
	RuleInsertCH2:                  "insert_ch2",
	RuleRemoveCH2:                  "remove_ch2",
	RuleDestroyAromaticRings:       "destroy_aromatic_rings",
	RuleDestroyAromaticRingSystems: "destroy_aromatic_ring_systems",
	RuleSwapAdjacentAtoms:          "swap_adjacent_atoms",
	RuleRemoveFragment:             "remove_fragment",
	RuleInsertBivalentFragments:    "insert_bivalent_fragments",
	RuleReplaceInnerFragments:      "replace_inner_fragments",
	RuleRemoveFusedAromatic:        "remove_fused_aromatic",
	RuleReactions:                  "reactions",
}

func (id RuleID) String() string {
	if n, ok := ruleNames[id]; ok {
		return n
	}
	return "unknown"
}

// ParseRuleID resolves a rule name (case-insensitive, "-" or "_").
func ParseRuleID(name string) (RuleID, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for id, n := range ruleNames {
		if n == norm {
			return id, nil
		}
	}
	return 0, errors.New(errors.CodeRuleUnknown, "unknown rule").WithDetail(name)
}

// AllRuleIDs returns every known rule in dispatch order.
func AllRuleIDs() []RuleID {
	out := make([]RuleID, 0, len(ruleNames))
	for id := range ruleNames {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Emit hands a candidate to the engine.  The candidate must be exclusively
// owned by the callee from then on.  Emit returns false once the engine has
// collected enough variants; rules should stop generating when it does.
type Emit func(candidate *chem.Molecule) bool

// Rule generates variants of m.  Implementations never modify m or md and
// only emit freshly built molecules.
type Rule interface {
	ID() RuleID
	Name() string
	Generate(m *chem.Molecule, md *MoleculeData, emit Emit)
}

// baseRule supplies ID and Name.
type baseRule struct{ id RuleID }

func (b baseRule) ID() RuleID    { return b.id }
func (b baseRule) Name() string  { return b.id.String() }
func newBase(id RuleID) baseRule { return baseRule{id: id} }

// ─────────────────────────────────────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────────────────────────────────────

// Registry holds one instance of every rule, wired to the shared libraries.
type Registry struct {
	rules map[RuleID]Rule
}

// NewRegistry builds all rules.  Libraries may be nil; rules that need a
// missing library simply generate nothing, and NewEngine refuses to enable
// them.
func NewRegistry(libs Libraries, maxFragmentAtoms int) *Registry {
	r := &Registry{rules: map[RuleID]Rule{}}
	for _, rule := range []Rule{
		&addFragments{baseRule: newBase(RuleAddFragments), lib: libs.Fragments},
		&replaceTerminalFragments{baseRule: newBase(RuleReplaceTerminalFragments), lib: libs.Fragments, maxAtoms: maxFragmentAtoms},
		&singleToDouble{baseRule: newBase(RuleSingleToDoubleBond)},
		&doubleToSingle{baseRule: newBase(RuleDoubleToSingleBond)},
		&unspiro{baseRule: newBase(RuleUnspiro)},
		&threeMemberedRings{baseRule: newBase(RuleMakeThreeMemberedRings)},
		&carbonToNitrogen{baseRule: newBase(RuleCarbonToNitrogen)},
		&carbonToOxygen{baseRule: newBase(RuleCarbonToOxygen)},
		&nitrogenToCarbon{baseRule: newBase(RuleNitrogenToCarbon)},
		&insertCH2{baseRule: newBase(RuleInsertCH2)},
		&removeCH2{baseRule: newBase(RuleRemoveCH2)},
		&destroyAromaticRings{baseRule: newBase(RuleDestroyAromaticRings)},
		&destroyAromaticRingSystems{baseRule: newBase(RuleDestroyAromaticRingSystems)},
		&swapAdjacentAtoms{baseRule: newBase(RuleSwapAdjacentAtoms)},
		&removeFragment{baseRule: newBase(RuleRemoveFragment), maxAtoms: maxFragmentAtoms},
		&insertBivalentFragments{baseRule: newBase(RuleInsertBivalentFragments), lib: libs.Bivalent},
		&replaceInnerFragments{baseRule: newBase(RuleReplaceInnerFragments), lib: libs.Bivalent, maxAtoms: maxFragmentAtoms},
		&removeFusedAromatic{baseRule: newBase(RuleRemoveFusedAromatic)},
		&applyReactions{baseRule: newBase(RuleReactions), lib: libs.Reactions},
	} {
		r.rules[rule.ID()] = rule
	}
	return r
}

// Get returns the rule for id.
func (r *Registry) Get(id RuleID) (Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// Select returns the rules for ids in ascending ID order, without duplicates.
func (r *Registry) Select(ids []RuleID) ([]Rule, error) {
	seen := map[RuleID]bool{}
	var out []Rule
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rule, ok := r.rules[id]
		if !ok {
			return nil, errors.New(errors.CodeRuleUnknown, "unknown rule").WithDetailf("id=%d", int(id))
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

//Personal.AI order the ending
