package minorchanges

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_NoLibrary(t *testing.T) {
	cases := []struct {
		name   string
		rule   RuleID
		input  string
		expect []string
	}{
		{"single to double", RuleSingleToDoubleBond, "CCC", []string{"C=CC"}},
		{"single to double skips aromatic", RuleSingleToDoubleBond, "Cc1ccccc1", nil},
		{"double to single", RuleDoubleToSingleBond, "C=CC=C", []string{"CCC=C"}},
		{"carbon to nitrogen", RuleCarbonToNitrogen, "CC", []string{"CN"}},
		{"carbon to oxygen", RuleCarbonToOxygen, "CCC", []string{"OCC", "COC"}},
		{"carbon to oxygen needs room", RuleCarbonToOxygen, "CC(C)(C)C", []string{"CC(C)(C)O"}},
		{"nitrogen to carbon", RuleNitrogenToCarbon, "c1ccncc1", []string{"c1ccccc1"}},
		{"nitrogen to carbon skips pyrrole", RuleNitrogenToCarbon, "c1cc[nH]c1", nil},
		{"insert ch2 skips ring bonds", RuleInsertCH2, "C1CC1", nil},
		{"remove ch2", RuleRemoveCH2, "CCC", []string{"CC"}},
		{"remove ch2 not in cyclopropane", RuleRemoveCH2, "C1CC1", nil},
		{"three membered ring", RuleMakeThreeMemberedRings, "CCC", []string{"C1CC1"}},
		{"destroy aromatic ring", RuleDestroyAromaticRings, "c1ccccc1", []string{"C1CCCCC1"}},
		{"destroy one ring of naphthalene", RuleDestroyAromaticRings, "c1ccc2ccccc2c1", []string{"c1ccc2c(c1)CCCC2"}},
		{"destroy ring system", RuleDestroyAromaticRingSystems, "c1ccc2ccccc2c1", []string{"C1CCC2CCCCC2C1"}},
		{"single ring is not a system", RuleDestroyAromaticRingSystems, "c1ccccc1", nil},
		{"unspiro", RuleUnspiro, "C1CCCC12CCCC2", []string{"CCCCC1CCCC1"}},
		{"swap adjacent", RuleSwapAdjacentAtoms, "CCOCC", []string{"COCCC"}},
		{"remove fragment", RuleRemoveFragment, "CCCCO", []string{"CCCO", "CCO", "CCC", "CCCC"}},
		{"remove fused aromatic", RuleRemoveFusedAromatic, "c1ccc2ccccc2c1", []string{"c1ccccc1"}},
		{"fused removal moves two substituents", RuleRemoveFusedAromatic, "Cc1c(C)c2CCCc2cc1", []string{"CC1CCCC1C"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := runRules(t, tc.input, Libraries{}, tc.rule)
			if tc.expect == nil {
				assert.Empty(t, out)
				return
			}
			assert.ElementsMatch(t, keysFor(t, tc.expect...), keysOf(out))
		})
	}
}

func TestRemoveFusedAromatic_TooManySubstituents(t *testing.T) {
	out := runRules(t, "Cc1c(C)c(C)c2CCCc2c1", Libraries{}, RuleRemoveFusedAromatic)
	assert.Empty(t, out)
}

func TestRules_Fragments(t *testing.T) {
	mono, err := LoadFragments(strings.NewReader("[6CH4] 10 methyl\n[6OH2] 3 hydroxy\n"), 1)
	require.NoError(t, err)
	bi, err := LoadBivalentFragments(strings.NewReader("[6CH3][6CH3] 4 ethylene\n"), 1)
	require.NoError(t, err)
	libs := Libraries{Fragments: mono, Bivalent: bi}

	t.Run("add", func(t *testing.T) {
		out := runRules(t, "C", libs, RuleAddFragments)
		assert.ElementsMatch(t, keysFor(t, "CC", "CO"), keysOf(out))
		for _, v := range out {
			assert.False(t, v.HasIsotopes())
		}
	})
	t.Run("replace terminal", func(t *testing.T) {
		out := runRules(t, "CCO", libs, RuleReplaceTerminalFragments)
		assert.ElementsMatch(t, keysFor(t, "CCC", "OCO"), keysOf(out))
	})
	t.Run("insert bivalent", func(t *testing.T) {
		out := runRules(t, "CC", libs, RuleInsertBivalentFragments)
		assert.ElementsMatch(t, keysFor(t, "CCCC"), keysOf(out))
	})
	t.Run("type mismatch", func(t *testing.T) {
		out := runRules(t, "OO", libs, RuleInsertBivalentFragments)
		assert.Empty(t, out)
	})
}

func TestRules_Reactions(t *testing.T) {
	lib, err := LoadReactions(strings.NewReader(`
reactions:
  - name: acid_to_amide
    query: "C(=O)[OH]"
    edits:
      - {kind: change_element, atom: 2, element: N}
`))
	require.NoError(t, err)
	out := runRules(t, "CC(=O)O", Libraries{Reactions: lib}, RuleReactions)
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "CC(=O)N"), out[0].CanonicalKey())
	assert.Equal(t, "m.1 reactions", out[0].Name)
}

func TestParseRuleID(t *testing.T) {
	id, err := ParseRuleID("Insert-CH2")
	require.NoError(t, err)
	assert.Equal(t, RuleInsertCH2, id)

	_, err = ParseRuleID("teleport")
	assert.Error(t, err)

	ids, err := ParseRules([]string{"all"})
	require.NoError(t, err)
	assert.Len(t, ids, 19)
	assert.Equal(t, "unknown", RuleID(1).String())
}

func TestRegistry_SelectOrdersByID(t *testing.T) {
	rules, err := NewRegistry(Libraries{}, 4).Select([]RuleID{RuleReactions, RuleAddFragments, RuleInsertCH2, RuleAddFragments})
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, RuleAddFragments, rules[0].ID())
	assert.Equal(t, RuleInsertCH2, rules[1].ID())
	assert.Equal(t, RuleReactions, rules[2].ID())
}

//Personal.AI order the ending
