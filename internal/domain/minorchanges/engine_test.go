package minorchanges

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/testutil"
	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

func mol(t *testing.T, smi string) *chem.Molecule {
	t.Helper()
	m, err := chem.ParseSMILES(smi)
	require.NoError(t, err, smi)
	m.Name = "m"
	return m
}

func key(t *testing.T, smi string) string {
	t.Helper()
	return mol(t, smi).CanonicalKey()
}

func keysOf(ms []*chem.Molecule) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.CanonicalKey())
	}
	return out
}

func keysFor(t *testing.T, smiles ...string) []string {
	out := make([]string, 0, len(smiles))
	for _, s := range smiles {
		out = append(out, key(t, s))
	}
	return out
}

func newTestEngine(t *testing.T, libs Libraries, ids ...RuleID) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Rules = ids
	e, err := NewEngine(opts, libs, nil)
	require.NoError(t, err)
	return e
}

func runRules(t *testing.T, smi string, libs Libraries, ids ...RuleID) []*chem.Molecule {
	t.Helper()
	e := newTestEngine(t, libs, ids...)
	n, out := e.Process(mol(t, smi))
	require.Equal(t, len(out), n)
	return out
}

type panicRule struct{ baseRule }

func (panicRule) Generate(*chem.Molecule, *MoleculeData, Emit) { panic("boom") }

func TestEngine_InsertCH2OnEthane(t *testing.T) {
	out := runRules(t, "CC", Libraries{}, RuleInsertCH2)
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "CCC"), out[0].CanonicalKey())
	assert.Equal(t, "m.1 insert_ch2", out[0].Name)
}

func TestEngine_RemoveFusedAromaticKeepsSubstituent(t *testing.T) {
	out := runRules(t, "Cc1cccc2c1CCC2", Libraries{}, RuleRemoveFusedAromatic)
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "CC1CCCC1"), out[0].CanonicalKey())
}

func TestEngine_ReplaceInnerFragment(t *testing.T) {
	lib, err := LoadBivalentFragments(strings.NewReader("[6NH3] 5 amine\n"), 1)
	require.NoError(t, err)
	out := runRules(t, "CCOCC", Libraries{Bivalent: lib}, RuleReplaceInnerFragments)
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "CCNCC"), out[0].CanonicalKey())
}

func TestEngine_BondOrderRoundTrip(t *testing.T) {
	up := runRules(t, "CC", Libraries{}, RuleSingleToDoubleBond)
	require.Len(t, up, 1)
	assert.Equal(t, key(t, "C=C"), up[0].CanonicalKey())

	e := newTestEngine(t, Libraries{}, RuleDoubleToSingleBond)
	_, down := e.Process(up[0])
	require.Len(t, down, 1)
	assert.Equal(t, key(t, "CC"), down[0].CanonicalKey())
}

func TestEngine_CH2RoundTrip(t *testing.T) {
	up := runRules(t, "CC(C)O", Libraries{}, RuleInsertCH2)
	require.ElementsMatch(t, keysFor(t, "CCC(C)O", "CC(C)CO"), keysOf(up))
	for _, v := range up {
		e := newTestEngine(t, Libraries{}, RuleRemoveCH2)
		_, down := e.Process(v)
		assert.Contains(t, keysOf(down), key(t, "CC(C)O"))
	}
}

func TestEngine_Deduplicates(t *testing.T) {
	out := runRules(t, "c1ccccc1", Libraries{}, RuleCarbonToNitrogen)
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "c1ccncc1"), out[0].CanonicalKey())
}

func TestEngine_DeduplicatesAcrossRules(t *testing.T) {
	frags, err := LoadFragments(strings.NewReader("[6CH4] 10 methyl\n"), 1)
	require.NoError(t, err)
	e := newTestEngine(t, Libraries{Fragments: frags}, RuleAddFragments, RuleInsertCH2)

	n, out := e.Process(mol(t, "CC"))
	require.Equal(t, 1, n)
	assert.Equal(t, []string{key(t, "CCC")}, keysOf(out))
	assert.Equal(t, "m.1 add_fragments", out[0].Name)

	stats := e.Stats()
	assert.Equal(t, 1, stats.PerRule[RuleAddFragments].Total)
	assert.Equal(t, 0, stats.PerRule[RuleInsertCH2].Total)
	assert.Equal(t, 1, stats.VariantsGenerated)
}

func TestEngine_KekuleInputMatchesAromatic(t *testing.T) {
	want := keysFor(t, "Nc1ccccc1", "Cc1ccccn1", "Cc1cccnc1", "Cc1ccncc1")
	assert.ElementsMatch(t, want, keysOf(runRules(t, "CC1=CC=CC=C1", Libraries{}, RuleCarbonToNitrogen)))
	assert.ElementsMatch(t, want, keysOf(runRules(t, "Cc1ccccc1", Libraries{}, RuleCarbonToNitrogen)))

	out := runRules(t, "CC1=CC=CC=C1", Libraries{}, RuleDestroyAromaticRings)
	assert.Equal(t, keysFor(t, "CC1CCCCC1"), keysOf(out))
}

func TestEngine_CandidatesAreAromatized(t *testing.T) {
	out := runRules(t, "C1=CC=CCC1", Libraries{}, RuleSingleToDoubleBond)
	require.Len(t, out, 1)
	assert.Equal(t, "c1ccccc1", out[0].CanonicalKey())
	assert.True(t, out[0].Atom(0).Aromatic)
}

type mutatingRule struct{ baseRule }

func (mutatingRule) Generate(m *chem.Molecule, _ *MoleculeData, _ Emit) {
	m.Atom(0).Element = chem.N
}

func TestEngine_RuleEditingParentFails(t *testing.T) {
	e := newTestEngine(t, Libraries{}, RuleInsertCH2)
	e.rules = []Rule{mutatingRule{baseRule: newBase(RuleInsertCH2)}}

	parent := mol(t, "CCO")
	n, out := e.Process(parent)
	assert.Equal(t, -1, n)
	assert.Nil(t, out)
	assert.Equal(t, 1, e.Stats().Failures)
	assert.Equal(t, key(t, "CCO"), parent.CanonicalKey(), "caller's molecule untouched")
}

func TestMoleculeData_Describes(t *testing.T) {
	m := mol(t, "CCO")
	md := NewMoleculeData(m, TypingElement, nil)
	assert.True(t, md.Describes(m))
	assert.Equal(t, 3, md.EligibleCount())
	assert.False(t, md.Describes(m.Clone()))

	m.Atom(2).Element = chem.N
	assert.False(t, md.Describes(m))
}

func TestEngine_NeverEmitsParent(t *testing.T) {
	out := runRules(t, "CCOC", Libraries{}, RuleSwapAdjacentAtoms)
	assert.Empty(t, out)
}

func TestEngine_AllVariantsValidAndUnique(t *testing.T) {
	for _, smi := range []string{
		"CC(=O)Nc1ccc(O)cc1",
		"c1ccc2ccccc2c1",
		"C1CCCC12CCCC2",
		"CCN(CC)CC",
		"O=C1CCCCC1",
		"Cc1ccncc1",
	} {
		t.Run(smi, func(t *testing.T) {
			parent := mol(t, smi)
			before := parent.CanonicalKey()
			e := newTestEngine(t, Libraries{}, DefaultOptions().Rules...)
			n, out := e.Process(parent)
			require.GreaterOrEqual(t, n, 0)
			assert.Equal(t, before, parent.CanonicalKey(), "input untouched")

			seen := map[string]bool{before: true}
			for _, v := range out {
				assert.True(t, v.Valid(), v.SMILES())
				k := v.CanonicalKey()
				assert.False(t, seen[k], "duplicate or parent %s", k)
				seen[k] = true
			}
		})
	}
}

func TestEngine_EmptyScopeYieldsNothing(t *testing.T) {
	opts := DefaultOptions()
	scope, err := CompileScope([]string{"Cl"})
	require.NoError(t, err)
	opts.OnlyProcess = scope
	e, err := NewEngine(opts, Libraries{}, nil)
	require.NoError(t, err)

	n, out := e.Process(mol(t, "CCCO"))
	assert.Equal(t, 0, n)
	assert.Empty(t, out)
}

func TestEngine_ScopeLimitsEdits(t *testing.T) {
	opts := DefaultOptions()
	opts.Rules = []RuleID{RuleCarbonToNitrogen}
	scope, err := CompileScope([]string{"[CH3]O"})
	require.NoError(t, err)
	opts.OnlyProcess = scope
	e, err := NewEngine(opts, Libraries{}, nil)
	require.NoError(t, err)

	_, out := e.Process(mol(t, "CCCOC"))
	require.Len(t, out, 1)
	assert.Equal(t, key(t, "CCCON"), out[0].CanonicalKey())
}

func TestEngine_PanicBecomesNegativeReturn(t *testing.T) {
	logger := testutil.NewMockLogger()
	opts := DefaultOptions()
	e, err := NewEngine(opts, Libraries{}, logger)
	require.NoError(t, err)
	e.rules = []Rule{panicRule{baseRule: newBase(RuleInsertCH2)}}

	n, out := e.Process(mol(t, "CC"))
	assert.Equal(t, -1, n)
	assert.Nil(t, out)
	assert.Equal(t, 1, e.Stats().Failures)
	assert.Equal(t, 1, logger.CountLevel("warn"))

	e.rules = []Rule{&insertCH2{baseRule: newBase(RuleInsertCH2)}}
	n, _ = e.Process(mol(t, "CC"))
	assert.Equal(t, 1, n, "engine usable after a failure")
}

func TestEngine_MaxVariants(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxVariants = 2
	e, err := NewEngine(opts, Libraries{}, nil)
	require.NoError(t, err)
	n, out := e.Process(mol(t, "CCCCCO"))
	assert.Equal(t, 2, n)
	assert.Len(t, out, 2)
}

func TestEngine_EmptyMolecule(t *testing.T) {
	e := newTestEngine(t, Libraries{}, RuleInsertCH2)
	n, out := e.Process(chem.NewMolecule())
	assert.Equal(t, 0, n)
	assert.Empty(t, out)
	assert.Equal(t, 1, e.Stats().EmptyAfterPrep)
}

func TestEngine_Preprocess(t *testing.T) {
	opts := DefaultOptions()
	opts.Neutralise = true
	tr, err := ParseElementTransformations([]string{"I=Cl"})
	require.NoError(t, err)
	opts.ElementTransformations = tr
	e, err := NewEngine(opts, Libraries{}, nil)
	require.NoError(t, err)

	m := mol(t, "[Na+].[O-]C(=O)c1ccccc1I")
	require.True(t, e.Preprocess(m))
	assert.Equal(t, key(t, "OC(=O)c1ccccc1Cl"), m.CanonicalKey())

	nitro := mol(t, "C[N+](=O)[O-]")
	require.True(t, e.Preprocess(nitro))
	assert.Equal(t, key(t, "C[N+](=O)[O-]"), nitro.CanonicalKey(), "charge-separated pair kept")

	labelled := mol(t, "[13CH3]O")
	require.True(t, e.Preprocess(labelled))
	assert.False(t, labelled.HasIsotopes())
}

func TestEngine_ForkHasOwnStats(t *testing.T) {
	e := newTestEngine(t, Libraries{}, RuleInsertCH2)
	f := e.Fork()
	f.Process(mol(t, "CC"))
	assert.Equal(t, 0, e.Stats().MoleculesRead)
	assert.Equal(t, 1, f.Stats().MoleculesRead)
	assert.Equal(t, len(e.Rules()), len(f.Rules()))
}

func TestEngine_Report(t *testing.T) {
	e := newTestEngine(t, Libraries{}, RuleInsertCH2, RuleRemoveCH2)
	e.Process(mol(t, "CC"))
	e.Process(mol(t, "CCC"))

	var buf bytes.Buffer
	require.NoError(t, e.Report(&buf))
	out := buf.String()
	assert.Contains(t, out, "read 2 molecules")
	assert.Contains(t, out, "insert_ch2")
	assert.Contains(t, out, "remove_ch2")
}

type countingObserver struct{ accepted, rejected int }

func (o *countingObserver) VariantAccepted(RuleID)   { o.accepted++ }
func (o *countingObserver) CandidateRejected(RuleID) { o.rejected++ }

func TestEngine_Observer(t *testing.T) {
	obs := &countingObserver{}
	e := newTestEngine(t, Libraries{}, RuleSwapAdjacentAtoms).WithObserver(obs)
	e.Process(mol(t, "CC(=O)NC"))
	assert.Positive(t, obs.rejected)
	assert.Equal(t, e.Stats().InvalidValence, obs.rejected)
}

func TestNewEngine_CheckConditions(t *testing.T) {
	opts := DefaultOptions()
	opts.Rules = nil
	_, err := NewEngine(opts, Libraries{}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoRulesEnabled))

	opts = DefaultOptions()
	opts.Rules = []RuleID{RuleAddFragments}
	_, err = NewEngine(opts, Libraries{}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLibraryMissing))

	opts = DefaultOptions()
	opts.MaxFragmentAtoms = 0
	_, err = NewEngine(opts, Libraries{}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))

	opts = DefaultOptions()
	opts.Rules = []RuleID{99}
	_, err = NewEngine(opts, Libraries{}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeRuleUnknown))
}

//Personal.AI order the ending
