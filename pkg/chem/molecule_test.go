package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, smi string) *Molecule {
	t.Helper()
	m, err := ParseSMILES(smi)
	require.NoError(t, err, smi)
	return m
}

func TestParseSMILES_Basic(t *testing.T) {
	m := mustParse(t, "CCO")
	assert.Equal(t, 3, m.NumAtoms())
	assert.Equal(t, 2, m.NumBonds())
	assert.Equal(t, 3, m.HydrogenCount(0))
	assert.Equal(t, 2, m.HydrogenCount(1))
	assert.Equal(t, 1, m.HydrogenCount(2))
	assert.True(t, m.Valid())
}

func TestParseSMILES_Aromatic(t *testing.T) {
	m := mustParse(t, "c1ccccc1")
	require.Equal(t, 6, m.NumBonds())
	for bi := 0; bi < m.NumBonds(); bi++ {
		assert.Equal(t, Aromatic, m.Bond(bi).Order)
	}
	for a := 0; a < m.NumAtoms(); a++ {
		assert.Equal(t, 1, m.HydrogenCount(a))
	}
	assert.True(t, m.Valid())
}

func TestParseSMILES_HeteroAromatics(t *testing.T) {
	for _, smi := range []string{"c1cc[nH]c1", "c1ccncc1", "c1ccoc1", "c1ccsc1", "O=c1cccc[nH]1", "Cn1cccc1"} {
		m := mustParse(t, smi)
		assert.True(t, m.Valid(), smi)
	}
	pyrrole := mustParse(t, "c1cc[nH]c1")
	assert.Equal(t, 1, pyrrole.HydrogenCount(3))
}

func TestParseSMILES_Brackets(t *testing.T) {
	m := mustParse(t, "[NH4+]")
	at := m.Atom(0)
	assert.Equal(t, N, at.Element)
	assert.Equal(t, 1, at.Charge)
	assert.Equal(t, 4, m.HydrogenCount(0))
	assert.True(t, m.Valid())

	iso := mustParse(t, "[13CH3]C")
	assert.Equal(t, 13, iso.Atom(0).Isotope)
	assert.True(t, iso.HasIsotopes())
	assert.True(t, iso.ClearIsotopes())
	assert.False(t, iso.HasIsotopes())

	chiral := mustParse(t, "C[C@@H](N)O")
	assert.Equal(t, 1, chiral.HydrogenCount(1))
}

func TestParseSMILES_Errors(t *testing.T) {
	for _, smi := range []string{"", "C(", "C)", "C1CC", "[C", "Xx", "C=", "(C)"} {
		_, err := ParseSMILES(smi)
		assert.Error(t, err, smi)
	}
}

func TestParseSMILES_PercentRingClosure(t *testing.T) {
	m := mustParse(t, "C%10CCCCC%10")
	assert.Equal(t, 6, m.NumBonds())
}

func TestValid_Hypervalent(t *testing.T) {
	assert.False(t, mustParse(t, "CC(C)(C)(C)C").Valid())
	assert.False(t, mustParse(t, "C=O=C").Valid())
	assert.True(t, mustParse(t, "CS(=O)(=O)C").Valid())
}

func TestValid_AromaticConsistency(t *testing.T) {
	m := mustParse(t, "c1ccccc1")
	m.Atom(0).Aromatic = false
	assert.False(t, m.Valid())
}

func TestAddBond_ConsumesFixedHydrogens(t *testing.T) {
	m := mustParse(t, "[CH4]")
	c := m.AddAtom(NewAtom(O))
	require.GreaterOrEqual(t, m.AddBond(0, c, Single), 0)
	assert.Equal(t, 3, m.HydrogenCount(0))
	assert.Equal(t, -1, m.AddBond(0, c, Single), "duplicate bond")
	assert.Equal(t, -1, m.AddBond(0, 0, Single), "self loop")

	m.RemoveBond(0)
	assert.Equal(t, 4, m.HydrogenCount(0))
}

func TestRemoveAtoms_Remaps(t *testing.T) {
	m := mustParse(t, "CCOC")
	mapping := m.RemoveAtoms([]int{2})
	assert.Equal(t, []int{0, 1, -1, 2}, mapping)
	assert.Equal(t, 3, m.NumAtoms())
	assert.Equal(t, 1, m.NumBonds())
	assert.Len(t, m.Components(), 2)
}

func TestReduceToLargestFragment(t *testing.T) {
	m := mustParse(t, "CCCC(=O)[O-].[Na+]")
	assert.True(t, m.ReduceToLargestFragment())
	assert.Equal(t, 6, m.NumAtoms())
	assert.False(t, m.ReduceToLargestFragment())
}

func TestSideOf(t *testing.T) {
	m := mustParse(t, "CC(C)CO")
	side := m.SideOf(3, 1)
	assert.ElementsMatch(t, []int{3, 4}, side)
}

func TestClone_IsIndependent(t *testing.T) {
	m := mustParse(t, "CC")
	c := m.Clone()
	c.Atom(0).Element = N
	c.AddAtom(NewAtom(O))
	assert.Equal(t, C, m.Atom(0).Element)
	assert.Equal(t, 2, m.NumAtoms())
}

func TestAppendMolecule(t *testing.T) {
	m := mustParse(t, "CC")
	off := m.AppendMolecule(mustParse(t, "O"))
	assert.Equal(t, 2, off)
	m.AddBond(1, off, Single)
	assert.Equal(t, mustParse(t, "CCO").CanonicalKey(), m.CanonicalKey())
}

//Personal.AI order the ending
