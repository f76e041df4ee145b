package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSMILES_OrderIndependent(t *testing.T) {
	cases := []struct {
		name  string
		forms []string
	}{
		{"ethanol", []string{"CCO", "OCC", "C(O)C"}},
		{"toluene", []string{"Cc1ccccc1", "c1ccccc1C", "c1ccc(C)cc1"}},
		{"isobutane", []string{"CC(C)C", "C(C)(C)C"}},
		{"acetic acid", []string{"CC(=O)O", "OC(=O)C", "O=C(O)C"}},
		{"naphthalene", []string{"c1ccc2ccccc2c1", "c1cccc2c1cccc2"}},
		{"pyridinol", []string{"Oc1ccncc1", "c1cc(O)ccn1"}},
		{"salt", []string{"[Na+].[Cl-]", "[Cl-].[Na+]"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := mustParse(t, tc.forms[0]).CanonicalKey()
			for _, f := range tc.forms[1:] {
				assert.Equal(t, want, mustParse(t, f).CanonicalKey(), f)
			}
		})
	}
}

func TestCanonicalSMILES_DistinguishesIsomers(t *testing.T) {
	assert.NotEqual(t,
		mustParse(t, "CCCC").CanonicalKey(),
		mustParse(t, "CC(C)C").CanonicalKey())
	assert.NotEqual(t,
		mustParse(t, "Cc1ccccc1C").CanonicalKey(),
		mustParse(t, "Cc1cccc(C)c1").CanonicalKey())
	assert.NotEqual(t,
		mustParse(t, "C=CC").CanonicalKey(),
		mustParse(t, "C1CC1").CanonicalKey())
}

func TestCanonicalSMILES_Known(t *testing.T) {
	assert.Equal(t, "CCO", mustParse(t, "OCC").CanonicalSMILES())
	assert.Equal(t, "c1ccccc1", mustParse(t, "c1ccccc1").CanonicalSMILES())
	assert.Equal(t, "", NewMolecule().CanonicalSMILES())
}

func TestCanonicalSMILES_RoundTrips(t *testing.T) {
	for _, smi := range []string{
		"CC(=O)Nc1ccc(O)cc1",
		"c1ccc2c(c1)[nH]c1ccccc12",
		"C1CC2(C1)CCC2",
		"[NH4+]",
		"C#N",
		"c1ccc(-c2ccccc2)cc1",
		"[13CH3]O",
	} {
		m := mustParse(t, smi)
		out := m.CanonicalSMILES()
		back, err := ParseSMILES(out)
		require.NoError(t, err, out)
		assert.Equal(t, out, back.CanonicalSMILES(), smi)
		assert.Equal(t, m.NumAtoms(), back.NumAtoms(), smi)
		assert.Equal(t, m.NumBonds(), back.NumBonds(), smi)
	}
}

func TestSMILES_InputOrder(t *testing.T) {
	assert.Equal(t, "CCO", mustParse(t, "CCO").SMILES())
	assert.Equal(t, "C1CC1", mustParse(t, "C1CC1").SMILES())
}

func TestCanonicalRanks_SymmetricAtomsDiffer(t *testing.T) {
	ranks := mustParse(t, "CC").CanonicalRanks()
	assert.NotEqual(t, ranks[0], ranks[1])
}

//Personal.AI order the ending
