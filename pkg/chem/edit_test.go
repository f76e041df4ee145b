package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEdits(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		query  string
		edits  []Edit
		expect string
	}{
		{
			name:   "change element",
			input:  "CCO",
			query:  "CO",
			edits:  []Edit{{Kind: EditChangeElement, Atom: 1, Element: N}},
			expect: "CCN",
		},
		{
			name:   "add atom",
			input:  "CC(=O)O",
			query:  "C(=O)[OH]",
			edits:  []Edit{{Kind: EditAddAtom, Atom: 2, Element: C, Order: Single}},
			expect: "CC(=O)OC",
		},
		{
			name:   "set bond order",
			input:  "CCC",
			query:  "[CH3][CH2]",
			edits:  []Edit{{Kind: EditSetBondOrder, Atom: 0, Atom2: 1, Order: Double}},
			expect: "C=CC",
		},
		{
			name:  "remove atom",
			input: "CC(=O)OC",
			query: "O[CH3]",
			edits: []Edit{
				{Kind: EditRemoveAtom, Atom: 1},
			},
			expect: "CC(=O)O",
		},
		{
			name:  "make and break",
			input: "CCCC",
			query: "[CH3]CC[CH3]",
			edits: []Edit{
				{Kind: EditMakeBond, Atom: 0, Atom2: 3, Order: Single},
			},
			expect: "C1CCC1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustParse(t, tc.input)
			q := MustCompileQuery(tc.query)
			require.NoError(t, ValidateEdits(q.Size(), tc.edits))
			matches := q.Matches(m, 1)
			require.Len(t, matches, 1)

			out, err := ApplyEdits(m, matches[0], tc.edits)
			require.NoError(t, err)
			assert.True(t, out.Valid())
			assert.Equal(t, mustParse(t, tc.expect).CanonicalKey(), out.CanonicalKey())
			assert.Equal(t, mustParse(t, tc.input).CanonicalKey(), m.CanonicalKey(), "input untouched")
		})
	}
}

func TestApplyEdits_Failures(t *testing.T) {
	m := mustParse(t, "CC")
	_, err := ApplyEdits(m, []int{0, 1}, []Edit{{Kind: EditBreakBond, Atom: 0, Atom2: 0}})
	assert.Error(t, err)
	_, err = ApplyEdits(m, []int{0, 1}, []Edit{{Kind: EditMakeBond, Atom: 0, Atom2: 1, Order: Single}})
	assert.Error(t, err)
	_, err = ApplyEdits(m, []int{0, 1}, []Edit{{Kind: EditChangeElement, Atom: 7, Element: N}})
	assert.Error(t, err)
}

func TestValidateEdits(t *testing.T) {
	assert.Error(t, ValidateEdits(2, []Edit{{Kind: EditChangeElement, Atom: 2, Element: N}}))
	assert.Error(t, ValidateEdits(2, []Edit{{Kind: "explode", Atom: 0}}))
	assert.Error(t, ValidateEdits(2, []Edit{{Kind: EditMakeBond, Atom: 0, Atom2: 1, Order: 9}}))
	assert.NoError(t, ValidateEdits(1, []Edit{
		{Kind: EditAddAtom, Atom: 0, Element: O, Order: Single},
		{Kind: EditAddAtom, Atom: 1, Element: C, Order: Single},
	}))
}

//Personal.AI order the ending
