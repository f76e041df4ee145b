package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerceiveRings(t *testing.T) {
	cases := []struct {
		name    string
		smiles  string
		sizes   []int
		systems int
	}{
		{"acyclic", "CCCC", nil, 0},
		{"benzene", "c1ccccc1", []int{6}, 1},
		{"naphthalene", "c1ccc2ccccc2c1", []int{6, 6}, 1},
		{"spiro", "C1CCC2(C1)CCCC2", []int{5, 5}, 2},
		{"biphenyl", "c1ccc(-c2ccccc2)cc1", []int{6, 6}, 2},
		{"indane", "c1ccc2c(c1)CCC2", []int{5, 6}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ri := mustParse(t, tc.smiles).PerceiveRings()
			var sizes []int
			for _, r := range ri.Rings {
				sizes = append(sizes, len(r))
			}
			assert.Equal(t, tc.sizes, sizes)
			assert.Len(t, ri.Systems, tc.systems)
		})
	}
}

func TestRingInfo_Membership(t *testing.T) {
	m := mustParse(t, "c1ccc2ccccc2c1")
	ri := m.PerceiveRings()
	require.Len(t, ri.Rings, 2)

	shared := ri.SharedAtoms(0, 1)
	assert.Len(t, shared, 2)
	for _, a := range shared {
		assert.Equal(t, 2, ri.AtomRingCount[a])
		assert.Len(t, ri.RingsOf(a), 2)
	}
	bi := m.BondIndex(shared[0], shared[1])
	require.GreaterOrEqual(t, bi, 0)
	assert.Equal(t, 2, ri.BondRingCount[bi])
}

func TestRingInfo_Fused(t *testing.T) {
	ri := mustParse(t, "c1ccc2ccccc2c1").PerceiveRings()
	assert.True(t, ri.Fused(0, 1))
	assert.True(t, ri.Fused(1, 0))
	assert.False(t, ri.Fused(0, 0))

	spiro := mustParse(t, "C1CCC2(C1)CCCC2").PerceiveRings()
	assert.False(t, spiro.Fused(0, 1))
}

func TestRingInfo_ChainBondsAreNotRingBonds(t *testing.T) {
	m := mustParse(t, "CCc1ccccc1")
	ri := m.PerceiveRings()
	assert.False(t, ri.IsRingBond(m.BondIndex(0, 1)))
	assert.False(t, ri.IsRingBond(m.BondIndex(1, 2)))
	assert.True(t, ri.IsRingBond(m.BondIndex(2, 3)))
	assert.False(t, ri.InRing(0))
	assert.True(t, ri.InRing(2))
}

func TestDistancesAndShortestPath(t *testing.T) {
	m := mustParse(t, "CCCCC")
	d := m.Distances(0)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, d)
	assert.Equal(t, []int{0, 1, 2, 3}, m.ShortestPath(0, 3))

	split := mustParse(t, "C.C")
	assert.Nil(t, split.ShortestPath(0, 1))
	assert.Equal(t, -1, split.Distances(0)[1])
}

//Personal.AI order the ending
