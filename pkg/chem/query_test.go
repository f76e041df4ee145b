package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Matches(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		target  string
		matches int
		unique  int
	}{
		{"carbonyl", "C=O", "CC(=O)O", 1, 1},
		{"hydroxyl", "[OH]", "CC(=O)O", 1, 1},
		{"aromatic carbon", "c", "Cc1ccccc1", 6, 6},
		{"aliphatic carbon", "C", "Cc1ccccc1", 1, 1},
		{"ethyl both ways", "CC", "CCC", 4, 2},
		{"wildcard", "*O", "CO", 1, 1},
		{"aromatic bond via unmarked", "cC", "Cc1ccccc1", 1, 1},
		{"any bond", "C~O", "CC(=O)O", 2, 2},
		{"no match", "N", "CCO", 0, 0},
		{"charged", "[N+]", "C[N+](C)(C)C", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := CompileQuery(tc.query)
			require.NoError(t, err)
			m := mustParse(t, tc.target)
			assert.Len(t, q.Matches(m, 0), tc.matches)
			assert.Len(t, q.UniqueMatches(m, 0), tc.unique)
			assert.Equal(t, tc.matches > 0, q.HasMatch(m))
		})
	}
}

func TestQuery_Limit(t *testing.T) {
	q := MustCompileQuery("c")
	assert.Len(t, q.Matches(mustParse(t, "c1ccccc1"), 2), 2)
}

func TestQuery_MatchedAtoms(t *testing.T) {
	q := MustCompileQuery("C(=O)O")
	flags := q.MatchedAtoms(mustParse(t, "CCC(=O)O"))
	assert.Equal(t, []bool{false, false, true, true, true}, flags)
}

func TestQuery_Invalid(t *testing.T) {
	_, err := CompileQuery("C(")
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompileQuery("[") })
}

//Personal.AI order the ending
