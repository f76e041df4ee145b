package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
)

func TestBuildOptions_Defaults(t *testing.T) {
	opts, err := BuildOptions(config.EngineConfig{})
	require.NoError(t, err)
	assert.Equal(t, minorchanges.DefaultOptions().Rules, opts.Rules)
	assert.Equal(t, minorchanges.TypingElement, opts.AtomTyping)
	assert.Equal(t, minorchanges.DefaultMaxFragmentAtoms, opts.MaxFragmentAtoms)
	assert.Empty(t, opts.OnlyProcess)
}

func TestBuildOptions_FromConfig(t *testing.T) {
	opts, err := BuildOptions(config.EngineConfig{
		Rules:                  []string{"remove_ch2", "insert_ch2"},
		MaxVariants:            5,
		MaxFragmentAtoms:       2,
		AtomTyping:             "ring",
		OnlyProcessQueries:     []string{"c1ccccc1"},
		RemoveIsotopes:         true,
		Neutralise:             true,
		ElementTransformations: []string{"I=Cl"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []minorchanges.RuleID{minorchanges.RuleRemoveCH2, minorchanges.RuleInsertCH2}, opts.Rules)
	assert.Equal(t, 5, opts.MaxVariants)
	assert.Equal(t, 2, opts.MaxFragmentAtoms)
	assert.Equal(t, minorchanges.TypingRing, opts.AtomTyping)
	assert.True(t, opts.Neutralise)
	assert.False(t, opts.ReduceToLargestFragment)
	assert.Equal(t, map[int]int{53: 17}, opts.ElementTransformations)
	require.Len(t, opts.OnlyProcess, 1)
	assert.Equal(t, "c1ccccc1", opts.OnlyProcess[0].Source)
}

func TestBuildOptions_Errors(t *testing.T) {
	for name, cfg := range map[string]config.EngineConfig{
		"unknown rule":      {Rules: []string{"teleport"}},
		"unknown typing":    {AtomTyping: "colour"},
		"bad transform":     {ElementTransformations: []string{"I-Cl"}},
		"unknown element":   {ElementTransformations: []string{"Xx=C"}},
		"bad scoping query": {OnlyProcessQueries: []string{"C(("}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildOptions(cfg)
			assert.Error(t, err)
		})
	}
}

func TestFingerprint(t *testing.T) {
	base := minorchanges.DefaultOptions()
	fp := Fingerprint(base, "lib")
	assert.Len(t, fp, 24)
	assert.Equal(t, fp, Fingerprint(base, "lib"))

	reordered := base
	reordered.Rules = append([]minorchanges.RuleID(nil), base.Rules...)
	for i, j := 0, len(reordered.Rules)-1; i < j; i, j = i+1, j-1 {
		reordered.Rules[i], reordered.Rules[j] = reordered.Rules[j], reordered.Rules[i]
	}
	assert.Equal(t, fp, Fingerprint(reordered, "lib"), "rule order does not matter")

	capped := base
	capped.MaxVariants = 3
	assert.NotEqual(t, fp, Fingerprint(capped, "lib"))
	assert.NotEqual(t, fp, Fingerprint(base, "other"))

	transformed := base
	transformed.ElementTransformations = map[int]int{53: 17}
	assert.NotEqual(t, fp, Fingerprint(transformed, "lib"))
}

//Personal.AI order the ending
