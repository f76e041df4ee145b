package variants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	opts := minorchanges.DefaultOptions()
	opts.Rules = []minorchanges.RuleID{minorchanges.RuleInsertCH2}
	svc, err := NewService(opts, LoadedLibraries{Digest: "none"}, cfg, nil)
	require.NoError(t, err)
	return svc
}

func TestService_Generate(t *testing.T) {
	metrics := &countingMetrics{}
	svc := newTestService(t, ServiceConfig{MaxMolecules: 10, Concurrency: 4, Metrics: metrics})

	resp, err := svc.Generate(context.Background(), variant.GenerateRequest{Molecules: []variant.MoleculeInput{
		{SMILES: "CC(C)O", Name: "propanol"},
		{SMILES: "C1CC"},
		{SMILES: "CC"},
	}})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Results, 3)

	first := resp.Results[0]
	assert.Equal(t, "propanol", first.Parent)
	assert.Equal(t, 2, first.Count)
	assert.Empty(t, first.Error)
	for i, r := range first.Variants {
		assert.Equal(t, resp.RunID, r.RunID)
		assert.Equal(t, i+1, r.Ordinal)
		assert.Equal(t, "insert_ch2", r.Rule)
	}

	assert.Equal(t, "mol2", resp.Results[1].Parent)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Zero(t, resp.Results[1].Count)

	third := resp.Results[2]
	assert.Equal(t, "mol3", third.Parent)
	require.Equal(t, 1, third.Count)
	assert.Equal(t, "mol3.1 insert_ch2", third.Variants[0].Name)
	assert.Equal(t, []string{canonicalKey(t, "CCC")}, keysOfRecords(t, third.Variants))

	assert.ElementsMatch(t, []int{2, -1, 1}, metrics.molecules)
	assert.Equal(t, 3, metrics.accepted)
}

func TestService_Validation(t *testing.T) {
	svc := newTestService(t, ServiceConfig{MaxMolecules: 1})
	ctx := context.Background()

	_, err := svc.Generate(ctx, variant.GenerateRequest{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "C"}, {SMILES: "CC"}}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	negative := -1
	_, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "CC"}}, MaxVariants: &negative})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "CC"}}, Rules: []string{"teleport"}})
	assert.Error(t, err)
}

func TestService_SetMaxMolecules(t *testing.T) {
	svc := newTestService(t, ServiceConfig{MaxMolecules: 1})
	ctx := context.Background()
	two := variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "C"}, {SMILES: "CC"}}}

	_, err := svc.Generate(ctx, two)
	require.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	svc.SetMaxMolecules(2)
	resp, err := svc.Generate(ctx, two)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	svc.SetMaxMolecules(0)
	_, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "C"}, {SMILES: "CC"}, {SMILES: "CCC"}}})
	assert.NoError(t, err)
}

func TestService_Overrides(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Concurrency: 2})
	ctx := context.Background()
	mols := []variant.MoleculeInput{{SMILES: "CC(C)O", Name: "propanol"}}

	one := 1
	resp, err := svc.Generate(ctx, variant.GenerateRequest{Molecules: mols, MaxVariants: &one})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Results[0].Count)

	resp, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: mols, Rules: []string{"carbon_to_oxygen"}})
	require.NoError(t, err)
	require.NotZero(t, resp.Results[0].Count)
	for _, r := range resp.Results[0].Variants {
		assert.Equal(t, "carbon_to_oxygen", r.Rule)
	}
}

func TestService_CacheIsPerConfiguration(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestService(t, ServiceConfig{Cache: cache})
	ctx := context.Background()
	mols := []variant.MoleculeInput{{SMILES: "CC(C)O", Name: "a"}}

	_, err := svc.Generate(ctx, variant.GenerateRequest{Molecules: mols})
	require.NoError(t, err)
	resp, err := svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "OC(C)C", Name: "b"}}})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Cached)
	assert.Equal(t, "b.1 insert_ch2", resp.Results[0].Variants[0].Name)

	one := 1
	resp, err = svc.Generate(ctx, variant.GenerateRequest{Molecules: mols, MaxVariants: &one})
	require.NoError(t, err)
	assert.False(t, resp.Results[0].Cached)
	assert.Equal(t, 1, resp.Results[0].Count)
}

func TestService_Rules(t *testing.T) {
	svc := newTestService(t, ServiceConfig{})
	rules := svc.Rules()
	require.Len(t, rules, len(minorchanges.AllRuleIDs()))

	byName := map[string]variant.RuleInfo{}
	for _, r := range rules {
		byName[r.Name] = r
	}
	assert.True(t, byName["insert_ch2"].EnabledDefault)
	assert.False(t, byName["remove_ch2"].EnabledDefault)
	assert.True(t, byName["reactions"].NeedsLibrary)
	assert.False(t, byName["unspiro"].NeedsLibrary)
	assert.Len(t, svc.Fingerprint(), 24)
}

func TestService_Cancelled(t *testing.T) {
	svc := newTestService(t, ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{{SMILES: "CC"}}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

//Personal.AI order the ending
