package variant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleFromName(t *testing.T) {
	assert.Equal(t, "insert_ch2", RuleFromName("aspirin.3 insert_ch2"))
	assert.Equal(t, "reactions", RuleFromName("my mol.1 reactions"))
	assert.Equal(t, "", RuleFromName("plain"))
}

func TestGenerateRequest_Decode(t *testing.T) {
	var req GenerateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"molecules":[{"smiles":"CCO","name":"ethanol"}],"max_variants":5}`), &req))
	require.Len(t, req.Molecules, 1)
	assert.Equal(t, "ethanol", req.Molecules[0].Name)
	require.NotNil(t, req.MaxVariants)
	assert.Equal(t, 5, *req.MaxVariants)
	assert.Empty(t, req.Rules)
}

//Personal.AI order the ending
