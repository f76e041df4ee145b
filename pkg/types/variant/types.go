// Package variant defines the records and request/response payloads that
// carry generated variants between the engine, the sinks and the HTTP API.
// Only plain data types live here.
package variant

import (
	"strings"

	"github.com/turtacn/minorchanges/pkg/types/common"
)

// Record is one generated variant as written to a sink or returned over
// HTTP.
type Record struct {
	ID           common.ID        `json:"id"`
	RunID        common.ID        `json:"run_id,omitempty"`
	Parent       string           `json:"parent"`
	ParentSMILES string           `json:"parent_smiles"`
	Ordinal      int              `json:"ordinal"`
	Name         string           `json:"name"`
	SMILES       string           `json:"smiles"`
	Rule         string           `json:"rule"`
	CreatedAt    common.Timestamp `json:"created_at"`
}

// RuleFromName returns the rule suffix of a variant name of the form
// "<parent>.<n> <rule>", or "" when there is none.
func RuleFromName(name string) string {
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// MoleculeInput is one molecule submitted for variant generation.
type MoleculeInput struct {
	SMILES string `json:"smiles" binding:"required"`
	Name   string `json:"name"`
}

// GenerateRequest is the body of POST /v1/variants.  Rules and MaxVariants
// override the server defaults when present.
type GenerateRequest struct {
	Molecules   []MoleculeInput `json:"molecules" binding:"required,min=1,dive"`
	Rules       []string        `json:"rules,omitempty"`
	MaxVariants *int            `json:"max_variants,omitempty"`
}

// MoleculeResult holds the variants generated for one input molecule.
type MoleculeResult struct {
	Parent       string   `json:"parent"`
	ParentSMILES string   `json:"parent_smiles"`
	Count        int      `json:"count"`
	Variants     []Record `json:"variants"`
	Cached       bool     `json:"cached,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// GenerateResponse is the data payload of POST /v1/variants.
type GenerateResponse struct {
	RunID   common.ID        `json:"run_id"`
	Results []MoleculeResult `json:"results"`
}

// RuleInfo describes one available rule for GET /v1/rules.
type RuleInfo struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	NeedsLibrary   bool   `json:"needs_library"`
	EnabledDefault bool   `json:"enabled_by_default"`
}

//Personal.AI order the ending
