// Package variants orchestrates variant generation: it builds engines from
// configuration, loads libraries, fans molecules out over workers and hands
// results to the configured sinks.
package variants

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
)

// BuildOptions turns the engine section of the configuration into engine
// options.  No rules configured selects the library-free defaults.
func BuildOptions(cfg config.EngineConfig) (minorchanges.Options, error) {
	opts := minorchanges.DefaultOptions()

	if len(cfg.Rules) > 0 {
		rules, err := minorchanges.ParseRules(cfg.Rules)
		if err != nil {
			return opts, err
		}
		opts.Rules = rules
	}
	typing, err := minorchanges.ParseAtomTyping(cfg.AtomTyping)
	if err != nil {
		return opts, err
	}
	transforms, err := minorchanges.ParseElementTransformations(cfg.ElementTransformations)
	if err != nil {
		return opts, err
	}
	scope, err := minorchanges.CompileScope(cfg.OnlyProcessQueries)
	if err != nil {
		return opts, err
	}

	opts.MaxVariants = cfg.MaxVariants
	if cfg.MaxFragmentAtoms > 0 {
		opts.MaxFragmentAtoms = cfg.MaxFragmentAtoms
	}
	opts.AtomTyping = typing
	opts.ReduceToLargestFragment = cfg.ReduceToLargestFragment
	opts.RemoveIsotopes = cfg.RemoveIsotopes
	opts.Neutralise = cfg.Neutralise
	if len(transforms) > 0 {
		opts.ElementTransformations = transforms
	}
	opts.OnlyProcess = scope
	return opts, nil
}

// Fingerprint identifies the output-relevant state of an engine: two
// engines with the same fingerprint produce the same variants for the same
// input.  libDigest covers library contents.
func Fingerprint(opts minorchanges.Options, libDigest string) string {
	var b strings.Builder
	rules := append([]minorchanges.RuleID(nil), opts.Rules...)
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	for _, r := range rules {
		fmt.Fprintf(&b, "r%d;", r)
	}
	fmt.Fprintf(&b, "max=%d;frag=%d;typing=%s;", opts.MaxVariants, opts.MaxFragmentAtoms, opts.AtomTyping)
	fmt.Fprintf(&b, "largest=%t;iso=%t;neut=%t;", opts.ReduceToLargestFragment, opts.RemoveIsotopes, opts.Neutralise)

	from := make([]int, 0, len(opts.ElementTransformations))
	for z := range opts.ElementTransformations {
		from = append(from, z)
	}
	sort.Ints(from)
	for _, z := range from {
		fmt.Fprintf(&b, "e%d=%d;", z, opts.ElementTransformations[z])
	}
	for _, q := range opts.OnlyProcess {
		fmt.Fprintf(&b, "q%s;", q.Source)
	}
	b.WriteString("lib=" + libDigest)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

//Personal.AI order the ending
