package chem

import (
	"sort"
	"strconv"
	"strings"
)

// Query is a compiled substructure pattern.  Patterns are written as SMILES
// with a few query conventions: "C" matches aliphatic carbon, "c" aromatic,
// "*" any atom, an unmarked bond between aliphatic atoms matches single or
// aromatic, "~" matches any bond, and a bracket hydrogen count or charge
// constrains the target atom.
type Query struct {
	Source  string
	pattern *Molecule
	order   []int
	anchor  []int
}

// CompileQuery parses and prepares a query.
func CompileQuery(source string) (*Query, error) {
	p, err := ParseQuery(source)
	if err != nil {
		return nil, err
	}
	q := &Query{Source: source, pattern: p}
	q.plan()
	return q, nil
}

// MustCompileQuery is CompileQuery that panics on error.  For tests and
// package-level patterns.
func MustCompileQuery(source string) *Query {
	q, err := CompileQuery(source)
	if err != nil {
		panic(err)
	}
	return q
}

// Size is the number of pattern atoms.
func (q *Query) Size() int { return q.pattern.NumAtoms() }

// plan orders pattern atoms breadth first so each atom after the first of a
// component has an already placed neighbour to anchor the search.
func (q *Query) plan() {
	n := q.pattern.NumAtoms()
	placed := make([]bool, n)
	q.order = q.order[:0]
	q.anchor = q.anchor[:0]
	for start := 0; start < n; start++ {
		if placed[start] {
			continue
		}
		placed[start] = true
		q.order = append(q.order, start)
		q.anchor = append(q.anchor, -1)
		for i := len(q.order) - 1; i < len(q.order); i++ {
			cur := q.order[i]
			for _, nb := range q.pattern.Neighbours(cur) {
				if !placed[nb] {
					placed[nb] = true
					q.order = append(q.order, nb)
					q.anchor = append(q.anchor, cur)
				}
			}
		}
	}
}

func (q *Query) atomMatches(pi int, m *Molecule, t int) bool {
	pa := q.pattern.atoms[pi]
	ta := m.atoms[t]
	if pa.Element != Wildcard {
		if pa.Element != ta.Element || pa.Aromatic != ta.Aromatic {
			return false
		}
	}
	if pa.Charge != 0 && pa.Charge != ta.Charge {
		return false
	}
	if pa.Isotope != 0 && pa.Isotope != ta.Isotope {
		return false
	}
	if pa.HCount >= 0 && m.HydrogenCount(t) != pa.HCount {
		return false
	}
	return true
}

func bondMatches(p, t BondOrder) bool {
	switch p {
	case AnyOrder:
		return true
	case SingleOrAromatic:
		return t == Single || t == Aromatic
	default:
		return p == t
	}
}

// Matches returns every embedding of the pattern in m as a slice mapping
// pattern atom index to target atom index.  limit <= 0 means unlimited.
func (q *Query) Matches(m *Molecule, limit int) [][]int {
	n := q.pattern.NumAtoms()
	if n == 0 || n > m.NumAtoms() {
		return nil
	}
	mapping := make([]int, n)
	for i := range mapping {
		mapping[i] = -1
	}
	used := make([]bool, m.NumAtoms())
	var out [][]int

	var extend func(step int) bool
	extend = func(step int) bool {
		if step == n {
			out = append(out, append([]int(nil), mapping...))
			return limit > 0 && len(out) >= limit
		}
		pi := q.order[step]
		var cands []int
		if a := q.anchor[step]; a >= 0 {
			cands = m.Neighbours(mapping[a])
		} else {
			cands = make([]int, m.NumAtoms())
			for i := range cands {
				cands[i] = i
			}
		}
		for _, t := range cands {
			if used[t] || !q.atomMatches(pi, m, t) {
				continue
			}
			ok := true
			for _, pbi := range q.pattern.BondsOf(pi) {
				pb := q.pattern.bonds[pbi]
				other := pb.Other(pi)
				if mapping[other] < 0 {
					continue
				}
				tbi := m.BondIndex(t, mapping[other])
				if tbi < 0 || !bondMatches(pb.Order, m.bonds[tbi].Order) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			mapping[pi] = t
			used[t] = true
			if extend(step + 1) {
				return true
			}
			mapping[pi] = -1
			used[t] = false
		}
		return false
	}
	extend(0)
	return out
}

// UniqueMatches is Matches with embeddings covering the same atom set
// collapsed to the first one found.
func (q *Query) UniqueMatches(m *Molecule, limit int) [][]int {
	all := q.Matches(m, 0)
	seen := map[string]bool{}
	var out [][]int
	for _, mt := range all {
		s := append([]int(nil), mt...)
		sort.Ints(s)
		var sb strings.Builder
		for _, x := range s {
			sb.WriteString(strconv.Itoa(x))
			sb.WriteByte(',')
		}
		if seen[sb.String()] {
			continue
		}
		seen[sb.String()] = true
		out = append(out, mt)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// HasMatch reports whether the pattern occurs in m.
func (q *Query) HasMatch(m *Molecule) bool {
	return len(q.Matches(m, 1)) > 0
}

// MatchedAtoms returns a per-atom flag set for atoms covered by any match.
func (q *Query) MatchedAtoms(m *Molecule) []bool {
	out := make([]bool, m.NumAtoms())
	for _, mt := range q.Matches(m, 0) {
		for _, t := range mt {
			out[t] = true
		}
	}
	return out
}

//Personal.AI order the ending
