package chem

import (
	"sort"
	"strings"
)

// CanonicalRanks assigns every atom a rank that depends only on the graph,
// not on atom order.  Ranks start from element, charge, isotope, aromaticity,
// degree, hydrogen count and ring membership and are refined by neighbour
// ranks until stable; remaining ties are broken one atom at a time.
func (m *Molecule) CanonicalRanks() []int {
	n := len(m.atoms)
	if n == 0 {
		return nil
	}
	ri := m.PerceiveRings()
	keys := make([][]int, n)
	for a, at := range m.atoms {
		arom := 0
		if at.Aromatic {
			arom = 1
		}
		keys[a] = []int{at.Element, at.Charge, at.Isotope, arom, m.Degree(a), m.HydrogenCount(a), ri.AtomRingCount[a]}
	}
	ranks := rankByKeys(keys)
	ranks = m.refine(ranks)
	for classes(ranks) < n {
		tied := lowestTiedRank(ranks)
		broken := false
		for a := range ranks {
			ranks[a] *= 2
			if !broken && ranks[a] == tied*2 {
				ranks[a]--
				broken = true
			}
		}
		ranks = m.refine(ranks)
	}
	return ranks
}

func (m *Molecule) refine(ranks []int) []int {
	n := len(ranks)
	for {
		keys := make([][]int, n)
		for a := 0; a < n; a++ {
			nbs := make([]int, 0, m.Degree(a))
			for _, bi := range m.BondsOf(a) {
				b := m.bonds[bi]
				nbs = append(nbs, ranks[b.Other(a)]*8+int(b.Order))
			}
			sort.Ints(nbs)
			keys[a] = append([]int{ranks[a]}, nbs...)
		}
		next := rankByKeys(keys)
		if classes(next) == classes(ranks) {
			return next
		}
		ranks = next
	}
}

func rankByKeys(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return lessInts(keys[idx[i]], keys[idx[j]]) })
	ranks := make([]int, len(keys))
	r := 0
	for i, a := range idx {
		if i > 0 && lessInts(keys[idx[i-1]], keys[a]) {
			r++
		}
		ranks[a] = r
	}
	return ranks
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func classes(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func lowestTiedRank(ranks []int) int {
	count := map[int]int{}
	for _, r := range ranks {
		count[r]++
	}
	best := -1
	for r, c := range count {
		if c > 1 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

// CanonicalSMILES writes the molecule with atoms visited in canonical rank
// order.  Components are written separately and joined in sorted order.
func (m *Molecule) CanonicalSMILES() string {
	if len(m.atoms) == 0 {
		return ""
	}
	ranks := m.CanonicalRanks()
	comps := m.Components()
	parts := make([]string, 0, len(comps))
	w := newWriter(m, ranks)
	for _, c := range comps {
		start := c[0]
		for _, a := range c {
			if ranks[a] < ranks[start] {
				start = a
			}
		}
		parts = append(parts, w.component(start))
	}
	sort.Strings(parts)
	return strings.Join(parts, ".")
}

// CanonicalKey is the deduplication key of a molecule.
func (m *Molecule) CanonicalKey() string {
	return m.CanonicalSMILES()
}

//Personal.AI order the ending
