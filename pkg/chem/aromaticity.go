package chem

// maxUnionRings bounds the size of a fused system tested as one unit.
const maxUnionRings = 6

type ringSet struct {
	atoms []int
	bonds []int
}

// Aromatize marks rings that satisfy the Hückel 4n+2 rule as aromatic, so a
// Kekulé structure and its aromatic form share one graph.  Single rings, pairs
// of rings sharing a bond and whole fused systems of up to six rings are
// tested.  Hydrogen counts are preserved: an atom whose implicit count would
// change (pyrrole-type nitrogen) gets a fixed count.  It reports whether
// anything changed.
func (m *Molecule) Aromatize() bool {
	if len(m.bonds) < 3 {
		return false
	}
	ri := m.PerceiveRings()
	if len(ri.Rings) == 0 {
		return false
	}

	var marked []ringSet
	for _, s := range candidateSets(ri) {
		if m.huckel(ri, s) {
			marked = append(marked, s)
		}
	}
	if len(marked) == 0 {
		return false
	}

	hs := map[int]int{}
	for _, s := range marked {
		for _, a := range s.atoms {
			if _, ok := hs[a]; !ok {
				hs[a] = m.HydrogenCount(a)
			}
		}
	}
	for _, s := range marked {
		for _, a := range s.atoms {
			m.atoms[a].Aromatic = true
		}
		for _, bi := range s.bonds {
			m.bonds[bi].Order = Aromatic
		}
	}
	for a, h := range hs {
		if m.atoms[a].HCount < 0 && m.HydrogenCount(a) != h {
			m.atoms[a].HCount = h
		}
	}
	return true
}

func candidateSets(ri *RingInfo) []ringSet {
	out := make([]ringSet, 0, len(ri.Rings))
	for r := range ri.Rings {
		out = append(out, unionOf(ri, r))
	}
	for _, sys := range ri.Systems {
		if len(sys) < 2 {
			continue
		}
		for i := 0; i < len(sys); i++ {
			for j := i + 1; j < len(sys); j++ {
				if sharesBond(ri.RingBonds[sys[i]], ri.RingBonds[sys[j]]) {
					out = append(out, unionOf(ri, sys[i], sys[j]))
				}
			}
		}
		if len(sys) > 2 && len(sys) <= maxUnionRings {
			out = append(out, unionOf(ri, sys...))
		}
	}
	return out
}

func unionOf(ri *RingInfo, rings ...int) ringSet {
	var s ringSet
	seenA := map[int]bool{}
	seenB := map[int]bool{}
	for _, r := range rings {
		for _, a := range ri.Rings[r] {
			if !seenA[a] {
				seenA[a] = true
				s.atoms = append(s.atoms, a)
			}
		}
		for _, bi := range ri.RingBonds[r] {
			if !seenB[bi] {
				seenB[bi] = true
				s.bonds = append(s.bonds, bi)
			}
		}
	}
	return s
}

// huckel reports whether s is a not yet aromatic ring set with 4n+2 pi
// electrons.
func (m *Molecule) huckel(ri *RingInfo, s ringSet) bool {
	inBond := make(map[int]bool, len(s.bonds))
	done := true
	for _, bi := range s.bonds {
		inBond[bi] = true
		if m.bonds[bi].Order != Aromatic {
			done = false
		}
	}
	for _, a := range s.atoms {
		if !m.atoms[a].Aromatic {
			done = false
		}
	}
	if done {
		return false
	}
	total := 0
	for _, a := range s.atoms {
		e := m.piElectrons(ri, a, inBond)
		if e < 0 {
			return false
		}
		total += e
	}
	return total%4 == 2
}

// piElectrons is the number of electrons atom a gives to a ring set whose
// bonds are inBond, or -1 when a cannot be part of an aromatic ring.
func (m *Molecule) piElectrons(ri *RingInfo, a int, inBond map[int]bool) int {
	at := m.atoms[a]
	switch at.Element {
	case B, C, N, O, P, S, Se:
	default:
		return -1
	}

	double := -1
	for _, bi := range m.adjacency()[a] {
		switch m.bonds[bi].Order {
		case Triple:
			return -1
		case Double:
			if double >= 0 {
				return -1
			}
			double = bi
		}
	}

	if at.Aromatic {
		switch at.Element {
		case O, S, Se:
			return 2
		case B:
			return 0
		case N, P:
			if at.Charge == 0 && (m.HydrogenCount(a) > 0 || m.Degree(a) == 3) {
				return 2
			}
			return 1
		}
		if double >= 0 && !inBond[double] {
			return 0
		}
		return 1
	}

	if double >= 0 {
		if inBond[double] {
			return 1
		}
		if ri.IsRingBond(double) {
			return -1
		}
		switch m.atoms[m.bonds[double].Other(a)].Element {
		case N, O, S:
			return 0
		}
		return -1
	}

	deg := m.Degree(a)
	switch at.Element {
	case N, P:
		if at.Charge == 0 && deg+m.HydrogenCount(a) == 3 {
			return 2
		}
	case O, S, Se:
		if at.Charge == 0 && deg == 2 {
			return 2
		}
	case C:
		switch at.Charge {
		case -1:
			return 2
		case 1:
			return 0
		}
	case B:
		if at.Charge == 0 && deg+m.HydrogenCount(a) == 3 {
			return 0
		}
	}
	return -1
}

//Personal.AI order the ending
