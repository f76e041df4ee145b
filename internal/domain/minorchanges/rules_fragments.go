package minorchanges

import "github.com/turtacn/minorchanges/pkg/chem"

// maxReactionMatches bounds the embeddings considered per reaction.
const maxReactionMatches = 1000

// addFragments bonds each type-compatible fragment to every eligible atom
// that still has a hydrogen.
type addFragments struct {
	baseRule
	lib *FragmentLibrary
}

func (r *addFragments) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	if r.lib.Len() == 0 {
		return
	}
	for a := 0; a < m.NumAtoms(); a++ {
		if !md.Eligible(a) || m.HydrogenCount(a) < 1 {
			continue
		}
		for _, f := range r.lib.ForType(md.Types[a]) {
			if !emit(attachFragment(m, a, f)) {
				return
			}
		}
	}
}

// replaceTerminalFragments swaps a small terminal substituent for each
// library fragment compatible with the atom it hangs from.
type replaceTerminalFragments struct {
	baseRule
	lib      *FragmentLibrary
	maxAtoms int
}

func (r *replaceTerminalFragments) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	if r.lib.Len() == 0 {
		return
	}
	terminalSides(m, md, r.maxAtoms, func(a int, side []int) bool {
		frags := r.lib.ForType(md.Types[a])
		if len(frags) == 0 || m.Bond(m.BondIndex(a, side[0])).Order != chem.Single {
			return true
		}
		base := m.Clone()
		mapping := base.RemoveAtoms(side)
		for _, f := range frags {
			if !emit(attachFragment(base, mapping[a], f)) {
				return false
			}
		}
		return true
	})
}

// insertBivalentFragments splits an acyclic single bond a1-a2 and splices a
// bivalent fragment between the two atoms.
type insertBivalentFragments struct {
	baseRule
	lib *BivalentLibrary
}

func (r *insertBivalentFragments) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	if r.lib.Len() == 0 {
		return
	}
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		if b.Order != chem.Single || md.Rings.IsRingBond(bi) {
			continue
		}
		if !md.Eligible(b.A) || !md.Eligible(b.B) {
			continue
		}
		for _, f := range r.lib.Fragments {
			for _, forward := range f.orientations(md.Types[b.A], md.Types[b.B]) {
				out := m.Clone()
				out.RemoveBond(bi)
				if forward {
					spliceBivalent(out, b.A, b.B, f)
				} else {
					spliceBivalent(out, b.B, b.A, f)
				}
				if !emit(out) {
					return
				}
			}
		}
	}
}

// replaceInnerFragments replaces the acyclic linker between a1 and a2 with
// a bivalent fragment whose attachment span keeps the a1-a2 distance.
type replaceInnerFragments struct {
	baseRule
	lib      *BivalentLibrary
	maxAtoms int
}

func (r *replaceInnerFragments) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	if r.lib.Len() == 0 {
		return
	}
	bySpan := map[int][]*BivalentFragment{}
	for _, f := range r.lib.Fragments {
		bySpan[f.BondsBetween+2] = append(bySpan[f.BondsBetween+2], f)
	}
	for a1 := 0; a1 < m.NumAtoms(); a1++ {
		if !md.Eligible(a1) {
			continue
		}
		for a2 := a1 + 1; a2 < m.NumAtoms(); a2++ {
			if !md.Eligible(a2) {
				continue
			}
			frags := bySpan[md.Distance(a1, a2)]
			if len(frags) == 0 {
				continue
			}
			excise := r.linker(m, md, a1, a2)
			if excise == nil {
				continue
			}
			base := m.Clone()
			mapping := base.RemoveAtoms(excise)
			n1, n2 := mapping[a1], mapping[a2]
			for _, f := range frags {
				for _, forward := range f.orientations(md.Types[a1], md.Types[a2]) {
					out := base.Clone()
					if forward {
						spliceBivalent(out, n1, n2, f)
					} else {
						spliceBivalent(out, n2, n1, f)
					}
					if !emit(out) {
						return
					}
				}
			}
		}
	}
}

// linker returns the atoms strictly between a1 and a2 on their shortest path
// plus anything hanging off them, or nil when the linker is in a ring, not
// eligible or larger than allowed.
func (r *replaceInnerFragments) linker(m *chem.Molecule, md *MoleculeData, a1, a2 int) []int {
	path := md.Path(a1, a2)
	if len(path) < 3 {
		return nil
	}
	inner := path[1 : len(path)-1]
	seen := map[int]bool{a1: true, a2: true}
	var out []int
	for _, a := range inner {
		if md.Rings.InRing(a) || !md.Eligible(a) {
			return nil
		}
		seen[a] = true
		out = append(out, a)
	}
	for i := 0; i < len(out); i++ {
		for _, nb := range m.Neighbours(out[i]) {
			if seen[nb] {
				continue
			}
			if !md.Eligible(nb) {
				return nil
			}
			seen[nb] = true
			out = append(out, nb)
		}
	}
	limit := r.maxAtoms
	if len(inner) > limit {
		limit = len(inner)
	}
	if len(out) > limit {
		return nil
	}
	return out
}

// applyReactions runs every library reaction at every match whose atoms are
// all eligible.
type applyReactions struct {
	baseRule
	lib *ReactionLibrary
}

func (r *applyReactions) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	if r.lib.Len() == 0 {
		return
	}
	for _, rx := range r.lib.Reactions {
		for _, match := range rx.Query.Matches(m, maxReactionMatches) {
			if !allEligible(md, match) {
				continue
			}
			out, err := chem.ApplyEdits(m, match, rx.Edits)
			if err != nil {
				continue
			}
			if !emit(out) {
				return
			}
		}
	}
}

//Personal.AI order the ending
