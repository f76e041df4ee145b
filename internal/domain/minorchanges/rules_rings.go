package minorchanges

import (
	"sort"

	"github.com/turtacn/minorchanges/pkg/chem"
)

// aromaticRing reports whether every atom and bond of ring r is aromatic.
func aromaticRing(m *chem.Molecule, ri *chem.RingInfo, r int) bool {
	for _, a := range ri.Rings[r] {
		if !m.Atom(a).Aromatic {
			return false
		}
	}
	for _, bi := range ri.RingBonds[r] {
		if m.Bond(bi).Order != chem.Aromatic {
			return false
		}
	}
	return true
}

func aromaticRings(m *chem.Molecule, ri *chem.RingInfo) []bool {
	out := make([]bool, len(ri.Rings))
	for r := range ri.Rings {
		out[r] = aromaticRing(m, ri, r)
	}
	return out
}

func allEligible(md *MoleculeData, atoms []int) bool {
	for _, a := range atoms {
		if !md.Eligible(a) {
			return false
		}
	}
	return true
}

// dearomatize saturates the rings in kill on out.  Atoms and bonds that also
// belong to an aromatic ring outside kill keep their aromatic state.
func dearomatize(out *chem.Molecule, ri *chem.RingInfo, arom []bool, kill map[int]bool) {
	keptAtom := map[int]bool{}
	keptBond := map[int]bool{}
	for r := range ri.Rings {
		if !arom[r] || kill[r] {
			continue
		}
		for _, a := range ri.Rings[r] {
			keptAtom[a] = true
		}
		for _, bi := range ri.RingBonds[r] {
			keptBond[bi] = true
		}
	}
	for r := range kill {
		for _, a := range ri.Rings[r] {
			if !keptAtom[a] {
				out.Atom(a).Aromatic = false
			}
		}
		for _, bi := range ri.RingBonds[r] {
			if !keptBond[bi] {
				out.SetBondOrder(bi, chem.Single)
			}
		}
	}
	// Exocyclic aromatic bonds left on atoms that are no longer aromatic.
	for bi := 0; bi < out.NumBonds(); bi++ {
		b := out.Bond(bi)
		if b.Order == chem.Aromatic && (!out.Atom(b.A).Aromatic || !out.Atom(b.B).Aromatic) {
			out.SetBondOrder(bi, chem.Single)
		}
	}
}

// destroyAromaticRings saturates one aromatic ring at a time.
type destroyAromaticRings struct{ baseRule }

func (r *destroyAromaticRings) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	ri := md.Rings
	arom := aromaticRings(m, ri)
	for ring := range ri.Rings {
		if !arom[ring] || !allEligible(md, ri.Rings[ring]) {
			continue
		}
		out := m.Clone()
		dearomatize(out, ri, arom, map[int]bool{ring: true})
		if !emit(out) {
			return
		}
	}
}

// destroyAromaticRingSystems saturates every aromatic ring of a fused system
// holding two or more aromatic rings.
type destroyAromaticRingSystems struct{ baseRule }

func (r *destroyAromaticRingSystems) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	ri := md.Rings
	arom := aromaticRings(m, ri)
	for _, sys := range ri.Systems {
		kill := map[int]bool{}
		for _, ring := range sys {
			if arom[ring] && allEligible(md, ri.Rings[ring]) {
				kill[ring] = true
			}
		}
		if len(kill) < 2 {
			continue
		}
		out := m.Clone()
		dearomatize(out, ri, arom, kill)
		if !emit(out) {
			return
		}
	}
}

// unspiro opens the smaller ring at a spiro centre by breaking the bond to
// the centre's lowest numbered neighbour in that ring.
type unspiro struct{ baseRule }

func (r *unspiro) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	ri := md.Rings
	for a := 0; a < m.NumAtoms(); a++ {
		if ri.AtomRingCount[a] != 2 || !md.Eligible(a) {
			continue
		}
		rings := ri.RingsOf(a)
		if len(rings) != 2 || len(ri.SharedAtoms(rings[0], rings[1])) != 1 {
			continue
		}
		first := rings[0]
		nb := -1
		for _, x := range m.Neighbours(a) {
			if ri.RingContains(first, x) && (nb < 0 || x < nb) {
				nb = x
			}
		}
		if nb < 0 {
			continue
		}
		bi := m.BondIndex(a, nb)
		if m.Bond(bi).Order == chem.Aromatic {
			continue
		}
		out := m.Clone()
		out.RemoveBond(bi)
		if !emit(out) {
			return
		}
	}
}

// removeFusedAromatic deletes an aromatic ring ortho-fused to another ring.
// Up to two substituents on the removed ring move to the fusion atoms.
type removeFusedAromatic struct{ baseRule }

type substituent struct {
	ringAtom int
	atom     int
	order    chem.BondOrder
}

func (r *removeFusedAromatic) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	ri := md.Rings
	arom := aromaticRings(m, ri)
	for _, sys := range ri.Systems {
		if len(sys) < 2 {
			continue
		}
		for _, r1 := range sys {
			if !arom[r1] {
				continue
			}
			for _, r2 := range sys {
				if r2 == r1 || !ri.Fused(r1, r2) {
					continue
				}
				out := r.remove(m, md, arom, r1, r2)
				if out == nil {
					continue
				}
				if !emit(out) {
					return
				}
			}
		}
	}
}

func (r *removeFusedAromatic) remove(m *chem.Molecule, md *MoleculeData, arom []bool, r1, r2 int) *chem.Molecule {
	ri := md.Rings
	anchors := ri.SharedAtoms(r1, r2)
	if len(anchors) != 2 || m.BondIndex(anchors[0], anchors[1]) < 0 {
		return nil
	}
	ring := ri.Rings[r1]
	pos := map[int]int{}
	for i, a := range ring {
		pos[a] = i
	}
	var doomed []int
	var subs []substituent
	for _, x := range ring {
		if x == anchors[0] || x == anchors[1] {
			continue
		}
		if ri.AtomRingCount[x] != 1 || !md.Eligible(x) {
			return nil
		}
		doomed = append(doomed, x)
		for _, bi := range m.BondsOf(x) {
			nb := m.Bond(bi).Other(x)
			if !ri.RingContains(r1, nb) {
				subs = append(subs, substituent{ringAtom: x, atom: nb, order: m.Bond(bi).Order})
			}
		}
	}
	if len(subs) > 2 {
		return nil
	}

	ringDist := func(a, b int) int {
		d := pos[a] - pos[b]
		if d < 0 {
			d = -d
		}
		if n := len(ring); n-d < d {
			d = n - d
		}
		return d
	}
	c1, c2 := anchors[0], anchors[1]
	targets := make([]int, len(subs))
	switch len(subs) {
	case 1:
		targets[0] = c1
		if ringDist(subs[0].ringAtom, c2) < ringDist(subs[0].ringAtom, c1) {
			targets[0] = c2
		}
	case 2:
		sort.SliceStable(subs, func(i, j int) bool {
			bi := ringDist(subs[i].ringAtom, c1) - ringDist(subs[i].ringAtom, c2)
			bj := ringDist(subs[j].ringAtom, c1) - ringDist(subs[j].ringAtom, c2)
			return bi < bj
		})
		targets[0], targets[1] = c1, c2
	}

	out := m.Clone()
	for i, s := range subs {
		if out.AddBond(targets[i], s.atom, s.order) < 0 {
			return nil
		}
	}
	if !arom[r2] {
		stillAromatic := func(a int) bool {
			for _, rr := range ri.RingsOf(a) {
				if rr != r1 && arom[rr] {
					return true
				}
			}
			return false
		}
		for _, a := range anchors {
			if !stillAromatic(a) {
				out.Atom(a).Aromatic = false
			}
		}
		shared := out.BondIndex(c1, c2)
		if out.Bond(shared).Order == chem.Aromatic && !(stillAromatic(c1) && stillAromatic(c2)) {
			out.SetBondOrder(shared, chem.Single)
		}
	}
	out.RemoveAtoms(doomed)
	return out
}

//Personal.AI order the ending
