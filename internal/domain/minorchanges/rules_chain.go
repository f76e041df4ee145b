package minorchanges

import "github.com/turtacn/minorchanges/pkg/chem"

// insertCH2 places a methylene into an acyclic single bond.
type insertCH2 struct{ baseRule }

func (r *insertCH2) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		if b.Order != chem.Single || md.Rings.IsRingBond(bi) {
			continue
		}
		if !md.Eligible(b.A) || !md.Eligible(b.B) {
			continue
		}
		out := m.Clone()
		out.RemoveBond(bi)
		c := out.AddAtom(chem.NewAtom(chem.C))
		out.AddBond(b.A, c, chem.Single)
		out.AddBond(c, b.B, chem.Single)
		if !emit(out) {
			return
		}
	}
}

// removeCH2 deletes a CH2 between two single-bonded neighbours and joins
// them.
type removeCH2 struct{ baseRule }

func (r *removeCH2) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		if at.Element != chem.C || at.Aromatic || at.Charge != 0 || at.Isotope != 0 {
			continue
		}
		if !md.Eligible(a) || m.Degree(a) != 2 || m.HydrogenCount(a) != 2 {
			continue
		}
		if hasMultipleBond(m, a) {
			continue
		}
		nb := m.Neighbours(a)
		if m.BondIndex(nb[0], nb[1]) >= 0 {
			continue
		}
		out := m.Clone()
		mapping := out.RemoveAtoms([]int{a})
		out.AddBond(mapping[nb[0]], mapping[nb[1]], chem.Single)
		if !emit(out) {
			return
		}
	}
}

// threeMemberedRings closes a cyclopropane-type ring over a-x-b.
type threeMemberedRings struct{ baseRule }

func (r *threeMemberedRings) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for x := 0; x < m.NumAtoms(); x++ {
		if m.Atom(x).Aromatic || !md.Eligible(x) {
			continue
		}
		bonds := m.BondsOf(x)
		for i := 0; i < len(bonds); i++ {
			for j := i + 1; j < len(bonds); j++ {
				bi, bj := m.Bond(bonds[i]), m.Bond(bonds[j])
				if bi.Order != chem.Single || bj.Order != chem.Single {
					continue
				}
				if md.Rings.IsRingBond(bonds[i]) || md.Rings.IsRingBond(bonds[j]) {
					continue
				}
				a, b := bi.Other(x), bj.Other(x)
				if !r.ok(m, md, a) || !r.ok(m, md, b) || m.BondIndex(a, b) >= 0 {
					continue
				}
				out := m.Clone()
				out.AddBond(a, b, chem.Single)
				if !emit(out) {
					return
				}
			}
		}
	}
}

func (r *threeMemberedRings) ok(m *chem.Molecule, md *MoleculeData, a int) bool {
	return md.Eligible(a) && !m.Atom(a).Aromatic && m.HydrogenCount(a) >= 1
}

// terminalSides calls fn for every acyclic bond a-b where the part of the
// molecule hanging off b is at most maxAtoms atoms and smaller than the rest.
func terminalSides(m *chem.Molecule, md *MoleculeData, maxAtoms int, fn func(a int, side []int) bool) {
	n := m.NumAtoms()
	for bi := 0; bi < m.NumBonds(); bi++ {
		if md.Rings.IsRingBond(bi) {
			continue
		}
		b := m.Bond(bi)
		for _, dir := range [2][2]int{{b.A, b.B}, {b.B, b.A}} {
			a, x := dir[0], dir[1]
			if !md.Eligible(a) || !md.Eligible(x) {
				continue
			}
			side := m.SideOf(x, a)
			if len(side) > maxAtoms || 2*len(side) >= n {
				continue
			}
			if !fn(a, side) {
				return
			}
		}
	}
}

// removeFragment deletes a small terminal substituent.
type removeFragment struct {
	baseRule
	maxAtoms int
}

func (r *removeFragment) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	terminalSides(m, md, r.maxAtoms, func(_ int, side []int) bool {
		out := m.Clone()
		out.RemoveAtoms(side)
		return emit(out)
	})
}

//Personal.AI order the ending
