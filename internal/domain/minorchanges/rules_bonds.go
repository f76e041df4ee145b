package minorchanges

import "github.com/turtacn/minorchanges/pkg/chem"

// ─────────────────────────────────────────────────────────────────────────────
// Bond order and element changes
// ─────────────────────────────────────────────────────────────────────────────

func hasMultipleBond(m *chem.Molecule, a int) bool {
	for _, bi := range m.BondsOf(a) {
		if o := m.Bond(bi).Order; o == chem.Double || o == chem.Triple {
			return true
		}
	}
	return false
}

// singleToDouble raises a non-aromatic single bond to double when both ends
// have a hydrogen to give up and no other multiple bond.
type singleToDouble struct{ baseRule }

func (r *singleToDouble) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		if b.Order != chem.Single || !md.Eligible(b.A) || !md.Eligible(b.B) {
			continue
		}
		if m.Atom(b.A).Aromatic || m.Atom(b.B).Aromatic {
			continue
		}
		if m.HydrogenCount(b.A) < 1 || m.HydrogenCount(b.B) < 1 {
			continue
		}
		if hasMultipleBond(m, b.A) || hasMultipleBond(m, b.B) {
			continue
		}
		out := m.Clone()
		out.SetBondOrder(bi, chem.Double)
		if !emit(out) {
			return
		}
	}
}

// doubleToSingle lowers a non-aromatic double bond.  Atoms with a fixed
// hydrogen count are left alone.
type doubleToSingle struct{ baseRule }

func (r *doubleToSingle) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		if b.Order != chem.Double || !md.Eligible(b.A) || !md.Eligible(b.B) {
			continue
		}
		if m.Atom(b.A).HCount >= 0 || m.Atom(b.B).HCount >= 0 {
			continue
		}
		out := m.Clone()
		out.SetBondOrder(bi, chem.Single)
		if !emit(out) {
			return
		}
	}
}

// carbonToNitrogen turns a carbon bearing a hydrogen into nitrogen; aromatic
// CH becomes pyridine-type n.
type carbonToNitrogen struct{ baseRule }

func (r *carbonToNitrogen) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		if at.Element != chem.C || at.Charge != 0 || !md.Eligible(a) {
			continue
		}
		if m.HydrogenCount(a) < 1 {
			continue
		}
		out := m.Clone()
		x := out.Atom(a)
		x.Element = chem.N
		if x.HCount > 0 {
			x.HCount--
		}
		if !emit(out) {
			return
		}
	}
}

// carbonToOxygen turns an aliphatic carbon with only single bonds and at
// most two heavy neighbours into oxygen.
type carbonToOxygen struct{ baseRule }

func (r *carbonToOxygen) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		if at.Element != chem.C || at.Aromatic || at.Charge != 0 || !md.Eligible(a) {
			continue
		}
		if hasMultipleBond(m, a) || m.BondSum(a) > 2 {
			continue
		}
		out := m.Clone()
		x := out.Atom(a)
		x.Element = chem.O
		if x.HCount >= 0 {
			x.HCount = 2 - m.BondSum(a)
		}
		if !emit(out) {
			return
		}
	}
}

// nitrogenToCarbon turns a neutral nitrogen into carbon.  Aromatic nitrogen
// is only changed when it is pyridine-type.
type nitrogenToCarbon struct{ baseRule }

func (r *nitrogenToCarbon) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		if at.Element != chem.N || at.Charge != 0 || !md.Eligible(a) {
			continue
		}
		if at.Aromatic && (m.Degree(a) != 2 || m.HydrogenCount(a) != 0) {
			continue
		}
		out := m.Clone()
		x := out.Atom(a)
		x.Element = chem.C
		if x.HCount >= 0 {
			x.HCount++
		}
		if !emit(out) {
			return
		}
	}
}

// swapAdjacentAtoms exchanges two bonded aliphatic atoms of different
// identity when each has a further neighbour, moving a1-a2 inside the chain
// a0-a1-a2-a3.
type swapAdjacentAtoms struct{ baseRule }

func (r *swapAdjacentAtoms) Generate(m *chem.Molecule, md *MoleculeData, emit Emit) {
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		x, y := m.Atom(b.A), m.Atom(b.B)
		if x.Aromatic || y.Aromatic || !md.Eligible(b.A) || !md.Eligible(b.B) {
			continue
		}
		if x.Element == y.Element && x.Charge == y.Charge {
			continue
		}
		if m.Degree(b.A) < 2 || m.Degree(b.B) < 2 {
			continue
		}
		out := m.Clone()
		*out.Atom(b.A), *out.Atom(b.B) = *y, *x
		if !emit(out) {
			return
		}
	}
}

//Personal.AI order the ending
