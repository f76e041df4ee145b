package chem

import (
	"fmt"

	"github.com/turtacn/minorchanges/pkg/errors"
)

// EditKind names one step of a reaction edit script.
type EditKind string

const (
	EditChangeElement EditKind = "change_element"
	EditSetCharge     EditKind = "set_charge"
	EditSetBondOrder  EditKind = "set_bond_order"
	EditBreakBond     EditKind = "break_bond"
	EditMakeBond      EditKind = "make_bond"
	EditRemoveAtom    EditKind = "remove_atom"
	EditAddAtom       EditKind = "add_atom"
)

// Edit is one step of an edit script.  Atom references index the query
// pattern; atoms created by add_atom are numbered after the pattern atoms in
// the order they are created.
type Edit struct {
	Kind    EditKind
	Atom    int
	Atom2   int
	Element int
	Charge  int
	Order   BondOrder
}

// ValidateEdits checks an edit script against a pattern of patternSize atoms.
func ValidateEdits(patternSize int, edits []Edit) error {
	known := patternSize
	ref := func(i int, x int) error {
		if x < 0 || x >= known {
			return errors.Newf(errors.CodeReactionInvalid, "edit %d references atom %d of %d", i, x, known)
		}
		return nil
	}
	for i, e := range edits {
		switch e.Kind {
		case EditChangeElement:
			if err := ref(i, e.Atom); err != nil {
				return err
			}
			if !HasValenceRules(e.Element) {
				return errors.Newf(errors.CodeReactionInvalid, "edit %d: element %d not supported", i, e.Element)
			}
		case EditSetCharge, EditRemoveAtom:
			if err := ref(i, e.Atom); err != nil {
				return err
			}
		case EditSetBondOrder, EditMakeBond, EditBreakBond:
			if err := ref(i, e.Atom); err != nil {
				return err
			}
			if err := ref(i, e.Atom2); err != nil {
				return err
			}
			if e.Kind != EditBreakBond && (e.Order < Single || e.Order > Triple) {
				return errors.Newf(errors.CodeReactionInvalid, "edit %d: bond order %d", i, e.Order)
			}
		case EditAddAtom:
			if err := ref(i, e.Atom); err != nil {
				return err
			}
			if !HasValenceRules(e.Element) {
				return errors.Newf(errors.CodeReactionInvalid, "edit %d: element %d not supported", i, e.Element)
			}
			known++
		default:
			return errors.Newf(errors.CodeReactionInvalid, "edit %d: unknown kind %q", i, e.Kind)
		}
	}
	return nil
}

// ApplyEdits applies an edit script to a copy of m at the given match.  The
// input molecule is never modified.  Atom removals happen last so earlier
// references stay valid.
func ApplyEdits(m *Molecule, match []int, edits []Edit) (*Molecule, error) {
	out := m.Clone()
	var added []int
	resolve := func(ref int) (int, error) {
		if ref >= 0 && ref < len(match) {
			return match[ref], nil
		}
		k := ref - len(match)
		if k >= 0 && k < len(added) {
			return added[k], nil
		}
		return -1, errors.New(errors.ErrCodeEditFailed, fmt.Sprintf("unresolved atom reference %d", ref))
	}

	var remove []int
	for _, e := range edits {
		a, err := resolve(e.Atom)
		if err != nil {
			return nil, err
		}
		switch e.Kind {
		case EditChangeElement:
			out.atoms[a].Element = e.Element
		case EditSetCharge:
			out.atoms[a].Charge = e.Charge
		case EditRemoveAtom:
			remove = append(remove, a)
		case EditAddAtom:
			n := out.AddAtom(NewAtom(e.Element))
			order := e.Order
			if order == 0 {
				order = Single
			}
			out.AddBond(a, n, order)
			added = append(added, n)
		case EditSetBondOrder, EditBreakBond, EditMakeBond:
			b, err := resolve(e.Atom2)
			if err != nil {
				return nil, err
			}
			bi := out.BondIndex(a, b)
			switch e.Kind {
			case EditSetBondOrder:
				if bi < 0 {
					return nil, errors.New(errors.ErrCodeEditFailed, "set_bond_order on missing bond")
				}
				out.SetBondOrder(bi, e.Order)
			case EditBreakBond:
				if bi < 0 {
					return nil, errors.New(errors.ErrCodeEditFailed, "break_bond on missing bond")
				}
				out.RemoveBond(bi)
			case EditMakeBond:
				if bi >= 0 {
					return nil, errors.New(errors.ErrCodeEditFailed, "make_bond on existing bond")
				}
				out.AddBond(a, b, e.Order)
			}
		}
	}
	if len(remove) > 0 {
		out.RemoveAtoms(remove)
	}
	return out, nil
}

//Personal.AI order the ending
