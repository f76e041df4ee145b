package chem

import "sort"

// BondOrder is the multiplicity of a bond.  SingleOrAromatic and AnyOrder only
// appear in query molecules.
type BondOrder int

const (
	Single           BondOrder = 1
	Double           BondOrder = 2
	Triple           BondOrder = 3
	Aromatic         BondOrder = 4
	SingleOrAromatic BondOrder = 5
	AnyOrder         BondOrder = 6
)

// Contribution is the number of valence units the bond consumes on each end.
// Aromatic bonds count one; the extra pi electron is accounted per atom.
func (o BondOrder) Contribution() int {
	switch o {
	case Double:
		return 2
	case Triple:
		return 3
	default:
		return 1
	}
}

// Atom is a node of the molecular graph.
type Atom struct {
	Element  int
	Charge   int
	Isotope  int
	Aromatic bool
	// HCount is the bracket hydrogen count, or -1 when hydrogens are implicit
	// and derived from the standard valences.
	HCount int
}

// NewAtom returns a neutral aliphatic atom with implicit hydrogens.
func NewAtom(element int) Atom {
	return Atom{Element: element, HCount: -1}
}

// Bond connects atoms A and B.
type Bond struct {
	A, B  int
	Order BondOrder
}

// Other returns the atom at the opposite end of the bond from a.
func (b Bond) Other(a int) int {
	if b.A == a {
		return b.B
	}
	return b.A
}

// Molecule is an undirected graph of atoms and bonds.  The zero value is an
// empty molecule.  Molecules are not safe for concurrent mutation.
type Molecule struct {
	Name  string
	atoms []Atom
	bonds []Bond
	adj   [][]int
}

// NewMolecule returns an empty molecule.
func NewMolecule() *Molecule { return &Molecule{} }

// Clone returns a deep copy.
func (m *Molecule) Clone() *Molecule {
	out := &Molecule{
		Name:  m.Name,
		atoms: make([]Atom, len(m.atoms)),
		bonds: make([]Bond, len(m.bonds)),
	}
	copy(out.atoms, m.atoms)
	copy(out.bonds, m.bonds)
	return out
}

func (m *Molecule) NumAtoms() int { return len(m.atoms) }
func (m *Molecule) NumBonds() int { return len(m.bonds) }

// Atom returns a pointer to atom i so callers can edit element, charge,
// isotope, aromaticity and hydrogen count in place.
func (m *Molecule) Atom(i int) *Atom { return &m.atoms[i] }

// Bond returns bond i by value; use SetBondOrder or RemoveBond to change it.
func (m *Molecule) Bond(i int) Bond { return m.bonds[i] }

func (m *Molecule) adjacency() [][]int {
	if m.adj == nil || len(m.adj) != len(m.atoms) {
		m.adj = make([][]int, len(m.atoms))
		for bi, b := range m.bonds {
			m.adj[b.A] = append(m.adj[b.A], bi)
			m.adj[b.B] = append(m.adj[b.B], bi)
		}
	}
	return m.adj
}

// BondsOf returns the indices of bonds incident to atom a.
func (m *Molecule) BondsOf(a int) []int { return m.adjacency()[a] }

// Neighbours returns the atoms bonded to a, in bond order.
func (m *Molecule) Neighbours(a int) []int {
	bs := m.adjacency()[a]
	out := make([]int, len(bs))
	for i, bi := range bs {
		out[i] = m.bonds[bi].Other(a)
	}
	return out
}

// Degree is the number of explicit neighbours of a.
func (m *Molecule) Degree(a int) int { return len(m.adjacency()[a]) }

// BondIndex returns the index of the bond between a and b, or -1.
func (m *Molecule) BondIndex(a, b int) int {
	for _, bi := range m.adjacency()[a] {
		if m.bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// AddAtom appends an atom and returns its index.
func (m *Molecule) AddAtom(a Atom) int {
	m.atoms = append(m.atoms, a)
	if m.adj != nil {
		m.adj = append(m.adj, nil)
	}
	return len(m.atoms) - 1
}

// AddBond bonds a and b and returns the new bond index, or -1 when the bond
// would be a self loop or a duplicate.  Atoms with a fixed hydrogen count give
// up hydrogens to make room for the new bond.
func (m *Molecule) AddBond(a, b int, order BondOrder) int {
	if a == b || m.BondIndex(a, b) >= 0 {
		return -1
	}
	m.consumeH(a, order.Contribution())
	m.consumeH(b, order.Contribution())
	return m.addBondRaw(a, b, order)
}

func (m *Molecule) addBondRaw(a, b int, order BondOrder) int {
	m.bonds = append(m.bonds, Bond{A: a, B: b, Order: order})
	bi := len(m.bonds) - 1
	if m.adj != nil {
		m.adj[a] = append(m.adj[a], bi)
		m.adj[b] = append(m.adj[b], bi)
	}
	return bi
}

func (m *Molecule) consumeH(a, n int) {
	at := &m.atoms[a]
	if at.HCount < 0 {
		return
	}
	at.HCount -= n
	if at.HCount < 0 {
		at.HCount = 0
	}
}

func (m *Molecule) releaseH(a, n int) {
	if m.atoms[a].HCount >= 0 {
		m.atoms[a].HCount += n
	}
}

// SetBondOrder changes the order of bond bi, moving hydrogens on atoms with a
// fixed hydrogen count to keep their valence constant.
func (m *Molecule) SetBondOrder(bi int, order BondOrder) {
	b := m.bonds[bi]
	delta := order.Contribution() - b.Order.Contribution()
	if delta > 0 {
		m.consumeH(b.A, delta)
		m.consumeH(b.B, delta)
	} else if delta < 0 {
		m.releaseH(b.A, -delta)
		m.releaseH(b.B, -delta)
	}
	m.bonds[bi].Order = order
}

// RemoveBond deletes bond bi.  Bond indices above bi shift down by one.
func (m *Molecule) RemoveBond(bi int) {
	b := m.bonds[bi]
	m.releaseH(b.A, b.Order.Contribution())
	m.releaseH(b.B, b.Order.Contribution())
	m.bonds = append(m.bonds[:bi], m.bonds[bi+1:]...)
	m.adj = nil
}

// RemoveAtoms deletes the given atoms and their bonds and returns the mapping
// from old atom index to new index (-1 for removed atoms).
func (m *Molecule) RemoveAtoms(remove []int) []int {
	gone := make([]bool, len(m.atoms))
	for _, a := range remove {
		gone[a] = true
	}
	mapping := make([]int, len(m.atoms))
	atoms := m.atoms[:0:0]
	for i, a := range m.atoms {
		if gone[i] {
			mapping[i] = -1
			continue
		}
		mapping[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := m.bonds[:0:0]
	for _, b := range m.bonds {
		switch {
		case gone[b.A] && gone[b.B]:
		case gone[b.A]:
			if atoms[mapping[b.B]].HCount >= 0 {
				atoms[mapping[b.B]].HCount += b.Order.Contribution()
			}
		case gone[b.B]:
			if atoms[mapping[b.A]].HCount >= 0 {
				atoms[mapping[b.A]].HCount += b.Order.Contribution()
			}
		default:
			bonds = append(bonds, Bond{A: mapping[b.A], B: mapping[b.B], Order: b.Order})
		}
	}
	m.atoms = atoms
	m.bonds = bonds
	m.adj = nil
	return mapping
}

// ─────────────────────────────────────────────────────────────────────────────
// Valence
// ─────────────────────────────────────────────────────────────────────────────

// BondSum is the number of valence units consumed by explicit bonds of a.
func (m *Molecule) BondSum(a int) int {
	sum := 0
	for _, bi := range m.adjacency()[a] {
		sum += m.bonds[bi].Order.Contribution()
	}
	return sum
}

// piContribution is the extra valence unit an aromatic atom spends on the
// delocalised system.  Chalcogens donate a lone pair instead, and atoms with
// no room left (pyrrole-type nitrogen, ring carbonyl carbon) contribute none.
func (m *Molecule) piContribution(a int) int {
	at := m.atoms[a]
	if !at.Aromatic {
		return 0
	}
	switch at.Element {
	case B, C, N, P, Si:
	default:
		return 0
	}
	used := m.BondSum(a) + 1
	if at.HCount > 0 {
		used += at.HCount
	}
	if used > MaxValence(at.Element, at.Charge) {
		return 0
	}
	return 1
}

// HydrogenCount returns the number of hydrogens on a, implicit or fixed.
func (m *Molecule) HydrogenCount(a int) int {
	at := m.atoms[a]
	if at.HCount >= 0 {
		return at.HCount
	}
	if !IsOrganicSubset(at.Element) {
		return 0
	}
	used := m.BondSum(a) + m.piContribution(a)
	for _, v := range allowedValences(at.Element, at.Charge) {
		if v >= used {
			return v - used
		}
	}
	return 0
}

// implicitHydrogens is what HydrogenCount would return if a had no fixed
// hydrogen count.
func (m *Molecule) implicitHydrogens(a int) int {
	saved := m.atoms[a].HCount
	m.atoms[a].HCount = -1
	h := m.HydrogenCount(a)
	m.atoms[a].HCount = saved
	return h
}

// Valence is bonds plus hydrogens plus the aromatic contribution.
func (m *Molecule) Valence(a int) int {
	return m.BondSum(a) + m.piContribution(a) + m.HydrogenCount(a)
}

// AtomValid reports whether atom a is within its standard valence and its
// aromatic flag is consistent with its bonds.
func (m *Molecule) AtomValid(a int) bool {
	at := m.atoms[a]
	if HasValenceRules(at.Element) {
		if m.Valence(a) > MaxValence(at.Element, at.Charge) {
			return false
		}
	}
	aromaticBonds := 0
	for _, bi := range m.adjacency()[a] {
		b := m.bonds[bi]
		if b.Order == Aromatic {
			if !m.atoms[b.Other(a)].Aromatic || !at.Aromatic {
				return false
			}
			aromaticBonds++
		}
	}
	if at.Aromatic && aromaticBonds < 2 {
		return false
	}
	return true
}

// Valid reports whether every atom passes AtomValid.
func (m *Molecule) Valid() bool {
	return m.FirstInvalidAtom() < 0
}

// FirstInvalidAtom returns the lowest index failing AtomValid, or -1.
func (m *Molecule) FirstInvalidAtom() int {
	for a := range m.atoms {
		if !m.AtomValid(a) {
			return a
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────────────────
// Whole-molecule helpers
// ─────────────────────────────────────────────────────────────────────────────

// HeavyAtomCount counts atoms other than hydrogen.
func (m *Molecule) HeavyAtomCount() int {
	n := 0
	for _, a := range m.atoms {
		if a.Element != H {
			n++
		}
	}
	return n
}

// HasIsotopes reports whether any atom carries an isotope label.
func (m *Molecule) HasIsotopes() bool {
	for _, a := range m.atoms {
		if a.Isotope != 0 {
			return true
		}
	}
	return false
}

// ClearIsotopes removes every isotope label and reports whether any was set.
func (m *Molecule) ClearIsotopes() bool {
	changed := false
	for i := range m.atoms {
		if m.atoms[i].Isotope != 0 {
			m.atoms[i].Isotope = 0
			changed = true
		}
	}
	return changed
}

// Components returns the connected components as sorted atom index lists,
// ordered by their lowest atom index.
func (m *Molecule) Components() [][]int {
	seen := make([]bool, len(m.atoms))
	var out [][]int
	for start := range m.atoms {
		if seen[start] {
			continue
		}
		comp := []int{start}
		seen[start] = true
		for i := 0; i < len(comp); i++ {
			for _, nb := range m.Neighbours(comp[i]) {
				if !seen[nb] {
					seen[nb] = true
					comp = append(comp, nb)
				}
			}
		}
		sort.Ints(comp)
		out = append(out, comp)
	}
	return out
}

// ReduceToLargestFragment drops every component except the one with the most
// heavy atoms and reports whether anything was removed.
func (m *Molecule) ReduceToLargestFragment() bool {
	comps := m.Components()
	if len(comps) < 2 {
		return false
	}
	best, bestHeavy := 0, -1
	for i, c := range comps {
		heavy := 0
		for _, a := range c {
			if m.atoms[a].Element != H {
				heavy++
			}
		}
		if heavy > bestHeavy {
			best, bestHeavy = i, heavy
		}
	}
	var remove []int
	for i, c := range comps {
		if i != best {
			remove = append(remove, c...)
		}
	}
	m.RemoveAtoms(remove)
	return true
}

// SideOf returns the atoms reachable from start without crossing the bond
// start-blocked.
func (m *Molecule) SideOf(start, blocked int) []int {
	seen := map[int]bool{start: true, blocked: true}
	out := []int{start}
	for i := 0; i < len(out); i++ {
		for _, nb := range m.Neighbours(out[i]) {
			if out[i] == start && nb == blocked {
				continue
			}
			if !seen[nb] {
				seen[nb] = true
				out = append(out, nb)
			}
		}
	}
	return out
}

// AppendMolecule copies every atom and bond of other into m and returns the
// index offset of the copied atoms.
func (m *Molecule) AppendMolecule(other *Molecule) int {
	offset := len(m.atoms)
	for _, a := range other.atoms {
		m.AddAtom(a)
	}
	for _, b := range other.bonds {
		m.addBondRaw(b.A+offset, b.B+offset, b.Order)
	}
	return offset
}

//Personal.AI order the ending
