package chem

import (
	"sort"
	"strconv"
	"strings"
)

// SMILES writes the molecule in atom order.  Use CanonicalSMILES for a
// representation that is independent of atom order.
func (m *Molecule) SMILES() string {
	if len(m.atoms) == 0 {
		return ""
	}
	order := make([]int, len(m.atoms))
	for i := range order {
		order[i] = i
	}
	w := newWriter(m, order)
	var parts []string
	for _, c := range m.Components() {
		parts = append(parts, w.component(c[0]))
	}
	return strings.Join(parts, ".")
}

type child struct {
	atom, bond int
}

type writer struct {
	m        *Molecule
	rank     []int
	visited  []bool
	children [][]child
	opens    [][]int
	closes   [][]int
	digits   map[int]int
	inUse    map[int]bool
	sb       strings.Builder
}

func newWriter(m *Molecule, rank []int) *writer {
	return &writer{m: m, rank: rank, visited: make([]bool, len(m.atoms))}
}

func (w *writer) component(start int) string {
	n := len(w.m.atoms)
	w.children = make([][]child, n)
	w.opens = make([][]int, n)
	w.closes = make([][]int, n)
	w.digits = map[int]int{}
	w.inUse = map[int]bool{}
	w.sb.Reset()

	closureSeen := map[int]bool{}
	var dfs func(a, parentBond int)
	dfs = func(a, parentBond int) {
		w.visited[a] = true
		for _, c := range w.sortedNeighbours(a) {
			if c.bond == parentBond {
				continue
			}
			if w.visited[c.atom] {
				if !closureSeen[c.bond] {
					closureSeen[c.bond] = true
					w.opens[c.atom] = append(w.opens[c.atom], c.bond)
					w.closes[a] = append(w.closes[a], c.bond)
				}
				continue
			}
			w.children[a] = append(w.children[a], c)
			dfs(c.atom, c.bond)
		}
	}
	dfs(start, -1)
	w.emit(start)
	return w.sb.String()
}

func (w *writer) sortedNeighbours(a int) []child {
	var out []child
	for _, bi := range w.m.BondsOf(a) {
		out = append(out, child{atom: w.m.bonds[bi].Other(a), bond: bi})
	}
	sort.Slice(out, func(i, j int) bool { return w.rank[out[i].atom] < w.rank[out[j].atom] })
	return out
}

func (w *writer) emit(a int) {
	w.sb.WriteString(w.m.atomSymbol(a))
	for _, bi := range w.closes[a] {
		d := w.digits[bi]
		w.sb.WriteString(ringDigit(d))
		delete(w.inUse, d)
	}
	for _, bi := range w.opens[a] {
		d := 1
		for w.inUse[d] {
			d++
		}
		w.inUse[d] = true
		w.digits[bi] = d
		w.sb.WriteString(w.m.bondSymbol(bi))
		w.sb.WriteString(ringDigit(d))
	}
	kids := w.children[a]
	for i, c := range kids {
		last := i == len(kids)-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.m.bondSymbol(c.bond))
		w.emit(c.atom)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func ringDigit(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (m *Molecule) bondSymbol(bi int) string {
	b := m.bonds[bi]
	switch b.Order {
	case Double:
		return "="
	case Triple:
		return "#"
	case Aromatic:
		if m.atoms[b.A].Aromatic && m.atoms[b.B].Aromatic {
			return ""
		}
		return ":"
	case AnyOrder:
		return "~"
	case SingleOrAromatic:
		return ""
	default:
		if m.atoms[b.A].Aromatic && m.atoms[b.B].Aromatic {
			return "-"
		}
		return ""
	}
}

func (m *Molecule) atomSymbol(a int) string {
	at := m.atoms[a]
	sym := ElementSymbol(at.Element)
	if at.Aromatic {
		sym = strings.ToLower(sym)
	}
	bracket := at.Charge != 0 || at.Isotope != 0
	if at.Element != Wildcard {
		if !IsOrganicSubset(at.Element) {
			bracket = true
		}
		if at.Aromatic {
			if _, ok := aromaticOrganic[rune(sym[0])]; !ok || len(sym) > 1 {
				bracket = true
			}
		}
		if at.HCount >= 0 && at.HCount != m.implicitHydrogens(a) {
			bracket = true
		}
	}
	if !bracket {
		return sym
	}
	var sb strings.Builder
	sb.WriteByte('[')
	if at.Isotope != 0 {
		sb.WriteString(strconv.Itoa(at.Isotope))
	}
	sb.WriteString(sym)
	if at.Element != Wildcard {
		switch h := m.HydrogenCount(a); {
		case h == 1:
			sb.WriteByte('H')
		case h > 1:
			sb.WriteByte('H')
			sb.WriteString(strconv.Itoa(h))
		}
	}
	switch {
	case at.Charge == 1:
		sb.WriteByte('+')
	case at.Charge == -1:
		sb.WriteByte('-')
	case at.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(at.Charge))
	case at.Charge < -1:
		sb.WriteString("-" + strconv.Itoa(-at.Charge))
	}
	sb.WriteByte(']')
	return sb.String()
}

//Personal.AI order the ending
