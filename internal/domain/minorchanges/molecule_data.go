package minorchanges

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// AtomTyping names how atoms are classified for fragment compatibility.
type AtomTyping string

const (
	// TypingElement uses the atomic number.
	TypingElement AtomTyping = "element"
	// TypingRing uses atomic number * 10 plus 0 for chain, 1 for aliphatic
	// ring and 2 for aromatic atoms.
	TypingRing AtomTyping = "ring"
)

// ParseAtomTyping validates a typing name.  Empty selects TypingElement.
func ParseAtomTyping(s string) (AtomTyping, error) {
	switch AtomTyping(s) {
	case "", TypingElement:
		return TypingElement, nil
	case TypingRing:
		return TypingRing, nil
	}
	return "", errors.New(errors.CodeConfigInvalid, "unknown atom typing").WithDetail(s)
}

func (t AtomTyping) assign(m *chem.Molecule, ri *chem.RingInfo) []int {
	types := make([]int, m.NumAtoms())
	for a := range types {
		at := m.Atom(a)
		if t != TypingRing {
			types[a] = at.Element
			continue
		}
		switch {
		case at.Aromatic:
			types[a] = at.Element*10 + 2
		case ri.InRing(a):
			types[a] = at.Element*10 + 1
		default:
			types[a] = at.Element * 10
		}
	}
	return types
}

// MoleculeData is the per-molecule context shared by all rules during one
// Process call.  It is computed once from the preprocessed parent and is
// read-only afterwards.
type MoleculeData struct {
	mol      *chem.Molecule
	stamp    uint64
	Rings    *chem.RingInfo
	Types    []int
	eligible []bool
	dist     [][]int
}

// NewMoleculeData perceives rings, assigns atom types and resolves the set
// of eligible atoms.  With no scope queries every atom is eligible; otherwise
// an atom is eligible when any query match covers it.
func NewMoleculeData(m *chem.Molecule, typing AtomTyping, scope []*chem.Query) *MoleculeData {
	md := &MoleculeData{mol: m, stamp: structureStamp(m), Rings: m.PerceiveRings()}
	md.Types = typing.assign(m, md.Rings)
	md.eligible = make([]bool, m.NumAtoms())
	if len(scope) == 0 {
		for i := range md.eligible {
			md.eligible[i] = true
		}
	} else {
		for _, q := range scope {
			for i, hit := range q.MatchedAtoms(m) {
				if hit {
					md.eligible[i] = true
				}
			}
		}
	}
	md.dist = make([][]int, m.NumAtoms())
	return md
}

// Eligible reports whether rules may change atom a.
func (md *MoleculeData) Eligible(a int) bool { return md.eligible[a] }

// EligibleCount is the number of eligible atoms.
func (md *MoleculeData) EligibleCount() int {
	n := 0
	for _, e := range md.eligible {
		if e {
			n++
		}
	}
	return n
}

// Distance returns the bond count of the shortest path from a to b, or -1
// when they are disconnected.  Rows are computed on first use.
func (md *MoleculeData) Distance(a, b int) int {
	if md.dist[a] == nil {
		md.dist[a] = md.mol.Distances(a)
	}
	return md.dist[a][b]
}

// Path returns a shortest path from a to b inclusive.
func (md *MoleculeData) Path(a, b int) []int {
	return md.mol.ShortestPath(a, b)
}

// Describes reports whether md was built for m and m has not been edited
// since.
func (md *MoleculeData) Describes(m *chem.Molecule) bool {
	return md.mol == m && md.stamp == structureStamp(m)
}

// structureStamp hashes every atom and bond field of m.
func structureStamp(m *chem.Molecule) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	put(m.NumAtoms())
	for a := 0; a < m.NumAtoms(); a++ {
		at := m.Atom(a)
		arom := 0
		if at.Aromatic {
			arom = 1
		}
		put(at.Element)
		put(at.Charge)
		put(at.Isotope)
		put(at.HCount)
		put(arom)
	}
	put(m.NumBonds())
	for bi := 0; bi < m.NumBonds(); bi++ {
		b := m.Bond(bi)
		put(b.A)
		put(b.B)
		put(int(b.Order))
	}
	return h.Sum64()
}

//Personal.AI order the ending
