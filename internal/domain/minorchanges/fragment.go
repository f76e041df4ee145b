package minorchanges

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/minorchanges/pkg/chem"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fragment libraries
//
// One fragment per line: "SMILES [count] [name...]".  Attachment atoms carry
// an isotope label whose value is the atom type required on the partner atom.
// Blank lines and lines starting with '#' are ignored.
// ─────────────────────────────────────────────────────────────────────────────

// Fragment is a monovalent substituent with one attachment atom.
type Fragment struct {
	Name       string
	SMILES     string
	Mol        *chem.Molecule
	Attach     int
	AttachType int
	Support    int
}

// BivalentFragment has two attachment points, possibly on the same atom.
type BivalentFragment struct {
	Name   string
	SMILES string
	Mol    *chem.Molecule
	Attach [2]int
	Types  [2]int
	// BondsBetween is the shortest path length between the two attachment
	// atoms inside the fragment; zero when both are the same atom.
	BondsBetween int
	Support      int
}

// FragmentLibrary is a read-only set of monovalent fragments indexed by the
// atom type they attach to.
type FragmentLibrary struct {
	Fragments []*Fragment
	byType    map[int][]*Fragment
}

// ForType returns fragments attaching to atoms of type t.
func (l *FragmentLibrary) ForType(t int) []*Fragment {
	if l == nil {
		return nil
	}
	return l.byType[t]
}

// Len is the number of fragments.
func (l *FragmentLibrary) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Fragments)
}

// BivalentLibrary is a read-only set of bivalent fragments.
type BivalentLibrary struct {
	Fragments []*BivalentFragment
}

// Len is the number of fragments.
func (l *BivalentLibrary) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Fragments)
}

type fragmentLine struct {
	lineNo  int
	smiles  string
	support int
	name    string
}

func scanFragmentLines(r io.Reader, minSupport int, fn func(fragmentLine) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		fl := fragmentLine{lineNo: n, smiles: fields[0], support: 1}
		rest := fields[1:]
		if len(rest) > 0 {
			if v, err := strconv.Atoi(rest[0]); err == nil {
				fl.support = v
				rest = rest[1:]
			}
		}
		fl.name = strings.Join(rest, " ")
		if fl.name == "" {
			fl.name = fl.smiles
		}
		if fl.support < minSupport {
			continue
		}
		if err := fn(fl); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, errors.CodeLibraryLoadFailed, "reading fragment library")
	}
	return nil
}

func fragmentErr(fl fragmentLine, msg string) error {
	return errors.New(errors.CodeFragmentInvalid, msg).
		WithDetailf("line %d: %s", fl.lineNo, fl.smiles)
}

func labelledAtoms(m *chem.Molecule) []int {
	var out []int
	for a := 0; a < m.NumAtoms(); a++ {
		if m.Atom(a).Isotope > 0 {
			out = append(out, a)
		}
	}
	return out
}

// LoadFragments reads a monovalent fragment library.  Entries whose support
// count is below minSupport are skipped.
func LoadFragments(r io.Reader, minSupport int) (*FragmentLibrary, error) {
	lib := &FragmentLibrary{byType: map[int][]*Fragment{}}
	err := scanFragmentLines(r, minSupport, func(fl fragmentLine) error {
		m, err := chem.ParseSMILES(fl.smiles)
		if err != nil {
			return errors.Wrap(err, errors.CodeFragmentInvalid, "parsing fragment").
				WithDetailf("line %d", fl.lineNo)
		}
		if len(m.Components()) != 1 {
			return fragmentErr(fl, "fragment must be connected")
		}
		att := labelledAtoms(m)
		if len(att) != 1 {
			return fragmentErr(fl, "monovalent fragment needs exactly one labelled atom")
		}
		if m.HydrogenCount(att[0]) < 1 {
			return fragmentErr(fl, "attachment atom has no hydrogen")
		}
		f := &Fragment{
			Name:       fl.name,
			SMILES:     fl.smiles,
			Mol:        m,
			Attach:     att[0],
			AttachType: m.Atom(att[0]).Isotope,
			Support:    fl.support,
		}
		lib.Fragments = append(lib.Fragments, f)
		lib.byType[f.AttachType] = append(lib.byType[f.AttachType], f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadBivalentFragments reads a bivalent fragment library.  A fragment has
// either two labelled atoms or one labelled atom with at least two
// hydrogens.
func LoadBivalentFragments(r io.Reader, minSupport int) (*BivalentLibrary, error) {
	lib := &BivalentLibrary{}
	err := scanFragmentLines(r, minSupport, func(fl fragmentLine) error {
		m, err := chem.ParseSMILES(fl.smiles)
		if err != nil {
			return errors.Wrap(err, errors.CodeFragmentInvalid, "parsing fragment").
				WithDetailf("line %d", fl.lineNo)
		}
		if len(m.Components()) != 1 {
			return fragmentErr(fl, "fragment must be connected")
		}
		f := &BivalentFragment{Name: fl.name, SMILES: fl.smiles, Mol: m, Support: fl.support}
		att := labelledAtoms(m)
		switch len(att) {
		case 1:
			if m.HydrogenCount(att[0]) < 2 {
				return fragmentErr(fl, "single attachment atom needs two hydrogens")
			}
			f.Attach = [2]int{att[0], att[0]}
		case 2:
			for _, a := range att {
				if m.HydrogenCount(a) < 1 {
					return fragmentErr(fl, "attachment atom has no hydrogen")
				}
			}
			f.Attach = [2]int{att[0], att[1]}
			f.BondsBetween = m.Distances(att[0])[att[1]]
		default:
			return fragmentErr(fl, "bivalent fragment needs one or two labelled atoms")
		}
		f.Types = [2]int{m.Atom(f.Attach[0]).Isotope, m.Atom(f.Attach[1]).Isotope}
		lib.Fragments = append(lib.Fragments, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Joining
// ─────────────────────────────────────────────────────────────────────────────

// attachFragment returns a copy of m with f bonded to atom a by a single bond.
func attachFragment(m *chem.Molecule, a int, f *Fragment) *chem.Molecule {
	out := m.Clone()
	off := out.AppendMolecule(f.Mol)
	out.Atom(off + f.Attach).Isotope = 0
	out.AddBond(a, off+f.Attach, chem.Single)
	return out
}

// spliceBivalent appends f to out and bonds a1 to the first attachment and a2
// to the second.
func spliceBivalent(out *chem.Molecule, a1, a2 int, f *BivalentFragment) {
	off := out.AppendMolecule(f.Mol)
	x1, x2 := off+f.Attach[0], off+f.Attach[1]
	out.Atom(x1).Isotope = 0
	out.Atom(x2).Isotope = 0
	out.AddBond(a1, x1, chem.Single)
	out.AddBond(a2, x2, chem.Single)
}

// orientations lists the ways f can join a1 and a2 given their types: true
// means a1 takes the first attachment, false means a1 takes the second.
func (f *BivalentFragment) orientations(t1, t2 int) []bool {
	var out []bool
	if f.Types[0] == t1 && f.Types[1] == t2 {
		out = append(out, true)
	}
	if f.Attach[0] != f.Attach[1] && f.Types[1] == t1 && f.Types[0] == t2 {
		out = append(out, false)
	}
	return out
}

//Personal.AI order the ending
