package chem

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/minorchanges/pkg/errors"
)

// ParseSMILES parses a SMILES string into a Molecule.  Stereo markers are
// accepted and ignored.  Kekulé rings are perceived as aromatic, so every
// spelling of a structure yields the same graph.
func ParseSMILES(smiles string) (*Molecule, error) {
	m, err := parse(smiles, false)
	if err != nil {
		return nil, err
	}
	m.Aromatize()
	return m, nil
}

// ParseQuery parses a SMILES-like query.  Compared to ParseSMILES, an unmarked
// bond between two aliphatic atoms matches single or aromatic bonds, "~"
// matches any bond, and hydrogen counts are only constrained when written
// inside brackets.
func ParseQuery(smiles string) (*Molecule, error) {
	m, err := parse(smiles, true)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryInvalid, "invalid query")
	}
	return m, nil
}

type ringOpen struct {
	atom  int
	order BondOrder
	set   bool
}

type parser struct {
	src   []rune
	pos   int
	query bool
	mol   *Molecule
	// implicitAromatic holds unmarked bonds between two aromatic atoms.
	implicitAromatic []int
}

func parseErr(smiles string, pos int, format string, args ...interface{}) error {
	return errors.New(errors.CodeSMILESParseFailed, fmt.Sprintf(format, args...)).
		WithDetail(fmt.Sprintf("%q at %d", smiles, pos))
}

func parse(smiles string, query bool) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, errors.New(errors.CodeSMILESParseFailed, "empty SMILES")
	}
	p := &parser{src: []rune(smiles), query: query, mol: NewMolecule()}

	var stack []int
	prev := -1
	var pending BondOrder
	pendingSet := false
	rings := map[int]ringOpen{}

	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == '(':
			if prev < 0 {
				return nil, parseErr(smiles, p.pos, "branch without preceding atom")
			}
			stack = append(stack, prev)
			p.pos++

		case ch == ')':
			if len(stack) == 0 {
				return nil, parseErr(smiles, p.pos, "unbalanced ')'")
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.pos++

		case ch == '-' || ch == '/' || ch == '\\':
			pending, pendingSet = Single, true
			p.pos++
		case ch == '=':
			pending, pendingSet = Double, true
			p.pos++
		case ch == '#':
			pending, pendingSet = Triple, true
			p.pos++
		case ch == ':':
			pending, pendingSet = Aromatic, true
			p.pos++
		case ch == '~' && query:
			pending, pendingSet = AnyOrder, true
			p.pos++

		case ch == '.':
			prev = -1
			pendingSet = false
			p.pos++

		case ch == '%' || unicode.IsDigit(ch):
			if prev < 0 {
				return nil, parseErr(smiles, p.pos, "ring closure without atom")
			}
			num, err := p.ringNumber(smiles)
			if err != nil {
				return nil, err
			}
			if open, ok := rings[num]; ok {
				order := pending
				set := pendingSet
				if !set && open.set {
					order, set = open.order, true
				}
				if !set {
					order = p.implicitOrder(open.atom, prev)
				}
				if open.atom == prev || p.mol.BondIndex(open.atom, prev) >= 0 {
					return nil, parseErr(smiles, p.pos, "ring closure duplicates a bond")
				}
				bi := p.mol.addBondRaw(open.atom, prev, order)
				if !set && order == Aromatic {
					p.implicitAromatic = append(p.implicitAromatic, bi)
				}
				delete(rings, num)
			} else {
				rings[num] = ringOpen{atom: prev, order: pending, set: pendingSet}
			}
			pendingSet = false

		case ch == '[':
			atom, err := p.bracketAtom(smiles)
			if err != nil {
				return nil, err
			}
			idx := p.mol.AddAtom(atom)
			if prev >= 0 {
				p.bondTo(prev, idx, pending, pendingSet)
			}
			pendingSet = false
			prev = idx

		case ch == '*' || unicode.IsLetter(ch):
			atom, err := p.organicAtom(smiles)
			if err != nil {
				return nil, err
			}
			idx := p.mol.AddAtom(atom)
			if prev >= 0 {
				p.bondTo(prev, idx, pending, pendingSet)
			}
			pendingSet = false
			prev = idx

		case unicode.IsSpace(ch):
			// Trailing name or count; the caller splits records.
			p.pos = len(p.src)

		default:
			return nil, parseErr(smiles, p.pos, "unexpected character %q", ch)
		}
	}

	if len(stack) > 0 {
		return nil, parseErr(smiles, p.pos, "unclosed branch")
	}
	if len(rings) > 0 {
		return nil, parseErr(smiles, p.pos, "unclosed ring")
	}
	if pendingSet {
		return nil, parseErr(smiles, p.pos, "dangling bond")
	}
	p.demoteChainAromatic()
	return p.mol, nil
}

// demoteChainAromatic turns unmarked bonds between aromatic atoms that close
// no ring into single bonds, as in the link of c1ccccc1c1ccccc1.
func (p *parser) demoteChainAromatic() {
	if len(p.implicitAromatic) == 0 {
		return
	}
	ri := p.mol.PerceiveRings()
	for _, bi := range p.implicitAromatic {
		if !ri.IsRingBond(bi) {
			p.mol.bonds[bi].Order = Single
		}
	}
}

func (p *parser) implicitOrder(a, b int) BondOrder {
	if p.mol.atoms[a].Aromatic && p.mol.atoms[b].Aromatic {
		return Aromatic
	}
	if p.query {
		return SingleOrAromatic
	}
	return Single
}

func (p *parser) bondTo(a, b int, order BondOrder, set bool) {
	if !set {
		order = p.implicitOrder(a, b)
	}
	bi := p.mol.addBondRaw(a, b, order)
	if !set && order == Aromatic {
		p.implicitAromatic = append(p.implicitAromatic, bi)
	}
}

func (p *parser) ringNumber(smiles string) (int, error) {
	if p.src[p.pos] != '%' {
		n := int(p.src[p.pos] - '0')
		p.pos++
		return n, nil
	}
	if p.pos+2 >= len(p.src) || !unicode.IsDigit(p.src[p.pos+1]) || !unicode.IsDigit(p.src[p.pos+2]) {
		return 0, parseErr(smiles, p.pos, "bad %%nn ring closure")
	}
	n := int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
	p.pos += 3
	return n, nil
}

var aromaticOrganic = map[rune]int{'b': B, 'c': C, 'n': N, 'o': O, 'p': P, 's': S}

func (p *parser) organicAtom(smiles string) (Atom, error) {
	ch := p.src[p.pos]
	if ch == '*' {
		p.pos++
		if p.query {
			return Atom{Element: Wildcard, HCount: -1}, nil
		}
		return Atom{Element: Wildcard, HCount: 0}, nil
	}
	if p.pos+1 < len(p.src) {
		two := string(p.src[p.pos : p.pos+2])
		if two == "Cl" || two == "Br" {
			p.pos += 2
			z, _ := ElementNumber(two)
			return NewAtom(z), nil
		}
	}
	if z, ok := aromaticOrganic[ch]; ok {
		p.pos++
		a := NewAtom(z)
		a.Aromatic = true
		return a, nil
	}
	z, ok := ElementNumber(string(ch))
	if !ok || !IsOrganicSubset(z) {
		return Atom{}, parseErr(smiles, p.pos, "element %q must be bracketed", ch)
	}
	p.pos++
	return NewAtom(z), nil
}

func (p *parser) bracketAtom(smiles string) (Atom, error) {
	start := p.pos
	end := start + 1
	for end < len(p.src) && p.src[end] != ']' {
		end++
	}
	if end >= len(p.src) {
		return Atom{}, parseErr(smiles, start, "unclosed bracket")
	}
	body := p.src[start+1 : end]
	p.pos = end + 1

	a := Atom{HCount: 0}
	i := 0
	for i < len(body) && unicode.IsDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}
	if i >= len(body) {
		return Atom{}, parseErr(smiles, start, "bracket without element")
	}

	switch {
	case body[i] == '*':
		a.Element = Wildcard
		i++
	case unicode.IsUpper(body[i]):
		sym := string(body[i])
		if i+1 < len(body) && unicode.IsLower(body[i+1]) {
			if _, ok := ElementNumber(sym + string(body[i+1])); ok {
				sym += string(body[i+1])
			}
		}
		z, ok := ElementNumber(sym)
		if !ok {
			return Atom{}, parseErr(smiles, start, "unknown element %q", sym)
		}
		a.Element = z
		i += len(sym)
	case unicode.IsLower(body[i]):
		if i+1 < len(body) && string(body[i:i+2]) == "se" {
			a.Element, a.Aromatic = Se, true
			i += 2
		} else if z, ok := aromaticOrganic[body[i]]; ok {
			a.Element, a.Aromatic = z, true
			i++
		} else {
			return Atom{}, parseErr(smiles, start, "unknown aromatic element %q", body[i])
		}
	default:
		return Atom{}, parseErr(smiles, start, "bad bracket atom")
	}

	for i < len(body) && body[i] == '@' {
		i++
	}

	hSet := false
	if i < len(body) && body[i] == 'H' {
		hSet = true
		i++
		a.HCount = 1
		if i < len(body) && unicode.IsDigit(body[i]) {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		n := 1
		if i < len(body) && unicode.IsDigit(body[i]) {
			n = int(body[i] - '0')
			i++
		} else {
			for i < len(body) && body[i] == sym {
				n++
				i++
			}
		}
		a.Charge = sign * n
	}

	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && unicode.IsDigit(body[i]) {
			i++
		}
	}
	if i != len(body) {
		return Atom{}, parseErr(smiles, start, "trailing characters in bracket atom")
	}
	if p.query && !hSet {
		a.HCount = -1
	}
	return a, nil
}

//Personal.AI order the ending
