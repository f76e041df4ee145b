// Package chem holds the molecular graph primitives used by the variant
// engine: atoms and bonds, valence rules, SMILES reading and writing, ring
// perception, canonical keys, substructure queries and reaction edits.
//
// It is intentionally small.  Only the organic subset plus a handful of
// common heteroatoms carry valence rules; other elements parse and round-trip
// but are never edited by the engine.
package chem

// Atomic numbers used across the engine.
const (
	Wildcard = 0
	H        = 1
	B        = 5
	C        = 6
	N        = 7
	O        = 8
	F        = 9
	Si       = 14
	P        = 15
	S        = 16
	Cl       = 17
	Se       = 34
	Br       = 35
	I        = 53
)

type elementInfo struct {
	symbol   string
	group    int
	valences []int
	organic  bool
}

var elements = map[int]elementInfo{
	H:  {"H", 1, []int{1}, false},
	3:  {"Li", 1, []int{1}, false},
	B:  {"B", 13, []int{3}, true},
	C:  {"C", 14, []int{4}, true},
	N:  {"N", 15, []int{3}, true},
	O:  {"O", 16, []int{2}, true},
	F:  {"F", 17, []int{1}, true},
	11: {"Na", 1, []int{1}, false},
	12: {"Mg", 2, []int{2}, false},
	13: {"Al", 13, []int{3}, false},
	Si: {"Si", 14, []int{4}, false},
	P:  {"P", 15, []int{3, 5}, true},
	S:  {"S", 16, []int{2, 4, 6}, true},
	Cl: {"Cl", 17, []int{1}, true},
	19: {"K", 1, []int{1}, false},
	20: {"Ca", 2, []int{2}, false},
	26: {"Fe", 0, nil, false},
	29: {"Cu", 0, nil, false},
	30: {"Zn", 0, nil, false},
	Se: {"Se", 16, []int{2, 4, 6}, false},
	Br: {"Br", 17, []int{1}, true},
	50: {"Sn", 14, []int{4}, false},
	I:  {"I", 17, []int{1}, true},
	78: {"Pt", 0, nil, false},
}

var symbolToNumber = func() map[string]int {
	out := make(map[string]int, len(elements))
	for z, e := range elements {
		out[e.symbol] = z
	}
	return out
}()

// ElementSymbol returns the symbol for atomic number z, "*" for the wildcard.
func ElementSymbol(z int) string {
	if z == Wildcard {
		return "*"
	}
	if e, ok := elements[z]; ok {
		return e.symbol
	}
	return "*"
}

// ElementNumber returns the atomic number for a symbol and whether it is known.
func ElementNumber(symbol string) (int, bool) {
	z, ok := symbolToNumber[symbol]
	return z, ok
}

// IsOrganicSubset reports whether z may be written without brackets.
func IsOrganicSubset(z int) bool {
	return elements[z].organic
}

// HasValenceRules reports whether the engine knows the standard valences of z.
func HasValenceRules(z int) bool {
	return len(elements[z].valences) > 0
}

// allowedValences returns the standard valences of z shifted for a formal
// charge.  Groups 15-17 gain a bond per positive charge (ammonium, oxonium),
// group 13 gains one per negative charge (borate), everything else loses one
// per unit of charge in either direction.
func allowedValences(z, charge int) []int {
	e, ok := elements[z]
	if !ok || len(e.valences) == 0 {
		return nil
	}
	shift := 0
	switch {
	case e.group >= 15:
		shift = charge
	case e.group == 13:
		shift = -charge
	default:
		shift = -abs(charge)
	}
	out := make([]int, 0, len(e.valences))
	for _, v := range e.valences {
		if v+shift >= 0 {
			out = append(out, v+shift)
		}
	}
	return out
}

// MaxValence returns the largest allowed valence of z at the given charge, or
// -1 when z has no valence rules.
func MaxValence(z, charge int) int {
	vs := allowedValences(z, charge)
	if len(vs) == 0 {
		return -1
	}
	return vs[len(vs)-1]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

//Personal.AI order the ending
