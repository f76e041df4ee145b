package chem

import "sort"

// RingInfo is the smallest set of smallest rings of a molecule together with
// per-atom and per-bond membership.  It describes the molecule at the time it
// was computed and must be recomputed after any structural edit.
type RingInfo struct {
	// Rings holds atom indices in ring order, smallest rings first.
	Rings [][]int
	// RingBonds holds the bond indices of each ring, parallel to Rings.
	RingBonds [][]int
	// AtomRingCount is the number of rings each atom belongs to.
	AtomRingCount []int
	// BondRingCount is the number of rings each bond belongs to.
	BondRingCount []int
	// Systems groups ring indices into fused systems (rings sharing a bond).
	Systems [][]int
}

// InRing reports whether atom a is in any ring.
func (ri *RingInfo) InRing(a int) bool { return ri.AtomRingCount[a] > 0 }

// IsRingBond reports whether bond bi is in any ring.
func (ri *RingInfo) IsRingBond(bi int) bool { return ri.BondRingCount[bi] > 0 }

// RingContains reports whether ring r contains atom a.
func (ri *RingInfo) RingContains(r, a int) bool {
	for _, x := range ri.Rings[r] {
		if x == a {
			return true
		}
	}
	return false
}

// RingsOf returns the indices of the rings containing atom a.
func (ri *RingInfo) RingsOf(a int) []int {
	var out []int
	for r := range ri.Rings {
		if ri.RingContains(r, a) {
			out = append(out, r)
		}
	}
	return out
}

// Fused reports whether rings r1 and r2 share a bond.
func (ri *RingInfo) Fused(r1, r2 int) bool {
	return r1 != r2 && sharesBond(ri.RingBonds[r1], ri.RingBonds[r2])
}

// SharedAtoms returns atoms common to rings r1 and r2.
func (ri *RingInfo) SharedAtoms(r1, r2 int) []int {
	var out []int
	for _, a := range ri.Rings[r1] {
		if ri.RingContains(r2, a) {
			out = append(out, a)
		}
	}
	return out
}

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }
func (b bitset) set(i int)   { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) xor(o bitset) {
	for i := range b {
		b[i] ^= o[i]
	}
}
func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}
func (b bitset) highest() int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			for j := 63; j >= 0; j-- {
				if b[i]&(1<<uint(j)) != 0 {
					return i*64 + j
				}
			}
		}
	}
	return -1
}

// PerceiveRings computes the SSSR.  For every bond the shortest cycle through
// it is a candidate; candidates are accepted smallest first while they stay
// linearly independent over GF(2) until the cycle rank is reached.
func (m *Molecule) PerceiveRings() *RingInfo {
	ri := &RingInfo{
		AtomRingCount: make([]int, len(m.atoms)),
		BondRingCount: make([]int, len(m.bonds)),
	}
	rank := len(m.bonds) - len(m.atoms) + len(m.Components())
	if rank <= 0 {
		return ri
	}

	type candidate struct {
		atoms []int
		bonds []int
	}
	var cands []candidate
	seen := map[string]bool{}
	for bi, b := range m.bonds {
		path := m.shortestPathAvoiding(b.A, b.B, bi)
		if path == nil {
			continue
		}
		bonds := make([]int, 0, len(path))
		for i := 0; i+1 < len(path); i++ {
			bonds = append(bonds, m.BondIndex(path[i], path[i+1]))
		}
		bonds = append(bonds, bi)
		key := intsKey(bonds)
		if seen[key] {
			continue
		}
		seen[key] = true
		cands = append(cands, candidate{atoms: path, bonds: bonds})
	}
	sort.SliceStable(cands, func(i, j int) bool { return len(cands[i].atoms) < len(cands[j].atoms) })

	// Gaussian elimination keyed on the highest set bit.
	pivots := map[int]bitset{}
	for _, c := range cands {
		if len(ri.Rings) == rank {
			break
		}
		v := newBitset(len(m.bonds))
		for _, bi := range c.bonds {
			v.set(bi)
		}
		for !v.empty() {
			h := v.highest()
			p, ok := pivots[h]
			if !ok {
				pivots[h] = v
				break
			}
			v.xor(p)
		}
		if v.empty() {
			continue
		}
		ri.Rings = append(ri.Rings, c.atoms)
		ri.RingBonds = append(ri.RingBonds, c.bonds)
		for _, a := range c.atoms {
			ri.AtomRingCount[a]++
		}
		for _, bi := range c.bonds {
			ri.BondRingCount[bi]++
		}
	}
	ri.Systems = fusedSystems(ri)
	return ri
}

func intsKey(xs []int) string {
	s := append([]int(nil), xs...)
	sort.Ints(s)
	b := make([]byte, 0, len(s)*3)
	for _, x := range s {
		b = append(b, byte(x), byte(x>>8), ',')
	}
	return string(b)
}

func fusedSystems(ri *RingInfo) [][]int {
	n := len(ri.Rings)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sharesBond(ri.RingBonds[i], ri.RingBonds[j]) {
				parent[find(i)] = find(j)
			}
		}
	}
	groups := map[int][]int{}
	var order []int
	for i := 0; i < n; i++ {
		r := find(i)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], i)
	}
	out := make([][]int, 0, len(order))
	for _, r := range order {
		out = append(out, groups[r])
	}
	return out
}

func sharesBond(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// shortestPathAvoiding returns the atoms of a shortest path from a to b that
// does not use bond skip, or nil.
func (m *Molecule) shortestPathAvoiding(a, b, skip int) []int {
	prev := make([]int, len(m.atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[a] = -1
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			break
		}
		for _, bi := range m.adjacency()[cur] {
			if bi == skip {
				continue
			}
			nb := m.bonds[bi].Other(cur)
			if prev[nb] == -2 {
				prev[nb] = cur
				queue = append(queue, nb)
			}
		}
	}
	if prev[b] == -2 {
		return nil
	}
	var path []int
	for x := b; x != -1; x = prev[x] {
		path = append(path, x)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Distances returns the bond count from a to every atom, -1 when unreachable.
func (m *Molecule) Distances(a int) []int {
	dist := make([]int, len(m.atoms))
	for i := range dist {
		dist[i] = -1
	}
	dist[a] = 0
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range m.Neighbours(cur) {
			if dist[nb] < 0 {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// ShortestPath returns the atoms on a shortest path from a to b inclusive, or
// nil when they are disconnected.
func (m *Molecule) ShortestPath(a, b int) []int {
	return m.shortestPathAvoiding(a, b, -1)
}

//Personal.AI order the ending
