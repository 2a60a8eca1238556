package gridfeat

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

//FragmentBonds finds all bonds of the structure out to maxHops bond hops
//from the seed atom, via a breadth-first traversal of the bond graph. A
//bond is included when at least one of its endpoints lies strictly closer
//than maxHops to the seed, so atoms at the boundary depth appear in the
//fragment but the traversal does not expand past them.
func FragmentBonds(s *Structure, seed, maxHops int) []*Bond {
	g := newBondGraph(s)
	depth := make(map[int64]int)
	bf := traverse.BreadthFirst{}
	bf.Walk(g, g.Node(int64(seed)), func(n graph.Node, d int) bool {
		if d > maxHops {
			return true //all atoms within maxHops have been seen by now
		}
		depth[n.ID()] = d
		return false
	})
	inner := make([]int, 0, len(depth))
	for id, d := range depth {
		if d < maxHops {
			inner = append(inner, int(id))
		}
	}
	sort.Ints(inner)
	added := make(map[*Bond]bool)
	bonds := make([]*Bond, 0)
	for _, i := range inner {
		for _, b := range s.Atom(i).Bonds {
			if !added[b] {
				added[b] = true
				bonds = append(bonds, b)
			}
		}
	}
	return bonds
}

//bondSymbol encodes order and aromaticity of a bond into one token.
func bondSymbol(b *Bond) string {
	if b.Aromatic {
		return ":"
	}
	switch b.Order {
	case 1:
		return "-"
	case 2:
		return "="
	case 3:
		return "#"
	}
	return fmt.Sprintf("<%g>", b.Order)
}

//canonicalFragment encodes the sub-structure built from the given bonds
//into a canonical linear notation: one token per bond, endpoints in
//lexicographic order, tokens sorted and joined by dots. Bond orders and
//aromaticity are preserved. The result does not depend on the order of the
//bond list.
func canonicalFragment(s *Structure, bonds []*Bond) (string, error) {
	if len(bonds) == 0 {
		return "", nil
	}
	frag, err := s.SubStructure(bonds)
	if err != nil {
		return "", errDecorate(err, "canonicalFragment")
	}
	tokens := make([]string, 0, len(frag.bonds))
	for _, b := range frag.bonds {
		t1, t2 := b.At1.Type, b.At2.Type
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tokens = append(tokens, t1+bondSymbol(b)+t2)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "."), nil
}

//ExtractFragment computes the ECFP-like signature for one atom: the
//canonical form of the sub-structure within maxHops bond hops of the seed,
//prefixed by the seed atom's chemical type.
func ExtractFragment(s *Structure, seed, maxHops int) (string, error) {
	canon, err := canonicalFragment(s, FragmentBonds(s, seed, maxHops))
	if err != nil {
		return "", errDecorate(err, "ExtractFragment")
	}
	return s.Atom(seed).Type + "," + canon, nil
}

//HashFragment reduces a fragment encoding to a channel index in
//[0, 2^power) with a deterministic, stable content hash: the low power
//bits of the md5 digest of the string. Identical inputs yield identical
//channels across runs and processes. power must lie in (0, 62].
func HashFragment(fragment string, power int) int {
	sum := md5.Sum([]byte(fragment))
	low := binary.BigEndian.Uint64(sum[8:16])
	return int(low & (uint64(1)<<uint(power) - 1))
}

//fragmentPairSep joins the two encodings of a fragment pair before
//hashing. It never appears inside a fragment encoding, whose alphabet is
//chemical type labels, bond symbols, dots and commas.
const fragmentPairSep = "|"

//HashFragmentPair hashes a pair of fragment encodings joined by a fixed
//separator, with the same contract as HashFragment.
func HashFragmentPair(a, b string, power int) int {
	return HashFragment(a+fragmentPairSep+b, power)
}
