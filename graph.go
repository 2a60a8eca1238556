package gridfeat

import (
	"gonum.org/v1/gonum/graph"
)

//This file adapts a Structure to gonum's graph interfaces, so that
//fragment extraction can run gonum's breadth-first traversal over the
//bond graph. The graph is always undirected.

type gAtom struct {
	*Atom
}

func (A gAtom) ID() int64 {
	return int64(A.Index)
}

type gBond struct {
	*Bond
}

func (B gBond) From() graph.Node {
	return gAtom{B.At1}
}

func (B gBond) To() graph.Node {
	return gAtom{B.At2}
}

func (B gBond) ReversedEdge() graph.Edge {
	return gBond{&Bond{Index: B.Index, At1: B.At2, At2: B.At1, Dist: B.Dist, Order: B.Order, Aromatic: B.Aromatic}}
}

//gAtoms implements graph.Nodes
type gAtoms struct {
	atoms []*Atom
	curr  int
}

func (A *gAtoms) Len() int {
	return len(A.atoms) - A.curr - 1
}

func (A *gAtoms) Reset() {
	A.curr = -1
}

func (A *gAtoms) Next() bool {
	if A.curr+1 >= len(A.atoms) {
		return false
	}
	A.curr++
	return true
}

func (A *gAtoms) Node() graph.Node {
	return gAtom{A.atoms[A.curr]}
}

//bondGraph implements gonum's graph.Graph over a Structure.
type bondGraph struct {
	s *Structure
}

func newBondGraph(s *Structure) bondGraph {
	return bondGraph{s: s}
}

func (G bondGraph) Node(id int64) graph.Node {
	if id < 0 || int(id) >= G.s.Len() {
		return nil
	}
	return gAtom{G.s.Atom(int(id))}
}

func (G bondGraph) Nodes() graph.Nodes {
	return &gAtoms{atoms: G.s.atoms, curr: -1}
}

func (G bondGraph) From(id int64) graph.Nodes {
	at := G.s.Atom(int(id))
	ret := make([]*Atom, 0, len(at.Bonds))
	for _, b := range at.Bonds {
		ret = append(ret, b.Cross(at))
	}
	return &gAtoms{atoms: ret, curr: -1}
}

func (G bondGraph) HasEdgeBetween(xid, yid int64) bool {
	return G.Edge(xid, yid) != nil
}

func (G bondGraph) Edge(uid, vid int64) graph.Edge {
	at := G.s.Atom(int(uid))
	for _, b := range at.Bonds {
		if int64(b.Cross(at).Index) == vid {
			return gBond{b}
		}
	}
	return nil
}
