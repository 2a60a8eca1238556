package gridfeat

import (
	"fmt"
	"testing"

	v3 "github.com/gmolnar/gridfeat/v3"
)

func TestNewStructure(Te *testing.T) {
	atoms := []*Atom{
		{Type: "C.3", Symbol: "C"},
		{Type: "O.3", Symbol: "O"},
	}
	bonds := []*Bond{{At1: atoms[0], At2: atoms[1], Order: 1}}
	s, err := NewStructure(atoms, bonds)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Atom(0).Number != 6 || s.Atom(1).Number != 8 {
		Te.Error("atomic numbers not filled from symbols")
	}
	if len(s.Atom(0).Bonds) != 1 || s.Atom(0).Bonds[0].Cross(s.Atom(0)) != s.Atom(1) {
		Te.Error("incident bond lists not filled")
	}
	//a bond to an atom outside the slice must be rejected
	stray := &Atom{Type: "N.3", Symbol: "N"}
	_, err = NewStructure(atoms, []*Bond{{At1: atoms[0], At2: stray, Order: 1}})
	if err == nil {
		Te.Error("bond to a stray atom accepted")
	}
}

func TestMergeStructures(Te *testing.T) {
	a := linearChain(Te, "C.a", "C.b")
	b := linearChain(Te, "O.a", "O.b", "O.c")
	acoord, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	bcoord, _ := v3.NewMatrix([]float64{5, 0, 0, 6, 0, 0, 7, 0, 0})
	merged, coord, err := MergeStructures(a, b, acoord, bcoord)
	if err != nil {
		Te.Fatal(err)
	}
	if merged.Len() != 5 || coord.NVecs() != 5 {
		Te.Fatalf("merged %d atoms with %d coordinates, want 5", merged.Len(), coord.NVecs())
	}
	if merged.Atom(2).Type != "O.a" || merged.Atom(2).Index != 2 {
		Te.Error("second structure not renumbered after the first")
	}
	if coord.At(2, 0) != 5 || coord.At(4, 0) != 7 {
		Te.Error("coordinates not stacked in atom order")
	}
	if len(merged.Bonds()) != 3 {
		Te.Errorf("merged %d bonds, want 3", len(merged.Bonds()))
	}
	//the parents must not alias the merge
	if merged.Atom(0) == a.Atom(0) {
		Te.Error("merged atoms alias a parent structure")
	}
}

func TestAssignBonds(Te *testing.T) {
	//an idealized water: O-H distances well inside the covalent cutoff,
	//H-H outside it
	atoms := []*Atom{
		{Type: "O.3", Symbol: "O"},
		{Type: "H", Symbol: "H"},
		{Type: "H", Symbol: "H"},
	}
	s, err := NewStructure(atoms, nil)
	if err != nil {
		Te.Fatal(err)
	}
	coord, err := v3.NewMatrix([]float64{
		0, 0, 0,
		0.96, 0, 0,
		-0.24, 0.93, 0,
	})
	if err != nil {
		Te.Fatal(err)
	}
	err = AssignBonds(coord, s)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("assigned", len(s.Bonds()), "bonds")
	if len(s.Bonds()) != 2 {
		Te.Fatalf("assigned %d bonds to water, want 2", len(s.Bonds()))
	}
	for _, b := range s.Bonds() {
		if b.At1 != s.Atom(0) && b.At2 != s.Atom(0) {
			Te.Error("bond assigned between the two hydrogens")
		}
	}
	//unknown element symbols are an error
	s2, _ := NewStructure([]*Atom{{Type: "X", Symbol: "Xx"}}, nil)
	c2, _ := v3.NewMatrix([]float64{0, 0, 0})
	if err := AssignBonds(c2, s2); err == nil {
		Te.Error("unknown element accepted")
	}
}
