package gridfeat

import (
	"fmt"
	"math"
	"testing"

	v3 "github.com/gmolnar/gridfeat/v3"
)

//hbondSystem builds a minimal donor/acceptor pair: a protein-side
//carbonyl oxygen above a ligand hydroxyl. The hydroxyl hydrogen points
//straight at the acceptor, so the geometry is ideally linear.
func hbondSystem(Te *testing.T, acceptorZ float64) (*Structure, *v3.Matrix, *Structure, *v3.Matrix) {
	pAtoms := []*Atom{{Type: "O.2", Symbol: "O", Acceptor: true}}
	prot, err := NewStructure(pAtoms, nil)
	if err != nil {
		Te.Fatal(err)
	}
	protXYZ, err := v3.NewMatrix([]float64{0, 0, acceptorZ})
	if err != nil {
		Te.Fatal(err)
	}
	lAtoms := []*Atom{
		{Type: "O.3", Symbol: "O", Donor: true},
		{Type: "H", Symbol: "H"},
	}
	lBonds := []*Bond{{At1: lAtoms[0], At2: lAtoms[1], Order: 1}}
	lig, err := NewStructure(lAtoms, lBonds)
	if err != nil {
		Te.Fatal(err)
	}
	ligXYZ, err := v3.NewMatrix([]float64{
		0, 0, 0,
		0, 0, 1,
	})
	if err != nil {
		Te.Fatal(err)
	}
	return prot, protXYZ, lig, ligXYZ
}

func TestPairwiseDistances(Te *testing.T) {
	A, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	B, _ := v3.NewMatrix([]float64{0, 0, 3, 0, 4, 0})
	D := PairwiseDistances(A, B)
	m, n := D.Dims()
	if m != 2 || n != 2 {
		Te.Fatalf("distance matrix is %dx%d, want 2x2", m, n)
	}
	if D.At(0, 0) != 3 || D.At(0, 1) != 4 {
		Te.Errorf("wrong distances from the first vector: %g %g", D.At(0, 0), D.At(0, 1))
	}
	if math.Abs(D.At(1, 0)-math.Sqrt(10)) > 1e-12 {
		Te.Errorf("wrong distance: %g", D.At(1, 0))
	}
}

func TestContactsInBinOpenInterval(Te *testing.T) {
	A, _ := v3.NewMatrix([]float64{0, 0, 0})
	B, _ := v3.NewMatrix([]float64{
		0, 0, 2.0,
		0, 0, 2.5,
		0, 0, 3.0,
	})
	D := PairwiseDistances(A, B)
	contacts := ContactsInBin(D, 2.0, 3.0)
	//boundary distances are excluded on both sides
	if len(contacts) != 1 || contacts[0] != (Contact{Protein: 0, Ligand: 1}) {
		Te.Errorf("open-interval binning failed: %v", contacts)
	}
}

func TestIsHydrogenBond(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := hbondSystem(Te, 2.9)
	c := Contact{Protein: 0, Ligand: 0}
	if !IsHydrogenBond(protXYZ, prot, ligXYZ, lig, c, 5) {
		Te.Error("ideal linear hydrogen bond not detected")
	}
	//no donor/acceptor pairing, no hydrogen bond, regardless of geometry
	lig.Atom(0).Donor = false
	if IsHydrogenBond(protXYZ, prot, ligXYZ, lig, c, 90) {
		Te.Error("hydrogen bond reported without a donor/acceptor pair")
	}
	lig.Atom(0).Donor = true
	//bent geometry fails a tight angular cutoff
	ligXYZ.Set(1, 0, 0.7)
	ligXYZ.Set(1, 2, 0.7)
	if IsHydrogenBond(protXYZ, prot, ligXYZ, lig, c, 5) {
		Te.Error("bent hydrogen bond passed a 5 degree cutoff")
	}
	//and passes a forgiving one
	if !IsHydrogenBond(protXYZ, prot, ligXYZ, lig, c, 90) {
		Te.Error("bent hydrogen bond rejected at a 90 degree cutoff")
	}
}

func TestHydrogenBondClasses(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := hbondSystem(Te, 2.9)
	D := PairwiseDistances(protXYZ, ligXYZ)
	bins := [][2]float64{{2.2, 2.5}, {2.5, 3.2}, {3.2, 4.0}}
	cutoffs := []float64{5, 50, 90}
	classes := HydrogenBonds(protXYZ, prot, ligXYZ, lig, D, bins, cutoffs)
	if len(classes) != 3 {
		Te.Fatalf("got %d classes, want 3", len(classes))
	}
	fmt.Println("hydrogen bonds per class", len(classes[0]), len(classes[1]), len(classes[2]))
	if len(classes[0]) != 0 || len(classes[2]) != 0 {
		Te.Error("hydrogen bond assigned to the wrong distance class")
	}
	if len(classes[1]) != 1 || classes[1][0] != (Contact{Protein: 0, Ligand: 0}) {
		Te.Errorf("middle class wrong: %v", classes[1])
	}
}
