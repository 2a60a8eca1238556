package gridfeat

import (
	"fmt"
	"testing"

	v3 "github.com/gmolnar/gridfeat/v3"
)

func TestSplifPairsMissingAnnotation(Te *testing.T) {
	ligEnv := map[int]string{0: "O.3,"}
	contacts := []Contact{{Protein: 0, Ligand: 0}}
	//an empty protein map cannot cover the contact
	_, err := SplifPairs(map[int]string{}, ligEnv, contacts)
	if err == nil {
		Te.Fatal("contact without a protein environment accepted")
	}
	if !err.(Error).Critical() {
		Te.Error("a missing environment should be a critical error")
	}
	fmt.Println("missing protein environment error:", err)
	//same on the ligand side
	_, err = SplifPairs(map[int]string{0: "C.3,"}, map[int]string{}, contacts)
	if err == nil {
		Te.Fatal("contact without a ligand environment accepted")
	}
	if !err.(Error).Critical() {
		Te.Error("a missing environment should be a critical error")
	}
	//with both sides covered the pair comes through
	pairs, err := SplifPairs(map[int]string{0: "C.3,"}, ligEnv, contacts)
	if err != nil {
		Te.Fatal(err)
	}
	if pairs[contacts[0]] != [2]string{"C.3,", "O.3,"} {
		Te.Errorf("wrong pair: %v", pairs[contacts[0]])
	}
}

func TestBindingPocketEnvironments(Te *testing.T) {
	prot := linearChain(Te, "C.a", "C.b")
	lig := linearChain(Te, "O.a")
	protXYZ, _ := v3.NewMatrix([]float64{
		0, 0, 2, //inside the pocket cutoff
		0, 0, 20, //far away
	})
	ligXYZ, _ := v3.NewMatrix([]float64{0, 0, 0})
	D := PairwiseDistances(protXYZ, ligXYZ)
	protEnv, ligEnv, err := BindingPocketEnvironments(D, 4.5, prot, lig, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if len(ligEnv) != 1 {
		Te.Errorf("ligand map covers %d atoms, want the whole ligand", len(ligEnv))
	}
	//only the close protein atom belongs to the pocket
	if len(protEnv) != 1 {
		Te.Fatalf("pocket covers %d protein atoms, want 1", len(protEnv))
	}
	if _, ok := protEnv[0]; !ok {
		Te.Error("the close protein atom is missing from the pocket")
	}
}
