package gridfeat

import (
	"math"

	v3 "github.com/gmolnar/gridfeat/v3"
	"gonum.org/v1/gonum/mat"
)

//Contact identifies a protein/ligand atom pair whose distance fell inside
//some bin. The indexes refer to each molecule's own Structure.
type Contact struct {
	Protein int
	Ligand  int
}

//PairwiseDistances computes the Euclidean distance between every vector of
//A (m rows) and every vector of B (n rows), returning an mxn matrix where
//entry i,j is the distance between the ith vector of A and the jth of B.
func PairwiseDistances(A, B *v3.Matrix) *mat.Dense {
	m := A.NVecs()
	n := B.NVecs()
	D := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				d := A.At(i, k) - B.At(j, k)
				sum += d * d
			}
			D.Set(i, j, math.Sqrt(sum))
		}
	}
	return D
}

//ContactsInBin returns every index pair of D with lo < D[i,j] < hi. The
//interval is open: boundary values are excluded, matching the hydrogen-bond
//and SPLIF binning policy.
func ContactsInBin(D *mat.Dense, lo, hi float64) []Contact {
	m, n := D.Dims()
	contacts := make([]Contact, 0)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if d := D.At(i, j); d > lo && d < hi {
				contacts = append(contacts, Contact{Protein: i, Ligand: j})
			}
		}
	}
	return contacts
}

//contactProteinAtoms returns the sorted-unique protein-side indexes of a
//contact list.
func contactProteinAtoms(contacts []Contact) []int {
	seen := make(map[int]bool)
	ret := make([]int, 0, len(contacts))
	for _, c := range contacts {
		if !seen[c.Protein] {
			seen[c.Protein] = true
			ret = append(ret, c.Protein)
		}
	}
	return ret
}

//angleWithinCutoff reports whether the angle between the two vectors lies
//within cutoff degrees of 180.
func angleWithinCutoff(vi, vj *v3.Matrix, cutoff float64) bool {
	angle := Angle(vi, vj) * 180.0 / math.Pi
	return angle > 180.0-cutoff && angle < 180.0+cutoff
}

//IsHydrogenBond determines whether the contact pair between protein and
//ligand is a hydrogen bond. One atom must be an acceptor and the other a
//donor; both directions are checked. For the donor side, every directly
//bonded hydrogen is examined, and the bond qualifies if for any of them the
//acceptor-hydrogen-donor angle lies within angleCutoff degrees of 180.
//Returns false if neither direction applies or no qualifying hydrogen is
//found. Distance binning is the caller's responsibility.
func IsHydrogenBond(protXYZ *v3.Matrix, prot *Structure, ligXYZ *v3.Matrix, lig *Structure, c Contact, angleCutoff float64) bool {
	protAtom := prot.Atom(c.Protein)
	ligAtom := lig.Atom(c.Ligand)
	ppos := protXYZ.VecView(c.Protein)
	lpos := ligXYZ.VecView(c.Ligand)
	vi := v3.Zeros(1)
	vj := v3.Zeros(1)
	check := func(donor *Atom, donorXYZ *v3.Matrix) bool {
		for _, b := range donor.Bonds {
			h := b.Cross(donor)
			if h.Number != 1 {
				continue
			}
			hpos := donorXYZ.VecView(h.Index)
			vi.Sub(ppos, hpos)
			vj.Sub(lpos, hpos)
			if angleWithinCutoff(vi, vj, angleCutoff) {
				return true
			}
		}
		return false
	}
	if protAtom.Acceptor && ligAtom.Donor && check(ligAtom, ligXYZ) {
		return true
	}
	if ligAtom.Acceptor && protAtom.Donor && check(protAtom, protXYZ) {
		return true
	}
	return false
}

//HydrogenBonds returns, for each distance bin, the contact pairs that
//qualify as hydrogen bonds under the corresponding angle cutoff. distBins
//and angleCutoffs run in parallel; each sublist of the result is one
//hydrogen-bond class. D is the protein-by-ligand distance matrix.
func HydrogenBonds(protXYZ *v3.Matrix, prot *Structure, ligXYZ *v3.Matrix, lig *Structure, D *mat.Dense, distBins [][2]float64, angleCutoffs []float64) [][]Contact {
	classes := make([][]Contact, 0, len(distBins))
	for i, bin := range distBins {
		cutoff := angleCutoffs[i]
		candidates := ContactsInBin(D, bin[0], bin[1])
		bonds := make([]Contact, 0)
		for _, c := range candidates {
			if IsHydrogenBond(protXYZ, prot, ligXYZ, lig, c, cutoff) {
				bonds = append(bonds, c)
			}
		}
		classes = append(classes, bonds)
	}
	return classes
}
