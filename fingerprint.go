package gridfeat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//AtomEnvironments computes the ECFP-like fragment encoding of every atom
//of the structure, or only of the atoms in indices if it is not nil.
//Returns a map from atom index to fragment encoding.
func AtomEnvironments(s *Structure, indices []int, hops int) (map[int]string, error) {
	ret := make(map[int]string)
	if indices == nil {
		for i := 0; i < s.Len(); i++ {
			frag, err := ExtractFragment(s, i, hops)
			if err != nil {
				return nil, errDecorate(err, "AtomEnvironments")
			}
			ret[i] = frag
		}
		return ret, nil
	}
	for _, i := range indices {
		frag, err := ExtractFragment(s, i, hops)
		if err != nil {
			return nil, errDecorate(err, "AtomEnvironments")
		}
		ret[i] = frag
	}
	return ret, nil
}

//SplifPairs joins the per-atom fragments of both molecules into one
//fragment pair per contact. Both maps must already contain entries for
//every index referenced by contacts; a missing key is a contract
//violation and yields a critical error.
func SplifPairs(protEnv, ligEnv map[int]string, contacts []Contact) (map[Contact][2]string, error) {
	ret := make(map[Contact][2]string, len(contacts))
	for _, c := range contacts {
		pf, ok := protEnv[c.Protein]
		if !ok {
			err := CError{msg: fmt.Sprintf("SplifPairs: no environment fragment for protein atom %d", c.Protein)}
			err.Decorate("SplifPairs")
			return nil, err
		}
		lf, ok := ligEnv[c.Ligand]
		if !ok {
			err := CError{msg: fmt.Sprintf("SplifPairs: no environment fragment for ligand atom %d", c.Ligand)}
			err.Decorate("SplifPairs")
			return nil, err
		}
		ret[c] = [2]string{pf, lf}
	}
	return ret, nil
}

//BindingPocketEnvironments computes the fragment maps of the binding
//pocket: the protein map is restricted to atoms with at least one ligand
//atom closer than cutoff, while the ligand map covers the whole ligand.
//D is the protein-by-ligand distance matrix.
func BindingPocketEnvironments(D *mat.Dense, cutoff float64, prot, lig *Structure, hops int) (map[int]string, map[int]string, error) {
	m, n := D.Dims()
	pocket := make([]int, 0)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if D.At(i, j) < cutoff {
				pocket = append(pocket, i)
				break
			}
		}
	}
	protEnv, err := AtomEnvironments(prot, pocket, hops)
	if err != nil {
		return nil, nil, errDecorate(err, "BindingPocketEnvironments")
	}
	ligEnv, err := AtomEnvironments(lig, nil, hops)
	if err != nil {
		return nil, nil, errDecorate(err, "BindingPocketEnvironments")
	}
	return protEnv, ligEnv, nil
}

//SplifFingerprints computes, for each contact bin, the map from contact
//pair to protein/ligand fragment pair. The protein environments are
//computed only for the atoms on the contact surface of each bin; the
//ligand is covered in full.
func SplifFingerprints(prot, lig *Structure, D *mat.Dense, contactBins [][2]float64, hops int) ([]map[Contact][2]string, error) {
	ligEnv, err := AtomEnvironments(lig, nil, hops)
	if err != nil {
		return nil, errDecorate(err, "SplifFingerprints")
	}
	ret := make([]map[Contact][2]string, 0, len(contactBins))
	for _, bin := range contactBins {
		contacts := ContactsInBin(D, bin[0], bin[1])
		protEnv, err := AtomEnvironments(prot, contactProteinAtoms(contacts), hops)
		if err != nil {
			return nil, errDecorate(err, "SplifFingerprints")
		}
		pairs, err := SplifPairs(protEnv, ligEnv, contacts)
		if err != nil {
			return nil, errDecorate(err, "SplifFingerprints")
		}
		ret = append(ret, pairs)
	}
	return ret, nil
}
