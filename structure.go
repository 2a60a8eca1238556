package gridfeat

import (
	"fmt"
	"sort"

	v3 "github.com/gmolnar/gridfeat/v3"
)

//constants for distance-based bond assignment, from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//Atom holds the per-atom chemical annotations the featurization needs.
//Coordinates are kept apart, in a v3.Matrix index-aligned with the atoms.
type Atom struct {
	Index    int    //position in the parent Structure. Stable for the lifetime of a featurization call.
	Type     string //chemical type label from the structure provider (e.g. "C.ar", "N.am")
	Symbol   string //element symbol
	Number   int    //atomic number
	Donor    bool   //hydrogen-bond donor
	Acceptor bool   //hydrogen-bond acceptor
	Bonds    []*Bond
}

//Copy returns a copy of the Atom, without its bonds.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	return &Atom{Index: A.Index, Type: A.Type, Symbol: A.Symbol, Number: A.Number, Donor: A.Donor, Acceptor: A.Acceptor}
}

//Bond connects two atoms of a Structure.
type Bond struct {
	Index    int
	At1      *Atom
	At2      *Atom
	Dist     float64
	Order    float64 //Order 0 means undetermined
	Aromatic bool
}

//Cross returns the atom of the bond that is not origin. Panics if origin
//is not part of the bond, as that has to be a programming error.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.Index == B.At1.Index {
		return B.At2
	}
	if origin.Index == B.At2.Index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!")
}

//Structure is an ordered set of atoms plus the bonds connecting them.
//It is owned by the structure provider; the featurization pipeline only
//reads it. Atom i of the structure corresponds to vector i of any
//coordinate matrix derived from the same molecule.
type Structure struct {
	atoms []*Atom
	bonds []*Bond
}

//NewStructure builds a Structure from atoms and bonds. The index of each
//atom is set to its position in the slice, and the incident-bond lists of
//the atoms are (re)filled from bonds. Bond endpoints must be atoms of the
//given slice.
func NewStructure(atoms []*Atom, bonds []*Bond) (*Structure, error) {
	if atoms == nil {
		return nil, CError{msg: "NewStructure: nil atom slice", deco: []string{"NewStructure"}}
	}
	for i, at := range atoms {
		at.Index = i
		at.Bonds = nil
		if at.Number == 0 {
			at.Number = AtomicNumber(at.Symbol)
		}
	}
	for i, b := range bonds {
		b.Index = i
		if b.At1 == nil || b.At2 == nil {
			return nil, CError{msg: fmt.Sprintf("NewStructure: bond %d has a nil atom", i), deco: []string{"NewStructure"}}
		}
		if b.At1.Index >= len(atoms) || b.At2.Index >= len(atoms) ||
			atoms[b.At1.Index] != b.At1 || atoms[b.At2.Index] != b.At2 {
			return nil, CError{msg: fmt.Sprintf("NewStructure: bond %d references atoms outside the structure", i), deco: []string{"NewStructure"}}
		}
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	return &Structure{atoms: atoms, bonds: bonds}, nil
}

//Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.atoms)
}

//Atom returns the atom with index i. Panics if out of range.
func (S *Structure) Atom(i int) *Atom {
	if i >= len(S.atoms) {
		panic("Structure: Requested Atom out of bounds")
	}
	return S.atoms[i]
}

//Bonds returns the bond list of the structure.
func (S *Structure) Bonds() []*Bond {
	return S.bonds
}

//SubStructure builds a new Structure from a list of bonds plus the atoms
//at their endpoints, renumbering atoms in order of first appearance. Bond
//orders and aromaticity are preserved. Atoms are copied, so the fragment
//does not alias the parent structure.
func (S *Structure) SubStructure(bonds []*Bond) (*Structure, error) {
	added := make(map[int]*Atom) //parent index -> fragment atom
	atoms := make([]*Atom, 0, len(bonds)+1)
	nbonds := make([]*Bond, 0, len(bonds))
	place := func(at *Atom) *Atom {
		if got, ok := added[at.Index]; ok {
			return got
		}
		n := at.Copy()
		added[at.Index] = n
		atoms = append(atoms, n)
		return n
	}
	for _, b := range bonds {
		a1 := place(b.At1)
		a2 := place(b.At2)
		nbonds = append(nbonds, &Bond{At1: a1, At2: a2, Dist: b.Dist, Order: b.Order, Aromatic: b.Aromatic})
	}
	frag, err := NewStructure(atoms, nbonds)
	if err != nil {
		return nil, errDecorate(err, "SubStructure")
	}
	return frag, nil
}

//MergeStructures returns a new Structure containing the atoms and bonds of
//a followed by those of b, renumbered, together with the stacked coordinates.
//Atom i of the merged structure keeps the annotations it had in its parent.
func MergeStructures(a, b *Structure, acoord, bcoord *v3.Matrix) (*Structure, *v3.Matrix, error) {
	atoms := make([]*Atom, 0, a.Len()+b.Len())
	bonds := make([]*Bond, 0, len(a.bonds)+len(b.bonds))
	trans := make(map[*Atom]*Atom, a.Len()+b.Len())
	for _, src := range []*Structure{a, b} {
		for _, at := range src.atoms {
			n := at.Copy()
			trans[at] = n
			atoms = append(atoms, n)
		}
		for _, bo := range src.bonds {
			bonds = append(bonds, &Bond{At1: trans[bo.At1], At2: trans[bo.At2], Dist: bo.Dist, Order: bo.Order, Aromatic: bo.Aromatic})
		}
	}
	merged, err := NewStructure(atoms, bonds)
	if err != nil {
		return nil, nil, errDecorate(err, "MergeStructures")
	}
	coord := v3.Zeros(acoord.NVecs() + bcoord.NVecs())
	coord.Stack(acoord, bcoord)
	return merged, coord, nil
}

//AssignBonds assigns single bonds to a structure based on a simple distance
//criterium, similar to that described in DOI:10.1186/1758-2946-3-33. It is a
//convenience for structure providers that supply coordinates but no
//connectivity; providers with real bond perception should be preferred.
//Might get slow for large systems.
func AssignBonds(coord *v3.Matrix, S *Structure) error {
	t3 := v3.Zeros(1)
	bonds := make([]*Bond, 0, 10)
	tot := S.Len()
	var nextIndex int
	for _, at := range S.atoms {
		at.Bonds = nil
	}
	for i := 0; i < tot; i++ {
		t1 := coord.VecView(i)
		at1 := S.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			err := CError{msg: fmt.Sprintf("Couldn't find the covalent radii for %s %d", at1.Symbol, i)}
			err.Decorate("AssignBonds")
			return err
		}
		for j := i + 1; j < tot; j++ {
			t2 := coord.VecView(j)
			at2 := S.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				err := CError{msg: fmt.Sprintf("Couldn't find the covalent radii for %s %d", at2.Symbol, j)}
				err.Decorate("AssignBonds")
				return err
			}
			t3.Sub(t2, t1)
			d := t3.Norm()
			if d < cov1+cov2+bondtol && d > tooclose {
				b := &Bond{Index: nextIndex, Dist: d, At1: at1, At2: at2, Order: 1}
				at1.Bonds = append(at1.Bonds, b)
				at2.Bonds = append(at2.Bonds, b)
				bonds = append(bonds, b)
				nextIndex++
			}
		}
	}
	//Now we check that no atom has too many bonds.
	for i := 0; i < tot; i++ {
		at := S.Atom(i)
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //no specified number of bonds for this atom.
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			removeBond(at.Bonds[len(at.Bonds)-1], &bonds)
		}
	}
	S.bonds = bonds
	return nil
}

//removeBond drops b from the incident lists of both its atoms and from the
//structure-wide list.
func removeBond(b *Bond, all *[]*Bond) {
	filter := func(bonds []*Bond) []*Bond {
		newb := make([]*Bond, 0, len(bonds))
		for _, v := range bonds {
			if v != b {
				newb = append(newb, v)
			}
		}
		return newb
	}
	b.At1.Bonds = filter(b.At1.Bonds)
	b.At2.Bonds = filter(b.At2.Bonds)
	*all = filter(*all)
}

//Atomer is the read-only view of a structure that most of the pipeline
//needs: an ordered, indexable set of atoms.
type Atomer interface {
	//Atom returns the Atom corresponding to the index i. Should panic if
	//out of range.
	Atom(i int) *Atom
	Len() int
}
