package gridfeat

import (
	"math"

	v3 "github.com/gmolnar/gridfeat/v3"
)

//Tensor is a dense 4D occupancy grid: three spatial axes of g cells each
//plus a channel axis. Entries are non-negative accumulated counts.
type Tensor struct {
	g        int
	channels int
	data     []float64
}

//NewTensor returns a zero-filled tensor with g cells per spatial axis and
//the given number of channels.
func NewTensor(g, channels int) *Tensor {
	return &Tensor{g: g, channels: channels, data: make([]float64, g*g*g*channels)}
}

//G returns the number of cells along each spatial axis.
func (T *Tensor) G() int {
	return T.g
}

//Channels returns the size of the channel axis.
func (T *Tensor) Channels() int {
	return T.channels
}

//inBounds reports whether the cell-channel index lies inside the tensor.
func (T *Tensor) inBounds(i, j, k, c int) bool {
	return i >= 0 && i < T.g && j >= 0 && j < T.g && k >= 0 && k < T.g && c >= 0 && c < T.channels
}

//At returns the count at cell i,j,k and channel c. Panics if out of
//bounds; reads, unlike accumulation, have no silent-drop policy.
func (T *Tensor) At(i, j, k, c int) float64 {
	if !T.inBounds(i, j, k, c) {
		panic("Tensor: index out of bounds")
	}
	return T.data[((i*T.g+j)*T.g+k)*T.channels+c]
}

//Accumulate increments the count at cell i,j,k and channel c by one.
//If the cell lies outside the tensor the increment is silently dropped:
//atoms outside the configured box do not contribute, and that must not
//abort the pipeline.
func (T *Tensor) Accumulate(i, j, k, c int) {
	if !T.inBounds(i, j, k, c) {
		return
	}
	T.data[((i*T.g+j)*T.g+k)*T.channels+c]++
}

//Raw returns the backing slice of the tensor, in row-major order with
//the channel axis innermost. It is a view, not a copy.
func (T *Tensor) Raw() []float64 {
	return T.data
}

//Sum returns the total count accumulated in the tensor.
func (T *Tensor) Sum() float64 {
	var s float64
	for _, v := range T.data {
		s += v
	}
	return s
}

//ConcatChannels returns a new tensor whose channel axis is the
//concatenation of the channel axes of the inputs, which must all share
//the same spatial size.
func ConcatChannels(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		err := CError{msg: "ConcatChannels: no tensors given"}
		err.Decorate("ConcatChannels")
		return nil, err
	}
	g := tensors[0].g
	total := 0
	for _, t := range tensors {
		if t.g != g {
			err := CError{msg: "ConcatChannels: tensors have different spatial sizes"}
			err.Decorate("ConcatChannels")
			return nil, err
		}
		total += t.channels
	}
	ret := NewTensor(g, total)
	for i := 0; i < g; i++ {
		for j := 0; j < g; j++ {
			for k := 0; k < g; k++ {
				off := 0
				for _, t := range tensors {
					for c := 0; c < t.channels; c++ {
						ret.data[((i*g+j)*g+k)*total+off+c] = t.data[((i*t.g+j)*t.g+k)*t.channels+c]
					}
					off += t.channels
				}
			}
		}
	}
	return ret, nil
}

//GridIndex converts a point to its i,j,k grid cell:
//floor(|p + boxWidth/2| / voxelWidth) per axis. The absolute value is
//taken before flooring, folding negative offsets; this unusual indexing
//convention is kept bit-for-bit for compatibility with artifacts produced
//by earlier versions of the pipeline.
func GridIndex(point *v3.Matrix, boxWidth, voxelWidth float64) [3]int {
	var ret [3]int
	for j := 0; j < 3; j++ {
		ret[j] = int(math.Floor(math.Abs(point.At(0, j)+boxWidth/2.0) / voxelWidth))
	}
	return ret
}

//gridSize is the number of cells per axis a box of the given width gets.
func gridSize(boxWidth float64) int {
	return int(2 * boxWidth)
}

//VoxelizeAtoms accumulates one count per fragment of env into the grid
//cell of the corresponding atom of coords, in the channel given by the
//fragment's hash. Out-of-box atoms are dropped silently.
func VoxelizeAtoms(coords *v3.Matrix, env map[int]string, power int, boxWidth, voxelWidth float64) *Tensor {
	T := NewTensor(gridSize(boxWidth), 1<<uint(power))
	for idx, frag := range env {
		cell := GridIndex(coords.VecView(idx), boxWidth, voxelWidth)
		T.Accumulate(cell[0], cell[1], cell[2], HashFragment(frag, power))
	}
	return T
}

//VoxelizePairs accumulates each contact's fragment pair into the cells of
//both of its atoms, protein cell and ligand cell, in the channel given by
//the pair's hash.
func VoxelizePairs(protXYZ, ligXYZ *v3.Matrix, pairs map[Contact][2]string, power int, boxWidth, voxelWidth float64) *Tensor {
	T := NewTensor(gridSize(boxWidth), 1<<uint(power))
	for c, fp := range pairs {
		ch := HashFragmentPair(fp[0], fp[1], power)
		pcell := GridIndex(protXYZ.VecView(c.Protein), boxWidth, voxelWidth)
		lcell := GridIndex(ligXYZ.VecView(c.Ligand), boxWidth, voxelWidth)
		T.Accumulate(pcell[0], pcell[1], pcell[2], ch)
		T.Accumulate(lcell[0], lcell[1], lcell[2], ch)
	}
	return T
}

//VoxelizeContacts accumulates a bare tally of the given contacts into a
//single-channel tensor, one count in each atom's cell per contact. Used
//for feature classes with no fragment hash, like hydrogen bonds.
func VoxelizeContacts(protXYZ, ligXYZ *v3.Matrix, contacts []Contact, boxWidth, voxelWidth float64) *Tensor {
	T := NewTensor(gridSize(boxWidth), 1)
	for _, c := range contacts {
		pcell := GridIndex(protXYZ.VecView(c.Protein), boxWidth, voxelWidth)
		lcell := GridIndex(ligXYZ.VecView(c.Ligand), boxWidth, voxelWidth)
		T.Accumulate(pcell[0], pcell[1], pcell[2], 0)
		T.Accumulate(lcell[0], lcell[1], lcell[2], 0)
	}
	return T
}

//Vectorize is the non-spatial analogue of VoxelizeAtoms: a count vector
//of length 2^power, incremented at each fragment's channel, independent
//of geometry.
func Vectorize(env map[int]string, power int) []float64 {
	vec := make([]float64, 1<<uint(power))
	for _, frag := range env {
		vec[HashFragment(frag, power)]++
	}
	return vec
}

//VectorizePairs is Vectorize for fragment-pair maps.
func VectorizePairs(pairs map[Contact][2]string, power int) []float64 {
	vec := make([]float64, 1<<uint(power))
	for _, fp := range pairs {
		vec[HashFragmentPair(fp[0], fp[1], power)]++
	}
	return vec
}

//PresenceVector returns a 0/1 vector of length 2^power with a one at the
//channel of every fragment observed in env.
func PresenceVector(env map[int]string, power int) []float64 {
	vec := make([]float64, 1<<uint(power))
	for _, frag := range env {
		vec[HashFragment(frag, power)] = 1
	}
	return vec
}

//CountVector returns the one-element vector holding the plain tally of a
//contact list (channel power zero).
func CountVector(contacts []Contact) []float64 {
	return []float64{float64(len(contacts))}
}
