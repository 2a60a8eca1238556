package gridfeat

import (
	"math"
	"math/rand"

	v3 "github.com/gmolnar/gridfeat/v3"
)

const appzero float64 = 0.0000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//maxRotationDraws caps the rejection sampling in RandomRotation. Hitting
//it means a broken random source, which is a configuration error.
const maxRotationDraws = 1000

//Centroid returns the arithmetic mean of the vectors of coords as a 1x3
//matrix.
func Centroid(coords *v3.Matrix) *v3.Matrix {
	n := coords.NVecs()
	ret := v3.Zeros(1)
	if n == 0 {
		return ret
	}
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			ret.Set(0, j, ret.At(0, j)+coords.At(i, j))
		}
	}
	ret.Scale(1.0/float64(n), ret)
	return ret
}

//Recenter returns a new coordinate set with origin subtracted from every
//vector of coords. The input is not modified.
func Recenter(coords, origin *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(coords.NVecs())
	ret.SubVec(coords, origin)
	return ret
}

//RandomUnitVector returns a vector sampled uniformly on the unit sphere,
//using the uniform-azimuth, uniform-z parameterization
//(http://mathworld.wolfram.com/SpherePointPicking.html).
func RandomUnitVector(rng *rand.Rand) *v3.Matrix {
	theta := rng.Float64() * 2 * math.Pi
	z := rng.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	ret := v3.Zeros(1)
	ret.Set(0, 0, r*math.Cos(theta))
	ret.Set(0, 1, r*math.Sin(theta))
	ret.Set(0, 2, z)
	return ret
}

//RandomRotation returns a uniformly random 3x3 rotation matrix, as a
//3-vector v3.Matrix whose rows are the matrix rows. Two random unit vectors
//are drawn; the second is redrawn while |u.v| >= 0.99, then orthogonalized
//against the first (Gram-Schmidt) and normalized, and the third axis is
//their cross product. The three orthonormal vectors are the columns of the
//rotation, so the transform maps the standard basis onto them. Returns a
//critical error if the rejection sampling does not terminate within
//maxRotationDraws draws, which can only mean a degenerate random source.
func RandomRotation(rng *rand.Rand) (*v3.Matrix, error) {
	u := RandomUnitVector(rng)
	v := RandomUnitVector(rng)
	draws := 0
	for math.Abs(u.Dot(v)) >= 0.99 {
		draws++
		if draws > maxRotationDraws {
			err := CError{msg: "RandomRotation: rejection sampling did not terminate; the random source is degenerate"}
			err.Decorate("RandomRotation")
			return nil, err
		}
		v = RandomUnitVector(rng)
	}
	//vp = v - (u.v)*u, normalized
	vp := v3.Zeros(1)
	vp.Scale(u.Dot(v), u)
	vp.Sub(v, vp)
	vp.Unit(vp)
	w := v3.Zeros(1)
	w.Cross(u, vp)
	//u, vp and w are the columns of the rotation matrix.
	R := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		R.Set(i, 0, u.At(0, i))
		R.Set(i, 1, vp.At(0, i))
		R.Set(i, 2, w.At(0, i))
	}
	return R, nil
}

//Rotate applies the rotation matrix R to every vector of coords and
//returns the result as a new matrix. Since coordinates are row vectors,
//the product computed is coords*R^T.
func Rotate(coords, R *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(coords.NVecs())
	ret.Mul(coords, v3.Matrix2Dense(R).T())
	return ret
}

//RandomReflection returns a random unit vector defining a mirror plane
//through the origin.
func RandomReflection(rng *rand.Rand) *v3.Matrix {
	return RandomUnitVector(rng)
}

//Reflect reflects every vector of coords across the plane orthogonal to
//axis: p' = p - 2*(p.a/a.a)*a. Returns a new matrix.
func Reflect(coords, axis *v3.Matrix) *v3.Matrix {
	aa := axis.Dot(axis)
	if aa <= appzero {
		panic(v3.ErrZeroNorm)
	}
	ret := v3.Zeros(coords.NVecs())
	row := v3.Zeros(1)
	proj := v3.Zeros(1)
	for i := 0; i < coords.NVecs(); i++ {
		row.Copy(coords.VecView(i))
		proj.Scale(2*row.Dot(axis)/aa, axis)
		row.Sub(row, proj)
		for j := 0; j < 3; j++ {
			ret.Set(i, j, row.At(0, j))
		}
	}
	return ret
}

//Angle takes 2 vectors and calculates the angle in radians between them.
//The argument of the arccosine is clamped to [-1,1], so numerically
//identical vectors give 0 and exactly antiparallel ones give pi.
func Angle(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.Norm() * v2.Norm()
	dotprod := v1.Dot(v2)
	argument := dotprod / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}
