package dualorbit

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AxisAngle returns the matrix rotating a vector by θ about the provided unit axis (Rodrigues).
func AxisAngle(axis []float64, θ float64) *mat.Dense {
	s, c := math.Sincos(θ)
	x, y, z := axis[0], axis[1], axis[2]
	v := 1 - c
	return mat.NewDense(3, 3, []float64{
		c + x*x*v, x*y*v - z*s, x*z*v + y*s,
		y*x*v + z*s, c + y*y*v, y*z*v - x*s,
		z*x*v - y*s, z*y*v + x*s, c + z*z*v})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v []float64) (o []float64) {
	vVec := mat.NewVecDense(len(v), v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
