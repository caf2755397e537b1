package dualorbit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// AxisX is the first unit vector.
	AxisX = []float64{1, 0, 0}
	// AxisY is the second unit vector.
	AxisY = []float64{0, 1, 0}
	// AxisZ is the third unit vector.
	AxisZ = []float64{0, 0, 1}
)

// Precession is a constant rate rotation of a whole orbital plane about a fixed axis.
type Precession struct {
	Rate float64   // revolutions per simulation time unit
	Axis []float64 // unit vector
}

// NewPrecession returns a precession of the provided rate about the provided axis, which is normalized.
func NewPrecession(rate float64, axis []float64) (Precession, error) {
	if len(axis) != 3 {
		return Precession{}, fmt.Errorf("precession axis must be a 3 vector, got %d components", len(axis))
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Precession{}, &InvalidOrbitError{"precession rate", rate}
	}
	u := unit(axis)
	if norm(u) == 0 {
		return Precession{}, errors.New("precession axis cannot be the zero vector")
	}
	return Precession{rate, u}, nil
}

// Angle returns the rotation angle at time t, 2π*rate*t.
func (p Precession) Angle(t float64) float64 {
	return 2 * math.Pi * p.Rate * t
}

// AngularVelocity returns the rotation vector ω of the plane.
func (p Precession) AngularVelocity() []float64 {
	ω := 2 * math.Pi * p.Rate
	return []float64{ω * p.Axis[0], ω * p.Axis[1], ω * p.Axis[2]}
}

// Matrix returns the rotation matrix at time t.
func (p Precession) Matrix(t float64) *mat.Dense {
	return AxisAngle(p.Axis, p.Angle(t))
}

// Rotate returns v rotated by the precession angle at time t.
func (p Precession) Rotate(t float64, v []float64) []float64 {
	if p.Angle(t) == 0 {
		return []float64{v[0], v[1], v[2]}
	}
	return MxV33(p.Matrix(t), v)
}

func (p Precession) String() string {
	return fmt.Sprintf("precession %.4f rev/unit about %v", p.Rate, p.Axis)
}
