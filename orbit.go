package dualorbit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	distanceε = 1e-9
	periodε   = 1e-9
)

// Plane defines which coordinate pair the planar ellipse occupies.
type Plane uint8

// AnomalyConvention defines where the body sits at t=0.
type AnomalyConvention uint8

const (
	// PlaneXY maps (x, y) to (x, y, 0).
	PlaneXY Plane = iota + 1
	// PlaneYZ maps (x, y) to (0, x, y).
	PlaneYZ
	// PlaneXZ maps (x, y) to (x, 0, y).
	PlaneXZ
)

const (
	// PeriapsisAtEpoch uses M = 2πt/T and the planar position (a(e - cos E), b sin E).
	// This is the default: the timing is Keplerian about the origin focus and t=0 is the periapsis.
	PeriapsisAtEpoch AnomalyConvention = iota + 1
	// HalfPeriodOffset uses M = 2πt/T - π and the planar position (a cos E + c, b sin E).
	// At t=0 the body is at the vertex nearest the origin, but the timing is Keplerian about
	// the empty focus, so it moves slowest there. It is phase shifted from PeriapsisAtEpoch.
	HalfPeriodOffset
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneYZ:
		return "YZ"
	case PlaneXZ:
		return "XZ"
	}
	panic("cannot stringify unknown plane")
}

// Embed maps a planar point into 3D.
func (p Plane) Embed(x, y float64) []float64 {
	switch p {
	case PlaneYZ:
		return []float64{0, x, y}
	case PlaneXZ:
		return []float64{x, 0, y}
	default:
		return []float64{x, y, 0}
	}
}

// PlaneFromString returns the plane from its name (case insensitive).
func PlaneFromString(name string) (Plane, error) {
	switch strings.ToUpper(name) {
	case "", "XY":
		return PlaneXY, nil
	case "YZ":
		return PlaneYZ, nil
	case "XZ":
		return PlaneXZ, nil
	}
	return 0, &unknownNameError{"plane", name}
}

func (c AnomalyConvention) String() string {
	switch c {
	case PeriapsisAtEpoch:
		return "periapsis"
	case HalfPeriodOffset:
		return "half-period"
	}
	panic("cannot stringify unknown anomaly convention")
}

// ConventionFromString returns the anomaly convention from its name.
func ConventionFromString(name string) (AnomalyConvention, error) {
	switch strings.ToLower(name) {
	case "", "periapsis":
		return PeriapsisAtEpoch, nil
	case "half-period", "halfperiod":
		return HalfPeriodOffset, nil
	}
	return 0, &unknownNameError{"anomaly convention", name}
}

// OrbitParameters defines an ellipse with one focus at the origin and the period to go around it.
// It is immutable once built.
type OrbitParameters struct {
	a, b, c, e, period float64
	plane              Plane
	convention         AnomalyConvention
}

// NewOrbitParameters returns the parameters of an orbit of semi major axis a and semi minor axis b.
func NewOrbitParameters(a, b, period float64, plane Plane, convention AnomalyConvention) (OrbitParameters, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return OrbitParameters{}, &InvalidOrbitError{"a", a}
	}
	if math.IsNaN(b) || b <= 0 {
		// A degenerate ellipse is a parabola or a segment, e >= 1.
		return OrbitParameters{}, &InvalidEccentricityError{1}
	}
	if b > a {
		return OrbitParameters{}, &InvalidOrbitError{"b", b}
	}
	if !(period > 0) || math.IsInf(period, 0) {
		return OrbitParameters{}, &InvalidOrbitError{"period", period}
	}
	if plane < PlaneXY || plane > PlaneXZ {
		return OrbitParameters{}, &InvalidOrbitError{"plane", float64(plane)}
	}
	if convention < PeriapsisAtEpoch || convention > HalfPeriodOffset {
		return OrbitParameters{}, &InvalidOrbitError{"convention", float64(convention)}
	}
	c := math.Sqrt(a*a - b*b)
	e := c / a
	if err := validEccentricity(e); err != nil {
		return OrbitParameters{}, err
	}
	return OrbitParameters{a, b, c, e, period, plane, convention}, nil
}

// NewOrbitParametersFromAE returns the parameters from the semi major axis and the eccentricity.
func NewOrbitParametersFromAE(a, e, period float64, plane Plane, convention AnomalyConvention) (OrbitParameters, error) {
	if err := validEccentricity(e); err != nil {
		return OrbitParameters{}, err
	}
	return NewOrbitParameters(a, a*math.Sqrt(1-e*e), period, plane, convention)
}

// NewOrbitParametersFromRadii returns the parameters from the periapsis and apoapsis radii.
func NewOrbitParametersFromRadii(rP, rA, period float64, plane Plane, convention AnomalyConvention) (OrbitParameters, error) {
	if rA < rP {
		return OrbitParameters{}, errors.New("periapsis cannot be greater than apoapsis")
	}
	if !(rP > 0) {
		return OrbitParameters{}, &InvalidOrbitError{"periapsis", rP}
	}
	a, e := Radii2ae(rA, rP)
	return NewOrbitParametersFromAE(a, e, period, plane, convention)
}

// SemiMajorAxis returns a.
func (o OrbitParameters) SemiMajorAxis() float64 { return o.a }

// SemiMinorAxis returns b.
func (o OrbitParameters) SemiMinorAxis() float64 { return o.b }

// FocalOffset returns c, the distance between the center and the origin focus.
func (o OrbitParameters) FocalOffset() float64 { return o.c }

// Eccentricity returns e = c/a.
func (o OrbitParameters) Eccentricity() float64 { return o.e }

// Period returns the orbital period in simulation time units.
func (o OrbitParameters) Period() float64 { return o.period }

// Plane returns the plane in which the ellipse is drawn.
func (o OrbitParameters) Plane() Plane { return o.plane }

// Convention returns the anomaly convention.
func (o OrbitParameters) Convention() AnomalyConvention { return o.convention }

// MeanMotion returns 2π/T.
func (o OrbitParameters) MeanMotion() float64 {
	return 2 * math.Pi / o.period
}

// SemiParameter returns the semi latus rectum.
func (o OrbitParameters) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Apoapsis returns the largest distance to the origin focus.
func (o OrbitParameters) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// Periapsis returns the smallest distance to the origin focus.
func (o OrbitParameters) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// String implements the stringer interface.
func (o OrbitParameters) String() string {
	return fmt.Sprintf("a=%.3f b=%.3f e=%.4f T=%.3f plane=%s convention=%s", o.a, o.b, o.e, o.period, o.plane, o.convention)
}

// Equals returns whether two sets of parameters describe the same orbit.
func (o OrbitParameters) Equals(o1 OrbitParameters) (bool, error) {
	if !scalar.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !scalar.EqualWithinAbs(o.b, o1.b, distanceε) {
		return false, errors.New("semi minor axis invalid")
	}
	if !scalar.EqualWithinAbs(o.period, o1.period, periodε) {
		return false, errors.New("period invalid")
	}
	if o.plane != o1.plane {
		return false, errors.New("plane invalid")
	}
	if o.convention != o1.convention {
		return false, errors.New("anomaly convention invalid")
	}
	return true, nil
}

// Radii2ae returns the semi major axis and the eccentricty from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
