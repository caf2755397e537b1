package dualorbit

import (
	"math"
)

// OrbitModel maps a simulation time to the position of a body on its orbit.
// It holds no mutable state: Position is a pure function of t.
type OrbitModel struct {
	Params     OrbitParameters
	Solver     KeplerSolver
	Precession *Precession // nil if the orbital plane is fixed
}

// NewOrbitModel returns a model of the provided orbit. A nil solver selects the default IterativeSolver.
func NewOrbitModel(params OrbitParameters, solver KeplerSolver) (*OrbitModel, error) {
	if params.a == 0 {
		return nil, &InvalidOrbitError{"a", 0}
	}
	if err := validEccentricity(params.e); err != nil {
		return nil, err
	}
	if solver == nil {
		solver = IterativeSolver{}
	}
	return &OrbitModel{Params: params, Solver: solver}, nil
}

// WithPrecession returns a copy of this model whose orbital plane precesses.
func (m *OrbitModel) WithPrecession(p Precession) *OrbitModel {
	cpy := *m
	cpy.Precession = &p
	return &cpy
}

// MeanAnomaly returns M at time t for the configured convention. It is not wrapped.
func (m *OrbitModel) MeanAnomaly(t float64) float64 {
	M := 2 * math.Pi * t / m.Params.period
	if m.Params.convention == HalfPeriodOffset {
		M -= math.Pi
	}
	return M
}

// EccentricAnomaly returns E at time t.
func (m *OrbitModel) EccentricAnomaly(t float64) (float64, error) {
	return m.Solver.EccentricAnomaly(m.MeanAnomaly(t), m.Params.e)
}

// planar returns the in-plane coordinates for the eccentric anomaly E.
func (m *OrbitModel) planar(E float64) (x, y float64) {
	o := m.Params
	sinE, cosE := math.Sincos(E)
	if o.convention == HalfPeriodOffset {
		return o.a*cosE + o.c, o.b * sinE
	}
	return o.a * (o.e - cosE), o.b * sinE
}

// PlanarPosition returns the position in the plane of the ellipse, origin at the focus.
func (m *OrbitModel) PlanarPosition(t float64) (x, y float64, err error) {
	E, err := m.EccentricAnomaly(t)
	if err != nil {
		return 0, 0, err
	}
	x, y = m.planar(E)
	return
}

// Position returns the 3D position at time t, including the precession of the plane if any.
func (m *OrbitModel) Position(t float64) ([]float64, error) {
	x, y, err := m.PlanarPosition(t)
	if err != nil {
		return nil, err
	}
	R := m.Params.plane.Embed(x, y)
	if m.Precession != nil {
		R = m.Precession.Rotate(t, R)
	}
	return R, nil
}

// Velocity returns the time derivative of Position at time t.
func (m *OrbitModel) Velocity(t float64) ([]float64, error) {
	o := m.Params
	E, err := m.EccentricAnomaly(t)
	if err != nil {
		return nil, err
	}
	sinE, cosE := math.Sincos(E)
	Edot := o.MeanMotion() / (1 - o.e*cosE)
	vx := o.a * sinE * Edot
	if o.convention == HalfPeriodOffset {
		vx = -vx
	}
	V := o.plane.Embed(vx, o.b*cosE*Edot)
	if m.Precession == nil {
		return V, nil
	}
	x, y := m.planar(E)
	R := m.Precession.Rotate(t, o.plane.Embed(x, y))
	V = m.Precession.Rotate(t, V)
	ωxR := cross(m.Precession.AngularVelocity(), R)
	for i := 0; i < 3; i++ {
		V[i] += ωxR[i]
	}
	return V, nil
}

// DynamicalFocus returns the focus about which the motion obeys Kepler's second law.
// This is the origin for PeriapsisAtEpoch and the empty focus for HalfPeriodOffset.
// The focus of a precessing model is not fixed; it is returned at t=0.
func (m *OrbitModel) DynamicalFocus() []float64 {
	if m.Params.convention == HalfPeriodOffset {
		return m.Params.plane.Embed(2*m.Params.c, 0)
	}
	return []float64{0, 0, 0}
}

// GravitationalParameter returns μ = 4π²a³/T², consistent with the period in simulation units.
func (m *OrbitModel) GravitationalParameter() float64 {
	n := m.Params.MeanMotion()
	return n * n * math.Pow(m.Params.a, 3)
}

// String implements the stringer interface.
func (m *OrbitModel) String() string {
	if m.Precession != nil {
		return m.Params.String() + " " + m.Precession.String()
	}
	return m.Params.String()
}
