package dualorbit

import (
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	sunit "github.com/soniakeys/unit"
)

const (
	// DefaultTolerance is the default residual of Kepler's equation, in radians.
	DefaultTolerance = 1e-6
	// DefaultMaxIterations caps the iterative solvers.
	DefaultMaxIterations = 100
	// DefaultPlaces is the default number of decimal places requested from the meeus solver.
	DefaultPlaces = 8
)

// KeplerSolver converts a mean anomaly into an eccentric anomaly.
type KeplerSolver interface {
	EccentricAnomaly(M, e float64) (float64, error)
}

// SolveKepler solves M = E - e*sin(E) for E with the fixed point iteration.
// M may be any real value, it is not wrapped.
func SolveKepler(M, e, tolerance float64) (float64, error) {
	return IterativeSolver{Tolerance: tolerance, MaxIterations: DefaultMaxIterations}.EccentricAnomaly(M, e)
}

// keplerResidual returns |E - e*sin(E) - M|.
func keplerResidual(M, e, E float64) float64 {
	return math.Abs(E - e*math.Sin(E) - M)
}

func validEccentricity(e float64) error {
	if math.IsNaN(e) || e < 0 || e >= 1 {
		return &InvalidEccentricityError{e}
	}
	return nil
}

// IterativeSolver is the fixed point solver of Kepler's equation, i.e. E <- M + e*sin(E).
// Zero values of its fields select DefaultTolerance and DefaultMaxIterations.
type IterativeSolver struct {
	Tolerance     float64
	MaxIterations int
}

func (s IterativeSolver) limits() (float64, int) {
	tol, maxIter := s.Tolerance, s.MaxIterations
	if tol <= 0 || math.IsNaN(tol) {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	return tol, maxIter
}

// EccentricAnomaly implements KeplerSolver.
func (s IterativeSolver) EccentricAnomaly(M, e float64) (float64, error) {
	E, _, err := s.Solve(M, e)
	return E, err
}

// Solve returns the eccentric anomaly and the number of iterations it took.
func (s IterativeSolver) Solve(M, e float64) (E float64, iterations int, err error) {
	if err = validEccentricity(e); err != nil {
		return 0, 0, err
	}
	tol, maxIter := s.limits()
	E = M + e*math.Sin(M)
	for {
		residual := keplerResidual(M, e, E)
		if residual <= tol {
			return E, iterations, nil
		}
		if iterations >= maxIter {
			return E, iterations, &ConvergenceError{MeanAnomaly: M, Eccentricity: e, Residual: residual, Iterations: iterations}
		}
		E = M + e*math.Sin(E)
		iterations++
	}
}

// NewtonSolver solves Kepler's equation with Newton-Raphson steps.
// It converges much faster than IterativeSolver for eccentricities close to 1.
type NewtonSolver struct {
	Tolerance     float64
	MaxIterations int
}

// EccentricAnomaly implements KeplerSolver.
func (s NewtonSolver) EccentricAnomaly(M, e float64) (float64, error) {
	if err := validEccentricity(e); err != nil {
		return 0, err
	}
	tol, maxIter := IterativeSolver(s).limits()
	// Danby's starter.
	E := M + math.Copysign(0.85*e, math.Sin(M))
	for i := 0; ; i++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) <= tol {
			return E, nil
		}
		if i >= maxIter {
			return E, &ConvergenceError{MeanAnomaly: M, Eccentricity: e, Residual: math.Abs(f), Iterations: i}
		}
		E -= f / (1 - e*math.Cos(E))
	}
}

// SeriesSolver is the closed form approximation E ≈ x - e*sin(x) + (e²/2)*sin(2x) of the phase x.
// An OrbitModel hands it its mean anomaly: x = 2πt/T for PeriapsisAtEpoch but x = 2πt/T - π
// for HalfPeriodOffset.
// WARNING: this is a visualization shortcut with no error bound, only use it for small to moderate
// eccentricities and never where precision matters.
type SeriesSolver struct{}

// EccentricAnomaly implements KeplerSolver.
func (SeriesSolver) EccentricAnomaly(x, e float64) (float64, error) {
	if err := validEccentricity(e); err != nil {
		return 0, err
	}
	return x - e*math.Sin(x) + (e*e/2)*math.Sin(2*x), nil
}

// MeeusSolver delegates to Sonia Keys' implementation of Meeus' second Kepler method.
type MeeusSolver struct {
	Places int // decimal places of E, DefaultPlaces if zero
}

// EccentricAnomaly implements KeplerSolver.
func (s MeeusSolver) EccentricAnomaly(M, e float64) (float64, error) {
	if err := validEccentricity(e); err != nil {
		return 0, err
	}
	places := s.Places
	if places <= 0 {
		places = DefaultPlaces
	}
	E, err := kepler.Kepler2(e, sunit.Angle(M), places)
	if err != nil {
		return 0, &ConvergenceError{MeanAnomaly: M, Eccentricity: e, Residual: math.NaN()}
	}
	return E.Rad(), nil
}

// SolverFromString returns the solver matching the provided name.
func SolverFromString(name string, tolerance float64, maxIterations, places int) (KeplerSolver, error) {
	switch name {
	case "", "iterative", "fixedpoint":
		return IterativeSolver{tolerance, maxIterations}, nil
	case "newton":
		return NewtonSolver{tolerance, maxIterations}, nil
	case "series":
		return SeriesSolver{}, nil
	case "meeus":
		return MeeusSolver{places}, nil
	}
	return nil, &unknownNameError{"solver", name}
}

type unknownNameError struct {
	kind, name string
}

func (e *unknownNameError) Error() string {
	return "unknown " + e.kind + " `" + e.name + "`"
}
