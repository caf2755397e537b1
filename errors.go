package dualorbit

import (
	"errors"
	"fmt"
)

// ErrPrecessingModel is returned when a two-body propagation is requested for a precessing model.
var ErrPrecessingModel = errors.New("precessing orbits have no two-body equivalent")

// InvalidEccentricityError is returned when an eccentricity is outside [0, 1).
type InvalidEccentricityError struct {
	Eccentricity float64
}

func (e *InvalidEccentricityError) Error() string {
	return fmt.Sprintf("invalid eccentricity e=%g: must satisfy 0 <= e < 1", e.Eccentricity)
}

// ConvergenceError is returned when Kepler's equation could not be solved within the iteration cap.
type ConvergenceError struct {
	MeanAnomaly  float64
	Eccentricity float64
	Residual     float64
	Iterations   int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("kepler solver did not converge after %d iterations (M=%g e=%g residual=%g)", e.Iterations, e.MeanAnomaly, e.Eccentricity, e.Residual)
}

// InvalidSampleRangeError is returned for sampling requests which cannot produce a strictly increasing series.
type InvalidSampleRangeError struct {
	TStart, TEnd float64
	NumPoints    int
}

func (e *InvalidSampleRangeError) Error() string {
	return fmt.Sprintf("invalid sample range [%g, %g] with %d points: need tEnd > tStart and at least 2 points", e.TStart, e.TEnd, e.NumPoints)
}

// InvalidOrbitError is returned when an orbit parameter is out of its domain.
type InvalidOrbitError struct {
	Field string
	Value float64
}

func (e *InvalidOrbitError) Error() string {
	return fmt.Sprintf("invalid orbit parameter %s=%g", e.Field, e.Value)
}
