package dualorbit

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
)

/* Numerical cross-check of the analytic positions: integrates the two-body problem. */

// TwoBodyPropagator is an ode.Integrable of a point mass attracted by the dynamical focus of a model.
type TwoBodyPropagator struct {
	μ               float64
	focus           []float64
	state           []float64 // [x y z vx vy vz]
	step            float64
	steps, maxSteps uint64
}

// NewTwoBodyPropagator returns a propagator initialized on the analytic state of the model at t0.
func NewTwoBodyPropagator(m *OrbitModel, t0, step float64, steps uint64) (*TwoBodyPropagator, error) {
	if m.Precession != nil {
		return nil, ErrPrecessingModel
	}
	R, err := m.Position(t0)
	if err != nil {
		return nil, err
	}
	V, err := m.Velocity(t0)
	if err != nil {
		return nil, err
	}
	return &TwoBodyPropagator{
		μ:        m.GravitationalParameter(),
		focus:    m.DynamicalFocus(),
		state:    []float64{R[0], R[1], R[2], V[0], V[1], V[2]},
		step:     step,
		maxSteps: steps,
	}, nil
}

// GetState returns the current state.
func (p *TwoBodyPropagator) GetState() []float64 {
	return p.state
}

// SetState sets the next state.
func (p *TwoBodyPropagator) SetState(t float64, s []float64) {
	p.state = s
	p.steps++
}

// Stop returns whether the requested number of steps has been integrated.
func (p *TwoBodyPropagator) Stop(t float64) bool {
	return p.steps >= p.maxSteps
}

// Func is the two-body equation of motion about the focus.
func (p *TwoBodyPropagator) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 6)
	rel := []float64{f[0] - p.focus[0], f[1] - p.focus[1], f[2] - p.focus[2]}
	bodyAcc := -p.μ / math.Pow(norm(rel), 3)
	for i := 0; i < 3; i++ {
		fDot[i] = f[i+3]
		fDot[i+3] = bodyAcc * rel[i]
	}
	return
}

// Position returns the integrated position.
func (p *TwoBodyPropagator) Position() []float64 {
	return []float64{p.state[0], p.state[1], p.state[2]}
}

// PropagateModel integrates the model from its analytic state at t0 up to t1 with RK4 steps no larger than step,
// and returns the integrated position at t1.
func PropagateModel(m *OrbitModel, t0, t1, step float64) ([]float64, error) {
	if !(t1 > t0) || !(step > 0) {
		return nil, fmt.Errorf("cannot propagate from %g to %g with step %g", t0, t1, step)
	}
	steps := uint64(math.Ceil((t1 - t0) / step))
	step = (t1 - t0) / float64(steps)
	p, err := NewTwoBodyPropagator(m, t0, step, steps)
	if err != nil {
		return nil, err
	}
	ode.NewRK4(t0, step, p).Solve() // Blocking.
	if p.steps != steps {
		return nil, errors.New("integration stopped early")
	}
	return p.Position(), nil
}
