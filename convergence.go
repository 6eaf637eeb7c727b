package inpaint

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Tracker records the per-sweep residual sequence and decides when to stop.
type Tracker struct {
	Tol       float64
	residuals []float64
}

// trackerPrealloc caps the up-front residual allocation; capacity is only
// an upper bound on sweeps and the slice grows past this as needed.
const trackerPrealloc = 1024

// NewTracker returns a tracker that stops once a residual drops below tol.
func NewTracker(tol float64, capacity int) *Tracker {
	return &Tracker{Tol: tol, residuals: make([]float64, 0, min(max(capacity, 0), trackerPrealloc))}
}

// Add appends a residual and reports whether the stopping condition holds.
func (t *Tracker) Add(r float64) bool {
	t.residuals = append(t.residuals, r)
	return r < t.Tol
}

// Residuals returns the recorded sequence. The slice is owned by the caller
// after the solve finishes.
func (t *Tracker) Residuals() []float64 {
	return t.residuals
}

// Len returns the number of completed sweeps.
func (t *Tracker) Len() int {
	return len(t.residuals)
}

// Last returns the latest residual, or NaN before the first sweep.
func (t *Tracker) Last() float64 {
	if len(t.residuals) == 0 {
		return math.NaN()
	}
	return t.residuals[len(t.residuals)-1]
}

// Converged reports whether the latest residual is below Tol.
func (t *Tracker) Converged() bool {
	return len(t.residuals) > 0 && t.Last() < t.Tol
}

// Rate estimates the geometric decay factor of the residuals by a least
// squares fit of log(r) against the sweep index. Values below 1 mean the
// solve is contracting. Zero residuals are skipped; NaN is returned when
// fewer than two positive residuals exist.
func (t *Tracker) Rate() float64 {
	return ConvergenceRate(t.residuals)
}

// ConvergenceRate is Tracker.Rate for a bare residual sequence.
func ConvergenceRate(residuals []float64) float64 {
	xs := make([]float64, 0, len(residuals))
	ys := make([]float64, 0, len(residuals))
	for i, r := range residuals {
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Log(r))
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return math.Exp(beta)
}
