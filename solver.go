package inpaint

import (
	"fmt"
	"image"
	"math"
	"time"
)

// Omega is the over-relaxation factor of every sweep.
const Omega = 1.25

// Ordering selects the pixel update order of a sweep.
type Ordering int

const (
	// OrderLexicographic is in-place row-major Gauss-Seidel. Pixels above and
	// to the left already hold this sweep's values when a pixel is updated.
	OrderLexicographic Ordering = iota
	// OrderRedBlack updates (x+y) even pixels first, then odd ones, each phase
	// split across Workers goroutines. It converges to the same fixed point
	// but its iterates and residuals differ from OrderLexicographic.
	OrderRedBlack
)

func (o Ordering) String() string {
	switch o {
	case OrderRedBlack:
		return "redblack"
	default:
		return "lexicographic"
	}
}

// ParseOrdering maps "lexicographic" / "redblack" (or "" for the default) to an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "lexicographic", "gauss-seidel":
		return OrderLexicographic, nil
	case "redblack", "red-black":
		return OrderRedBlack, nil
	}
	return 0, fmt.Errorf("%w: unknown ordering %q", ErrInvalidOptions, s)
}

type Options struct {
	// Upper bound on sweeps. Values <= 0 run no sweep at all.
	MaxIter int
	// A sweep whose residual falls below Tol is the last one.
	// Values near machine epsilon may never trigger before MaxIter.
	Tol float64
	// Fidelity weight. Accepted for compatibility with callers that expose
	// it; the solver is an unweighted 4-neighbour average and ignores it.
	Fidelity float64
	// Smoothness weight. Ignored, see Fidelity.
	Smoothness float64
	// Sweep order. OrderLexicographic unless set.
	Ordering Ordering
	// Goroutines for OrderRedBlack. 0 uses GOMAXPROCS.
	Workers int
	// Debug log period in sweeps. First and last sweeps are always logged.
	// 0 logs only those.
	LogEvery int
}

func DefaultOptions() Options {
	return Options{
		MaxIter:    500,
		Tol:        1e-5,
		Fidelity:   1.0,
		Smoothness: 0.1,
		LogEvery:   50,
	}
}

// OptionsFromSize scales MaxIter with the longer image side; diffusion
// needs roughly that many sweeps to carry boundary values across a hole.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	side := max(size.X, size.Y)
	opt.MaxIter = max(200, min(4000, side*2))
	return opt
}

// Validate reports options a caller most likely did not intend.
func (o Options) Validate() error {
	if math.IsNaN(o.Tol) || o.Tol < 0 {
		return fmt.Errorf("%w: tol must be >= 0, got %v", ErrInvalidOptions, o.Tol)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOptions, o.Workers)
	}
	if o.LogEvery < 0 {
		return fmt.Errorf("%w: log period must be >= 0, got %d", ErrInvalidOptions, o.LogEvery)
	}
	if o.Ordering != OrderLexicographic && o.Ordering != OrderRedBlack {
		return fmt.Errorf("%w: unknown ordering %d", ErrInvalidOptions, int(o.Ordering))
	}
	return nil
}

// Result is the outcome of a reconstruction.
type Result struct {
	Recon *Tensor
	// One entry per completed sweep: mean |new-old| over updated samples.
	Residuals []float64
	// Sweeps performed, in [0, MaxIter].
	Iterations int
	RMSE       float64
}

// Converged reports whether the last sweep went below tol.
func (r Result) Converged(tol float64) bool {
	return len(r.Residuals) > 0 && r.Residuals[len(r.Residuals)-1] < tol
}

// Reconstruct fills the unknown pixels of damaged by SOR relaxation with
// known pixels held fixed and edges clamped. Neither input is modified.
// Without ground truth the RMSE is measured against damaged itself; use
// ReconstructWithSource when the undamaged tensor is available.
func Reconstruct(damaged *Tensor, known KnownMask, opt Options) Result {
	return reconstruct(damaged, damaged, known, opt)
}

// ReconstructWithSource is Reconstruct with the RMSE measured against src.
func ReconstructWithSource(src, damaged *Tensor, known KnownMask, opt Options) Result {
	src.mustMatch(damaged)
	return reconstruct(src, damaged, known, opt)
}

func reconstruct(src, damaged *Tensor, known KnownMask, opt Options) Result {
	known.mustMatch(damaged)
	log := Logger()
	start := time.Now()

	u := damaged.Clone()
	tracker := NewTracker(opt.Tol, max(opt.MaxIter, 0))

	var rb *redBlack
	if opt.Ordering == OrderRedBlack {
		rb = newRedBlack(u, damaged, known, opt.Workers)
	}

	for it := 1; it <= opt.MaxIter; it++ {
		var sum float64
		var n int
		if rb != nil {
			sum, n = rb.sweep()
		} else {
			sum, n = sweepLexicographic(u.Pix, damaged.Pix, known.Known, u.W, u.H, u.C)
		}
		residual := 0.0
		if n > 0 {
			residual = sum / float64(n)
		}
		stop := tracker.Add(residual)

		if it == 1 || stop || it == opt.MaxIter || (opt.LogEvery > 0 && it%opt.LogEvery == 0) {
			log.Debug().
				Int("iter", it).
				Int("max_iter", opt.MaxIter).
				Float64("residual", residual).
				Msg("inpaint sweep")
		}
		if stop {
			break
		}
	}

	res := Result{
		Recon:      u,
		Residuals:  tracker.Residuals(),
		Iterations: tracker.Len(),
		RMSE:       RMSEOnMissing(src, u, known),
	}
	log.Info().
		Stringer("ordering", opt.Ordering).
		Int("iterations", res.Iterations).
		Bool("converged", tracker.Converged()).
		Float64("residual", tracker.Last()).
		Float64("rmse", res.RMSE).
		Dur("elapsed", time.Since(start)).
		Msg("inpaint done")
	return res
}

// sweepLexicographic runs one in-place row-major SOR pass over u and returns
// the summed absolute change and the number of updated samples.
// Known pixels are reset from fixed.
func sweepLexicographic(u, fixed []float64, known []uint8, w, h, c int) (float64, int) {
	sum := 0.0
	n := 0
	for y := range h {
		yUp := max(y-1, 0)
		yDown := min(y+1, h-1)
		for x := range w {
			i := y*w + x
			off := i * c
			if known[i] != 0 {
				copy(u[off:off+c], fixed[off:off+c])
				continue
			}
			sum += relaxPixel(u, off,
				(yUp*w+x)*c,
				(yDown*w+x)*c,
				(y*w+max(x-1, 0))*c,
				(y*w+min(x+1, w-1))*c,
				c)
			n += c
		}
	}
	return sum, n
}

// relaxPixel applies the SOR update to every channel of the pixel at off
// given the offsets of its four clamped neighbours.
func relaxPixel(u []float64, off, up, down, left, right, c int) float64 {
	sum := 0.0
	for ch := range c {
		mean := (u[up+ch] + u[down+ch] + u[left+ch] + u[right+ch]) / 4
		old := u[off+ch]
		v := old + Omega*(mean-old)
		u[off+ch] = v
		sum += math.Abs(v - old)
	}
	return sum
}
