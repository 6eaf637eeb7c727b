package inpaint

import (
	"bytes"
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomScene returns a smooth-ish random source, a random mask and the damaged view.
func randomScene(t *testing.T, w, h int, percent float64, seed uint64) (*Tensor, KnownMask, *Tensor) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	src := NewTensor(w, h)
	for y := range h {
		for x := range w {
			for c := range Channels {
				base := 0.5 + 0.4*math.Sin(float64(x+c)/3)*math.Cos(float64(y)/4)
				src.Set(x, y, c, min(1, max(0, base+0.05*rng.Float64())))
			}
		}
	}
	known := RandomKnownMask(w, h, percent, rng)
	return src, known, DamagedView(src, known)
}

func diagonalScene(t *testing.T) (*Tensor, KnownMask) {
	t.Helper()
	damaged, err := TensorFromSlice(2, 2, 1, []float64{1, 0, 0, 1})
	require.NoError(t, err)
	return damaged, KnownMask{W: 2, H: 2, Known: []uint8{1, 0, 0, 1}}
}

func TestReconstructDiagonal(t *testing.T) {
	damaged, known := diagonalScene(t)
	opt := DefaultOptions()
	opt.MaxIter = 100
	opt.Tol = 1e-6

	res := Reconstruct(damaged, known, opt)

	// Each unknown cell sees itself twice (clamped) and both known cells,
	// so the error shrinks by 1-Omega/2 per sweep.
	require.Equal(t, 15, res.Iterations)
	require.Len(t, res.Residuals, 15)
	for k, r := range res.Residuals {
		assert.InDelta(t, 0.625*math.Pow(0.375, float64(k)), r, 1e-12, "sweep %d", k+1)
		if k > 0 {
			assert.Less(t, r, res.Residuals[k-1])
		}
	}
	assert.Less(t, res.Residuals[14], opt.Tol)
	assert.GreaterOrEqual(t, res.Residuals[13], opt.Tol)

	assert.InDelta(t, 1.0, res.Recon.Pix[1], 1e-5)
	assert.InDelta(t, 1.0, res.Recon.Pix[2], 1e-5)
	assert.InDelta(t, res.Recon.Pix[1], res.Recon.Pix[2], 1e-15)
	assert.Equal(t, 1.0, res.Recon.Pix[0])
	assert.Equal(t, 1.0, res.Recon.Pix[3])

	direct, err := SolveDirect(damaged, known)
	require.NoError(t, err)
	assert.InDeltaSlice(t, direct.Pix, res.Recon.Pix, 1e-5)
}

func TestReconstructKnownPixelsFixed(t *testing.T) {
	_, known, damaged := randomScene(t, 17, 11, 45, 3)
	for _, iters := range []int{1, 2, 3, 10} {
		opt := DefaultOptions()
		opt.MaxIter = iters
		opt.Tol = 0
		for _, ord := range []Ordering{OrderLexicographic, OrderRedBlack} {
			opt.Ordering = ord
			res := Reconstruct(damaged, known, opt)
			for i, k := range known.Known {
				if k == 0 {
					continue
				}
				for c := range Channels {
					require.Equal(t, damaged.Pix[i*3+c], res.Recon.Pix[i*3+c],
						"%s iters=%d pixel=%d channel=%d", ord, iters, i, c)
				}
			}
		}
	}
}

func TestReconstructAllKnown(t *testing.T) {
	src, _, _ := randomScene(t, 6, 5, 0, 1)
	known := NewKnownMask(6, 5)
	damaged := DamagedView(src, known)

	res := Reconstruct(damaged, known, DefaultOptions())
	assert.Equal(t, []float64{0}, res.Residuals)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, damaged.Pix, res.Recon.Pix)
	assert.Zero(t, res.RMSE)
}

func TestReconstructNoSweeps(t *testing.T) {
	src, known, damaged := randomScene(t, 8, 8, 30, 5)
	for _, iters := range []int{0, -3} {
		opt := DefaultOptions()
		opt.MaxIter = iters

		res := Reconstruct(damaged, known, opt)
		assert.Empty(t, res.Residuals)
		assert.Zero(t, res.Iterations)
		assert.Equal(t, damaged.Pix, res.Recon.Pix)
		assert.Zero(t, res.RMSE)

		res = ReconstructWithSource(src, damaged, known, opt)
		assert.Equal(t, RMSEOnMissing(src, damaged, known), res.RMSE)
	}
}

func TestReconstructIterationBound(t *testing.T) {
	_, known, damaged := randomScene(t, 20, 14, 60, 11)
	for _, tc := range []struct {
		name    string
		maxIter int
		tol     float64
	}{
		{"capped", 5, 1e-12},
		{"loose", 1000, 1e-2},
		{"tight", 1000, 1e-9},
		{"zero tol", 7, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opt := DefaultOptions()
			opt.MaxIter = tc.maxIter
			opt.Tol = tc.tol
			res := Reconstruct(damaged, known, opt)

			require.GreaterOrEqual(t, res.Iterations, 1)
			require.LessOrEqual(t, res.Iterations, tc.maxIter)
			require.Len(t, res.Residuals, res.Iterations)
			for _, r := range res.Residuals {
				assert.GreaterOrEqual(t, r, 0.0)
			}
			for _, r := range res.Residuals[:len(res.Residuals)-1] {
				assert.GreaterOrEqual(t, r, tc.tol, "only the last sweep may go below tol")
			}
			if res.Iterations < tc.maxIter {
				assert.True(t, res.Converged(tc.tol))
			}
			assert.GreaterOrEqual(t, res.RMSE, 0.0)
		})
	}
}

func TestReconstructUnboundedMaxIter(t *testing.T) {
	opt := Options{MaxIter: math.MaxInt, Tol: 1e-5}
	res := Reconstruct(NewTensor(1, 1), NewKnownMask(1, 1), opt)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, []float64{0}, res.Residuals)

	damaged, known := diagonalScene(t)
	opt.Tol = 1e-6
	res = Reconstruct(damaged, known, opt)
	assert.Equal(t, 15, res.Iterations)
	assert.LessOrEqual(t, cap(res.Residuals), trackerPrealloc)
}

func TestReconstructDeterministic(t *testing.T) {
	_, known, damaged := randomScene(t, 15, 9, 50, 21)
	opt := DefaultOptions()
	opt.MaxIter = 40
	a := Reconstruct(damaged, known, opt)
	b := Reconstruct(damaged, known, opt)
	assert.Equal(t, a.Residuals, b.Residuals)
	assert.Equal(t, a.Recon.Pix, b.Recon.Pix)
}

func TestReconstructDoesNotMutateInputs(t *testing.T) {
	_, known, damaged := randomScene(t, 9, 9, 50, 8)
	before := damaged.Clone()
	maskBefore := append([]uint8(nil), known.Known...)
	Reconstruct(damaged, known, DefaultOptions())
	assert.Equal(t, before.Pix, damaged.Pix)
	assert.Equal(t, maskBefore, known.Known)
}

func TestReconstructIgnoresWeights(t *testing.T) {
	_, known, damaged := randomScene(t, 10, 7, 40, 4)
	opt := DefaultOptions()
	opt.MaxIter = 25
	a := Reconstruct(damaged, known, opt)
	opt.Fidelity = 50
	opt.Smoothness = 0.0001
	b := Reconstruct(damaged, known, opt)
	assert.Equal(t, a.Recon.Pix, b.Recon.Pix)
	assert.Equal(t, a.Residuals, b.Residuals)
}

func TestReconstructImprovesOnDamage(t *testing.T) {
	src, known, damaged := randomScene(t, 24, 18, 35, 13)
	opt := DefaultOptions()
	opt.MaxIter = 2000
	opt.Tol = 1e-9
	res := ReconstructWithSource(src, damaged, known, opt)
	assert.Less(t, res.RMSE, RMSEOnMissing(src, damaged, known)/4)
}

func TestReconstructSizeMismatchPanics(t *testing.T) {
	damaged := NewTensor(4, 4)
	assert.Panics(t, func() { Reconstruct(damaged, NewKnownMask(4, 3), DefaultOptions()) })
	assert.Panics(t, func() {
		ReconstructWithSource(NewTensor(3, 4), damaged, NewKnownMask(4, 4), DefaultOptions())
	})
}

func TestReconstructLogs(t *testing.T) {
	orig := *Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	damaged, known := diagonalScene(t)
	opt := DefaultOptions()
	opt.MaxIter = 4
	opt.Tol = 0
	opt.LogEvery = 2
	Reconstruct(damaged, known, opt)

	out := buf.String()
	// Sweeps 1, 2 and 4 are logged.
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte(`"message":"inpaint sweep"`)))
	assert.Contains(t, out, `"message":"inpaint done"`)
	assert.Contains(t, out, `"iterations":4`)
}

func TestOptionsFromSize(t *testing.T) {
	assert.Equal(t, DefaultOptions(), OptionsFromSize(image.Point{}))
	assert.Equal(t, 200, OptionsFromSize(image.Pt(40, 30)).MaxIter)
	assert.Equal(t, 1280, OptionsFromSize(image.Pt(640, 480)).MaxIter)
	assert.Equal(t, 4000, OptionsFromSize(image.Pt(4000, 3000)).MaxIter)
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	bad := []Options{
		{Tol: -1},
		{Tol: math.NaN()},
		{Workers: -2},
		{LogEvery: -1},
		{Ordering: Ordering(9)},
	}
	for _, o := range bad {
		assert.ErrorIs(t, o.Validate(), ErrInvalidOptions, "%+v", o)
	}
}

func TestParseOrdering(t *testing.T) {
	for in, want := range map[string]Ordering{
		"":              OrderLexicographic,
		"lexicographic": OrderLexicographic,
		"gauss-seidel":  OrderLexicographic,
		"redblack":      OrderRedBlack,
		"red-black":     OrderRedBlack,
	} {
		got, err := ParseOrdering(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOrdering("jacobi")
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Equal(t, "redblack", OrderRedBlack.String())
}
