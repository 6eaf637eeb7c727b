package inpaint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxDirectUnknowns bounds the dense system SolveDirect is willing to build.
const MaxDirectUnknowns = 2048

// SolveDirect returns the exact fixed point of the relaxation: every unknown
// sample equals the mean of its four clamped neighbours while known pixels
// keep their damaged values. It assembles the discrete Laplace system densely
// and solves it by LU, so it is meant for small images and for checking the
// iterative solver.
//
// A region of unknown pixels that touches no known pixel has no unique
// solution and yields ErrSingular.
func SolveDirect(damaged *Tensor, known KnownMask) (*Tensor, error) {
	known.mustMatch(damaged)
	w, h, c := damaged.W, damaged.H, damaged.C

	index := make([]int, w*h)
	m := 0
	for i, k := range known.Known {
		if k != 0 {
			index[i] = -1
			continue
		}
		index[i] = m
		m++
	}
	out := damaged.Clone()
	if m == 0 {
		return out, nil
	}
	if m > MaxDirectUnknowns {
		return nil, fmt.Errorf("%w: %d unknown pixels (limit %d)", ErrTooLarge, m, MaxDirectUnknowns)
	}

	A := mat.NewDense(m, m, nil)
	B := mat.NewDense(m, c, nil)
	for y := range h {
		for x := range w {
			p := index[y*w+x]
			if p < 0 {
				continue
			}
			A.Set(p, p, 4)
			neighbours := [4][2]int{
				{x, max(y-1, 0)},
				{x, min(y+1, h-1)},
				{max(x-1, 0), y},
				{min(x+1, w-1), y},
			}
			for _, nb := range neighbours {
				qi := nb[1]*w + nb[0]
				if q := index[qi]; q >= 0 {
					A.Set(p, q, A.At(p, q)-1)
					continue
				}
				off := qi * c
				for ch := range c {
					B.Set(p, ch, B.At(p, ch)+damaged.Pix[off+ch])
				}
			}
		}
	}

	var X mat.Dense
	if err := X.Solve(A, B); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	for i, p := range index {
		if p < 0 {
			continue
		}
		off := i * c
		for ch := range c {
			out.Pix[off+ch] = X.At(p, ch)
		}
	}
	return out, nil
}
