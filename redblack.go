package inpaint

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// redBlack runs SOR sweeps in two colour phases. In a phase every updated
// pixel reads only pixels of the other colour (or itself at a clamped edge),
// so rows can be split across goroutines without changing the result.
type redBlack struct {
	u, fixed []float64
	known    []uint8
	w, h, c  int
	workers  int
	rowSum   []float64
	rowN     []int
}

func newRedBlack(u, fixed *Tensor, known KnownMask, workers int) *redBlack {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, u.H))
	return &redBlack{
		u:       u.Pix,
		fixed:   fixed.Pix,
		known:   known.Known,
		w:       u.W,
		h:       u.H,
		c:       u.C,
		workers: workers,
		rowSum:  make([]float64, u.H),
		rowN:    make([]int, u.H),
	}
}

// sweep performs both phases and returns the summed absolute change and the
// number of updated samples. Partial sums are kept per row and reduced in
// row order so the residual does not depend on the worker count.
func (rb *redBlack) sweep() (float64, int) {
	clear(rb.rowSum)
	clear(rb.rowN)
	for parity := range 2 {
		rb.phase(parity)
	}
	sum := 0.0
	n := 0
	for y := range rb.h {
		sum += rb.rowSum[y]
		n += rb.rowN[y]
	}
	return sum, n
}

func (rb *redBlack) phase(parity int) {
	if rb.workers == 1 {
		rb.rows(parity, 0, rb.h)
		return
	}
	var g errgroup.Group
	band := (rb.h + rb.workers - 1) / rb.workers
	for y0 := 0; y0 < rb.h; y0 += band {
		y1 := min(y0+band, rb.h)
		g.Go(func() error {
			rb.rows(parity, y0, y1)
			return nil
		})
	}
	// rows never fails; Wait is only the join.
	_ = g.Wait()
}

func (rb *redBlack) rows(parity, y0, y1 int) {
	w, h, c := rb.w, rb.h, rb.c
	u := rb.u
	for y := y0; y < y1; y++ {
		yUp := max(y-1, 0)
		yDown := min(y+1, h-1)
		for x := (y + parity) & 1; x < w; x += 2 {
			i := y*w + x
			off := i * c
			if rb.known[i] != 0 {
				copy(u[off:off+c], rb.fixed[off:off+c])
				continue
			}
			rb.rowSum[y] += relaxPixel(u, off,
				(yUp*w+x)*c,
				(yDown*w+x)*c,
				(y*w+max(x-1, 0))*c,
				(y*w+min(x+1, w-1))*c,
				c)
			rb.rowN[y] += c
		}
	}
}
