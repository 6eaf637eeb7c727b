package inpaint

import (
	"fmt"
	"math/rand/v2"
)

// KnownMask classifies pixels: Known[y*W+x] == 1 means the pixel is trusted
// and fixed, 0 means it must be filled. One entry governs all channels.
type KnownMask struct {
	W, H  int
	Known []uint8
}

// NewKnownMask returns a w×h mask with every pixel known.
func NewKnownMask(w, h int) KnownMask {
	m := KnownMask{W: w, H: h, Known: make([]uint8, w*h)}
	for i := range m.Known {
		m.Known[i] = 1
	}
	return m
}

// IsKnown reports whether pixel i (y*W+x) is known.
func (m KnownMask) IsKnown(i int) bool {
	return m.Known[i] != 0
}

// UnknownCount returns the number of pixels to be filled.
func (m KnownMask) UnknownCount() int {
	n := 0
	for _, k := range m.Known {
		if k == 0 {
			n++
		}
	}
	return n
}

func (m KnownMask) mustMatch(t *Tensor) {
	if m.W != t.W || m.H != t.H || len(m.Known) != t.W*t.H || len(t.Pix) != t.W*t.H*t.C {
		panic(fmt.Errorf("%w: mask %dx%d (len %d) vs tensor %dx%dx%d (len %d)",
			ErrSizeMismatch, m.W, m.H, len(m.Known), t.W, t.H, t.C, len(t.Pix)))
	}
}

// PaintMask accumulates user damage strokes. Damage[i] == 1 marks pixel i
// as damaged. The caller owns it and hands it to KnownMaskFromPaint.
type PaintMask struct {
	W, H   int
	Damage []uint8
}

// NewPaintMask returns an empty w×h paint buffer.
func NewPaintMask(w, h int) *PaintMask {
	return &PaintMask{W: w, H: h, Damage: make([]uint8, w*h)}
}

// Dab paints a filled disc of the given radius centred on (cx, cy).
// Radius <= 0 paints the single pixel. Pixels outside the image are clipped.
func (p *PaintMask) Dab(cx, cy, radius int) {
	if radius < 0 {
		radius = 0
	}
	r2 := radius * radius
	for y := max(cy-radius, 0); y <= min(cy+radius, p.H-1); y++ {
		dy := y - cy
		for x := max(cx-radius, 0); x <= min(cx+radius, p.W-1); x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				p.Damage[y*p.W+x] = 1
			}
		}
	}
}

// Stroke paints a round brush along the segment (x0,y0)-(x1,y1).
func (p *PaintMask) Stroke(x0, y0, x1, y1, radius int) {
	dx := x1 - x0
	dy := y1 - y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		p.Dab(x0, y0, radius)
		return
	}
	for s := 0; s <= steps; s++ {
		// Round to nearest along the segment.
		x := x0 + (dx*s*2+steps*sign(dx))/(steps*2)
		y := y0 + (dy*s*2+steps*sign(dy))/(steps*2)
		p.Dab(x, y, radius)
	}
}

// Clear erases all strokes.
func (p *PaintMask) Clear() {
	clear(p.Damage)
}

// Count returns the number of damaged pixels.
func (p *PaintMask) Count() int {
	n := 0
	for _, d := range p.Damage {
		if d != 0 {
			n++
		}
	}
	return n
}

// KnownMaskFromPaint returns the complement of the paint buffer:
// known[i] = 1 where damage[i] == 0. It fails with ErrEmptyMask when nothing
// was painted; the paint buffer is never modified.
func KnownMaskFromPaint(paint *PaintMask) (KnownMask, error) {
	if paint == nil || paint.Count() == 0 {
		return KnownMask{}, ErrEmptyMask
	}
	m := KnownMask{W: paint.W, H: paint.H, Known: make([]uint8, len(paint.Damage))}
	for i, d := range paint.Damage {
		if d == 0 {
			m.Known[i] = 1
		}
	}
	return m, nil
}

// RandomKnownMask marks each pixel unknown with probability damagePercent/100.
// damagePercent is clamped to [0, 100]. A nil rng draws from the
// process-wide source, so pass a seeded one for reproducible masks.
func RandomKnownMask(w, h int, damagePercent float64, rng *rand.Rand) KnownMask {
	p := min(max(damagePercent, 0), 100) / 100
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}
	m := KnownMask{W: w, H: h, Known: make([]uint8, w*h)}
	for i := range m.Known {
		if draw() >= p {
			m.Known[i] = 1
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
