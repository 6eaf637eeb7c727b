package inpaint

import "fmt"

// Channels is the number of samples per pixel (RGB).
const Channels = 3

// Tensor is a dense raster buffer of normalized samples.
// Pix is interleaved row-major with channel as the fastest axis,
// len(Pix) == W*H*C.
type Tensor struct {
	W, H, C int
	Pix     []float64
}

// NewTensor returns a zeroed w×h RGB tensor.
func NewTensor(w, h int) *Tensor {
	if w < 0 || h < 0 {
		panic(fmt.Errorf("%w: negative tensor size %dx%d", ErrSizeMismatch, w, h))
	}
	return &Tensor{W: w, H: h, C: Channels, Pix: make([]float64, w*h*Channels)}
}

// TensorFromSlice copies pix into a new w×h tensor with c channels.
func TensorFromSlice(w, h, c int, pix []float64) (*Tensor, error) {
	if w < 0 || h < 0 || c <= 0 {
		return nil, fmt.Errorf("%w: invalid tensor shape %dx%dx%d", ErrSizeMismatch, w, h, c)
	}
	if len(pix) != w*h*c {
		return nil, fmt.Errorf("%w: shape %dx%dx%d requires %d samples, got %d",
			ErrSizeMismatch, w, h, c, w*h*c, len(pix))
	}
	t := &Tensor{W: w, H: h, C: c, Pix: make([]float64, len(pix))}
	copy(t.Pix, pix)
	return t, nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{W: t.W, H: t.H, C: t.C, Pix: make([]float64, len(t.Pix))}
	copy(out.Pix, t.Pix)
	return out
}

// Offset returns the index of channel 0 of pixel (x, y).
func (t *Tensor) Offset(x, y int) int {
	return (y*t.W + x) * t.C
}

// At returns sample c of pixel (x, y).
func (t *Tensor) At(x, y, c int) float64 {
	return t.Pix[t.Offset(x, y)+c]
}

// Set stores v in sample c of pixel (x, y).
func (t *Tensor) Set(x, y, c int, v float64) {
	t.Pix[t.Offset(x, y)+c] = v
}

// Pixels returns W*H.
func (t *Tensor) Pixels() int {
	return t.W * t.H
}

func (t *Tensor) mustMatch(o *Tensor) {
	if t.W != o.W || t.H != o.H || t.C != o.C || len(t.Pix) != len(o.Pix) {
		panic(fmt.Errorf("%w: tensor %dx%dx%d vs %dx%dx%d", ErrSizeMismatch, t.W, t.H, t.C, o.W, o.H, o.C))
	}
}
