package inpaint

// DamagedView copies src and zeroes every channel of each unknown pixel.
// The result is the solver's initial state and its fixed boundary data.
// It panics with ErrSizeMismatch if known does not cover src.
func DamagedView(src *Tensor, known KnownMask) *Tensor {
	known.mustMatch(src)
	out := src.Clone()
	for i, k := range known.Known {
		if k != 0 {
			continue
		}
		off := i * out.C
		clear(out.Pix[off : off+out.C])
	}
	return out
}
