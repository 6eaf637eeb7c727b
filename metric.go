package inpaint

import "math"

// RMSEOnMissing returns the root-mean-square difference between src and
// recon over every channel of the unknown pixels of known, or 0 if no pixel
// is unknown. It needs ground truth, so it is a diagnostic for simulated
// damage rather than a signal available during real restoration.
func RMSEOnMissing(src, recon *Tensor, known KnownMask) float64 {
	src.mustMatch(recon)
	known.mustMatch(src)
	c := src.C
	sum := 0.0
	n := 0
	for i, k := range known.Known {
		if k != 0 {
			continue
		}
		off := i * c
		for ch := range c {
			d := src.Pix[off+ch] - recon.Pix[off+ch]
			sum += d * d
		}
		n += c
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
