// Package inpaint restores unknown pixels of an RGB raster by successive
// over-relaxation of the discrete Laplace equation.
//
// A Tensor holds normalized samples, a KnownMask marks trusted pixels, and
// DamagedView zeroes the rest. Reconstruct relaxes the unknown samples toward
// the mean of their four clamped neighbours until the mean absolute change of
// a sweep drops below Options.Tol or Options.MaxIter sweeps have run.
// RMSEOnMissing scores a reconstruction against ground truth.
//
//	known := inpaint.RandomKnownMask(w, h, 30, rand.New(rand.NewPCG(1, 2)))
//	damaged := inpaint.DamagedView(src, known)
//	res := inpaint.ReconstructWithSource(src, damaged, known, inpaint.DefaultOptions())
package inpaint
