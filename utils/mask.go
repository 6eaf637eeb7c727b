package utils

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/inpaint"
)

// PaintMaskFromImage converts a painted overlay into a damage buffer.
// A pixel is damaged when it is not fully transparent and its CIE Lab
// distance to marker is at most tol. For a black/white mask image use a
// white marker and a small tol (0.1 is plenty).
func PaintMaskFromImage(img image.Image, marker colorful.Color, tol float64) *inpaint.PaintMask {
	b := img.Bounds()
	p := inpaint.NewPaintMask(b.Dx(), b.Dy())
	for y := range b.Dy() {
		for x := range b.Dx() {
			c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			if !ok {
				continue
			}
			if c.DistanceLab(marker) <= tol {
				p.Damage[y*p.W+x] = 1
			}
		}
	}
	return p
}

// MaskImage renders known as a gray image: 255 for known pixels, 0 for unknown.
func MaskImage(known inpaint.KnownMask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, known.W, known.H))
	for i, k := range known.Known {
		if k != 0 {
			img.Pix[(i/known.W)*img.Stride+i%known.W] = 255
		}
	}
	return img
}

// MissingRegion returns a copy of img in which every known pixel is fully
// transparent, leaving only the reconstructed area visible.
func MissingRegion(img image.Image, known inpaint.KnownMask) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			if known.IsKnown(y*known.W + x) {
				continue
			}
			out.Set(x, y, color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}
