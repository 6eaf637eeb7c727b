package utils

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/setanarut/inpaint"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Downscale shrinks img so its longer side is at most maxSide, keeping the
// aspect ratio. Images already small enough (or maxSide <= 0) are returned as is.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || max(w, h) <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ImageToTensor decodes img into normalized samples (8-bit value / 255).
// Alpha is dropped.
func ImageToTensor(img image.Image) *inpaint.Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	t := inpaint.NewTensor(w, h)
	for y := range h {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := range w {
			src := row[x*4:]
			off := t.Offset(x, y)
			t.Pix[off] = float64(src[0]) / 255.0
			t.Pix[off+1] = float64(src[1]) / 255.0
			t.Pix[off+2] = float64(src[2]) / 255.0
		}
	}
	return t
}

// TensorToImage encodes t as an opaque image, rounding v*255 to the nearest
// integer and clamping to [0,255]. Single channel tensors become gray.
func TensorToImage(t *inpaint.Tensor) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.W, t.H))
	for y := range t.H {
		for x := range t.W {
			off := t.Offset(x, y)
			r := toByte(t.Pix[off])
			g, b := r, r
			if t.C >= 3 {
				g = toByte(t.Pix[off+1])
				b = toByte(t.Pix[off+2])
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(max(0, min(255, math.Round(v*255))))
}
