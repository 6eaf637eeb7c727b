package utils

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/inpaint"
	"golang.org/x/image/draw"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod accepts the String forms; anything else is dominantcolor.
func ParsePaletteMethod(s string) PaletteMethod {
	if s == "kmeans" {
		return PaletteMethodKMeans
	}
	return PaletteMethodDominantColor
}

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	lum := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		la, lb := lum(a), lum(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, k)
	out := make([]colorful.Color, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		out = append(out, col.Clamped())
	}
	return out
}

// ExtractKMeansPalette clusters the opaque pixels of img in RGB and returns
// the k cluster centres, most populated first. Transparent pixels are
// skipped, so a MissingRegion image yields the palette of the filled area.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			// Un-premultiply so partially transparent paint keeps its hue.
			a := float64(a16)
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / a,
				float64(g16) / a,
				float64(b16) / a,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	out := make([]colorful.Color, 0, len(cc))
	for _, c := range cc {
		// Partition leaves Center at the seed when no point changes cluster,
		// so take the mean of the members instead.
		center, err := c.Observations.Center()
		if err != nil || len(center) < 3 {
			continue
		}
		out = append(out, colorful.Color{R: center[0], G: center[1], B: center[2]}.Clamped())
	}
	return out
}

func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		inpaint.Logger().Warn().Msg("palette: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

// PaletteDistance is the mean CIE Lab distance from each color of want to
// its nearest color in got. NaN if either palette is empty.
func PaletteDistance(want, got []colorful.Color) float64 {
	if len(want) == 0 || len(got) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, w := range want {
		best := math.Inf(1)
		for _, g := range got {
			best = min(best, w.DistanceLab(g))
		}
		sum += best
	}
	return sum / float64(len(want))
}

// PaletteDrift extracts k-color palettes of src and recon and returns their
// PaletteDistance. Pass MissingRegion images to score only the filled area.
// It complements RMSEOnMissing with a color-level view of the fill.
func PaletteDrift(src, recon image.Image, k int, method PaletteMethod) float64 {
	return ComparePalettes(src, recon, k, method).Drift
}

// PaletteReport holds both palettes, darkest first, and their distance.
type PaletteReport struct {
	Source, Recon []colorful.Color
	Drift         float64
}

// ComparePalettes is PaletteDrift that also returns the palettes.
func ComparePalettes(src, recon image.Image, k int, method PaletteMethod) PaletteReport {
	r := PaletteReport{
		Source: ExtractPalette(src, k, method),
		Recon:  ExtractPalette(recon, k, method),
	}
	r.Drift = PaletteDistance(r.Source, r.Recon)
	SortPaletteByBrightness(r.Source)
	SortPaletteByBrightness(r.Recon)
	return r
}

// Swatch renders the source palette above the reconstruction palette.
func (r PaletteReport) Swatch(tileSize int) *image.RGBA {
	if tileSize <= 0 {
		tileSize = 64
	}
	top := Swatch(r.Source, tileSize)
	bottom := Swatch(r.Recon, tileSize)
	w := max(top.Bounds().Dx(), bottom.Bounds().Dx())
	img := image.NewRGBA(image.Rect(0, 0, w, 2*tileSize))
	draw.Draw(img, top.Bounds(), top, image.Point{}, draw.Src)
	draw.Draw(img, bottom.Bounds().Add(image.Pt(0, tileSize)), bottom, image.Point{}, draw.Src)
	return img
}

// Hex formats a palette for logging.
func Hex(palette []colorful.Color) []string {
	out := make([]string, len(palette))
	for i, c := range palette {
		out[i] = c.Hex()
	}
	return out
}

// Swatch renders palette as a strip of tileSize squares.
func Swatch(palette []colorful.Color, tileSize int) *image.RGBA {
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		x0 := i * tileSize
		for y := range tileSize {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}
	return img
}
