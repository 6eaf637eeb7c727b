// Command inpaint damages an image (randomly or with a painted mask),
// restores it with the SOR solver and reports the reconstruction error.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/setanarut/inpaint"
	"github.com/setanarut/inpaint/utils"
)

type paths struct {
	src, dst, damaged, mask, residuals, swatch string
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	srcPath := flag.String("src", "", "input image path")
	dstPath := flag.String("dst", "", "output image path")
	configFilename := flag.String("config", "", "YAML config file")
	debugFlag := flag.Bool("debug", false, "debug logging level")
	maskPath := flag.String("mask", "", "painted mask image; overrides random damage")
	damage := flag.Float64("damage", 0, "random damage percent [0,100]")
	seed := flag.Uint64("seed", 0, "random mask seed (0 = unseeded)")
	iters := flag.Int("iter", 0, "maximum sweeps")
	tol := flag.Float64("tol", 0, "residual tolerance")
	ordering := flag.String("ordering", "", "sweep order: lexicographic or redblack")
	damagedPath := flag.String("damaged", "", "write the damaged view here")
	maskOut := flag.String("maskout", "", "write the known mask here")
	residualsPath := flag.String("residuals", "", "write the residual sequence here, one per line")
	swatchPath := flag.String("swatch", "", "write source and reconstruction palettes of the filled area here")
	flag.Parse()

	cfg, err := loadConfig(*configFilename)
	if err != nil && !errors.Is(err, errNoConfig) {
		log.Fatal().Err(err).Msg("config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = *debugFlag
		case "mask":
			cfg.Mask = *maskPath
		case "damage":
			cfg.DamagePercent = *damage
		case "seed":
			cfg.Seed = *seed
		case "iter":
			cfg.MaxIter = *iters
		case "tol":
			cfg.Tol = *tol
		case "ordering":
			cfg.Ordering = *ordering
		}
	})

	setupLogging(cfg)

	if *srcPath == "" || *dstPath == "" {
		log.Fatal().Msg("src and dst are required")
	}
	p := paths{
		src:       *srcPath,
		dst:       *dstPath,
		damaged:   *damagedPath,
		mask:      *maskOut,
		residuals: *residualsPath,
		swatch:    *swatchPath,
	}
	if err := run(cfg, p); err != nil {
		log.Fatal().Err(err).Str("src", p.src).Msg("inpaint failed")
	}
}

func setupLogging(cfg Config) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	if cfg.Info {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.Human {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	inpaint.SetLogger(log.Logger)
}

func run(cfg Config, p paths) error {
	start := time.Now()
	base := filepath.Base(p.src)

	opt, err := cfg.options()
	if err != nil {
		return err
	}

	img, err := utils.ReadImage(p.src)
	if err != nil {
		return err
	}
	img = utils.Downscale(img, cfg.MaxSide)
	src := utils.ImageToTensor(img)

	known, err := buildMask(cfg, src.W, src.H)
	if err != nil {
		return err
	}

	damaged := inpaint.DamagedView(src, known)
	res := inpaint.ReconstructWithSource(src, damaged, known, opt)
	recon := utils.TensorToImage(res.Recon)

	if err := utils.SaveImage(recon, p.dst); err != nil {
		return err
	}
	if p.damaged != "" {
		if err := utils.SaveImage(utils.TensorToImage(damaged), p.damaged); err != nil {
			return err
		}
	}
	if p.mask != "" {
		if err := utils.SaveImage(utils.MaskImage(known), p.mask); err != nil {
			return err
		}
	}
	if p.residuals != "" {
		if err := writeResiduals(p.residuals, res.Residuals); err != nil {
			return err
		}
	}

	method := utils.ParsePaletteMethod(cfg.PaletteMethod)
	report := utils.PaletteReport{Drift: math.NaN()}
	if known.UnknownCount() > 0 && cfg.PaletteSize > 0 {
		report = utils.ComparePalettes(
			utils.MissingRegion(img, known),
			utils.MissingRegion(recon, known),
			cfg.PaletteSize, method)
		if p.swatch != "" {
			if err := utils.SaveImage(report.Swatch(32), p.swatch); err != nil {
				return err
			}
		}
	}

	log.Info().
		Int64("duration(ms)", time.Since(start).Milliseconds()).
		Int("width", src.W).
		Int("height", src.H).
		Int("unknown", known.UnknownCount()).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged(opt.Tol)).
		Float64("rate", inpaint.ConvergenceRate(res.Residuals)).
		Float64("rmse", res.RMSE).
		Float64("palette_drift", report.Drift).
		Strs("palette_source", utils.Hex(report.Source)).
		Strs("palette_recon", utils.Hex(report.Recon)).
		Stringer("palette_method", method).
		Str("dst", p.dst).
		Msg(base)
	return nil
}

func buildMask(cfg Config, w, h int) (inpaint.KnownMask, error) {
	if cfg.Mask == "" {
		var rng *rand.Rand
		if cfg.Seed != 0 {
			rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
		}
		return inpaint.RandomKnownMask(w, h, cfg.DamagePercent, rng), nil
	}

	marker, err := cfg.marker()
	if err != nil {
		return inpaint.KnownMask{}, err
	}
	overlay, err := utils.ReadImage(cfg.Mask)
	if err != nil {
		return inpaint.KnownMask{}, err
	}
	overlay = utils.Downscale(overlay, cfg.MaxSide)
	if b := overlay.Bounds(); b.Dx() != w || b.Dy() != h {
		return inpaint.KnownMask{}, fmt.Errorf("%w: mask is %dx%d, image is %dx%d",
			inpaint.ErrSizeMismatch, b.Dx(), b.Dy(), w, h)
	}
	paint := utils.PaintMaskFromImage(overlay, marker, cfg.MarkerTolerance)
	known, err := inpaint.KnownMaskFromPaint(paint)
	if err != nil {
		return inpaint.KnownMask{}, fmt.Errorf("mask %s: %w", cfg.Mask, err)
	}
	return known, nil
}

func writeResiduals(path string, residuals []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, r := range residuals {
		w.WriteString(strconv.FormatFloat(r, 'g', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
