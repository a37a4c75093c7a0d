package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/pixelmap"
	"github.com/gogpu/pixelmap/postproc"
)

func runTransform(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	var c commonFlags
	c.register(fs)
	crop := fs.String("crop", "", "crop rectangle as left,top,width,height")
	toFormat := fs.String("to", "", "convert to this pixel format")
	toAlpha := fs.String("to-alpha", "", "convert to this alpha type")
	rotate := fs.Float64("rotate", 0, "rotate by degrees around the center")
	size := fs.String("size", "", "resize to WIDTHxHEIGHT")
	center := fs.Bool("center", false, "cover -size and crop the center instead of stretching")
	base := fs.Int("base", 0, "base density of the input")
	density := fs.Int("density", 0, "resize from -base to this density")
	shared := fs.Bool("shared", false, "place the result in shared memory")
	quality := fs.Int("q", 90, "JPEG quality 1-100")
	output := fs.String("o", "", "output path, .png, .jpg, .bmp or .tiff (default: <input>.out.png)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("transform: missing input file\nUsage: pixtool transform [options] <input>")
	}
	inputPath := fs.Arg(0)

	var opts postproc.DecodeOptions
	var err error
	if opts.CropRect, err = parseRect(*crop); err != nil {
		return err
	}
	if opts.DesiredSize, err = parseSize(*size); err != nil {
		return err
	}
	if opts.DesiredPixelFormat, err = parseFormat(*toFormat); err != nil {
		return err
	}
	if opts.DesiredAlphaType, err = parseAlpha(*toAlpha); err != nil {
		return err
	}
	opts.RotateDegrees = *rotate
	opts.FitDensity = *density
	if *center {
		opts.ScaleMode = pixelmap.CenterCrop
	}
	if *shared {
		opts.Allocator = pixelmap.SharedMemAlloc
	}
	step := finalStep(opts)

	pm, err := c.load(inputPath)
	if err != nil {
		return err
	}
	defer pm.Release()
	if *base > 0 {
		pm.SetBaseDensity(*base)
	}
	describe(w, "in ", pm)

	if err := postproc.DecodePostProc(pm, opts, step); err != nil {
		return err
	}
	describe(w, "out", pm)

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".out.png"
	}
	return save(pm, outPath, *quality)
}

// finalStep names the last stage opts will run.
func finalStep(opts postproc.DecodeOptions) postproc.FinalOutputStep {
	switch {
	case !opts.DesiredSize.Empty():
		return postproc.SizeChange
	case opts.FitDensity > 0:
		return postproc.DensityChange
	case opts.RotateDegrees != 0:
		return postproc.RotateChange
	default:
		return postproc.NoChange
	}
}

func save(pm *pixelmap.PixelMap, path string, quality int) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".png" {
		return pm.SavePNG(path)
	}

	var encode func(io.Writer) error
	switch ext {
	case ".jpg", ".jpeg":
		encode = func(w io.Writer) error { return pm.EncodeJPEG(w, quality) }
	case ".bmp", ".tif", ".tiff":
		img, err := pm.ToImage()
		if err != nil {
			return err
		}
		encode = func(w io.Writer) error {
			if ext == ".bmp" {
				return bmp.Encode(w, img)
			}
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("unsupported output format %q (use .png, .jpg, .bmp or .tiff)", filepath.Ext(path))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// parseRect parses "left,top,width,height". An empty string is the zero rect.
func parseRect(s string) (pixelmap.Rect, error) {
	if s == "" {
		return pixelmap.Rect{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pixelmap.Rect{}, fmt.Errorf("crop %q: want left,top,width,height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return pixelmap.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = n
	}
	return pixelmap.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

// parseSize parses "WIDTHxHEIGHT". An empty string is the zero size.
func parseSize(s string) (pixelmap.Size, error) {
	if s == "" {
		return pixelmap.Size{}, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return pixelmap.Size{}, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(ws)
	if err != nil {
		return pixelmap.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	height, err := strconv.Atoi(hs)
	if err != nil {
		return pixelmap.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return pixelmap.Size{}, fmt.Errorf("size %q: dimensions must be positive", s)
	}
	return pixelmap.Size{Width: width, Height: height}, nil
}
