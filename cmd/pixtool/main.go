// Command pixtool inspects and post-processes images as pixel maps.
//
// Usage:
//
//	pixtool info <input>                     Display size, format and layout
//	pixtool transform [options] <input>      Crop, convert, rotate and resize
//	pixtool roundtrip [options] <input>      Send a pixel map through a socket
//
// Inputs may be PNG, JPEG, GIF, BMP, TIFF or WebP.
package main

import (
	"flag"
	"fmt"
	_ "image/gif"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/pixelmap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "transform":
		err = runTransform(os.Args[2:], os.Stdout)
	case "roundtrip":
		err = runRoundtrip(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "pixtool: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "pixtool: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  pixtool info <input>                  Display size, format and layout
  pixtool transform [options] <input>   Crop, convert, rotate and resize
  pixtool roundtrip [options] <input>   Send a pixel map through a socket

Run "pixtool <command> -h" for command-specific options.
`)
}

// commonFlags are shared by every subcommand that loads an image.
type commonFlags struct {
	format  string
	alpha   string
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "pixel format of the loaded map, e.g. BGRA_8888")
	fs.StringVar(&c.alpha, "alpha", "", "alpha type: opaque, premul or unpremul")
	fs.BoolVar(&c.verbose, "v", false, "log debug output to stderr")
}

// load decodes path into a map with the requested format and alpha type.
func (c *commonFlags) load(path string) (*pixelmap.PixelMap, error) {
	if c.verbose {
		pixelmap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	opts := pixelmap.InitOptions{Editable: true}
	var err error
	if opts.PixelFormat, err = parseFormat(c.format); err != nil {
		return nil, err
	}
	if opts.AlphaType, err = parseAlpha(c.alpha); err != nil {
		return nil, err
	}
	return pixelmap.LoadImage(path, opts)
}

func parseFormat(s string) (pixelmap.PixelFormat, error) {
	if s == "" {
		return pixelmap.FormatUnknown, nil
	}
	f, ok := pixelmap.ParsePixelFormat(strings.ToUpper(s))
	if !ok {
		return pixelmap.FormatUnknown, fmt.Errorf("unknown pixel format %q", s)
	}
	return f, nil
}

func parseAlpha(s string) (pixelmap.AlphaType, error) {
	switch strings.ToLower(s) {
	case "":
		return pixelmap.AlphaUnknown, nil
	case "opaque":
		return pixelmap.AlphaOpaque, nil
	case "premul":
		return pixelmap.AlphaPremul, nil
	case "unpremul":
		return pixelmap.AlphaUnpremul, nil
	default:
		return pixelmap.AlphaUnknown, fmt.Errorf("unknown alpha type %q", s)
	}
}

// describe prints one summary line for pm.
func describe(w io.Writer, label string, pm *pixelmap.PixelMap) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s: %dx%d %v %v, %d bytes (%d per row), %v",
		label, pm.Width(), pm.Height(), pm.PixelFormat(), pm.AlphaType(),
		pm.ByteCount(), pm.RowStride(), pm.AllocatorType())
	if d := pm.BaseDensity(); d > 0 {
		p.Fprintf(w, ", %d dpi", d)
	}
	fmt.Fprintln(w)
}

func runInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var c commonFlags
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: pixtool info <input>")
	}

	pm, err := c.load(fs.Arg(0))
	if err != nil {
		return err
	}
	defer pm.Release()

	describe(w, fs.Arg(0), pm)
	argb, err := pm.GetARGB32Color(0, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "top-left pixel: #%08X\n", argb)
	return nil
}
