package pixelmap

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/gogpu/pixelmap/internal/bridge"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("pixelmap: empty image data")

// FromImage creates a pixel map holding the pixels of img. opts selects the
// result's format and alpha type as for Create; opts.Size is ignored.
func FromImage(img image.Image, opts InitOptions) (*PixelMap, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidParameter)
	}
	opts.Size = Size{Width: b.Dx(), Height: b.Dy()}

	// Fast path: library RGBA/NRGBA memory is wrapped as is.
	var src Pixmap
	switch m := img.(type) {
	case *image.RGBA:
		src = wrapLibrary(m.Pix, m.Stride, opts.Size, AlphaPremul)
	case *image.NRGBA:
		src = wrapLibrary(m.Pix, m.Stride, opts.Size, AlphaUnpremul)
	default:
		n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
		src = wrapLibrary(n.Pix, n.Stride, opts.Size, AlphaUnpremul)
	}

	pm, err := Create(opts)
	if err != nil {
		return nil, err
	}
	if err := bridge.Convert(src, pm.Snapshot()); err != nil {
		_ = pm.Release()
		return nil, err
	}
	return pm, nil
}

// ToImage returns a copy of the pixels as a library image: *image.RGBA for
// premultiplied maps and *image.NRGBA otherwise.
func (pm *PixelMap) ToImage() (image.Image, error) {
	if pm.IsEmpty() {
		return nil, fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	r := image.Rect(0, 0, pm.Width(), pm.Height())
	if pm.info.AlphaType == AlphaPremul {
		m := image.NewRGBA(r)
		if err := bridge.Convert(pm.Snapshot(), wrapLibrary(m.Pix, m.Stride, pm.Size(), AlphaPremul)); err != nil {
			return nil, err
		}
		return m, nil
	}
	m := image.NewNRGBA(r)
	if err := bridge.Convert(pm.Snapshot(), wrapLibrary(m.Pix, m.Stride, pm.Size(), AlphaUnpremul)); err != nil {
		return nil, err
	}
	return m, nil
}

// wrapLibrary describes RGBA-ordered library memory as a Pixmap.
func wrapLibrary(pix []byte, stride int, size Size, alpha AlphaType) Pixmap {
	return Pixmap{
		Info:      ImageInfo{Size: size, PixelFormat: FormatRGBA8888, AlphaType: alpha},
		Data:      pix,
		RowStride: stride,
	}
}

// LoadImage loads an image file in any registered format.
func LoadImage(path string, opts InitOptions) (*PixelMap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open file: %w", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, opts)
}

// Decode decodes an image from r, auto-detecting the format.
func Decode(r io.Reader, opts InitOptions) (*PixelMap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyData
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrIO, err)
	}
	return FromImage(img, opts)
}

// EncodePNG encodes the pixels as PNG to w.
func (pm *PixelMap) EncodePNG(w io.Writer) error {
	img, err := pm.ToImage()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("%w: encode PNG: %w", ErrIO, err)
	}
	return nil
}

// EncodeJPEG encodes the pixels as JPEG with the given quality (1-100).
func (pm *PixelMap) EncodeJPEG(w io.Writer, quality int) error {
	quality = max(1, min(quality, 100))
	img, err := pm.ToImage()
	if err != nil {
		return err
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("%w: encode JPEG: %w", ErrIO, err)
	}
	return nil
}

// SavePNG saves the pixels as a PNG file.
func (pm *PixelMap) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: create file: %w", ErrIO, err)
	}

	if err := pm.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
