// Package bridge copies and converts pixels between buffers of different
// formats through the Go raster library (image and golang.org/x/image/draw).
//
// The library only understands its own pixel types, so this package adapts
// around it: RGBA_8888, ALPHA_8 and CMYK memory is wrapped in place, while
// BGRA/ARGB rows are byte-permuted to RGBA order, RGB_888 is padded to RGBx,
// RGB_565 is expanded, RGBA_F16 goes through 16-bit lanes and NV12/NV21 are
// read through image.YCbCr. Premultiplied buffers map to image.RGBA and
// image.RGBA64, everything else to the non-premultiplied types, so alpha
// conversions fall out of the library's color models.
package bridge

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	intImage "github.com/gogpu/pixelmap/internal/image"
)

// WriteInto copies all of src into dst with its top-left corner at pos,
// converting formats as needed. The destination rectangle is clipped to dst.
func WriteInto(src intImage.Pixmap, dst intImage.Pixmap, pos intImage.Position) error {
	if err := validate(src, dst); err != nil {
		return err
	}
	dr := image.Rect(pos.X, pos.Y, pos.X+src.Info.Size.Width, pos.Y+src.Info.Size.Height).Intersect(bounds(dst))
	if dr.Empty() {
		return fmt.Errorf("%w: write position %v outside destination", intImage.ErrInvalidParameter, pos)
	}
	sr := dr.Sub(image.Pt(pos.X, pos.Y))
	return blit(src, sr, dst, dr)
}

// ReadFrom copies the region of src starting at pos and sized like dst into
// dst, converting formats as needed. The source rectangle is clipped to src.
func ReadFrom(src intImage.Pixmap, pos intImage.Position, dst intImage.Pixmap) error {
	if err := validate(src, dst); err != nil {
		return err
	}
	sr := image.Rect(pos.X, pos.Y, pos.X+dst.Info.Size.Width, pos.Y+dst.Info.Size.Height).Intersect(bounds(src))
	if sr.Empty() {
		return fmt.Errorf("%w: read position %v outside source", intImage.ErrInvalidParameter, pos)
	}
	dr := sr.Sub(image.Pt(pos.X, pos.Y))
	return blit(src, sr, dst, dr)
}

// Convert copies src into dst at the origin.
func Convert(src, dst intImage.Pixmap) error {
	return WriteInto(src, dst, intImage.Position{})
}

// Erase fills dst with an unpremultiplied ARGB color (A<<24|R<<16|G<<8|B).
func Erase(dst intImage.Pixmap, argb uint32) error {
	if err := dst.Validate(); err != nil {
		return err
	}
	r := bounds(dst)
	img, commit, err := target(dst, r)
	if err != nil {
		return err
	}
	c := color.NRGBA{R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb), A: uint8(argb >> 24)}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	commit()
	return nil
}

func validate(src, dst intImage.Pixmap) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("bridge: source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("bridge: destination: %w", err)
	}
	return nil
}

// blit draws region sr of src onto region dr of dst; both have the same size.
func blit(src intImage.Pixmap, sr image.Rectangle, dst intImage.Pixmap, dr image.Rectangle) error {
	s, err := source(src, sr)
	if err != nil {
		return err
	}
	d, commit, err := target(dst, dr)
	if err != nil {
		return err
	}
	draw.Copy(d, dr.Min, s, sr, draw.Src, nil)
	commit()
	return nil
}

func bounds(p intImage.Pixmap) image.Rectangle {
	return image.Rect(0, 0, p.Info.Size.Width, p.Info.Size.Height)
}

func premultiplied(a intImage.AlphaType) bool {
	return a == intImage.AlphaPremul
}
