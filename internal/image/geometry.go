package image

import "fmt"

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Position is a pixel coordinate.
type Position struct {
	X, Y int
}

// Rect represents a rectangular region in pixel coordinates.
type Rect struct {
	Left, Top     int // Top-left corner
	Width, Height int // Dimensions
}

// IsZero reports whether all fields are zero.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Inside reports whether r lies entirely within [0,size.Width) x [0,size.Height).
func (r Rect) Inside(size Size) bool {
	if r.Left < 0 || r.Top < 0 || r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return int64(r.Left)+int64(r.Width) <= int64(size.Width) &&
		int64(r.Top)+int64(r.Height) <= int64(size.Height)
}

// ImageInfo describes the geometry and pixel encoding of an image.
type ImageInfo struct {
	Size        Size
	PixelFormat PixelFormat
	AlphaType   AlphaType
	ColorSpace  ColorSpace
	BaseDensity int
}

// RowStride returns the number of bytes per row for width pixels of format.
//
// ALPHA_8 rows are padded up to a multiple of four pixels. The per-row size is
// checked against MaxRAMSize before any multiplication by height can happen.
func RowStride(format PixelFormat, width int) (int, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if width <= 0 {
		return 0, fmt.Errorf("%w: width %d", ErrInvalidParameter, width)
	}
	if int64(bpp)*int64(width) > MaxRAMSize {
		return 0, fmt.Errorf("%w: row of %d pixels", ErrTooLarge, width)
	}
	if format == FormatAlpha8 {
		return bpp * ((width + 3) &^ 3), nil
	}
	return bpp * width, nil
}

// Layout validates info and returns its row stride and total byte count.
func Layout(info ImageInfo) (rowStride, size int, err error) {
	if info.Size.Width <= 0 || info.Size.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: size %dx%d", ErrInvalidParameter, info.Size.Width, info.Size.Height)
	}
	rowStride, err = RowStride(info.PixelFormat, info.Size.Width)
	if err != nil {
		return 0, 0, err
	}
	total := int64(rowStride) * int64(info.Size.Height)
	if total > MaxRAMSize {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}
	return rowStride, int(total), nil
}
