// Package image defines the pixel map data model shared by the pixelmap packages.
//
// It holds the pixel format table, alpha and color space tags, image geometry,
// the row stride and memory ceiling rules, and the storage ownership types
// (Storage, Pixmap, OwnedPixmap) that move pixel memory between components.
package image

import "math"

// Memory and geometry limits.
const (
	// MaxRAMSize is the hard ceiling for a single pixel allocation.
	MaxRAMSize = 600 * 1024 * 1024

	// MaxDimension bounds strides and region sizes expressed in pixels so
	// that multiplying by four bytes never overflows int32.
	MaxDimension = math.MaxInt32 >> 2
)

// PixelFormat represents a pixel storage format.
//
// The numeric values are part of the serialized wire format and must not change.
type PixelFormat int32

const (
	// FormatUnknown is an unresolved format.
	FormatUnknown PixelFormat = 0

	// FormatARGB8888 is 32-bit A, R, G, B in memory order.
	FormatARGB8888 PixelFormat = 1

	// FormatRGB565 is 16-bit packed RGB in host byte order.
	FormatRGB565 PixelFormat = 2

	// FormatRGBA8888 is 32-bit R, G, B, A in memory order.
	FormatRGBA8888 PixelFormat = 3

	// FormatBGRA8888 is 32-bit B, G, R, A in memory order.
	FormatBGRA8888 PixelFormat = 4

	// FormatRGB888 is 24-bit R, G, B without alpha.
	FormatRGB888 PixelFormat = 5

	// FormatAlpha8 is a single 8-bit alpha channel. Rows are padded to 4 pixels.
	FormatAlpha8 PixelFormat = 6

	// FormatRGBAF16 is four IEEE 754 half-float lanes (R, G, B, A).
	FormatRGBAF16 PixelFormat = 7

	// FormatNV21 is 4:2:0 YUV with interleaved V/U plane.
	FormatNV21 PixelFormat = 8

	// FormatNV12 is 4:2:0 YUV with interleaved U/V plane.
	FormatNV12 PixelFormat = 9

	// FormatCMYK is 32-bit C, M, Y, K.
	FormatCMYK PixelFormat = 10

	// formatCount is the number of formats (for internal use).
	formatCount = FormatCMYK + 1
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the row stride unit. NV12/NV21 report 2 as a stride
	// convention for their 4:2:0 layout, not as literal samples per pixel.
	BytesPerPixel int

	// HasAlpha indicates if the format has an alpha channel.
	HasAlpha bool

	// AlphaOffset is the byte offset of the alpha sample inside a pixel,
	// or -1 when the format has no alpha.
	AlphaOffset int

	// IsYUV indicates a planar YUV layout.
	IsYUV bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatUnknown:  {BytesPerPixel: 0, AlphaOffset: -1},
	FormatARGB8888: {BytesPerPixel: 4, HasAlpha: true, AlphaOffset: 0},
	FormatRGB565:   {BytesPerPixel: 2, AlphaOffset: -1},
	FormatRGBA8888: {BytesPerPixel: 4, HasAlpha: true, AlphaOffset: 3},
	FormatBGRA8888: {BytesPerPixel: 4, HasAlpha: true, AlphaOffset: 3},
	FormatRGB888:   {BytesPerPixel: 3, AlphaOffset: -1},
	FormatAlpha8:   {BytesPerPixel: 1, HasAlpha: true, AlphaOffset: 0},
	FormatRGBAF16:  {BytesPerPixel: 8, HasAlpha: true, AlphaOffset: 6},
	FormatNV21:     {BytesPerPixel: 2, AlphaOffset: -1, IsYUV: true},
	FormatNV12:     {BytesPerPixel: 2, AlphaOffset: -1, IsYUV: true},
	FormatCMYK:     {BytesPerPixel: 4, AlphaOffset: -1},
}

// Info returns the FormatInfo for this format.
func (f PixelFormat) Info() FormatInfo {
	if f < 0 || f >= formatCount {
		return FormatInfo{AlphaOffset: -1}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel, or 0 if unknown.
func (f PixelFormat) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha returns true if this format has an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	return f.Info().HasAlpha
}

// AlphaOffset returns the byte offset of alpha inside a pixel, or -1.
func (f PixelFormat) AlphaOffset() int {
	return f.Info().AlphaOffset
}

// IsYUV returns true for the planar 4:2:0 formats.
func (f PixelFormat) IsYUV() bool {
	return f.Info().IsYUV
}

// IsValid returns true if the format is a known, resolved format.
func (f PixelFormat) IsValid() bool {
	return f > FormatUnknown && f < formatCount
}

// String returns a string representation of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatARGB8888:
		return "ARGB_8888"
	case FormatRGB565:
		return "RGB_565"
	case FormatRGBA8888:
		return "RGBA_8888"
	case FormatBGRA8888:
		return "BGRA_8888"
	case FormatRGB888:
		return "RGB_888"
	case FormatAlpha8:
		return "ALPHA_8"
	case FormatRGBAF16:
		return "RGBA_F16"
	case FormatNV21:
		return "NV21"
	case FormatNV12:
		return "NV12"
	case FormatCMYK:
		return "CMYK"
	default:
		return "UNKNOWN"
	}
}

// ParsePixelFormat returns the format named by s (as printed by String).
func ParsePixelFormat(s string) (PixelFormat, bool) {
	for f := FormatARGB8888; f < formatCount; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return FormatUnknown, false
}

// AlphaType describes how the alpha channel relates to color channels.
type AlphaType int32

const (
	AlphaUnknown  AlphaType = 0
	AlphaOpaque   AlphaType = 1
	AlphaPremul   AlphaType = 2
	AlphaUnpremul AlphaType = 3
)

// String returns a string representation of the alpha type.
func (a AlphaType) String() string {
	switch a {
	case AlphaOpaque:
		return "OPAQUE"
	case AlphaPremul:
		return "PREMUL"
	case AlphaUnpremul:
		return "UNPREMUL"
	default:
		return "UNKNOWN"
	}
}

// ColorSpace tags the color space of the pixels. It is carried as metadata only.
type ColorSpace int32

const (
	ColorSpaceUnknown    ColorSpace = 0
	ColorSpaceSRGB       ColorSpace = 1
	ColorSpaceDisplayP3  ColorSpace = 2
	ColorSpaceLinearSRGB ColorSpace = 3
	ColorSpaceAdobeRGB   ColorSpace = 4
	ColorSpaceDCIP3      ColorSpace = 5
	ColorSpaceBT2020     ColorSpace = 6
)

// ValidAlphaType narrows alpha to what format can hold.
//
// Formats without an alpha channel are always opaque. ALPHA_8 stores coverage
// only, so an unknown or unpremultiplied request becomes premultiplied. The
// 32-bit and half-float formats resolve unknown to premultiplied.
func ValidAlphaType(format PixelFormat, alpha AlphaType) AlphaType {
	switch format {
	case FormatARGB8888, FormatRGBA8888, FormatBGRA8888, FormatRGBAF16:
		if alpha == AlphaUnknown {
			return AlphaPremul
		}
		return alpha
	case FormatAlpha8:
		if alpha == AlphaOpaque {
			return AlphaOpaque
		}
		return AlphaPremul
	case FormatRGB565, FormatRGB888, FormatNV21, FormatNV12, FormatCMYK:
		return AlphaOpaque
	default:
		return alpha
	}
}
