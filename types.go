package pixelmap

import (
	intImage "github.com/gogpu/pixelmap/internal/image"
)

// PixelFormat represents a pixel storage format.
type PixelFormat = intImage.PixelFormat

// Pixel formats. The numeric values are part of the serialized wire format.
const (
	// FormatUnknown is an unresolved format. Create resolves it to RGBA_8888.
	FormatUnknown = intImage.FormatUnknown

	// FormatARGB8888 is 32-bit A, R, G, B in memory order.
	FormatARGB8888 = intImage.FormatARGB8888

	// FormatRGB565 is 16-bit packed RGB in host byte order.
	FormatRGB565 = intImage.FormatRGB565

	// FormatRGBA8888 is 32-bit R, G, B, A in memory order.
	FormatRGBA8888 = intImage.FormatRGBA8888

	// FormatBGRA8888 is 32-bit B, G, R, A in memory order.
	FormatBGRA8888 = intImage.FormatBGRA8888

	// FormatRGB888 is 24-bit R, G, B without alpha.
	FormatRGB888 = intImage.FormatRGB888

	// FormatAlpha8 is a single alpha channel with rows padded to 4 pixels.
	FormatAlpha8 = intImage.FormatAlpha8

	// FormatRGBAF16 is four half-float lanes.
	FormatRGBAF16 = intImage.FormatRGBAF16

	// FormatNV21 is 4:2:0 YUV with an interleaved V/U plane.
	FormatNV21 = intImage.FormatNV21

	// FormatNV12 is 4:2:0 YUV with an interleaved U/V plane.
	FormatNV12 = intImage.FormatNV12

	// FormatCMYK is 32-bit C, M, Y, K.
	FormatCMYK = intImage.FormatCMYK
)

// AlphaType describes how the alpha channel relates to color channels.
type AlphaType = intImage.AlphaType

// Alpha types.
const (
	AlphaUnknown  = intImage.AlphaUnknown
	AlphaOpaque   = intImage.AlphaOpaque
	AlphaPremul   = intImage.AlphaPremul
	AlphaUnpremul = intImage.AlphaUnpremul
)

// ColorSpace tags the color space of the pixels. It is metadata only.
type ColorSpace = intImage.ColorSpace

// Color spaces.
const (
	ColorSpaceUnknown    = intImage.ColorSpaceUnknown
	ColorSpaceSRGB       = intImage.ColorSpaceSRGB
	ColorSpaceDisplayP3  = intImage.ColorSpaceDisplayP3
	ColorSpaceLinearSRGB = intImage.ColorSpaceLinearSRGB
	ColorSpaceAdobeRGB   = intImage.ColorSpaceAdobeRGB
	ColorSpaceDCIP3      = intImage.ColorSpaceDCIP3
	ColorSpaceBT2020     = intImage.ColorSpaceBT2020
)

// AllocatorType selects how pixel storage is released.
type AllocatorType = intImage.AllocatorType

// Allocator types. The numeric values are part of the serialized wire format.
const (
	AllocatorDefault = intImage.AllocatorDefault
	HeapAlloc        = intImage.HeapAlloc
	SharedMemAlloc   = intImage.SharedMemAlloc
	CustomAlloc      = intImage.CustomAlloc
)

// Geometry and descriptor types.
type (
	// Size is a width and height in pixels.
	Size = intImage.Size

	// Position is a pixel coordinate.
	Position = intImage.Position

	// Rect is a rectangle given by its top-left corner and dimensions.
	Rect = intImage.Rect

	// ImageInfo describes the geometry and pixel encoding of an image.
	ImageInfo = intImage.ImageInfo

	// Storage is pixel memory together with the strategy that releases it.
	Storage = intImage.Storage

	// ReleaseFunc frees caller supplied storage.
	ReleaseFunc = intImage.ReleaseFunc

	// AllocFunc allocates zeroed storage of the requested size.
	AllocFunc = intImage.AllocFunc

	// Pixmap is a borrowed, non-owning snapshot of pixel state.
	Pixmap = intImage.Pixmap

	// OwnedPixmap is a snapshot that owns its storage.
	OwnedPixmap = intImage.OwnedPixmap
)

// Limits.
const (
	// MaxRAMSize is the hard ceiling for a single pixel allocation.
	MaxRAMSize = intImage.MaxRAMSize

	// MaxDimension bounds strides and region sizes in pixels.
	MaxDimension = intImage.MaxDimension

	// MinImageDataSize is the largest pixel payload Marshal writes inline.
	// Larger payloads travel in a shared-memory segment.
	MinImageDataSize = 32 * 1024
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidParameter    = intImage.ErrInvalidParameter
	ErrUnsupportedFormat   = intImage.ErrUnsupportedFormat
	ErrTooLarge            = intImage.ErrTooLarge
	ErrAllocationFailed    = intImage.ErrAllocationFailed
	ErrNotAllowedToModify  = intImage.ErrNotAllowedToModify
	ErrMatrixNotInvertible = intImage.ErrMatrixNotInvertible
	ErrCrop                = intImage.ErrCrop
	ErrIO                  = intImage.ErrIO
	ErrMismatchedFormat    = intImage.ErrMismatchedFormat
)

// RowStride returns the bytes per row for width pixels of format.
// ALPHA_8 rows are padded to a multiple of four pixels.
func RowStride(format PixelFormat, width int) (int, error) {
	return intImage.RowStride(format, width)
}

// ValidAlphaType narrows alpha to what format can hold.
func ValidAlphaType(format PixelFormat, alpha AlphaType) AlphaType {
	return intImage.ValidAlphaType(format, alpha)
}

// ParsePixelFormat returns the format named s, such as "RGBA_8888".
func ParsePixelFormat(s string) (PixelFormat, bool) {
	return intImage.ParsePixelFormat(s)
}

// NewHeapStorage allocates size zeroed bytes on the heap.
func NewHeapStorage(size int) (*Storage, error) {
	return intImage.NewHeapStorage(size)
}

// NewSharedStorage allocates a named shared-memory segment of size bytes.
func NewSharedStorage(name string, size int) (*Storage, error) {
	return intImage.NewSharedStorage(name, size)
}

// NewCustomStorage wraps caller memory that is handed back to release,
// exactly once, when the owning pixel map lets go of it.
func NewCustomStorage(data []byte, context any, release ReleaseFunc) (*Storage, error) {
	return intImage.NewCustomStorage(data, context, release)
}
