package pixelmap

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/pixelmap/internal/bridge"
	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/x448/float16"
)

// ScaleMode selects how a pixel map is fitted to a target size.
type ScaleMode int

const (
	// FitTargetSize scales each axis independently to hit the target exactly.
	FitTargetSize ScaleMode = iota

	// CenterCrop scales uniformly to cover the target, then crops the center.
	CenterCrop
)

// String returns a string representation of the scale mode.
func (m ScaleMode) String() string {
	switch m {
	case FitTargetSize:
		return "FitTargetSize"
	case CenterCrop:
		return "CenterCrop"
	default:
		return "Unknown"
	}
}

// InitOptions configures pixel map creation.
type InitOptions struct {
	// Size of the result. CreateFromSource falls back to the crop or source size.
	Size Size

	// SrcPixelFormat is the byte order of the colors given to
	// CreateFromColors: BGRA_8888 (the default), RGBA_8888 or ARGB_8888.
	SrcPixelFormat PixelFormat

	// PixelFormat of the result. Unknown means RGBA_8888 for Create and the
	// source format for CreateFromSource.
	PixelFormat PixelFormat

	// AlphaType of the result. Unknown means premultiplied for Create and the
	// source alpha type for CreateFromSource.
	AlphaType AlphaType

	// ScaleMode applies when CreateFromSource must resize.
	ScaleMode ScaleMode

	// Editable allows the Write methods on the result.
	Editable bool

	// UseSourceIfMatch lets CreateFromSource take over the source's memory
	// when nothing needs to change.
	UseSourceIfMatch bool
}

// CropValue classifies a crop rectangle against an image size.
type CropValue int

const (
	// NoCrop means the rectangle is empty or covers the whole image.
	NoCrop CropValue = iota

	// ValidCrop means a proper sub-rectangle inside the image.
	ValidCrop

	// InvalidCrop means the rectangle reaches outside the image.
	InvalidCrop
)

// String returns a string representation of the crop value.
func (c CropValue) String() string {
	switch c {
	case NoCrop:
		return "NOCROP"
	case ValidCrop:
		return "VALID"
	default:
		return "INVALID"
	}
}

// GetCropValue classifies rect against size.
func GetCropValue(rect Rect, size Size) CropValue {
	same := rect.Left == 0 && rect.Top == 0 && rect.Width == size.Width && rect.Height == size.Height
	if rect.IsZero() || same {
		return NoCrop
	}
	if !rect.Inside(size) {
		return InvalidCrop
	}
	return ValidCrop
}

// ValidCropValue is GetCropValue that first trims an overhanging rect in
// place so that it ends at the image edge. A rect whose origin lies outside
// the image stays invalid.
func ValidCropValue(rect *Rect, size Size) CropValue {
	res := GetCropValue(*rect, size)
	if res != InvalidCrop {
		return res
	}
	if rect.Top+rect.Height > size.Height {
		rect.Height = size.Height - rect.Top
	}
	if rect.Left+rect.Width > size.Width {
		rect.Width = size.Width - rect.Left
	}
	return GetCropValue(*rect, size)
}

// Create allocates a zero-filled pixel map.
//
// An unknown format becomes RGBA_8888 and an unknown alpha type becomes
// premultiplied, then the alpha type is narrowed to what the format can
// hold. Opaque maps with an alpha channel get every alpha sample set to full.
func Create(opts InitOptions) (*PixelMap, error) {
	format := opts.PixelFormat
	if format == FormatUnknown {
		format = FormatRGBA8888
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	alpha := opts.AlphaType
	if alpha == AlphaUnknown {
		alpha = AlphaPremul
	}
	alpha = ValidAlphaType(format, alpha)

	pm := New()
	info := ImageInfo{Size: opts.Size, PixelFormat: format, AlphaType: alpha}
	if err := pm.SetImageInfo(info, false); err != nil {
		return nil, err
	}
	s, err := intImage.NewHeapStorage(pm.ByteCount())
	if err != nil {
		return nil, err
	}
	if err := pm.SetStorage(s); err != nil {
		_ = s.Release()
		return nil, err
	}
	pm.editable = opts.Editable

	if alpha == AlphaOpaque && format.HasAlpha() {
		fillOpaque(pm.Pixels(), format)
	}
	return pm, nil
}

// fillOpaque sets the alpha sample of every pixel in data to full coverage.
func fillOpaque(data []byte, format PixelFormat) {
	bpp, off := format.BytesPerPixel(), format.AlphaOffset()
	if format == FormatRGBAF16 {
		one := float16.Fromfloat32(1).Bits()
		for i := off; i+1 < len(data); i += bpp {
			binary.NativeEndian.PutUint16(data[i:], one)
		}
		return
	}
	for i := off; i < len(data); i += bpp {
		data[i] = 0xFF
	}
}

// CreateFromColors builds a pixel map from 32-bit colors.
//
// colors is a raster of rows stride samples apart, whose first sample is
// at offset; opts.Size picks the window to copy. Each color is read in
// the byte order of opts.SrcPixelFormat from its little-endian bytes, so
// with the default BGRA_8888 a value is 0xAARRGGBB, not premultiplied.
func CreateFromColors(colors []uint32, offset, stride int, opts InitOptions) (*PixelMap, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrInvalidParameter)
	}
	if err := checkColorParams(len(colors), offset, stride, opts.Size); err != nil {
		return nil, err
	}
	srcFormat := opts.SrcPixelFormat
	switch srcFormat {
	case FormatUnknown:
		srcFormat = FormatBGRA8888
	case FormatBGRA8888, FormatRGBA8888, FormatARGB8888:
	default:
		return nil, fmt.Errorf("%w: colors as %v", ErrUnsupportedFormat, srcFormat)
	}

	w, h := opts.Size.Width, opts.Size.Height
	window := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := colors[offset+y*stride : offset+y*stride+w]
		for x, c := range row {
			binary.LittleEndian.PutUint32(window[(y*w+x)*4:], c)
		}
	}
	src := Pixmap{
		Info: ImageInfo{
			Size:        opts.Size,
			PixelFormat: srcFormat,
			AlphaType:   AlphaUnpremul,
		},
		Data:      window,
		RowStride: w * 4,
	}

	pm, err := Create(opts)
	if err != nil {
		return nil, err
	}
	if err := bridge.WriteInto(src, pm.Snapshot(), Position{}); err != nil {
		_ = pm.Release()
		return nil, err
	}
	return pm, nil
}

// checkColorParams validates the raster window of CreateFromColors. The last
// row only needs width samples, so a tight raster passes.
func checkColorParams(length, offset, stride int, size Size) error {
	switch {
	case size.Width <= 0 || size.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidParameter, size.Width, size.Height)
	case stride < size.Width:
		return fmt.Errorf("%w: stride %d below width %d", ErrInvalidParameter, stride, size.Width)
	case stride > MaxDimension:
		return fmt.Errorf("%w: stride %d", ErrInvalidParameter, stride)
	case offset < 0:
		return fmt.Errorf("%w: offset %d", ErrInvalidParameter, offset)
	}
	last := int64(offset) + int64(size.Height-1)*int64(stride) + int64(size.Width)
	if last > int64(length) {
		return fmt.Errorf("%w: last row ends at %d, only %d colors", ErrInvalidParameter, last, length)
	}
	return nil
}

// CreateFromSource crops, converts and resizes src into a new pixel map.
//
// Size, format and alpha type come from opts, falling back to the crop (or
// source) size and the source's own format and alpha type. When
// opts.UseSourceIfMatch is set, neither side is editable and nothing needs to
// change, the source's memory moves into the result and src is left empty.
func CreateFromSource(src *PixelMap, rect Rect, opts InitOptions) (*PixelMap, error) {
	if src == nil || src.IsEmpty() {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidParameter)
	}
	crop := GetCropValue(rect, src.Size())
	if crop == InvalidCrop {
		return nil, fmt.Errorf("%w: %+v outside %v", ErrCrop, rect, src.Size())
	}

	srcInfo := src.ImageInfo()
	cropSize := srcInfo.Size
	if crop == ValidCrop {
		cropSize = rect.Size()
	} else {
		rect = Rect{Width: cropSize.Width, Height: cropSize.Height}
	}
	dst := srcInfo
	dst.Size = cropSize
	if !opts.Size.Empty() {
		dst.Size = opts.Size
	}
	if opts.PixelFormat != FormatUnknown {
		dst.PixelFormat = opts.PixelFormat
	}
	if opts.AlphaType != AlphaUnknown {
		dst.AlphaType = opts.AlphaType
	}
	dst.AlphaType = ValidAlphaType(dst.PixelFormat, dst.AlphaType)

	sameFormat := dst.PixelFormat == srcInfo.PixelFormat && dst.AlphaType == srcInfo.AlphaType
	if opts.UseSourceIfMatch && !src.editable && !opts.Editable &&
		crop == NoCrop && sameFormat && dst.Size == srcInfo.Size {
		out := *src
		*src = PixelMap{}
		return &out, nil
	}

	out, err := Create(InitOptions{
		Size:        cropSize,
		PixelFormat: dst.PixelFormat,
		AlphaType:   dst.AlphaType,
		Editable:    opts.Editable,
	})
	if err != nil {
		return nil, err
	}
	out.info.ColorSpace = srcInfo.ColorSpace
	out.info.BaseDensity = srcInfo.BaseDensity

	if sameFormat && !dst.PixelFormat.IsYUV() {
		err = copyRect(src.Snapshot(), rect, out.Snapshot())
	} else {
		err = bridge.ReadFrom(src.Snapshot(), Position{X: rect.Left, Y: rect.Top}, out.Snapshot())
	}
	if err != nil {
		_ = out.Release()
		return nil, err
	}

	if dst.Size != cropSize {
		if err := out.ScaleTo(dst.Size, opts.ScaleMode); err != nil {
			_ = out.Release()
			return nil, err
		}
	}
	return out, nil
}

// copyRect copies rect of src row by row into the top-left of dst. Both
// pixmaps share the same single-plane format.
func copyRect(src Pixmap, rect Rect, dst Pixmap) error {
	if src.Info.PixelFormat != dst.Info.PixelFormat || src.Info.PixelFormat.IsYUV() {
		return fmt.Errorf("%w: row copy from %v to %v", ErrUnsupportedFormat, src.Info.PixelFormat, dst.Info.PixelFormat)
	}
	if !rect.Inside(src.Info.Size) {
		return fmt.Errorf("%w: %+v outside %v", ErrCrop, rect, src.Info.Size)
	}
	bpp := src.Info.PixelFormat.BytesPerPixel()
	w := min(rect.Width, dst.Info.Size.Width)
	h := min(rect.Height, dst.Info.Size.Height)
	for y := 0; y < h; y++ {
		s := src.Row(rect.Top + y)[rect.Left*bpp : (rect.Left+w)*bpp]
		copy(dst.Row(y), s)
	}
	return nil
}
