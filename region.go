package pixelmap

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/pixelmap/internal/bridge"
)

// Region I/O exchanges pixels in BGRA_8888 with the map's own alpha type,
// whatever the native format. A color passed as uint32 is the little-endian
// reading of those four bytes, 0xAARRGGBB.

// regionBytesPerPixel is the size of one BGRA_8888 sample.
const regionBytesPerPixel = 4

// ReadPixels copies region of the map into buf as BGRA_8888. Row y of the
// region lands at buf[offset+y*stride:]; stride is in bytes.
func (pm *PixelMap) ReadPixels(buf []byte, offset, stride int, region Rect) error {
	if err := pm.checkPixelsInput(len(buf), offset, stride, region); err != nil {
		return err
	}
	tmp := pm.regionPixmap(region.Size())
	if err := bridge.ReadFrom(pm.Snapshot(), Position{X: region.Left, Y: region.Top}, tmp); err != nil {
		return err
	}
	rowBytes := region.Width * regionBytesPerPixel
	for y := 0; y < region.Height; y++ {
		start := offset + y*stride
		copy(buf[start:start+rowBytes], tmp.Row(y))
	}
	return nil
}

// WritePixels copies BGRA_8888 pixels from buf into region of the map. The
// layout of buf matches ReadPixels. The map must be editable.
func (pm *PixelMap) WritePixels(buf []byte, offset, stride int, region Rect) error {
	if err := pm.checkPixelsInput(len(buf), offset, stride, region); err != nil {
		return err
	}
	if !pm.editable {
		return ErrNotAllowedToModify
	}
	tmp := pm.regionPixmap(region.Size())
	rowBytes := region.Width * regionBytesPerPixel
	for y := 0; y < region.Height; y++ {
		start := offset + y*stride
		copy(tmp.Row(y), buf[start:start+rowBytes])
	}
	return bridge.WriteInto(tmp, pm.Snapshot(), Position{X: region.Left, Y: region.Top})
}

// ReadPixel returns the BGRA_8888 color at pos.
func (pm *PixelMap) ReadPixel(pos Position) (uint32, error) {
	var b [regionBytesPerPixel]byte
	if err := pm.ReadPixels(b[:], 0, regionBytesPerPixel, Rect{Left: pos.X, Top: pos.Y, Width: 1, Height: 1}); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// WritePixel stores a BGRA_8888 color at pos.
func (pm *PixelMap) WritePixel(pos Position, color uint32) error {
	var b [regionBytesPerPixel]byte
	binary.LittleEndian.PutUint32(b[:], color)
	return pm.WritePixels(b[:], 0, regionBytesPerPixel, Rect{Left: pos.X, Top: pos.Y, Width: 1, Height: 1})
}

// ReadBuffer copies the raw pixel memory, ByteCount bytes in the native
// format, into buf.
func (pm *PixelMap) ReadBuffer(buf []byte) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if len(buf) < pm.ByteCount() {
		return fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidParameter, len(buf), pm.ByteCount())
	}
	copy(buf, pm.Pixels())
	return nil
}

// WriteBuffer replaces the raw pixel memory with buf, which must be exactly
// ByteCount bytes in the native format.
func (pm *PixelMap) WriteBuffer(buf []byte) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if len(buf) != pm.ByteCount() {
		return fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidParameter, len(buf), pm.ByteCount())
	}
	if !pm.editable {
		return ErrNotAllowedToModify
	}
	copy(pm.Pixels(), buf)
	return nil
}

// FillColor sets every pixel to the unpremultiplied color 0xAARRGGBB.
func (pm *PixelMap) FillColor(color uint32) error {
	if !pm.editable {
		return ErrNotAllowedToModify
	}
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if !pm.info.PixelFormat.IsValid() || pm.info.PixelFormat.IsYUV() {
		return fmt.Errorf("%w: fill %v", ErrUnsupportedFormat, pm.info.PixelFormat)
	}
	return bridge.Erase(pm.Snapshot(), color)
}

// checkPixelsInput validates a region request before any memory is touched.
func (pm *PixelMap) checkPixelsInput(bufLen, offset, stride int, region Rect) error {
	switch {
	case bufLen == 0:
		return fmt.Errorf("%w: empty buffer", ErrInvalidParameter)
	case pm.IsEmpty():
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	case region.Left < 0 || region.Top < 0:
		return fmt.Errorf("%w: region origin (%d,%d)", ErrInvalidParameter, region.Left, region.Top)
	case region.Width <= 0 || region.Height <= 0 ||
		region.Width > MaxDimension || region.Height > MaxDimension:
		return fmt.Errorf("%w: region size %dx%d", ErrInvalidParameter, region.Width, region.Height)
	case !region.Inside(pm.info.Size):
		return fmt.Errorf("%w: region %+v outside %dx%d", ErrInvalidParameter, region, pm.info.Size.Width, pm.info.Size.Height)
	case int64(stride) < int64(region.Width)*regionBytesPerPixel:
		return fmt.Errorf("%w: stride %d below %d", ErrInvalidParameter, stride, region.Width*regionBytesPerPixel)
	case offset < 0:
		return fmt.Errorf("%w: offset %d", ErrInvalidParameter, offset)
	}
	need := int64(offset) + int64(region.Height-1)*int64(stride) + int64(region.Width)*regionBytesPerPixel
	if need > int64(bufLen) {
		return fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidParameter, bufLen, need)
	}
	return nil
}

// regionPixmap returns a compact BGRA_8888 scratch pixmap of size.
func (pm *PixelMap) regionPixmap(size Size) Pixmap {
	return Pixmap{
		Info: ImageInfo{
			Size:        size,
			PixelFormat: FormatBGRA8888,
			AlphaType:   ValidAlphaType(FormatBGRA8888, pm.info.AlphaType),
		},
		Data:      make([]byte, size.Width*size.Height*regionBytesPerPixel),
		RowStride: size.Width * regionBytesPerPixel,
	}
}
