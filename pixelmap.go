package pixelmap

import (
	"fmt"

	"github.com/gogpu/pixelmap/internal/convert"
	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/gogpu/pixelmap/internal/logging"
)

// PixelMap owns pixel memory together with the metadata that describes it.
//
// A PixelMap starts empty. SetImageInfo fixes geometry and format and
// SetPixelsAddr (or SetStorage) installs memory; the constructors in this
// package do both. Installing new memory always releases the previous
// storage through its own allocator, and Release is idempotent.
//
// Thread safety: a PixelMap is not safe for concurrent mutation. Concurrent
// reads are safe while no goroutine calls SetImageInfo, SetPixelsAddr,
// SetStorage, the Write methods or a geometric operation.
type PixelMap struct {
	info      ImageInfo
	storage   *Storage
	rowStride int
	bpp       int
	editable  bool
	colorProc convert.Func
}

// New returns an empty pixel map.
func New() *PixelMap {
	return &PixelMap{}
}

// SetImageInfo validates info and installs it, computing the row stride.
//
// Unless reused is true, any storage already installed is released first.
// A reused storage must be large enough for info; otherwise the call fails
// with ErrInvalidParameter and the map is left as it was. On any other
// failure the format fields are reset, so a half-configured map is never
// observable.
func (pm *PixelMap) SetImageInfo(info ImageInfo, reused bool) error {
	rowStride, byteCount, err := checkImageInfo(info)
	if err != nil {
		pm.resetFormat()
		return err
	}
	if reused && pm.storage != nil && byteCount > pm.Capacity() {
		return fmt.Errorf("%w: %v of %v needs %d bytes, capacity %d",
			ErrInvalidParameter, info.Size, info.PixelFormat, byteCount, pm.Capacity())
	}
	if !reused {
		pm.freeStorage()
	}
	pm.setInfo(info, rowStride)
	return nil
}

// checkImageInfo returns the layout of info or the reason it is unusable.
func checkImageInfo(info ImageInfo) (rowStride, byteCount int, err error) {
	if info.Size.Width <= 0 || info.Size.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: size %dx%d", ErrInvalidParameter, info.Size.Width, info.Size.Height)
	}
	if info.PixelFormat.BytesPerPixel() == 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, info.PixelFormat)
	}
	return intImage.Layout(info)
}

func (pm *PixelMap) setInfo(info ImageInfo, rowStride int) {
	pm.info = info
	pm.rowStride = rowStride
	pm.bpp = info.PixelFormat.BytesPerPixel()
	pm.colorProc, _ = convert.Native().Lookup(info.PixelFormat)
}

func (pm *PixelMap) resetFormat() {
	pm.info = ImageInfo{}
	pm.rowStride = 0
	pm.bpp = 0
	pm.colorProc = nil
}

// SetPixelsAddr installs data as the pixel memory. size is the number of
// usable bytes, allocator selects the teardown path and context and release
// are handed to it: the release callback for CustomAlloc, the mapped
// *shm.Region for SharedMemAlloc.
func (pm *PixelMap) SetPixelsAddr(data []byte, context any, size int, allocator AllocatorType, release ReleaseFunc) error {
	s, err := intImage.NewStorage(data, context, size, allocator, release)
	if err != nil {
		return err
	}
	return pm.SetStorage(s)
}

// SetStorage installs s as the pixel memory, taking ownership of it. The
// previous storage is released. s must hold at least ByteCount bytes.
func (pm *PixelMap) SetStorage(s *Storage) error {
	if s == nil || s.Released() {
		return fmt.Errorf("%w: nil storage", ErrInvalidParameter)
	}
	if need := pm.ByteCount(); s.Size() < need {
		return fmt.Errorf("%w: storage of %d bytes, need %d", ErrInvalidParameter, s.Size(), need)
	}
	if s == pm.storage {
		return nil
	}
	pm.freeStorage()
	pm.storage = s
	return nil
}

// DetachStorage hands the pixel memory to the caller and leaves the map
// empty. The caller becomes responsible for releasing it.
func (pm *PixelMap) DetachStorage() *Storage {
	s := pm.storage
	pm.storage = nil
	pm.resetFormat()
	return s
}

// Release frees the pixel memory through its allocator. Calling it again is
// a no-op.
func (pm *PixelMap) Release() error {
	if pm == nil || pm.storage == nil {
		return nil
	}
	s := pm.storage
	pm.storage = nil
	return s.Release()
}

func (pm *PixelMap) freeStorage() {
	if err := pm.Release(); err != nil {
		logging.Logger().Warn("pixelmap: release previous storage", "err", err)
	}
}

// ReplacePixels replaces the pixels and image info with out, which the map
// takes over. On failure out is released and the map keeps its previous
// pixels.
func (pm *PixelMap) ReplacePixels(out *OwnedPixmap) error {
	rowStride, byteCount, err := checkImageInfo(out.Info)
	if err != nil {
		_ = out.Release()
		return err
	}
	s := out.Storage()
	if s == nil || s.Released() || s.Size() < byteCount {
		_ = out.Release()
		return fmt.Errorf("%w: replacement storage smaller than %d bytes", ErrInvalidParameter, byteCount)
	}
	if s != pm.storage {
		pm.freeStorage()
		pm.storage = s
	}
	pm.setInfo(out.Info, rowStride)
	out.Detach()
	return nil
}

// Snapshot returns a borrowed view of the current pixels.
func (pm *PixelMap) Snapshot() Pixmap {
	return Pixmap{Info: pm.info, Data: pm.Pixels(), RowStride: pm.rowStride}
}

// Pixels returns the pixel memory limited to ByteCount bytes, or nil.
func (pm *PixelMap) Pixels() []byte {
	data := pm.storage.Bytes()
	if n := pm.ByteCount(); len(data) > n {
		return data[:n]
	}
	return data
}

// IsEmpty reports whether no pixel memory is installed.
func (pm *PixelMap) IsEmpty() bool {
	return pm.storage.Released()
}

// ImageInfo returns the image description.
func (pm *PixelMap) ImageInfo() ImageInfo { return pm.info }

// Size returns the image dimensions.
func (pm *PixelMap) Size() Size { return pm.info.Size }

// Width returns the width in pixels.
func (pm *PixelMap) Width() int { return pm.info.Size.Width }

// Height returns the height in pixels.
func (pm *PixelMap) Height() int { return pm.info.Size.Height }

// PixelFormat returns the pixel format.
func (pm *PixelMap) PixelFormat() PixelFormat { return pm.info.PixelFormat }

// AlphaType returns the alpha type.
func (pm *PixelMap) AlphaType() AlphaType { return pm.info.AlphaType }

// ColorSpace returns the color space tag.
func (pm *PixelMap) ColorSpace() ColorSpace { return pm.info.ColorSpace }

// SetColorSpace replaces the color space tag. Pixels are not touched.
func (pm *PixelMap) SetColorSpace(cs ColorSpace) { pm.info.ColorSpace = cs }

// BaseDensity returns the pixel density the image was authored for.
func (pm *PixelMap) BaseDensity() int { return pm.info.BaseDensity }

// SetBaseDensity records the pixel density.
func (pm *PixelMap) SetBaseDensity(density int) { pm.info.BaseDensity = density }

// RowStride returns the bytes per row.
func (pm *PixelMap) RowStride() int { return pm.rowStride }

// BytesPerPixel returns the per-pixel size of the format.
func (pm *PixelMap) BytesPerPixel() int { return pm.bpp }

// ByteCount returns RowStride * Height.
func (pm *PixelMap) ByteCount() int { return pm.rowStride * pm.info.Size.Height }

// Capacity returns the size of the installed storage, which may exceed ByteCount.
func (pm *PixelMap) Capacity() int { return pm.storage.Size() }

// AllocatorType returns the teardown strategy of the installed storage.
func (pm *PixelMap) AllocatorType() AllocatorType { return pm.storage.Allocator() }

// FD returns the shared-memory descriptor, or -1.
func (pm *PixelMap) FD() int { return pm.storage.FD() }

// IsEditable reports whether the Write methods may modify the pixels.
func (pm *PixelMap) IsEditable() bool { return pm.editable }

// SetEditable sets the editable flag.
func (pm *PixelMap) SetEditable(editable bool) { pm.editable = editable }

// SetAlphaType changes the alpha interpretation, narrowed to what the format
// can hold. Pixels are not converted.
func (pm *PixelMap) SetAlphaType(alpha AlphaType) error {
	if !pm.info.PixelFormat.IsValid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, pm.info.PixelFormat)
	}
	pm.info.AlphaType = ValidAlphaType(pm.info.PixelFormat, alpha)
	return nil
}

// ResetConfig reinterprets the installed memory with a new size and format.
// The new byte count must fit in the current capacity.
func (pm *PixelMap) ResetConfig(size Size, format PixelFormat) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	info := pm.info
	info.Size = size
	info.PixelFormat = format
	info.AlphaType = ValidAlphaType(format, info.AlphaType)
	_, need, err := intImage.Layout(info)
	if err != nil {
		return err
	}
	if need > pm.Capacity() {
		return fmt.Errorf("%w: %v of %v needs %d bytes, capacity %d", ErrInvalidParameter, size, format, need, pm.Capacity())
	}
	return pm.SetImageInfo(info, true)
}

// Clone returns a heap copy of pm with the same metadata and editability.
func (pm *PixelMap) Clone() (*PixelMap, error) {
	if pm.IsEmpty() {
		return nil, fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	s, err := intImage.NewHeapStorage(pm.ByteCount())
	if err != nil {
		return nil, err
	}
	copy(s.Bytes(), pm.Pixels())
	out := New()
	if err := out.SetImageInfo(pm.info, false); err != nil {
		_ = s.Release()
		return nil, err
	}
	if err := out.SetStorage(s); err != nil {
		_ = s.Release()
		return nil, err
	}
	out.editable = pm.editable
	return out, nil
}

// String returns a short description of the pixel map.
func (pm *PixelMap) String() string {
	return fmt.Sprintf("PixelMap(%dx%d %v %v, stride %d, %v)",
		pm.info.Size.Width, pm.info.Size.Height, pm.info.PixelFormat, pm.info.AlphaType,
		pm.rowStride, pm.storage.Allocator())
}
