package pixelmap

import (
	"fmt"
	"math"

	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/gogpu/pixelmap/internal/logging"
	"github.com/gogpu/pixelmap/internal/shm"
	"github.com/gogpu/pixelmap/parcel"
)

// transitSegmentName names the shared-memory segment that carries large
// heap payloads through a parcel.
const transitSegmentName = "pixelmap-parcel"

// Marshal writes the pixel map into p.
//
// The layout is seven int32 fields (width, height, pixel format, color
// space, alpha type, base density, allocator type). Shared-memory maps
// follow with the buffer size and a duplicated descriptor, so the receiver
// maps the same pages. Other maps follow with the byte length and either the
// bytes inline, up to MinImageDataSize, or a descriptor of a transit segment
// holding a copy. A base density outside the int32 range fails with
// ErrInvalidParameter before anything is written.
func (pm *PixelMap) Marshal(p *parcel.Parcel) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	info := pm.info
	if info.BaseDensity < math.MinInt32 || info.BaseDensity > math.MaxInt32 {
		return fmt.Errorf("%w: base density %d does not fit in 32 bits", ErrInvalidParameter, info.BaseDensity)
	}
	p.WriteInt32(int32(info.Size.Width))
	p.WriteInt32(int32(info.Size.Height))
	p.WriteInt32(int32(info.PixelFormat))
	p.WriteInt32(int32(info.ColorSpace))
	p.WriteInt32(int32(info.AlphaType))
	p.WriteInt32(int32(info.BaseDensity))
	p.WriteInt32(int32(pm.AllocatorType()))

	n := pm.ByteCount()
	p.WriteInt32(int32(n))
	if pm.AllocatorType() == SharedMemAlloc {
		if err := p.WriteFD(pm.FD()); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		return nil
	}
	if n <= MinImageDataSize {
		p.WriteBuffer(pm.Pixels())
		return nil
	}
	return writeTransit(p, pm.Pixels())
}

// writeTransit copies data into a fresh segment and hands its descriptor to
// p. The local mapping is closed before returning.
func writeTransit(p *parcel.Parcel, data []byte) error {
	r, err := shm.Create(transitSegmentName, len(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	copy(r.Bytes(), data)
	werr := p.WriteFD(r.FD())
	if err := r.Close(); err != nil {
		logging.Logger().Warn("pixelmap: close transit segment", "err", err)
	}
	if werr != nil {
		return fmt.Errorf("%w: %w", ErrIO, werr)
	}
	return nil
}

// Unmarshal reads a pixel map written by Marshal.
//
// A shared-memory map comes back mapped onto the sender's pages through its
// own descriptor. Every other allocator type comes back on the heap. The
// declared byte length must equal the row stride times the height for the
// declared format, or ErrMismatchedFormat is returned.
func Unmarshal(p *parcel.Parcel) (*PixelMap, error) {
	var fields [8]int32
	for i := range fields {
		v, err := p.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		fields[i] = v
	}
	info := ImageInfo{
		Size:        Size{Width: int(fields[0]), Height: int(fields[1])},
		PixelFormat: PixelFormat(fields[2]),
		ColorSpace:  ColorSpace(fields[3]),
		AlphaType:   AlphaType(fields[4]),
		BaseDensity: int(fields[5]),
	}
	allocator := AllocatorType(fields[6])
	n := int(fields[7])

	pm := New()
	if err := pm.SetImageInfo(info, false); err != nil {
		return nil, err
	}
	if n != pm.ByteCount() {
		return nil, fmt.Errorf("%w: %d bytes declared, %v needs %d", ErrMismatchedFormat, n, info.PixelFormat, pm.ByteCount())
	}

	var (
		s   *Storage
		err error
	)
	switch {
	case allocator == SharedMemAlloc:
		s, err = readShared(p, n)
	case n <= MinImageDataSize:
		var data []byte
		if data, err = p.ReadBuffer(n); err != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidParameter, err)
			break
		}
		s, err = intImage.NewStorage(data, nil, n, HeapAlloc, nil)
	default:
		s, err = readTransit(p, n)
	}
	if err != nil {
		return nil, err
	}
	if err := pm.SetStorage(s); err != nil {
		_ = s.Release()
		return nil, err
	}
	return pm, nil
}

func readShared(p *parcel.Parcel, n int) (*Storage, error) {
	fd, err := p.ReadFD()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	r, err := shm.Map(fd, n, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return intImage.WrapRegion(r), nil
}

// readTransit copies a transit segment onto the heap and releases it.
func readTransit(p *parcel.Parcel, n int) (*Storage, error) {
	fd, err := p.ReadFD()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	r, err := shm.Map(fd, n, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	s, err := intImage.NewHeapStorage(n)
	if err == nil {
		copy(s.Bytes(), r.Bytes())
	}
	if cerr := r.Close(); cerr != nil {
		logging.Logger().Warn("pixelmap: close transit segment", "err", cerr)
	}
	return s, err
}
