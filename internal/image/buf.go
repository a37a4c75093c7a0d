package image

import (
	"fmt"

	"github.com/gogpu/pixelmap/internal/logging"
	"github.com/gogpu/pixelmap/internal/shm"
)

// AllocatorType selects how pixel storage is released.
//
// The numeric values are part of the serialized wire format.
type AllocatorType int32

const (
	// AllocatorDefault is an unset tag. Storage never carries it.
	AllocatorDefault AllocatorType = 0

	// HeapAlloc storage is a Go heap slice.
	HeapAlloc AllocatorType = 1

	// SharedMemAlloc storage is a mapped shared-memory region; release
	// unmaps it and closes the descriptor.
	SharedMemAlloc AllocatorType = 2

	// CustomAlloc storage is caller supplied; release invokes the caller's
	// ReleaseFunc exactly once.
	CustomAlloc AllocatorType = 3
)

// String returns a string representation of the allocator type.
func (a AllocatorType) String() string {
	switch a {
	case HeapAlloc:
		return "HEAP_ALLOC"
	case SharedMemAlloc:
		return "SHARE_MEM_ALLOC"
	case CustomAlloc:
		return "CUSTOM_ALLOC"
	default:
		return "DEFAULT"
	}
}

// ReleaseFunc frees caller supplied storage. It receives the pixel memory,
// the context given at installation time and the installed size.
type ReleaseFunc func(data []byte, context any, size int)

// AllocFunc allocates size bytes of zeroed storage.
type AllocFunc func(size int) (*Storage, error)

// Storage is pixel memory together with the strategy that releases it.
//
// Exactly one PixelMap (or OwnedPixmap) owns a Storage at a time. Release is
// idempotent: the memory reference is dropped on the first call.
type Storage struct {
	data      []byte
	size      int
	allocator AllocatorType
	context   any
	release   ReleaseFunc
	region    *shm.Region
}

// NewHeapStorage allocates size zeroed bytes on the heap.
func NewHeapStorage(size int) (*Storage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: storage size %d", ErrInvalidParameter, size)
	}
	if size > MaxRAMSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return &Storage{data: make([]byte, size), size: size, allocator: HeapAlloc}, nil
}

// NewSharedStorage allocates a named shared-memory segment of size bytes.
func NewSharedStorage(name string, size int) (*Storage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: storage size %d", ErrInvalidParameter, size)
	}
	if size > MaxRAMSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	r, err := shm.Create(name, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	return WrapRegion(r), nil
}

// WrapRegion takes ownership of a mapped region.
func WrapRegion(r *shm.Region) *Storage {
	return &Storage{
		data:      r.Bytes(),
		size:      r.Size(),
		allocator: SharedMemAlloc,
		context:   r,
		region:    r,
	}
}

// NewCustomStorage wraps caller memory released through release.
func NewCustomStorage(data []byte, context any, release ReleaseFunc) (*Storage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty custom storage", ErrInvalidParameter)
	}
	return &Storage{
		data:      data,
		size:      len(data),
		allocator: CustomAlloc,
		context:   context,
		release:   release,
	}, nil
}

// NewStorage builds storage from its raw parts. For SharedMemAlloc the
// context must be the *shm.Region that maps data.
func NewStorage(data []byte, context any, size int, allocator AllocatorType, release ReleaseFunc) (*Storage, error) {
	if len(data) == 0 || size <= 0 || size > len(data) {
		return nil, fmt.Errorf("%w: storage of %d bytes with size %d", ErrInvalidParameter, len(data), size)
	}
	switch allocator {
	case HeapAlloc:
		return &Storage{data: data[:size], size: size, allocator: HeapAlloc, context: context}, nil
	case CustomAlloc:
		return NewCustomStorage(data[:size], context, release)
	case SharedMemAlloc:
		r, ok := context.(*shm.Region)
		if !ok || r == nil {
			return nil, fmt.Errorf("%w: shared storage without region", ErrInvalidParameter)
		}
		s := WrapRegion(r)
		s.size = size
		s.data = s.data[:size]
		return s, nil
	default:
		return nil, fmt.Errorf("%w: allocator %v", ErrInvalidParameter, allocator)
	}
}

// Bytes returns the pixel memory, or nil once released.
func (s *Storage) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// Size returns the installed size in bytes.
func (s *Storage) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Allocator returns the release strategy tag.
func (s *Storage) Allocator() AllocatorType {
	if s == nil {
		return AllocatorDefault
	}
	return s.allocator
}

// Context returns the context supplied at installation.
func (s *Storage) Context() any {
	if s == nil {
		return nil
	}
	return s.context
}

// Region returns the shared-memory region, or nil for other allocators.
func (s *Storage) Region() *shm.Region {
	if s == nil {
		return nil
	}
	return s.region
}

// FD returns the shared-memory descriptor, or -1.
func (s *Storage) FD() int {
	if s == nil || s.region == nil {
		return -1
	}
	return s.region.FD()
}

// Released reports whether Release has run.
func (s *Storage) Released() bool {
	return s == nil || s.data == nil
}

// Release frees the memory according to the allocator tag. Calling it again
// is a no-op.
func (s *Storage) Release() error {
	if s == nil || s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil

	logging.Logger().Debug("pixelmap: release storage", "allocator", s.allocator, "size", s.size)

	switch s.allocator {
	case HeapAlloc:
		return nil
	case CustomAlloc:
		if s.release != nil {
			release := s.release
			s.release = nil
			release(data, s.context, s.size)
		}
		return nil
	case SharedMemAlloc:
		if err := s.region.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		return nil
	default:
		logging.Logger().Warn("pixelmap: unknown allocator type at release", "allocator", int32(s.allocator))
		return nil
	}
}
