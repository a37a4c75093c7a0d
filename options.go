package pixelmap

import (
	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/gogpu/pixelmap/internal/parallel"
)

// sharedSegmentName names shared-memory segments created for transformed pixels.
const sharedSegmentName = "pixelmap"

// TransformOption configures where a geometric operation allocates its
// result.
//
// Example:
//
//	// Keep the result in shared memory
//	err := pm.Scale(0.5, 0.5, pixelmap.WithAllocator(pixelmap.SharedMemAlloc))
//
//	// Caller-managed memory
//	err := pm.Rotate(90, pixelmap.WithAllocatorFunc(pool.Get))
type TransformOption func(*transformOptions)

// transformOptions holds optional configuration for a geometric operation.
type transformOptions struct {
	allocator AllocatorType
	alloc     AllocFunc
	pool      *WorkerPool
}

// defaultTransformOptions follows the map's current storage: shared memory
// stays shared, everything else goes to the heap.
func (pm *PixelMap) defaultTransformOptions() transformOptions {
	o := transformOptions{allocator: HeapAlloc}
	if pm.AllocatorType() == SharedMemAlloc {
		o.allocator = SharedMemAlloc
	}
	return o
}

// WithAllocator selects the storage backend of the result. HeapAlloc and
// SharedMemAlloc are supported; other values fall back to the heap.
func WithAllocator(t AllocatorType) TransformOption {
	return func(o *transformOptions) {
		o.allocator = t
	}
}

// WithAllocatorFunc supplies the storage of the result. It takes precedence
// over WithAllocator. The returned storage must hold at least size bytes;
// it is zeroed before use.
func WithAllocatorFunc(fn AllocFunc) TransformOption {
	return func(o *transformOptions) {
		o.alloc = fn
	}
}

// WorkerPool runs the row bands of large resamples. The caller owns it and
// stops its goroutines with Close.
type WorkerPool = parallel.WorkerPool

// NewWorkerPool starts a pool of workers goroutines, GOMAXPROCS when workers
// is not positive.
func NewWorkerPool(workers int) *WorkerPool {
	return parallel.NewWorkerPool(workers)
}

// WithWorkerPool resamples large results on p. Without it, large resamples
// start goroutines that finish before the operation returns. A closed pool
// is ignored.
func WithWorkerPool(p *WorkerPool) TransformOption {
	return func(o *transformOptions) {
		o.pool = p
	}
}

// allocFunc resolves the options to an allocation function. A nil result
// means the heap.
func (o transformOptions) allocFunc() AllocFunc {
	if o.alloc != nil {
		return o.alloc
	}
	if o.allocator == SharedMemAlloc {
		return func(size int) (*Storage, error) {
			return intImage.NewSharedStorage(sharedSegmentName, size)
		}
	}
	return nil
}

func (pm *PixelMap) resolveTransformOptions(opts []TransformOption) transformOptions {
	o := pm.defaultTransformOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
