package transform

import (
	"fmt"
	"math"

	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/gogpu/pixelmap/internal/logging"
	"github.com/gogpu/pixelmap/internal/parallel"
)

// ParallelPixels is the destination size from which rows are resampled in
// concurrent bands.
const ParallelPixels = 256 * 256

// Transformer accumulates affine operations and resamples pixmaps through
// them. The zero value is not ready; use NewTransformer.
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	m          Matrix
	minX, minY float64
	pool       *parallel.WorkerPool
}

// NewTransformer returns a Transformer holding the identity matrix.
func NewTransformer() *Transformer {
	return &Transformer{m: Identity()}
}

// Reset restores the identity matrix.
func (t *Transformer) Reset() {
	t.m = Identity()
	t.minX, t.minY = 0, 0
}

// Concat right-multiplies the accumulated matrix by m.
func (t *Transformer) Concat(m Matrix) {
	t.m = t.m.Multiply(m)
}

// SetScale composes a scale by (sx, sy).
func (t *Transformer) SetScale(sx, sy float64) {
	t.Concat(Scale(sx, sy))
}

// SetRotate composes a rotation by degrees around (px, py).
func (t *Transformer) SetRotate(degrees, px, py float64) {
	t.Concat(RotateAt(degrees, px, py))
}

// SetTranslate composes a translation by (tx, ty).
func (t *Transformer) SetTranslate(tx, ty float64) {
	t.Concat(Translate(tx, ty))
}

// SetWorkerPool makes large resamples run their bands on p. With a nil pool
// (the default) bands run on goroutines that live only for the call.
func (t *Transformer) SetWorkerPool(p *parallel.WorkerPool) {
	t.pool = p
}

// Matrix returns the accumulated matrix.
func (t *Transformer) Matrix() Matrix {
	return t.m
}

// DstDimension returns the canvas size needed to hold src after the
// accumulated transform.
//
// Rotation or skew projects the four source corners and takes the larger
// span of the two diagonals on each axis; the minimum projected corner is
// remembered to re-center sampling. Otherwise a scale multiplies the size by
// the absolute scale factors, and a positive translation grows the canvas by
// the offset. A negative translation leaves the canvas alone, so content
// shifted left or up is cut off.
func (t *Transformer) DstDimension(src intImage.Size) intImage.Size {
	t.minX, t.minY = 0, 0
	dst := src
	w, h := float64(src.Width), float64(src.Height)
	ops := t.m.Ops()

	if ops&OpRotate != 0 {
		ltX, ltY := t.m.TransformPoint(0, 0)
		rtX, rtY := t.m.TransformPoint(w, 0)
		lbX, lbY := t.m.TransformPoint(0, h)
		rbX, rbY := t.m.TransformPoint(w, h)

		dst.Width = roundHalfUp(math.Max(math.Abs(rbX-ltX), math.Abs(rtX-lbX)))
		dst.Height = roundHalfUp(math.Max(math.Abs(rbY-ltY), math.Abs(rtY-lbY)))
		t.minX = math.Min(math.Min(ltX, rtX), math.Min(lbX, rbX))
		t.minY = math.Min(math.Min(ltY, rtY), math.Min(lbY, rbY))
		return dst
	}

	if ops&OpScale != 0 {
		dst.Width = roundHalfUp(w * math.Abs(t.m.ScaleX()))
		dst.Height = roundHalfUp(h * math.Abs(t.m.ScaleY()))
	}
	if ops&OpTranslate != 0 {
		if tx := t.m.TransX(); tx > 0 {
			dst.Width += roundHalfUp(tx)
		}
		if ty := t.m.TransY(); ty > 0 {
			dst.Height += roundHalfUp(ty)
		}
	}
	return dst
}

// TransformPixmap resamples src into a newly allocated, zero-filled pixmap.
//
// Storage comes from alloc when it is non-nil and from the heap otherwise.
// Destination pixels whose source coordinate falls outside src stay zero.
// For a pure scale the source coordinate wraps around the image instead,
// which is what makes negative scales flip. Formats without a sampler
// (NV12, NV21, CMYK) fail with ErrUnsupportedFormat before anything is
// allocated.
func (t *Transformer) TransformPixmap(src intImage.Pixmap, alloc intImage.AllocFunc) (*intImage.OwnedPixmap, error) {
	format := src.Info.PixelFormat
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %v", intImage.ErrUnsupportedFormat, format)
	}
	sample, err := samplerFor(format)
	if err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	inv, err := t.m.Invert()
	if err != nil {
		return nil, err
	}

	size := t.DstDimension(src.Info.Size)
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: destination %dx%d", intImage.ErrAllocationFailed, size.Width, size.Height)
	}
	info := src.Info
	info.Size = size
	rowStride, byteCount, err := intImage.Layout(info)
	if err != nil {
		return nil, err
	}

	storage, err := allocate(byteCount, alloc)
	if err != nil {
		return nil, err
	}
	out := intImage.NewOwnedPixmap(info, rowStride, storage)
	out.Data = out.Data[:byteCount]
	clear(out.Data)

	logging.Logger().Debug("transform: resample",
		"src", src.Info.Size, "dst", size, "format", format, "ops", t.m.Ops())

	sw, sh := float64(src.Info.Size.Width), float64(src.Info.Size.Height)
	wrap := t.m.Ops() == OpScale
	minX, minY := t.minX, t.minY
	resample := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := out.Row(y)
			py := float64(y) + 0.5 + minY
			for x := 0; x < size.Width; x++ {
				sx, sy := inv.TransformPoint(float64(x)+0.5+minX, py)
				if wrap {
					sx, sy = wrapCoord(sx, sw), wrapCoord(sy, sh)
				}
				if sx < 0 || sy < 0 || sx >= sw || sy >= sh {
					continue
				}
				bilinear(src, bpp, sample, row[x*bpp:x*bpp+bpp], sx, sy)
			}
		}
	}
	switch {
	case size.Width*size.Height < ParallelPixels:
		resample(0, size.Height)
	case t.pool != nil && t.pool.IsRunning():
		t.pool.Rows(size.Height, resample)
	default:
		parallel.Rows(size.Height, resample)
	}
	return out, nil
}

func allocate(size int, alloc intImage.AllocFunc) (*intImage.Storage, error) {
	if alloc == nil {
		return intImage.NewHeapStorage(size)
	}
	s, err := alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", intImage.ErrAllocationFailed, err)
	}
	if s == nil || len(s.Bytes()) < size {
		if s != nil {
			_ = s.Release()
		}
		return nil, fmt.Errorf("%w: allocator returned less than %d bytes", intImage.ErrAllocationFailed, size)
	}
	return s, nil
}

// wrapCoord maps v into [0, n) with a positive modulo.
func wrapCoord(v, n float64) float64 {
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	return v
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
