package pixelmap

import (
	"fmt"
	"math"

	intImage "github.com/gogpu/pixelmap/internal/image"
	"github.com/gogpu/pixelmap/internal/logging"
	"github.com/gogpu/pixelmap/internal/transform"
)

// rotateEpsilon is the smallest rotation, in degrees, that is applied.
const rotateEpsilon = 1e-6

// Geometric operations replace the pixels in place. On failure the map keeps
// its previous pixels and metadata.

// Scale resamples the pixels by (sx, sy). Negative factors mirror the image.
// Scaling by (1, 1) does nothing.
func (pm *PixelMap) Scale(sx, sy float64, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if sx == 1 && sy == 1 {
		return nil
	}
	tr := transform.NewTransformer()
	tr.SetScale(sx, sy)
	return pm.apply(tr, opts)
}

// ScaleTo resizes the pixels to size. FitTargetSize scales each axis on its
// own; CenterCrop scales uniformly to cover size, then crops the center.
func (pm *PixelMap) ScaleTo(size Size, mode ScaleMode, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if size.Empty() {
		return fmt.Errorf("%w: target size %dx%d", ErrInvalidParameter, size.Width, size.Height)
	}
	if mode == CenterCrop {
		return pm.CenterScale(size, opts...)
	}
	sx := float64(size.Width) / float64(pm.Width())
	sy := float64(size.Height) / float64(pm.Height())
	return pm.Scale(sx, sy, opts...)
}

// Rotate turns the pixels by degrees around the image center. The canvas
// grows to hold the rotated corners.
func (pm *PixelMap) Rotate(degrees float64, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if math.Abs(math.Mod(degrees, 360)) < rotateEpsilon {
		return nil
	}
	tr := transform.NewTransformer()
	tr.SetRotate(degrees, float64(pm.Width())/2, float64(pm.Height())/2)
	return pm.apply(tr, opts)
}

// Translate shifts the pixels by (tx, ty). A positive offset grows the
// canvas; a negative one keeps its size and cuts off what moves out.
func (pm *PixelMap) Translate(tx, ty float64, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if tx == 0 && ty == 0 {
		return nil
	}
	tr := transform.NewTransformer()
	tr.SetTranslate(tx, ty)
	return pm.apply(tr, opts)
}

// Flip mirrors the pixels horizontally, vertically or both.
func (pm *PixelMap) Flip(horizontal, vertical bool, opts ...TransformOption) error {
	sx, sy := 1.0, 1.0
	if horizontal {
		sx = -1
	}
	if vertical {
		sy = -1
	}
	return pm.Scale(sx, sy, opts...)
}

// Crop keeps only rect. A rect covering the whole image, or the zero rect,
// does nothing; a rect reaching outside the image fails with ErrCrop.
func (pm *PixelMap) Crop(rect Rect, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	switch GetCropValue(rect, pm.Size()) {
	case NoCrop:
		return nil
	case InvalidCrop:
		return fmt.Errorf("%w: %+v outside %v", ErrCrop, rect, pm.Size())
	}
	if pm.info.PixelFormat.IsYUV() {
		return fmt.Errorf("%w: crop %v", ErrUnsupportedFormat, pm.info.PixelFormat)
	}
	o := pm.resolveTransformOptions(opts)
	out, err := cropPixmap(pm.Snapshot(), rect, o.allocFunc())
	if err != nil {
		return err
	}
	return pm.ReplacePixels(out)
}

// CenterScale scales the pixels uniformly until they cover size, then crops
// the centered size window.
func (pm *PixelMap) CenterScale(size Size, opts ...TransformOption) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if size.Empty() {
		return fmt.Errorf("%w: target size %dx%d", ErrInvalidParameter, size.Width, size.Height)
	}
	if pm.info.PixelFormat.IsYUV() {
		return fmt.Errorf("%w: center scale %v", ErrUnsupportedFormat, pm.info.PixelFormat)
	}
	o := pm.resolveTransformOptions(opts)
	alloc := o.allocFunc()

	scaled := &OwnedPixmap{Pixmap: pm.Snapshot()}
	scale := math.Max(float64(size.Width)/float64(pm.Width()), float64(size.Height)/float64(pm.Height()))
	if scale != 1 {
		tr := transform.NewTransformer()
		tr.SetWorkerPool(o.pool)
		tr.SetScale(scale, scale)
		var err error
		if scaled, err = tr.TransformPixmap(pm.Snapshot(), alloc); err != nil {
			return err
		}
	}
	got := scaled.Info.Size
	if got == size {
		if scale == 1 {
			return nil
		}
		return pm.ReplacePixels(scaled)
	}
	if got.Width < size.Width || got.Height < size.Height {
		_ = scaled.Release()
		return fmt.Errorf("pixelmap: center scale produced %v, smaller than %v", got, size)
	}

	rect := Rect{
		Left:   (got.Width - size.Width) / 2,
		Top:    (got.Height - size.Height) / 2,
		Width:  size.Width,
		Height: size.Height,
	}
	out, err := cropPixmap(scaled.Pixmap, rect, alloc)
	_ = scaled.Release()
	if err != nil {
		return err
	}
	return pm.ReplacePixels(out)
}

// apply resamples the pixels through tr and installs the result.
func (pm *PixelMap) apply(tr *transform.Transformer, opts []TransformOption) error {
	o := pm.resolveTransformOptions(opts)
	tr.SetWorkerPool(o.pool)
	out, err := tr.TransformPixmap(pm.Snapshot(), o.allocFunc())
	if err != nil {
		return err
	}
	logging.Logger().Debug("pixelmap: transformed",
		"ops", tr.Matrix().Ops(), "from", pm.Size(), "to", out.Info.Size)
	return pm.ReplacePixels(out)
}

// NewPixmap allocates zeroed pixels laid out for info, using the same
// allocator rules as the geometric operations. Hand the result to
// ReplacePixels or release it.
func (pm *PixelMap) NewPixmap(info ImageInfo, opts ...TransformOption) (*OwnedPixmap, error) {
	o := pm.resolveTransformOptions(opts)
	return allocPixmap(info, o.allocFunc())
}

func allocPixmap(info ImageInfo, alloc AllocFunc) (*OwnedPixmap, error) {
	rowStride, byteCount, err := intImage.Layout(info)
	if err != nil {
		return nil, err
	}
	var s *Storage
	if alloc == nil {
		s, err = intImage.NewHeapStorage(byteCount)
	} else {
		s, err = alloc(byteCount)
		if err == nil && (s == nil || len(s.Bytes()) < byteCount) {
			if s != nil {
				_ = s.Release()
			}
			err = fmt.Errorf("allocator returned less than %d bytes", byteCount)
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
	}
	if err != nil {
		return nil, err
	}
	out := intImage.NewOwnedPixmap(info, rowStride, s)
	out.Data = out.Data[:byteCount]
	clear(out.Data)
	return out, nil
}

// cropPixmap copies rect of src into newly allocated storage.
func cropPixmap(src Pixmap, rect Rect, alloc AllocFunc) (*OwnedPixmap, error) {
	info := src.Info
	info.Size = rect.Size()
	out, err := allocPixmap(info, alloc)
	if err != nil {
		return nil, err
	}
	if err := copyRect(src, rect, out.Pixmap); err != nil {
		_ = out.Release()
		return nil, err
	}
	return out, nil
}
