// Package postproc applies the post-decode pipeline to a freshly decoded
// PixelMap: crop and format conversion, then rotation, then a final resize
// either to an explicit size or to a target display density.
//
// Each stage allocates its result from the requested allocator only when it
// is the last stage that runs. Earlier stages use the heap, since a later
// stage replaces their pixels anyway.
package postproc

import (
	"fmt"
	"math"

	"github.com/gogpu/pixelmap"
	"github.com/gogpu/pixelmap/internal/bridge"
	"github.com/gogpu/pixelmap/internal/logging"
)

// rotateEpsilon is the smallest rotation, in degrees, that is applied.
const rotateEpsilon = 1e-6

// FinalOutputStep names the last stage the caller expects to change the
// pixels.
type FinalOutputStep int

const (
	// NoChange means only crop and conversion may run.
	NoChange FinalOutputStep = iota

	// RotateChange means rotation is the last stage.
	RotateChange

	// SizeChange means resizing to DesiredSize is the last stage.
	SizeChange

	// DensityChange means resizing to FitDensity is the last stage.
	DensityChange
)

// String returns the stage name.
func (s FinalOutputStep) String() string {
	switch s {
	case NoChange:
		return "NO_CHANGE"
	case RotateChange:
		return "ROTATE_CHANGE"
	case SizeChange:
		return "SIZE_CHANGE"
	case DensityChange:
		return "DENSITY_CHANGE"
	default:
		return fmt.Sprintf("FinalOutputStep(%d)", int(s))
	}
}

// DecodeOptions describes the output a decoder was asked for.
type DecodeOptions struct {
	// CropRect selects a source region. The zero rect keeps everything.
	CropRect pixelmap.Rect

	// DesiredSize resizes the result when both dimensions are positive.
	DesiredSize pixelmap.Size

	// DesiredPixelFormat and DesiredAlphaType request a conversion. Unknown
	// keeps the source value.
	DesiredPixelFormat pixelmap.PixelFormat
	DesiredAlphaType   pixelmap.AlphaType

	// RotateDegrees turns the result around its center.
	RotateDegrees float64

	// ScaleMode selects how DesiredSize is reached.
	ScaleMode pixelmap.ScaleMode

	// FitDensity is the target density for DensityChange.
	FitDensity int

	// Allocator is the backend of the final pixels.
	Allocator pixelmap.AllocatorType
}

// DecodePostProc runs the pipeline on pm in place. step names the last stage
// the caller expects; only that stage allocates from opts.Allocator.
func DecodePostProc(pm *pixelmap.PixelMap, opts DecodeOptions, step FinalOutputStep) error {
	if pm == nil || pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels to process", pixelmap.ErrInvalidParameter)
	}
	p := &PostProc{opts: opts, step: step}

	srcInfo := pm.ImageInfo()
	dstInfo := DstImageInfo(opts, srcInfo)
	if err := p.ConvertProc(opts.CropRect, dstInfo, pm, srcInfo); err != nil {
		return fmt.Errorf("postproc: convert: %w", err)
	}

	if math.Abs(opts.RotateDegrees) > rotateEpsilon {
		if err := p.RotatePixelMap(opts.RotateDegrees, pm); err != nil {
			return fmt.Errorf("postproc: rotate: %w", err)
		}
	}

	switch {
	case !opts.DesiredSize.Empty():
		if err := p.ScalePixelMap(opts.DesiredSize, pm); err != nil {
			return fmt.Errorf("postproc: resize: %w", err)
		}
	case step == DensityChange:
		if err := p.fitDensity(pm); err != nil {
			return fmt.Errorf("postproc: density: %w", err)
		}
	}
	logging.Logger().Debug("postproc: done",
		"step", step, "size", pm.Size(), "format", pm.PixelFormat(), "allocator", pm.AllocatorType())
	return nil
}

// DstImageInfo returns the image info the convert stage produces for src:
// the crop size, or the source size when no crop applies, with the desired
// format and alpha type.
func DstImageInfo(opts DecodeOptions, src pixelmap.ImageInfo) pixelmap.ImageInfo {
	dst := src
	if pixelmap.GetCropValue(opts.CropRect, src.Size) == pixelmap.ValidCrop {
		dst.Size = opts.CropRect.Size()
	}
	if opts.DesiredPixelFormat != pixelmap.FormatUnknown {
		dst.PixelFormat = opts.DesiredPixelFormat
	}
	if opts.DesiredAlphaType != pixelmap.AlphaUnknown {
		dst.AlphaType = opts.DesiredAlphaType
	}
	dst.AlphaType = pixelmap.ValidAlphaType(dst.PixelFormat, dst.AlphaType)
	return dst
}

// PostProc runs individual pipeline stages. The zero value allocates every
// stage from the heap.
type PostProc struct {
	opts DecodeOptions
	step FinalOutputStep
}

// allocator returns the option that places the result of stage.
func (p *PostProc) allocator(stage FinalOutputStep) pixelmap.TransformOption {
	if stage == p.step && p.opts.Allocator == pixelmap.SharedMemAlloc {
		return pixelmap.WithAllocator(pixelmap.SharedMemAlloc)
	}
	return pixelmap.WithAllocator(pixelmap.HeapAlloc)
}

// ConvertProc crops pm to crop and converts it to dstInfo. It does nothing
// when there is neither a crop nor a format change, and fails with
// pixelmap.ErrCrop when crop reaches outside the image.
func (p *PostProc) ConvertProc(crop pixelmap.Rect, dstInfo pixelmap.ImageInfo, pm *pixelmap.PixelMap, srcInfo pixelmap.ImageInfo) error {
	convert := needsConvert(srcInfo, dstInfo)
	cv := pixelmap.GetCropValue(crop, srcInfo.Size)
	switch {
	case cv == pixelmap.InvalidCrop:
		return fmt.Errorf("%w: %+v outside %v", pixelmap.ErrCrop, crop, srcInfo.Size)
	case cv == pixelmap.NoCrop && !convert:
		return nil
	case cv == pixelmap.NoCrop:
		crop = pixelmap.Rect{Width: srcInfo.Size.Width, Height: srcInfo.Size.Height}
	}
	dstInfo.Size = crop.Size()

	out, err := pm.NewPixmap(dstInfo, p.allocator(NoChange))
	if err != nil {
		return err
	}
	src := pm.Snapshot()
	switch {
	case cv == pixelmap.NoCrop && dstInfo.PixelFormat == pixelmap.FormatARGB8888:
		err = bridge.Convert(src, out.Pixmap)
	case srcInfo.PixelFormat.IsYUV() && !convert:
		err = cropYUV(src, crop, out.Pixmap)
	case srcInfo.PixelFormat.IsYUV():
		err = bridge.ReadFrom(src, pixelmap.Position{X: crop.Left, Y: crop.Top}, out.Pixmap)
	default:
		err = newScanlineFilter(src, crop, out.Pixmap, convert).run()
	}
	if err != nil {
		_ = out.Release()
		return err
	}
	return pm.ReplacePixels(out)
}

func needsConvert(src, dst pixelmap.ImageInfo) bool {
	return src.PixelFormat != dst.PixelFormat || src.AlphaType != dst.AlphaType
}

// RotatePixelMap turns pm by degrees around its center.
func (p *PostProc) RotatePixelMap(degrees float64, pm *pixelmap.PixelMap) error {
	return pm.Rotate(degrees, p.allocator(RotateChange))
}

// ScalePixelMap resizes pm to size using the configured scale mode.
func (p *PostProc) ScalePixelMap(size pixelmap.Size, pm *pixelmap.PixelMap) error {
	return pm.ScaleTo(size, p.opts.ScaleMode, p.allocator(SizeChange))
}

// CenterScale scales pm uniformly to cover size and keeps the centered
// size window.
func (p *PostProc) CenterScale(size pixelmap.Size, pm *pixelmap.PixelMap) error {
	return pm.CenterScale(size, p.allocator(SizeChange))
}

// fitDensity resizes pm from its base density to FitDensity, rounding each
// dimension to the nearest pixel. A map without a base density is left as is.
func (p *PostProc) fitDensity(pm *pixelmap.PixelMap) error {
	base, fit := pm.BaseDensity(), p.opts.FitDensity
	if base <= 0 || fit <= 0 || base == fit {
		return nil
	}
	size := pixelmap.Size{
		Width:  (pm.Width()*fit + base/2) / base,
		Height: (pm.Height()*fit + base/2) / base,
	}
	if size.Empty() {
		return fmt.Errorf("%w: density %d to %d collapses %v", pixelmap.ErrInvalidParameter, base, fit, pm.Size())
	}
	if err := pm.ScaleTo(size, pixelmap.FitTargetSize, p.allocator(DensityChange)); err != nil {
		return err
	}
	pm.SetBaseDensity(fit)
	return nil
}
