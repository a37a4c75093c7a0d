// Package pixelmap provides an in-memory pixel buffer with format conversion,
// geometric transforms and cross-process transfer.
//
// # Overview
//
// A PixelMap owns raw pixel memory together with the metadata describing it:
// size, pixel format, alpha type, color space and base density. The memory
// comes from one of three backends (heap, caller-supplied memory with a
// release callback, or a shared-memory segment addressed by a file
// descriptor) and is always released through the backend it came from.
//
// # Quick Start
//
//	import "github.com/gogpu/pixelmap"
//
//	// A 640x480 editable RGBA_8888 map
//	pm, err := pixelmap.Create(pixelmap.InitOptions{
//		Size:     pixelmap.Size{Width: 640, Height: 480},
//		Editable: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer pm.Release()
//
//	pm.FillColor(0xFF336699)
//	pm.Rotate(90)
//	pm.SavePNG("output.png")
//
// # Formats
//
// Supported formats are ARGB_8888, RGBA_8888, BGRA_8888, RGB_565, RGB_888,
// ALPHA_8, RGBA_F16, NV21, NV12 and CMYK. Rows are tightly packed except for
// ALPHA_8, whose rows are padded to a multiple of four pixels. NV12 and NV21
// can be read and converted from but not resampled or written through region
// I/O.
//
// Region I/O (ReadPixels, WritePixels, ReadPixel, WritePixel) always
// exchanges BGRA_8888 with the map's alpha type and converts on the fly.
//
// # Transforms
//
// Scale, ScaleTo, Rotate, Translate, Flip, Crop and CenterScale replace the
// pixels in place through an affine resampler with bilinear filtering. The
// canvas grows to hold rotated corners and positive translations. Options
// choose the allocator of the result. Large results are resampled in row
// bands on goroutines that finish before the call returns, or on a
// WorkerPool passed with WithWorkerPool.
//
// Package postproc chains crop, conversion, rotation and resizing after a
// decode, the way an image loader prepares its final output.
//
// # Cross-Process Transfer
//
// Marshal and Unmarshal move a map through a parcel.Parcel. Shared-memory
// maps travel as a duplicated descriptor; heap maps travel inline when small
// and through a transit segment otherwise.
//
// # Thread Safety
//
// A PixelMap is not safe for concurrent mutation. Concurrent readers are fine
// while no goroutine mutates the map.
//
// # Logging
//
// The package is silent by default. SetLogger installs a *slog.Logger that
// receives allocation and teardown diagnostics.
package pixelmap
