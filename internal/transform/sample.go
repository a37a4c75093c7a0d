package transform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	intImage "github.com/gogpu/pixelmap/internal/image"
)

// Fixed-point constants for 16.16 coordinates.
const (
	FDot16One  = 1 << 16
	FDot16Half = 1 << 15
	fdot16Mask = FDot16One - 1
)

// fdot16 is a 16.16 fixed-point value. It is 64 bits wide so coordinates of
// the widest allowed rows cannot overflow.
type fdot16 int64

// toFDot16 converts a pixel-space coordinate to fixed point biased by half a
// pixel, so that the integer part selects the top-left neighbor.
func toFDot16(v float64) fdot16 {
	return fdot16(math.Round(v*FDot16One)) - FDot16Half
}

// sampleFunc writes into dst the bilinear blend of four neighboring pixels
// with fractional weights fx, fy in [0, FDot16One).
type sampleFunc func(dst, p00, p10, p01, p11 []byte, fx, fy uint64)

// samplerFor returns the sampler for format. NV12, NV21, CMYK and unknown
// formats have no sampler.
func samplerFor(format intImage.PixelFormat) (sampleFunc, error) {
	switch format {
	case intImage.FormatARGB8888, intImage.FormatRGBA8888, intImage.FormatBGRA8888,
		intImage.FormatRGB888, intImage.FormatAlpha8:
		return sampleBytes, nil
	case intImage.FormatRGB565:
		return sample565, nil
	case intImage.FormatRGBAF16:
		return sampleHalf, nil
	default:
		return nil, fmt.Errorf("%w: cannot resample %v", intImage.ErrUnsupportedFormat, format)
	}
}

// blend interpolates four 8-bit samples. The result is rounded to nearest.
func blend(v00, v10, v01, v11, fx, fy uint64) uint64 {
	top := v00*(FDot16One-fx) + v10*fx
	bottom := v01*(FDot16One-fx) + v11*fx
	return (top*(FDot16One-fy) + bottom*fy + 1<<31) >> 32
}

func sampleBytes(dst, p00, p10, p01, p11 []byte, fx, fy uint64) {
	for i := range dst {
		dst[i] = byte(blend(uint64(p00[i]), uint64(p10[i]), uint64(p01[i]), uint64(p11[i]), fx, fy))
	}
}

var hostOrder = binary.NativeEndian

func sample565(dst, p00, p10, p01, p11 []byte, fx, fy uint64) {
	c00, c10 := hostOrder.Uint16(p00), hostOrder.Uint16(p10)
	c01, c11 := hostOrder.Uint16(p01), hostOrder.Uint16(p11)
	var out uint16
	for _, ch := range [3]struct {
		shift uint
		mask  uint16
	}{{11, 0x1F}, {5, 0x3F}, {0, 0x1F}} {
		get := func(c uint16) uint64 { return uint64(c >> ch.shift & ch.mask) }
		v := blend(get(c00), get(c10), get(c01), get(c11), fx, fy)
		out |= uint16(v) << ch.shift
	}
	hostOrder.PutUint16(dst, out)
}

func sampleHalf(dst, p00, p10, p01, p11 []byte, fx, fy uint64) {
	tx := float64(fx) / FDot16One
	ty := float64(fy) / FDot16One
	for i := 0; i < len(dst); i += 2 {
		v := lerp2D(half(p00[i:]), half(p10[i:]), half(p01[i:]), half(p11[i:]), tx, ty)
		hostOrder.PutUint16(dst[i:], float16.Fromfloat32(float32(v)).Bits())
	}
}

func half(b []byte) float64 {
	return float64(float16.Frombits(hostOrder.Uint16(b)).Float32())
}

// clamp clamps an integer value to [minVal, maxVal].
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}

// bilinear samples src at pixel-space coordinate (x, y) into dst. The four
// neighbors are clamped to the image independently on each axis.
func bilinear(src intImage.Pixmap, bpp int, sample sampleFunc, dst []byte, x, y float64) {
	w, h := src.Info.Size.Width, src.Info.Size.Height
	fx, fy := toFDot16(x), toFDot16(y)

	x0, y0 := int(fx>>16), int(fy>>16)
	x1 := clamp(x0+1, 0, w-1)
	y1 := clamp(y0+1, 0, h-1)
	x0 = clamp(x0, 0, w-1)
	y0 = clamp(y0, 0, h-1)

	r0, r1 := src.Row(y0), src.Row(y1)
	sample(dst,
		r0[x0*bpp:x0*bpp+bpp], r0[x1*bpp:x1*bpp+bpp],
		r1[x0*bpp:x0*bpp+bpp], r1[x1*bpp:x1*bpp+bpp],
		uint64(fx&fdot16Mask), uint64(fy&fdot16Mask))
}
