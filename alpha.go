package pixelmap

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// halfAlphaEpsilon is the smallest half-float alpha treated as non-zero when
// premultiplied channels are rescaled.
const halfAlphaEpsilon = 1e-3

// SetAlpha replaces the alpha of every pixel with percent, in (0, 1].
//
// Premultiplied color channels are rescaled so that the unpremultiplied color
// is kept. Only formats with an alpha channel and a non-opaque alpha type are
// accepted.
func (pm *PixelMap) SetAlpha(percent float64) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	format := pm.info.PixelFormat
	switch pm.info.AlphaType {
	case AlphaOpaque, AlphaUnknown:
		return fmt.Errorf("%w: set alpha on %v pixels", ErrUnsupportedFormat, pm.info.AlphaType)
	}
	switch format {
	case FormatARGB8888, FormatRGBA8888, FormatBGRA8888, FormatAlpha8, FormatRGBAF16:
	default:
		return fmt.Errorf("%w: set alpha on %v", ErrUnsupportedFormat, format)
	}
	if !(percent > 0 && percent <= 1) {
		return fmt.Errorf("%w: alpha percent %v", ErrInvalidParameter, percent)
	}

	premul := pm.info.AlphaType == AlphaPremul
	if format == FormatRGBAF16 {
		pm.setAlphaHalf(float32(percent), premul)
		return nil
	}

	newAlpha := uint8(math.Round(255 * percent))
	off := format.AlphaOffset()
	bpp := pm.bpp
	for y := 0; y < pm.info.Size.Height; y++ {
		row := pm.rowBytes(y)
		for x := 0; x+bpp <= len(row); x += bpp {
			px := row[x : x+bpp]
			if premul && bpp > 1 {
				oldAlpha := px[off]
				for c := range px {
					if c == off {
						continue
					}
					px[c] = rescale(px[c], oldAlpha, percent)
				}
			}
			px[off] = newAlpha
		}
	}
	return nil
}

// rescale turns a channel premultiplied by alpha into one premultiplied by
// 255*percent.
func rescale(channel, alpha uint8, percent float64) uint8 {
	if alpha == 0 {
		return 0
	}
	v := math.Round(float64(channel) * 255 * percent / float64(alpha))
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (pm *PixelMap) setAlphaHalf(percent float32, premul bool) {
	order := binary.NativeEndian
	newAlpha := float16.Fromfloat32(percent).Bits()
	for y := 0; y < pm.info.Size.Height; y++ {
		row := pm.rowBytes(y)
		for x := 0; x+8 <= len(row); x += 8 {
			px := row[x : x+8]
			if premul {
				oldAlpha := float16.Frombits(order.Uint16(px[6:])).Float32()
				for c := 0; c < 3; c++ {
					var v float32
					if oldAlpha > halfAlphaEpsilon {
						v = float16.Frombits(order.Uint16(px[c*2:])).Float32() * percent / oldAlpha
					}
					order.PutUint16(px[c*2:], float16.Fromfloat32(v).Bits())
				}
			}
			order.PutUint16(px[6:], newAlpha)
		}
	}
}

// rowBytes returns the Width*bpp bytes of row y, without stride padding.
func (pm *PixelMap) rowBytes(y int) []byte {
	start := y * pm.rowStride
	return pm.Pixels()[start : start+pm.info.Size.Width*pm.bpp]
}
