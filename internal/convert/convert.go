// Package convert turns runs of packed pixels into canonical 32-bit ARGB
// samples (A<<24 | R<<16 | G<<8 | B).
//
// The 32-bit formats are read as one host-order word and split with shift
// tables. The tables are derived from a binary.ByteOrder when a Converter is
// built, so both byte orders can be exercised on any host.
package convert

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
	"math/bits"

	"github.com/x448/float16"

	intImage "github.com/gogpu/pixelmap/internal/image"
)

// ARGB packs 8-bit channels into a canonical sample.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Channels unpacks a canonical sample.
func Channels(c uint32) (a, r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Func converts len(dst) pixels from src. It fails without writing when
// len(src) is not exactly len(dst) pixels of its format.
type Func func(dst []uint32, src []byte) error

// shifts holds the bit offset of each channel inside a host-order word.
type shifts struct {
	a, r, g, b uint
}

// bytePos lists the memory position of each channel inside a 4-byte pixel.
type bytePos struct {
	a, r, g, b int
}

// shiftsFor probes order with a single 0xFF byte per channel position.
func shiftsFor(order binary.ByteOrder, pos bytePos) shifts {
	probe := func(i int) uint {
		var buf [4]byte
		buf[i] = 0xFF
		return uint(bits.TrailingZeros32(order.Uint32(buf[:])))
	}
	return shifts{a: probe(pos.a), r: probe(pos.r), g: probe(pos.g), b: probe(pos.b)}
}

// Converter binds conversion functions to one byte order.
type Converter struct {
	order binary.ByteOrder
	argb  shifts
	rgba  shifts
	bgra  shifts
}

// New builds a converter for pixels stored in the given byte order.
func New(order binary.ByteOrder) *Converter {
	return &Converter{
		order: order,
		argb:  shiftsFor(order, bytePos{a: 0, r: 1, g: 2, b: 3}),
		rgba:  shiftsFor(order, bytePos{r: 0, g: 1, b: 2, a: 3}),
		bgra:  shiftsFor(order, bytePos{b: 0, g: 1, r: 2, a: 3}),
	}
}

var native = New(binary.NativeEndian)

// Native returns the converter for the host byte order.
func Native() *Converter { return native }

// Lookup returns the converter for format. Planar YUV and unknown formats
// have none.
func (c *Converter) Lookup(format intImage.PixelFormat) (Func, bool) {
	switch format {
	case intImage.FormatAlpha8:
		return c.alpha8, true
	case intImage.FormatRGB565:
		return c.rgb565, true
	case intImage.FormatRGB888:
		return c.rgb888, true
	case intImage.FormatARGB8888:
		return c.word(c.argb), true
	case intImage.FormatRGBA8888:
		return c.word(c.rgba), true
	case intImage.FormatBGRA8888:
		return c.word(c.bgra), true
	case intImage.FormatRGBAF16:
		return c.rgbaF16, true
	case intImage.FormatCMYK:
		return c.cmyk, true
	default:
		return nil, false
	}
}

// Convert converts src pixels of format into dst.
func (c *Converter) Convert(format intImage.PixelFormat, dst []uint32, src []byte) error {
	fn, ok := c.Lookup(format)
	if !ok {
		return fmt.Errorf("%w: no color converter for %v", intImage.ErrUnsupportedFormat, format)
	}
	return fn(dst, src)
}

func checkRun(dst []uint32, src []byte, bpp int) error {
	if len(src) != len(dst)*bpp {
		return fmt.Errorf("%w: %d input bytes for %d samples of %d bytes",
			intImage.ErrInvalidParameter, len(src), len(dst), bpp)
	}
	return nil
}

func (c *Converter) alpha8(dst []uint32, src []byte) error {
	if err := checkRun(dst, src, 1); err != nil {
		return err
	}
	for i, a := range src {
		dst[i] = uint32(a) << 24
	}
	return nil
}

// expand widens an n-bit channel to 8 bits by replicating its top bits.
func expand(v uint16, n uint) uint8 {
	return uint8(v<<(8-n) | v>>(2*n-8))
}

func (c *Converter) rgb565(dst []uint32, src []byte) error {
	if err := checkRun(dst, src, 2); err != nil {
		return err
	}
	for i := range dst {
		v := c.order.Uint16(src[i*2:])
		r := expand(v>>11&0x1F, 5)
		g := expand(v>>5&0x3F, 6)
		b := expand(v&0x1F, 5)
		dst[i] = ARGB(0xFF, r, g, b)
	}
	return nil
}

func (c *Converter) rgb888(dst []uint32, src []byte) error {
	if err := checkRun(dst, src, 3); err != nil {
		return err
	}
	for i := range dst {
		p := src[i*3 : i*3+3]
		dst[i] = ARGB(0xFF, p[0], p[1], p[2])
	}
	return nil
}

func (c *Converter) word(s shifts) Func {
	return func(dst []uint32, src []byte) error {
		if err := checkRun(dst, src, 4); err != nil {
			return err
		}
		for i := range dst {
			v := c.order.Uint32(src[i*4:])
			dst[i] = ARGB(uint8(v>>s.a), uint8(v>>s.r), uint8(v>>s.g), uint8(v>>s.b))
		}
		return nil
	}
}

func (c *Converter) rgbaF16(dst []uint32, src []byte) error {
	if err := checkRun(dst, src, 8); err != nil {
		return err
	}
	for i := range dst {
		p := src[i*8:]
		r := HalfToU8(c.order.Uint16(p[0:]))
		g := HalfToU8(c.order.Uint16(p[2:]))
		b := HalfToU8(c.order.Uint16(p[4:]))
		a := HalfToU8(c.order.Uint16(p[6:]))
		dst[i] = ARGB(a, r, g, b)
	}
	return nil
}

func (c *Converter) cmyk(dst []uint32, src []byte) error {
	if err := checkRun(dst, src, 4); err != nil {
		return err
	}
	for i := range dst {
		p := src[i*4 : i*4+4]
		r, g, b := color.CMYKToRGB(p[0], p[1], p[2], p[3])
		dst[i] = ARGB(0xFF, r, g, b)
	}
	return nil
}

// HalfToU8 maps a half-float lane in [0,1] to [0,255] with rounding.
func HalfToU8(h uint16) uint8 {
	return clampAndRound(float16.Frombits(h).Float32())
}

// U8ToHalf maps [0,255] to a half-float lane in [0,1].
func U8ToHalf(v uint8) uint16 {
	return float16.Fromfloat32(float32(v) / 255.0).Bits()
}

// clampAndRound clamps a float32 to [0,1] and converts to uint8 with rounding.
func clampAndRound(v float32) uint8 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
