package bridge

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/x448/float16"
	"golang.org/x/image/draw"

	intImage "github.com/gogpu/pixelmap/internal/image"
)

// hostOrder is the byte order of RGB_565 words and half-float lanes.
var hostOrder = binary.NativeEndian

// lanes8 is a library image with 4 bytes per pixel in R, G, B, A order.
type lanes8 struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	img    draw.Image
}

func newLanes8(r image.Rectangle, premul bool) lanes8 {
	if premul {
		m := image.NewRGBA(r)
		return lanes8{pix: m.Pix, stride: m.Stride, rect: r, img: m}
	}
	m := image.NewNRGBA(r)
	return lanes8{pix: m.Pix, stride: m.Stride, rect: r, img: m}
}

func (l lanes8) at(x, y int) []byte {
	o := (y-l.rect.Min.Y)*l.stride + (x-l.rect.Min.X)*4
	return l.pix[o : o+4 : o+4]
}

// lanes16 is a library image with big-endian 16-bit R, G, B, A lanes.
type lanes16 struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	img    draw.Image
}

func newLanes16(r image.Rectangle, premul bool) lanes16 {
	if premul {
		m := image.NewRGBA64(r)
		return lanes16{pix: m.Pix, stride: m.Stride, rect: r, img: m}
	}
	m := image.NewNRGBA64(r)
	return lanes16{pix: m.Pix, stride: m.Stride, rect: r, img: m}
}

func (l lanes16) at(x, y int) []byte {
	o := (y-l.rect.Min.Y)*l.stride + (x-l.rect.Min.X)*8
	return l.pix[o : o+8 : o+8]
}

// unpack8 writes one native pixel s as RGBA lanes into d.
type unpack8 func(d, s []byte)

// pack8 writes RGBA lanes s as one native pixel into d.
type pack8 func(d, s []byte)

func unpacker(f intImage.PixelFormat) (unpack8, bool) {
	switch f {
	case intImage.FormatBGRA8888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3] }, true
	case intImage.FormatARGB8888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = s[1], s[2], s[3], s[0] }, true
	case intImage.FormatRGB888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xFF }, true
	case intImage.FormatRGB565:
		return func(d, s []byte) {
			v := hostOrder.Uint16(s)
			d[0] = expand(v>>11&0x1F, 5)
			d[1] = expand(v>>5&0x3F, 6)
			d[2] = expand(v&0x1F, 5)
			d[3] = 0xFF
		}, true
	default:
		return nil, false
	}
}

func packer(f intImage.PixelFormat) (pack8, bool) {
	switch f {
	case intImage.FormatBGRA8888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3] }, true
	case intImage.FormatARGB8888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = s[3], s[0], s[1], s[2] }, true
	case intImage.FormatRGB888:
		return func(d, s []byte) { d[0], d[1], d[2] = s[0], s[1], s[2] }, true
	case intImage.FormatRGB565:
		return func(d, s []byte) {
			v := uint16(s[0]>>3)<<11 | uint16(s[1]>>2)<<5 | uint16(s[2]>>3)
			hostOrder.PutUint16(d, v)
		}, true
	default:
		return nil, false
	}
}

// expand widens an n-bit channel to 8 bits by replicating its top bits.
func expand(v uint16, n uint) uint8 {
	return uint8(v<<(8-n) | v>>(2*n-8))
}

// source returns a library image whose region r holds the pixels of p.
func source(p intImage.Pixmap, r image.Rectangle) (image.Image, error) {
	info := p.Info
	switch info.PixelFormat {
	case intImage.FormatRGBA8888:
		if premultiplied(info.AlphaType) {
			return &image.RGBA{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, nil
		}
		return &image.NRGBA{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, nil
	case intImage.FormatAlpha8:
		return &image.Alpha{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, nil
	case intImage.FormatCMYK:
		return &image.CMYK{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, nil
	case intImage.FormatRGBAF16:
		l := newLanes16(r, premultiplied(info.AlphaType))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := p.Row(y)
			for x := r.Min.X; x < r.Max.X; x++ {
				d, s := l.at(x, y), row[x*8:x*8+8]
				for c := 0; c < 4; c++ {
					v := halfToU16(hostOrder.Uint16(s[c*2:]))
					d[c*2], d[c*2+1] = uint8(v>>8), uint8(v)
				}
			}
		}
		return l.img, nil
	case intImage.FormatNV21, intImage.FormatNV12:
		return yuv(p)
	}

	unpack, ok := unpacker(info.PixelFormat)
	if !ok {
		return nil, fmt.Errorf("%w: cannot read %v", intImage.ErrUnsupportedFormat, info.PixelFormat)
	}
	bpp := info.PixelFormat.BytesPerPixel()
	l := newLanes8(r, premultiplied(info.AlphaType))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.Row(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			unpack(l.at(x, y), row[x*bpp:x*bpp+bpp])
		}
	}
	return l.img, nil
}

// target returns a library image to draw region r of p into, and a commit
// function that stores the drawn pixels back into p's memory.
func target(p intImage.Pixmap, r image.Rectangle) (draw.Image, func(), error) {
	info := p.Info
	noop := func() {}
	switch info.PixelFormat {
	case intImage.FormatRGBA8888:
		if premultiplied(info.AlphaType) {
			return &image.RGBA{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, noop, nil
		}
		return &image.NRGBA{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, noop, nil
	case intImage.FormatAlpha8:
		return &image.Alpha{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, noop, nil
	case intImage.FormatCMYK:
		return &image.CMYK{Pix: p.Data, Stride: p.RowStride, Rect: bounds(p)}, noop, nil
	case intImage.FormatRGBAF16:
		l := newLanes16(r, premultiplied(info.AlphaType))
		commit := func() {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				row := p.Row(y)
				for x := r.Min.X; x < r.Max.X; x++ {
					s, d := l.at(x, y), row[x*8:x*8+8]
					for c := 0; c < 4; c++ {
						v := uint16(s[c*2])<<8 | uint16(s[c*2+1])
						hostOrder.PutUint16(d[c*2:], u16ToHalf(v))
					}
				}
			}
		}
		return l.img, commit, nil
	}

	pack, ok := packer(info.PixelFormat)
	if !ok {
		return nil, nil, fmt.Errorf("%w: cannot write %v", intImage.ErrUnsupportedFormat, info.PixelFormat)
	}
	bpp := info.PixelFormat.BytesPerPixel()
	l := newLanes8(r, premultiplied(info.AlphaType))
	commit := func() {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := p.Row(y)
			for x := r.Min.X; x < r.Max.X; x++ {
				pack(row[x*bpp:x*bpp+bpp], l.at(x, y))
			}
		}
	}
	return l.img, commit, nil
}

// yuv reads an NV12/NV21 buffer: a tightly packed Y plane of width*height
// bytes followed by one interleaved chroma plane at half resolution.
func yuv(p intImage.Pixmap) (image.Image, error) {
	w, h := p.Info.Size.Width, p.Info.Size.Height
	cw, ch := (w+1)/2, (h+1)/2
	if len(p.Data) < w*h+2*cw*ch {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d YUV", intImage.ErrInvalidParameter, len(p.Data), w, h)
	}
	m := image.NewYCbCr(bounds(p), image.YCbCrSubsampleRatio420)
	for y := 0; y < h; y++ {
		copy(m.Y[y*m.YStride:y*m.YStride+w], p.Data[y*w:y*w+w])
	}
	uv := p.Data[w*h:]
	vFirst := p.Info.PixelFormat == intImage.FormatNV21
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			i := (cy*cw + cx) * 2
			u, v := uv[i], uv[i+1]
			if vFirst {
				u, v = v, u
			}
			m.Cb[cy*m.CStride+cx] = u
			m.Cr[cy*m.CStride+cx] = v
		}
	}
	return m, nil
}

func halfToU16(h uint16) uint16 {
	f := float16.Frombits(h).Float32()
	if f <= 0 || math.IsNaN(float64(f)) {
		return 0
	}
	if f >= 1 {
		return 0xFFFF
	}
	return uint16(f*0xFFFF + 0.5)
}

func u16ToHalf(v uint16) uint16 {
	return float16.Fromfloat32(float32(v) / 0xFFFF).Bits()
}
