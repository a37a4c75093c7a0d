package pixelmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestRegionInputErrors(t *testing.T) {
	pm := newMap(t, FormatRGBAF16, 200, 300)
	buf := make([]byte, 4*4)

	tests := []struct {
		name   string
		buf    []byte
		offset int
		stride int
		region Rect
	}{
		{"negative left", buf, 0, 8, Rect{Left: -1, Width: 2, Height: 2}},
		{"negative top", buf, 0, 8, Rect{Top: -1, Width: 2, Height: 2}},
		{"width over limit", buf, 0, 8, Rect{Width: MaxDimension + 1, Height: 2}},
		{"height over limit", buf, 0, 8, Rect{Width: 2, Height: MaxDimension + 1}},
		{"past right edge", buf, 0, 8, Rect{Left: 199, Width: 2, Height: 2}},
		{"past bottom edge", buf, 0, 8, Rect{Top: 299, Width: 2, Height: 2}},
		{"stride too small", buf, 0, 7, Rect{Width: 2, Height: 2}},
		{"buffer too small", buf, 4, 8, Rect{Width: 2, Height: 2}},
		{"negative offset", buf, -1, 8, Rect{Width: 2, Height: 2}},
		{"empty buffer", nil, 0, 8, Rect{Width: 2, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := pm.ReadPixels(tt.buf, tt.offset, tt.stride, tt.region); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("ReadPixels() error = %v, want ErrInvalidParameter", err)
			}
			if err := pm.WritePixels(tt.buf, tt.offset, tt.stride, tt.region); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("WritePixels() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestRegionRoundTrip(t *testing.T) {
	for _, f := range []PixelFormat{FormatRGBA8888, FormatARGB8888, FormatBGRA8888, FormatRGB888, FormatRGBAF16} {
		t.Run(f.String(), func(t *testing.T) {
			pm := newMap(t, f, 4, 3)
			// Two rows of two opaque pixels, 12-byte stride, 2-byte offset.
			in := make([]byte, 2+12+8)
			colors := []uint32{0xFFFF0000, 0xFF00FF00, 0xFF0000FF, 0xFFFFFFFF}
			for i, c := range colors {
				binary.LittleEndian.PutUint32(in[2+(i/2)*12+(i%2)*4:], c)
			}
			region := Rect{Left: 1, Top: 1, Width: 2, Height: 2}
			if err := pm.WritePixels(in, 2, 12, region); err != nil {
				t.Fatalf("WritePixels: %v", err)
			}

			out := make([]byte, len(in))
			if err := pm.ReadPixels(out, 2, 12, region); err != nil {
				t.Fatalf("ReadPixels: %v", err)
			}
			for i := range colors {
				off := 2 + (i/2)*12 + (i%2)*4
				if !bytes.Equal(out[off:off+4], in[off:off+4]) {
					t.Errorf("pixel %d = %v, want %v", i, out[off:off+4], in[off:off+4])
				}
			}

			c, err := pm.ReadPixel(Position{X: 0, Y: 0})
			if err != nil {
				t.Fatal(err)
			}
			if c&0x00FFFFFF != 0 {
				t.Errorf("untouched pixel = %#08x", c)
			}
		})
	}
}

func TestReadWritePixel(t *testing.T) {
	pm := newMap(t, FormatRGBA8888, 3, 3)
	if err := pm.WritePixel(Position{X: 2, Y: 1}, 0xFF112233); err != nil {
		t.Fatal(err)
	}
	if got := px(pm, 5); !bytes.Equal(got, []byte{0x11, 0x22, 0x33, 0xFF}) {
		t.Errorf("stored pixel = %v", got)
	}
	c, err := pm.ReadPixel(Position{X: 2, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	if c != 0xFF112233 {
		t.Errorf("ReadPixel = %#08x, want 0xff112233", c)
	}
	if _, err := pm.ReadPixel(Position{X: 3, Y: 0}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("out of range ReadPixel error = %v", err)
	}
}

func TestWriteRequiresEditable(t *testing.T) {
	pm := newMap(t, FormatRGBA8888, 2, 2)
	pm.SetEditable(false)
	before := append([]byte(nil), pm.Pixels()...)

	if err := pm.WritePixel(Position{}, 0xFFFFFFFF); !errors.Is(err, ErrNotAllowedToModify) {
		t.Errorf("WritePixel() error = %v", err)
	}
	if err := pm.WriteBuffer(make([]byte, pm.ByteCount())); !errors.Is(err, ErrNotAllowedToModify) {
		t.Errorf("WriteBuffer() error = %v", err)
	}
	if err := pm.FillColor(0xFFFFFFFF); !errors.Is(err, ErrNotAllowedToModify) {
		t.Errorf("FillColor() error = %v", err)
	}
	if !bytes.Equal(pm.Pixels(), before) {
		t.Error("rejected write touched the pixels")
	}
}

func TestBufferCopy(t *testing.T) {
	pm := newMap(t, FormatAlpha8, 3, 2)
	in := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	if err := pm.WriteBuffer(in); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 10)
	if err := pm.ReadBuffer(out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[:8], in) {
		t.Errorf("ReadBuffer = %v", out)
	}
	if err := pm.WriteBuffer(in[:7]); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("short WriteBuffer error = %v", err)
	}
	if err := pm.ReadBuffer(out[:7]); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("short ReadBuffer error = %v", err)
	}
}

func TestFillColor(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   []byte
	}{
		{FormatRGBA8888, []byte{0x11, 0x22, 0x33, 0xFF}},
		{FormatBGRA8888, []byte{0x33, 0x22, 0x11, 0xFF}},
		{FormatARGB8888, []byte{0xFF, 0x11, 0x22, 0x33}},
		{FormatRGB888, []byte{0x11, 0x22, 0x33}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			pm := newMap(t, tt.format, 3, 2)
			if err := pm.FillColor(0xFF112233); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 6; i++ {
				if got := px(pm, i); !bytes.Equal(got, tt.want) {
					t.Fatalf("pixel %d = %v, want %v", i, got, tt.want)
				}
			}
		})
	}

	nv := newMap(t, FormatNV21, 2, 2)
	if err := nv.FillColor(0xFFFFFFFF); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NV21 FillColor error = %v", err)
	}
}
