package pixelmap

import (
	"errors"
	"testing"
)

func TestGetARGB32Color(t *testing.T) {
	tests := []struct {
		format PixelFormat
		bytes  []byte
		want   uint32
	}{
		{FormatRGBA8888, []byte{1, 2, 3, 4}, 0x04010203},
		{FormatBGRA8888, []byte{1, 2, 3, 4}, 0x04030201},
		{FormatARGB8888, []byte{1, 2, 3, 4}, 0x01020304},
		{FormatRGB888, []byte{1, 2, 3}, 0xFF010203},
		{FormatAlpha8, []byte{0x80}, 0x80000000},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			pm := newMap(t, tt.format, 2, 2)
			copy(px(pm, 3), tt.bytes)
			got, err := pm.GetARGB32Color(1, 1)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("GetARGB32Color = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestGetARGB32Colors(t *testing.T) {
	pm := numbered(t, 4, 2)
	dst := make([]uint32, 3)
	if err := pm.GetARGB32Colors(Position{X: 1, Y: 1}, dst); err != nil {
		t.Fatal(err)
	}
	for i, c := range dst {
		n := uint32(5 + i)
		if want := 0xFF000000 | n<<16 | (2*n)<<8 | 3*n; c != want {
			t.Errorf("color %d = %#08x, want %#08x", i, c, want)
		}
	}

	if err := pm.GetARGB32Colors(Position{X: 2, Y: 0}, dst); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("run past row end error = %v", err)
	}
	if _, err := pm.GetARGB32Color(0, 2); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("out of range error = %v", err)
	}

	nv := newMap(t, FormatNV12, 2, 2)
	if _, err := nv.GetARGB32Color(0, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NV12 error = %v", err)
	}
}
