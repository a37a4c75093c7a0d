package postproc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/pixelmap"
)

// numbered returns a w×h RGBA_8888 map whose pixel i is {i, 2i, 3i, 255}.
func numbered(t *testing.T, w, h int) *pixelmap.PixelMap {
	t.Helper()
	pm, err := pixelmap.Create(pixelmap.InitOptions{
		Size:        pixelmap.Size{Width: w, Height: h},
		PixelFormat: pixelmap.FormatRGBA8888,
		AlphaType:   pixelmap.AlphaPremul,
		Editable:    true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = pm.Release() })
	data := pm.Pixels()
	for i := 0; i < w*h; i++ {
		copy(data[i*4:], []byte{byte(i), byte(2 * i), byte(3 * i), 255})
	}
	return pm
}

func px(pm *pixelmap.PixelMap, i int) []byte {
	bpp := pm.BytesPerPixel()
	return pm.Pixels()[i*bpp : (i+1)*bpp]
}

func TestConvertProcIdentity(t *testing.T) {
	pm := numbered(t, 4, 3)
	before := &pm.Pixels()[0]

	p := &PostProc{}
	info := pm.ImageInfo()
	if err := p.ConvertProc(pixelmap.Rect{}, info, pm, info); err != nil {
		t.Fatal(err)
	}
	full := pixelmap.Rect{Width: 4, Height: 3}
	if err := p.ConvertProc(full, info, pm, info); err != nil {
		t.Fatal(err)
	}
	if &pm.Pixels()[0] != before {
		t.Error("identity conversion reallocated the pixels")
	}
}

func TestConvertProcInvalidCrop(t *testing.T) {
	pm := numbered(t, 4, 3)
	info := pm.ImageInfo()
	tests := []pixelmap.Rect{
		{Left: 3, Top: 0, Width: 2, Height: 1},
		{Left: 0, Top: 0, Width: 0, Height: 2},
		{Left: -1, Top: 0, Width: 2, Height: 2},
	}
	for _, rect := range tests {
		err := (&PostProc{}).ConvertProc(rect, info, pm, info)
		if !errors.Is(err, pixelmap.ErrCrop) {
			t.Errorf("ConvertProc(%+v) error = %v, want ErrCrop", rect, err)
		}
	}
	if pm.Size() != (pixelmap.Size{Width: 4, Height: 3}) {
		t.Errorf("failed crop changed the size to %v", pm.Size())
	}
}

func TestConvertProcCropCorners(t *testing.T) {
	tests := []struct {
		name    string
		rect    pixelmap.Rect
		convert bool
	}{
		{"top left", pixelmap.Rect{Left: 0, Top: 0, Width: 2, Height: 2}, false},
		{"top right", pixelmap.Rect{Left: 2, Top: 0, Width: 2, Height: 2}, false},
		{"bottom left", pixelmap.Rect{Left: 0, Top: 2, Width: 2, Height: 2}, false},
		{"bottom right", pixelmap.Rect{Left: 2, Top: 2, Width: 2, Height: 2}, false},
		{"top left to BGRA", pixelmap.Rect{Left: 0, Top: 0, Width: 2, Height: 2}, true},
		{"top right to BGRA", pixelmap.Rect{Left: 2, Top: 0, Width: 2, Height: 2}, true},
		{"bottom left to BGRA", pixelmap.Rect{Left: 0, Top: 2, Width: 2, Height: 2}, true},
		{"bottom right to BGRA", pixelmap.Rect{Left: 2, Top: 2, Width: 2, Height: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := numbered(t, 4, 4)
			opts := DecodeOptions{CropRect: tt.rect}
			if tt.convert {
				opts.DesiredPixelFormat = pixelmap.FormatBGRA8888
			}
			if err := DecodePostProc(pm, opts, NoChange); err != nil {
				t.Fatal(err)
			}
			if pm.Size() != tt.rect.Size() {
				t.Fatalf("size = %v, want %v", pm.Size(), tt.rect.Size())
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					i := (tt.rect.Top+y)*4 + tt.rect.Left + x
					want := []byte{byte(i), byte(2 * i), byte(3 * i), 255}
					if tt.convert {
						want[0], want[2] = want[2], want[0]
					}
					if got := px(pm, y*2+x); !bytes.Equal(got, want) {
						t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestConvertProcWholeImageToARGB(t *testing.T) {
	pm := numbered(t, 3, 2)
	opts := DecodeOptions{DesiredPixelFormat: pixelmap.FormatARGB8888}
	if err := DecodePostProc(pm, opts, NoChange); err != nil {
		t.Fatal(err)
	}
	if pm.PixelFormat() != pixelmap.FormatARGB8888 || pm.Size() != (pixelmap.Size{Width: 3, Height: 2}) {
		t.Fatalf("got %v", pm)
	}
	for i := 0; i < 6; i++ {
		want := []byte{255, byte(i), byte(2 * i), byte(3 * i)}
		if got := px(pm, i); !bytes.Equal(got, want) {
			t.Errorf("pixel %d = %v, want %v", i, got, want)
		}
	}
}

func TestConvertProcAlpha8Crop(t *testing.T) {
	pm, err := pixelmap.Create(pixelmap.InitOptions{
		Size:        pixelmap.Size{Width: 5, Height: 3},
		PixelFormat: pixelmap.FormatAlpha8,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = pm.Release() })
	src := pm.Snapshot()
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			src.Row(y)[x] = byte(10*y + x)
		}
	}

	opts := DecodeOptions{CropRect: pixelmap.Rect{Left: 1, Top: 1, Width: 3, Height: 2}}
	if err := DecodePostProc(pm, opts, NoChange); err != nil {
		t.Fatal(err)
	}
	if pm.RowStride() != 4 {
		t.Errorf("row stride = %d, want 4", pm.RowStride())
	}
	out := pm.Snapshot()
	for y, want := range [][]byte{{11, 12, 13}, {21, 22, 23}} {
		if got := out.Row(y)[:3]; !bytes.Equal(got, want) {
			t.Errorf("row %d = %v, want %v", y, got, want)
		}
	}
}

func TestDecodePostProcRotateAndResize(t *testing.T) {
	pm := numbered(t, 6, 4)
	opts := DecodeOptions{
		RotateDegrees: 90,
		DesiredSize:   pixelmap.Size{Width: 8, Height: 12},
	}
	if err := DecodePostProc(pm, opts, SizeChange); err != nil {
		t.Fatal(err)
	}
	if got, want := pm.Size(), (pixelmap.Size{Width: 8, Height: 12}); got != want {
		t.Errorf("size = %v, want %v", got, want)
	}
	if pm.AllocatorType() != pixelmap.HeapAlloc {
		t.Errorf("allocator = %v, want heap", pm.AllocatorType())
	}
}

func TestDecodePostProcCenterCrop(t *testing.T) {
	pm := numbered(t, 8, 4)
	opts := DecodeOptions{
		DesiredSize: pixelmap.Size{Width: 4, Height: 4},
		ScaleMode:   pixelmap.CenterCrop,
	}
	if err := DecodePostProc(pm, opts, SizeChange); err != nil {
		t.Fatal(err)
	}
	if got, want := pm.Size(), (pixelmap.Size{Width: 4, Height: 4}); got != want {
		t.Errorf("size = %v, want %v", got, want)
	}
	// Columns 2..5 of the source survive unscaled.
	if got, want := px(pm, 0), []byte{2, 4, 6, 255}; !bytes.Equal(got, want) {
		t.Errorf("pixel 0 = %v, want %v", got, want)
	}
}

func TestDecodePostProcDensity(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		base, fit   int
		wantW       int
		wantH       int
		wantDensity int
	}{
		{"double", 10, 6, 160, 320, 20, 12, 320},
		{"rounded down scale", 10, 5, 320, 240, 8, 4, 240},
		{"no base density", 10, 6, 0, 320, 10, 6, 0},
		{"same density", 10, 6, 240, 240, 10, 6, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := numbered(t, tt.w, tt.h)
			pm.SetBaseDensity(tt.base)
			if err := DecodePostProc(pm, DecodeOptions{FitDensity: tt.fit}, DensityChange); err != nil {
				t.Fatal(err)
			}
			if pm.Width() != tt.wantW || pm.Height() != tt.wantH {
				t.Errorf("size = %v, want %dx%d", pm.Size(), tt.wantW, tt.wantH)
			}
			if pm.BaseDensity() != tt.wantDensity {
				t.Errorf("density = %d, want %d", pm.BaseDensity(), tt.wantDensity)
			}
		})
	}
}

func TestDecodePostProcDensityIgnoredForOtherSteps(t *testing.T) {
	pm := numbered(t, 10, 6)
	pm.SetBaseDensity(160)
	if err := DecodePostProc(pm, DecodeOptions{FitDensity: 320}, SizeChange); err != nil {
		t.Fatal(err)
	}
	if pm.Size() != (pixelmap.Size{Width: 10, Height: 6}) || pm.BaseDensity() != 160 {
		t.Errorf("got %v at density %d", pm, pm.BaseDensity())
	}
}

func TestDecodePostProcErrors(t *testing.T) {
	if err := DecodePostProc(nil, DecodeOptions{}, NoChange); !errors.Is(err, pixelmap.ErrInvalidParameter) {
		t.Errorf("nil map error = %v", err)
	}
	if err := DecodePostProc(pixelmap.New(), DecodeOptions{}, NoChange); !errors.Is(err, pixelmap.ErrInvalidParameter) {
		t.Errorf("empty map error = %v", err)
	}

	pm := numbered(t, 4, 4)
	opts := DecodeOptions{CropRect: pixelmap.Rect{Left: 2, Top: 2, Width: 4, Height: 4}, RotateDegrees: 90}
	if err := DecodePostProc(pm, opts, RotateChange); !errors.Is(err, pixelmap.ErrCrop) {
		t.Errorf("bad crop error = %v, want ErrCrop", err)
	}
	if pm.Size() != (pixelmap.Size{Width: 4, Height: 4}) {
		t.Errorf("failed pipeline changed the size to %v", pm.Size())
	}
}

func TestDstImageInfo(t *testing.T) {
	src := pixelmap.ImageInfo{
		Size:        pixelmap.Size{Width: 10, Height: 8},
		PixelFormat: pixelmap.FormatRGBA8888,
		AlphaType:   pixelmap.AlphaPremul,
		BaseDensity: 160,
	}
	got := DstImageInfo(DecodeOptions{
		CropRect:           pixelmap.Rect{Left: 1, Top: 1, Width: 4, Height: 3},
		DesiredPixelFormat: pixelmap.FormatRGB565,
	}, src)
	want := src
	want.Size = pixelmap.Size{Width: 4, Height: 3}
	want.PixelFormat = pixelmap.FormatRGB565
	want.AlphaType = pixelmap.AlphaOpaque
	if got != want {
		t.Errorf("DstImageInfo() = %+v, want %+v", got, want)
	}

	if got := DstImageInfo(DecodeOptions{}, src); got != src {
		t.Errorf("DstImageInfo() without options = %+v, want %+v", got, src)
	}
}

func TestFinalOutputStepString(t *testing.T) {
	if DensityChange.String() != "DENSITY_CHANGE" || FinalOutputStep(9).String() != "FinalOutputStep(9)" {
		t.Errorf("unexpected names %q, %q", DensityChange, FinalOutputStep(9))
	}
}

func TestConvertProcYUVCrop(t *testing.T) {
	for _, format := range []pixelmap.PixelFormat{pixelmap.FormatNV12, pixelmap.FormatNV21} {
		t.Run(format.String(), func(t *testing.T) {
			pm, err := pixelmap.Create(pixelmap.InitOptions{
				Size:        pixelmap.Size{Width: 4, Height: 4},
				PixelFormat: format,
			})
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { _ = pm.Release() })
			data := pm.Pixels()
			for i := 0; i < 16; i++ {
				data[i] = byte(i)
			}
			// 2x2 chroma pairs follow the luma plane.
			for c := 0; c < 4; c++ {
				data[16+2*c] = byte(100 + c)
				data[16+2*c+1] = byte(200 + c)
			}

			opts := DecodeOptions{CropRect: pixelmap.Rect{Left: 2, Top: 2, Width: 2, Height: 2}}
			if err := DecodePostProc(pm, opts, NoChange); err != nil {
				t.Fatal(err)
			}
			if pm.PixelFormat() != format || pm.Size() != (pixelmap.Size{Width: 2, Height: 2}) {
				t.Fatalf("got %v", pm)
			}
			if got, want := pm.Pixels()[:6], []byte{10, 11, 14, 15, 103, 203}; !bytes.Equal(got, want) {
				t.Errorf("planes = %v, want %v", got, want)
			}
		})
	}
}
