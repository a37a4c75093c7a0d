package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/pixelmap"
	"github.com/gogpu/pixelmap/postproc"
)

// writePNG saves a w×h opaque red image and returns its path.
func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	pm, err := pixelmap.Create(pixelmap.InitOptions{
		Size:     pixelmap.Size{Width: w, Height: h},
		Editable: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer pm.Release()
	if err := pm.FillColor(0xFFFF0000); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.png")
	if err := pm.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    pixelmap.Rect
		wantErr bool
	}{
		{"", pixelmap.Rect{}, false},
		{"1,2,3,4", pixelmap.Rect{Left: 1, Top: 2, Width: 3, Height: 4}, false},
		{" 0, 0, 8, 8", pixelmap.Rect{Width: 8, Height: 8}, false},
		{"1,2,3", pixelmap.Rect{}, true},
		{"a,b,c,d", pixelmap.Rect{}, true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRect(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    pixelmap.Size
		wantErr bool
	}{
		{"", pixelmap.Size{}, false},
		{"640x480", pixelmap.Size{Width: 640, Height: 480}, false},
		{"16X9", pixelmap.Size{Width: 16, Height: 9}, false},
		{"640", pixelmap.Size{}, true},
		{"0x10", pixelmap.Size{}, true},
		{"ax10", pixelmap.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatAndAlpha(t *testing.T) {
	if f, err := parseFormat("bgra_8888"); err != nil || f != pixelmap.FormatBGRA8888 {
		t.Errorf("parseFormat(bgra_8888) = %v, %v", f, err)
	}
	if _, err := parseFormat("YUV444"); err == nil {
		t.Error("parseFormat(YUV444) succeeded")
	}
	if a, err := parseAlpha("Unpremul"); err != nil || a != pixelmap.AlphaUnpremul {
		t.Errorf("parseAlpha(Unpremul) = %v, %v", a, err)
	}
	if _, err := parseAlpha("straight"); err == nil {
		t.Error("parseAlpha(straight) succeeded")
	}
}

func TestFinalStep(t *testing.T) {
	tests := []struct {
		opts postproc.DecodeOptions
		want postproc.FinalOutputStep
	}{
		{postproc.DecodeOptions{}, postproc.NoChange},
		{postproc.DecodeOptions{RotateDegrees: 90}, postproc.RotateChange},
		{postproc.DecodeOptions{RotateDegrees: 90, FitDensity: 320}, postproc.DensityChange},
		{postproc.DecodeOptions{FitDensity: 320, DesiredSize: pixelmap.Size{Width: 1, Height: 1}}, postproc.SizeChange},
	}
	for _, tt := range tests {
		if got := finalStep(tt.opts); got != tt.want {
			t.Errorf("finalStep(%+v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestRunInfo(t *testing.T) {
	path := writePNG(t, 20, 20)
	var out bytes.Buffer
	if err := runInfo([]string{path}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"20x20 RGBA_8888", "1,600 bytes (80 per row)", "#FFFF0000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}

	if err := runInfo(nil, &out); err == nil {
		t.Error("runInfo without input succeeded")
	}
}

func TestRunTransform(t *testing.T) {
	path := writePNG(t, 8, 6)
	dst := filepath.Join(t.TempDir(), "out.png")
	var out bytes.Buffer
	args := []string{"-crop", "0,0,6,6", "-to", "BGRA_8888", "-rotate", "90", "-size", "3x3", "-o", dst, path}
	if err := runTransform(args, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "out: 3x3 BGRA_8888") {
		t.Errorf("output = %q", out.String())
	}

	got, err := pixelmap.LoadImage(dst, pixelmap.InitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer got.Release()
	if got.Size() != (pixelmap.Size{Width: 3, Height: 3}) {
		t.Errorf("saved size = %v", got.Size())
	}
}

func TestRunTransformErrors(t *testing.T) {
	path := writePNG(t, 4, 4)
	tests := [][]string{
		{"-crop", "2,2,4,4", path},
		{"-size", "big", path},
		{"-o", filepath.Join(t.TempDir(), "out.gif"), path},
		{},
	}
	for _, args := range tests {
		if err := runTransform(args, &bytes.Buffer{}); err == nil {
			t.Errorf("runTransform(%q) succeeded", args)
		}
	}
}

func TestRunTransformOutputFormats(t *testing.T) {
	path := writePNG(t, 6, 4)
	for _, name := range []string{"out.bmp", "out.tiff", "out.jpg"} {
		t.Run(name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), name)
			if err := runTransform([]string{"-crop", "1,1,4,2", "-o", dst, path}, &bytes.Buffer{}); err != nil {
				t.Fatal(err)
			}
			got, err := pixelmap.LoadImage(dst, pixelmap.InitOptions{})
			if err != nil {
				t.Fatal(err)
			}
			defer got.Release()
			if got.Size() != (pixelmap.Size{Width: 4, Height: 2}) {
				t.Errorf("size = %v, want 4x2", got.Size())
			}
		})
	}
}
