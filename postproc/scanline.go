package postproc

import (
	"fmt"

	"github.com/gogpu/pixelmap"
	"github.com/gogpu/pixelmap/internal/bridge"
)

// rowState is the filter's verdict on one source row.
type rowState int

const (
	rowContributes rowState = iota
	rowNonReference
	rowLastReference
)

// scanlineFilter walks the source one row at a time and writes the rows that
// fall inside rect into dst, converting them when the formats differ.
type scanlineFilter struct {
	src     pixelmap.Pixmap
	rect    pixelmap.Rect
	dst     pixelmap.Pixmap
	convert bool
}

func newScanlineFilter(src pixelmap.Pixmap, rect pixelmap.Rect, dst pixelmap.Pixmap, convert bool) *scanlineFilter {
	return &scanlineFilter{src: src, rect: rect, dst: dst, convert: convert}
}

func (f *scanlineFilter) run() error {
	for y := 0; y < f.src.Info.Size.Height; y++ {
		state, err := f.filterLine(y)
		if err != nil {
			return fmt.Errorf("row %d: %w", y, err)
		}
		if state == rowLastReference {
			break
		}
	}
	return nil
}

func (f *scanlineFilter) filterLine(y int) (rowState, error) {
	switch {
	case y < f.rect.Top:
		return rowNonReference, nil
	case y >= f.rect.Top+f.rect.Height:
		return rowLastReference, nil
	}
	srcRow, dstRow := f.src.Row(y), f.dst.Row(y-f.rect.Top)

	if !f.convert {
		bpp := f.src.Info.PixelFormat.BytesPerPixel()
		copy(dstRow, srcRow[f.rect.Left*bpp:(f.rect.Left+f.rect.Width)*bpp])
		return rowContributes, nil
	}

	src := f.src
	src.Info.Size.Height = 1
	src.Data = srcRow
	dst := f.dst
	dst.Info.Size.Height = 1
	dst.Data = dstRow
	if err := bridge.ReadFrom(src, pixelmap.Position{X: f.rect.Left}, dst); err != nil {
		return rowContributes, err
	}
	return rowContributes, nil
}
