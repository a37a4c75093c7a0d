package postproc

import (
	"fmt"

	"github.com/gogpu/pixelmap"
)

// cropYUV copies the rect window of an NV12 or NV21 pixmap into dst of the
// same format. The luma plane is copied row by row. Each destination chroma
// pair takes the source pair covering its top-left luma sample, so odd crop
// origins keep the nearest chroma.
func cropYUV(src pixelmap.Pixmap, rect pixelmap.Rect, dst pixelmap.Pixmap) error {
	sw, sh := src.Info.Size.Width, src.Info.Size.Height
	dw, dh := rect.Width, rect.Height
	if dst.Info.Size != rect.Size() || dst.Info.PixelFormat != src.Info.PixelFormat {
		return fmt.Errorf("%w: %v %v into %v %v", pixelmap.ErrMismatchedFormat,
			src.Info.PixelFormat, rect.Size(), dst.Info.PixelFormat, dst.Info.Size)
	}
	scw, sch := (sw+1)/2, (sh+1)/2
	dcw, dch := (dw+1)/2, (dh+1)/2
	if len(src.Data) < sw*sh+2*scw*sch || len(dst.Data) < dw*dh+2*dcw*dch {
		return fmt.Errorf("%w: YUV planes do not fit the buffers", pixelmap.ErrInvalidParameter)
	}

	for y := 0; y < dh; y++ {
		s := (rect.Top+y)*sw + rect.Left
		copy(dst.Data[y*dw:y*dw+dw], src.Data[s:s+dw])
	}
	suv, duv := src.Data[sw*sh:], dst.Data[dw*dh:]
	for cy := 0; cy < dch; cy++ {
		sy := (rect.Top + 2*cy) / 2
		for cx := 0; cx < dcw; cx++ {
			sx := (rect.Left + 2*cx) / 2
			s := (sy*scw + sx) * 2
			d := (cy*dcw + cx) * 2
			copy(duv[d:d+2], suv[s:s+2])
		}
	}
	return nil
}
