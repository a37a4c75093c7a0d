package pixelmap

import "fmt"

// GetARGB32Color returns the pixel at (x, y) as canonical ARGB
// (A<<24 | R<<16 | G<<8 | B). Channels are reported as stored, with no
// alpha conversion.
func (pm *PixelMap) GetARGB32Color(x, y int) (uint32, error) {
	var c [1]uint32
	if err := pm.GetARGB32Colors(Position{X: x, Y: y}, c[:]); err != nil {
		return 0, err
	}
	return c[0], nil
}

// GetARGB32Colors converts len(dst) pixels of one row, starting at pos, to
// canonical ARGB.
func (pm *PixelMap) GetARGB32Colors(pos Position, dst []uint32) error {
	if pm.IsEmpty() {
		return fmt.Errorf("%w: no pixels installed", ErrInvalidParameter)
	}
	if pm.colorProc == nil {
		return fmt.Errorf("%w: no color converter for %v", ErrUnsupportedFormat, pm.info.PixelFormat)
	}
	w, h := pm.info.Size.Width, pm.info.Size.Height
	if pos.X < 0 || pos.Y < 0 || pos.X >= w || pos.Y >= h || len(dst) == 0 || len(dst) > w-pos.X {
		return fmt.Errorf("%w: %d pixels at (%d,%d) in %dx%d", ErrInvalidParameter, len(dst), pos.X, pos.Y, w, h)
	}
	row := pm.rowBytes(pos.Y)
	return pm.colorProc(dst, row[pos.X*pm.bpp:(pos.X+len(dst))*pm.bpp])
}
