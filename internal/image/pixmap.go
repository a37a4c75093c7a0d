package image

import "fmt"

// Pixmap is a borrowed snapshot of pixel state: format, memory and stride.
// It never releases Data.
type Pixmap struct {
	Info      ImageInfo
	Data      []byte
	RowStride int
}

// BufferSize returns the number of bytes visible through the snapshot.
func (p Pixmap) BufferSize() int {
	return len(p.Data)
}

// Row returns the bytes of row y, or nil if y is out of range.
func (p Pixmap) Row(y int) []byte {
	if y < 0 || y >= p.Info.Size.Height {
		return nil
	}
	start := y * p.RowStride
	return p.Data[start : start+p.RowStride]
}

// Validate checks that Data covers RowStride*Height bytes and that the stride
// fits the format.
func (p Pixmap) Validate() error {
	minStride, err := RowStride(p.Info.PixelFormat, p.Info.Size.Width)
	if err != nil {
		return err
	}
	if p.Info.Size.Height <= 0 {
		return fmt.Errorf("%w: height %d", ErrInvalidParameter, p.Info.Size.Height)
	}
	if p.RowStride < minStride {
		return fmt.Errorf("%w: stride %d below %d", ErrInvalidParameter, p.RowStride, minStride)
	}
	if int64(len(p.Data)) < int64(p.RowStride)*int64(p.Info.Size.Height) {
		return fmt.Errorf("%w: %d bytes for %d rows of %d", ErrInvalidParameter, len(p.Data), p.Info.Size.Height, p.RowStride)
	}
	return nil
}

// OwnedPixmap is a Pixmap that owns its storage. Release frees the storage
// unless Detach has already handed it to a new owner, so
//
//	out, err := tr.TransformPixmap(src, alloc)
//	...
//	defer out.Release()
//	pm.SetStorage(out.Detach())
//
// never leaks on error paths.
type OwnedPixmap struct {
	Pixmap
	storage *Storage
}

// NewOwnedPixmap wraps storage as an owned snapshot with the given layout.
func NewOwnedPixmap(info ImageInfo, rowStride int, storage *Storage) *OwnedPixmap {
	return &OwnedPixmap{
		Pixmap:  Pixmap{Info: info, Data: storage.Bytes(), RowStride: rowStride},
		storage: storage,
	}
}

// Storage returns the owned storage without transferring it.
func (o *OwnedPixmap) Storage() *Storage {
	return o.storage
}

// Detach transfers ownership of the storage to the caller.
func (o *OwnedPixmap) Detach() *Storage {
	s := o.storage
	o.storage = nil
	o.Data = nil
	return s
}

// Release frees the storage if still owned.
func (o *OwnedPixmap) Release() error {
	if o == nil || o.storage == nil {
		return nil
	}
	s := o.storage
	o.storage = nil
	o.Data = nil
	return s.Release()
}
