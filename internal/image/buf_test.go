package image

import (
	"errors"
	"runtime"
	"testing"
)

func TestNewHeapStorage(t *testing.T) {
	s, err := NewHeapStorage(64)
	if err != nil {
		t.Fatalf("NewHeapStorage() error = %v", err)
	}
	if s.Allocator() != HeapAlloc || s.Size() != 64 || len(s.Bytes()) != 64 {
		t.Errorf("got allocator %v size %d len %d", s.Allocator(), s.Size(), len(s.Bytes()))
	}
	for i, v := range s.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d = %d, want zero fill", i, v)
		}
	}
	if s.FD() != -1 {
		t.Errorf("FD() = %d, want -1", s.FD())
	}

	if _, err := NewHeapStorage(0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("NewHeapStorage(0) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewHeapStorage(MaxRAMSize + 1); !errors.Is(err, ErrTooLarge) {
		t.Errorf("NewHeapStorage(max+1) error = %v, want ErrTooLarge", err)
	}
}

func TestCustomStorageReleasedOnce(t *testing.T) {
	calls := 0
	ctx := "ctx"
	data := make([]byte, 16)
	s, err := NewCustomStorage(data, ctx, func(d []byte, c any, size int) {
		calls++
		if c != ctx || size != 16 || len(d) != 16 {
			t.Errorf("release(%d bytes, %v, %d)", len(d), c, size)
		}
	})
	if err != nil {
		t.Fatalf("NewCustomStorage() error = %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("release called %d times, want 1", calls)
	}
	if !s.Released() || s.Bytes() != nil {
		t.Error("storage still holds memory after Release")
	}
}

func TestNewStorage(t *testing.T) {
	if _, err := NewStorage(nil, nil, 4, HeapAlloc, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil data error = %v", err)
	}
	if _, err := NewStorage(make([]byte, 4), nil, 8, HeapAlloc, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("size beyond data error = %v", err)
	}
	if _, err := NewStorage(make([]byte, 4), nil, 4, SharedMemAlloc, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("shared without region error = %v", err)
	}
	if _, err := NewStorage(make([]byte, 4), nil, 4, AllocatorType(42), nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown allocator error = %v", err)
	}
	s, err := NewStorage(make([]byte, 8), nil, 6, HeapAlloc, nil)
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	if len(s.Bytes()) != 6 {
		t.Errorf("len(Bytes()) = %d, want 6", len(s.Bytes()))
	}
}

func TestSharedStorage(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("shared memory requires linux")
	}
	s, err := NewSharedStorage("storage-test", 128)
	if err != nil {
		t.Fatalf("NewSharedStorage() error = %v", err)
	}
	if s.Allocator() != SharedMemAlloc || s.FD() < 0 || s.Region() == nil {
		t.Fatalf("allocator %v fd %d", s.Allocator(), s.FD())
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if s.FD() != -1 {
		t.Errorf("FD() after Release = %d, want -1", s.FD())
	}
}

func TestOwnedPixmapDetach(t *testing.T) {
	s, _ := NewHeapStorage(16)
	info := ImageInfo{Size: Size{Width: 2, Height: 2}, PixelFormat: FormatRGBA8888}
	o := NewOwnedPixmap(info, 8, s)
	if o.BufferSize() != 16 {
		t.Errorf("BufferSize() = %d, want 16", o.BufferSize())
	}
	got := o.Detach()
	if got != s {
		t.Fatal("Detach() returned different storage")
	}
	if err := o.Release(); err != nil {
		t.Fatalf("Release() after Detach error = %v", err)
	}
	if s.Released() {
		t.Error("Release() after Detach freed the detached storage")
	}
}

func TestPixmapValidate(t *testing.T) {
	info := ImageInfo{Size: Size{Width: 3, Height: 2}, PixelFormat: FormatAlpha8}
	ok := Pixmap{Info: info, Data: make([]byte, 8), RowStride: 4}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	short := Pixmap{Info: info, Data: make([]byte, 7), RowStride: 4}
	if err := short.Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("short data error = %v", err)
	}
	narrow := Pixmap{Info: info, Data: make([]byte, 8), RowStride: 3}
	if err := narrow.Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("narrow stride error = %v", err)
	}
	if row := ok.Row(1); len(row) != 4 {
		t.Errorf("Row(1) len = %d, want 4", len(row))
	}
	if ok.Row(2) != nil {
		t.Error("Row(2) should be nil")
	}
}
