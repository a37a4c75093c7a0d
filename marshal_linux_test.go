//go:build linux

package pixelmap

import (
	"bytes"
	"net"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/gogpu/pixelmap/parcel"
)

// socketPair returns two connected Unix stream sockets.
func socketPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	conn := func(fd int, name string) *net.UnixConn {
		f := os.NewFile(uintptr(fd), name)
		defer f.Close()
		c, err := net.FileConn(f)
		if err != nil {
			t.Fatalf("FileConn: %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
		return c.(*net.UnixConn)
	}
	return conn(fds[0], "sender"), conn(fds[1], "receiver")
}

// transfer marshals pm, moves it across a socket pair and unmarshals it.
func transfer(t *testing.T, pm *PixelMap) *PixelMap {
	t.Helper()
	a, b := socketPair(t)

	out := parcel.New()
	if err := pm.Marshal(out); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	defer out.Close()

	errc := make(chan error, 1)
	go func() { errc <- parcel.Send(a, out) }()

	in, err := parcel.Receive(b)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	defer in.Close()
	if err := <-errc; err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, err := Unmarshal(in)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	t.Cleanup(func() { _ = got.Release() })
	return got
}

func TestMarshalTransitSegment(t *testing.T) {
	pm := newMap(t, FormatRGBA8888, 200, 100)
	for i := range pm.Pixels() {
		pm.Pixels()[i] = byte(i * 7)
	}
	if pm.ByteCount() <= MinImageDataSize {
		t.Fatalf("payload of %d bytes would travel inline", pm.ByteCount())
	}

	p := parcel.New()
	if err := pm.Marshal(p); err != nil {
		t.Fatal(err)
	}
	if len(p.FDs()) != 1 || p.Len() != 8*4 {
		t.Errorf("transit parcel: %d descriptors, %d bytes", len(p.FDs()), p.Len())
	}
	_ = p.Close()

	got := transfer(t, pm)
	if got.ImageInfo() != pm.ImageInfo() || got.AllocatorType() != HeapAlloc {
		t.Errorf("got %v", got)
	}
	if !bytes.Equal(got.Pixels(), pm.Pixels()) {
		t.Error("pixels differ")
	}
}

func sharedMap(t *testing.T, w, h int) *PixelMap {
	t.Helper()
	pm := numbered(t, w, h)
	s, err := NewSharedStorage("pixelmap-test", pm.ByteCount())
	if err != nil {
		t.Fatalf("NewSharedStorage: %v", err)
	}
	copy(s.Bytes(), pm.Pixels())
	if err := pm.SetStorage(s); err != nil {
		t.Fatal(err)
	}
	return pm
}

func TestMarshalSharedMemory(t *testing.T) {
	pm := sharedMap(t, 5, 3)
	pm.SetBaseDensity(240)

	got := transfer(t, pm)
	if got.AllocatorType() != SharedMemAlloc {
		t.Fatalf("allocator = %v, want SHARE_MEM_ALLOC", got.AllocatorType())
	}
	if got.FD() < 0 || got.FD() == pm.FD() {
		t.Errorf("receiver fd = %d, sender fd = %d", got.FD(), pm.FD())
	}
	if got.ImageInfo() != pm.ImageInfo() || !bytes.Equal(got.Pixels(), pm.Pixels()) {
		t.Error("round trip changed the map")
	}

	// Both sides map the same pages.
	pm.Pixels()[0] = 0xAB
	if got.Pixels()[0] != 0xAB {
		t.Error("receiver does not share the sender's memory")
	}

	if err := pm.Release(); err != nil {
		t.Fatalf("sender Release: %v", err)
	}
	if got.Pixels()[0] != 0xAB {
		t.Error("receiver mapping changed after sender release")
	}
}

func TestTransformSharedAllocator(t *testing.T) {
	pm := numbered(t, 3, 4)
	if err := pm.Scale(2, 2, WithAllocator(SharedMemAlloc)); err != nil {
		t.Fatal(err)
	}
	if pm.AllocatorType() != SharedMemAlloc || pm.FD() < 0 {
		t.Fatalf("allocator = %v, fd = %d", pm.AllocatorType(), pm.FD())
	}

	// Shared maps stay shared by default.
	if err := pm.Rotate(90); err != nil {
		t.Fatal(err)
	}
	if pm.AllocatorType() != SharedMemAlloc {
		t.Errorf("allocator after rotate = %v", pm.AllocatorType())
	}
}
