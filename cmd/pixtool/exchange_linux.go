//go:build linux

package main

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/gogpu/pixelmap/parcel"
)

// exchange sends p through a connected socket pair and returns what arrives
// on the other end.
func exchange(p *parcel.Parcel) (*parcel.Parcel, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socketpair: %w", err)
	}
	a, err := unixConn(fds[0], "pixtool-sender")
	if err != nil {
		_ = unix.Close(fds[1])
		return nil, err
	}
	defer a.Close()
	b, err := unixConn(fds[1], "pixtool-receiver")
	if err != nil {
		return nil, err
	}
	defer b.Close()

	errc := make(chan error, 1)
	go func() { errc <- parcel.Send(a, p) }()

	in, err := parcel.Receive(b)
	if err != nil {
		return nil, err
	}
	if err := <-errc; err != nil {
		_ = in.Close()
		return nil, err
	}
	return in, nil
}

func unixConn(fd int, name string) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), name)
	defer f.Close()
	c, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c.(*net.UnixConn), nil
}
