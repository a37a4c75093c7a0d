// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package parcel

import (
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// maxFDs is the kernel limit on descriptors in one SCM_RIGHTS message.
const maxFDs = 253

// headerSize is the length of the frame header: data length and fd count.
const headerSize = 8

func dupFD(fd int) (int, error) {
	dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("parcel: dup fd %d: %w", fd, err)
	}
	return dup, nil
}

func closeFD(fd int) error {
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("parcel: close fd %d: %w", fd, err)
	}
	return nil
}

// Send writes p to conn. The descriptors are passed with SCM_RIGHTS along
// with the frame header; the parcel keeps its own copies until closed.
func Send(conn *net.UnixConn, p *Parcel) error {
	if p.closed {
		return ErrClosed
	}
	fds := p.FDs()
	if len(fds) > maxFDs {
		return fmt.Errorf("parcel: %d descriptors exceed limit of %d", len(fds), maxFDs)
	}
	hdr := make([]byte, headerSize)
	order.PutUint32(hdr[0:], uint32(len(p.data)))
	order.PutUint32(hdr[4:], uint32(len(fds)))

	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	if _, _, err := conn.WriteMsgUnix(hdr, oob, nil); err != nil {
		return fmt.Errorf("parcel: send header: %w", err)
	}
	if _, err := conn.Write(p.data); err != nil {
		return fmt.Errorf("parcel: send data: %w", err)
	}
	return nil
}

// Receive reads one parcel sent by Send. The returned parcel owns the
// received descriptors.
func Receive(conn *net.UnixConn) (*Parcel, error) {
	hdr := make([]byte, headerSize)
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	n, oobn, flags, _, err := conn.ReadMsgUnix(hdr, oob)
	if err != nil {
		return nil, fmt.Errorf("parcel: receive header: %w", err)
	}
	fds, err := parseRights(oob[:oobn])
	if err != nil {
		return nil, err
	}
	in := FromBytes(nil, fds)

	if flags&unix.MSG_CTRUNC != 0 {
		_ = in.Close()
		return nil, errors.New("parcel: control message truncated")
	}
	if n < headerSize {
		if _, err := io.ReadFull(conn, hdr[n:]); err != nil {
			_ = in.Close()
			return nil, fmt.Errorf("parcel: receive header: %w", err)
		}
	}
	size := order.Uint32(hdr[0:])
	want := int(order.Uint32(hdr[4:]))
	if want != len(fds) {
		_ = in.Close()
		return nil, fmt.Errorf("parcel: got %d descriptors, header announces %d", len(fds), want)
	}

	in.data = make([]byte, size)
	if _, err := io.ReadFull(conn, in.data); err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("parcel: receive data: %w", err)
	}
	return in, nil
}

func parseRights(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parcel: parse control message: %w", err)
	}
	var fds []int
	for i := range msgs {
		rights, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		fds = append(fds, rights...)
	}
	return fds, nil
}
