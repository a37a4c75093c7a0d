// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parcel implements a flat message container for moving values and
// file descriptors between processes.
//
// A Parcel is a byte stream of host-byte-order 32-bit fields and 4-byte
// padded buffers, plus a list of file descriptors that travel out of band.
// Descriptors written into a parcel are always duplicated, so the writer and
// the parcel (and later the receiver) each own an independent handle. Send
// and Receive move a parcel over a Unix domain socket, passing descriptors
// with SCM_RIGHTS.
//
// A Parcel is not safe for concurrent use.
package parcel

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors reported by parcel operations.
var (
	// ErrShortRead is returned when a read runs past the end of the data.
	ErrShortRead = errors.New("parcel: read past end of data")

	// ErrNoFD is returned when ReadFD finds no descriptor left.
	ErrNoFD = errors.New("parcel: no file descriptor left")

	// ErrUnsupported is returned where descriptor passing is unavailable.
	ErrUnsupported = errors.New("parcel: file descriptors not supported on this platform")

	// ErrClosed is returned when using a closed parcel.
	ErrClosed = errors.New("parcel: closed")
)

var order = binary.NativeEndian

// Parcel is a message under construction or being read.
type Parcel struct {
	data   []byte
	pos    int
	fds    []int
	fdPos  int
	closed bool
}

// New returns an empty parcel for writing.
func New() *Parcel {
	return &Parcel{}
}

// FromBytes returns a parcel for reading data. The parcel takes ownership of
// fds and closes the ones not claimed through ReadFD when it is closed.
func FromBytes(data []byte, fds []int) *Parcel {
	return &Parcel{data: data, fds: fds}
}

// Bytes returns the serialized fields.
func (p *Parcel) Bytes() []byte {
	return p.data
}

// FDs returns the descriptors owned by the parcel, in write order.
func (p *Parcel) FDs() []int {
	return p.fds[p.fdPos:]
}

// Len returns the number of data bytes.
func (p *Parcel) Len() int {
	return len(p.data)
}

// Remaining returns the number of unread data bytes.
func (p *Parcel) Remaining() int {
	return len(p.data) - p.pos
}

// WriteInt32 appends v in host byte order.
func (p *Parcel) WriteInt32(v int32) {
	p.data = order.AppendUint32(p.data, uint32(v))
}

// ReadInt32 reads the next 32-bit field.
func (p *Parcel) ReadInt32() (int32, error) {
	if p.Remaining() < 4 {
		return 0, fmt.Errorf("%w: int32 at offset %d", ErrShortRead, p.pos)
	}
	v := int32(order.Uint32(p.data[p.pos:]))
	p.pos += 4
	return v, nil
}

// WriteBuffer appends b followed by zero padding up to a multiple of 4 bytes.
// The length is not recorded; write it as a separate field.
func (p *Parcel) WriteBuffer(b []byte) {
	p.data = append(p.data, b...)
	if pad := padding(len(b)); pad > 0 {
		p.data = append(p.data, make([]byte, pad)...)
	}
}

// ReadBuffer reads n bytes written by WriteBuffer and skips their padding.
// The returned slice is a copy.
func (p *Parcel) ReadBuffer(n int) ([]byte, error) {
	if n < 0 || n > p.Remaining() {
		return nil, fmt.Errorf("%w: buffer of %d bytes at offset %d", ErrShortRead, n, p.pos)
	}
	out := make([]byte, n)
	copy(out, p.data[p.pos:p.pos+n])
	p.pos += n
	p.pos = min(p.pos+padding(n), len(p.data))
	return out, nil
}

// WriteFD duplicates fd and stores the duplicate in the parcel. The caller
// keeps ownership of fd.
func (p *Parcel) WriteFD(fd int) error {
	if p.closed {
		return ErrClosed
	}
	dup, err := dupFD(fd)
	if err != nil {
		return err
	}
	p.fds = append(p.fds, dup)
	return nil
}

// ReadFD returns the next descriptor and transfers its ownership to the caller.
func (p *Parcel) ReadFD() (int, error) {
	if p.closed {
		return -1, ErrClosed
	}
	if p.fdPos >= len(p.fds) {
		return -1, ErrNoFD
	}
	fd := p.fds[p.fdPos]
	p.fds[p.fdPos] = -1
	p.fdPos++
	return fd, nil
}

// Close closes every descriptor still owned by the parcel. It is safe to call
// more than once.
func (p *Parcel) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	for _, fd := range p.fds[p.fdPos:] {
		if fd < 0 {
			continue
		}
		if err := closeFD(fd); err != nil {
			errs = append(errs, err)
		}
	}
	p.fds = nil
	p.fdPos = 0
	return errors.Join(errs...)
}

func padding(n int) int {
	return (4 - n%4) % 4
}
