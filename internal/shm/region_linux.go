// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package shm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Region is a memory-mapped shared-memory segment.
//
// Thread safety: Region is not safe for concurrent Close.
type Region struct {
	fd       int
	data     []byte
	size     int
	readOnly bool
}

// Supported reports whether shared memory is available.
func Supported() bool { return true }

// Create allocates a named segment of exactly size bytes and maps it read-write.
func Create(name string, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d", size)
	}
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("shm: memfd_create %q: %w", name, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate %d: %w", size, err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	return &Region{fd: fd, data: data, size: size}, nil
}

// Map maps size bytes of an existing descriptor. The region takes ownership
// of fd: it is closed by Close, and also when Map fails.
func Map(fd, size int, readOnly bool) (*Region, error) {
	if fd < 0 || size <= 0 {
		if fd >= 0 {
			_ = unix.Close(fd)
		}
		return nil, fmt.Errorf("shm: invalid descriptor %d or size %d", fd, size)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: fstat: %w", err)
	}
	if st.Size < int64(size) {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: segment holds %d bytes, need %d", st.Size, size)
	}
	prot := unix.PROT_READ
	if !readOnly {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(fd, 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	return &Region{fd: fd, data: data, size: size, readOnly: readOnly}, nil
}

// Bytes returns the mapped memory, or nil after Close.
func (r *Region) Bytes() []byte { return r.data }

// Size returns the mapped size in bytes.
func (r *Region) Size() int { return r.size }

// FD returns the owned descriptor, or -1 after Close.
func (r *Region) FD() int { return r.fd }

// ReadOnly reports whether the mapping lacks write protection.
func (r *Region) ReadOnly() bool { return r.readOnly }

// Dup returns a new close-on-exec descriptor for the same segment.
// The caller owns the returned descriptor.
func (r *Region) Dup() (int, error) {
	if r.fd < 0 {
		return -1, ErrClosed
	}
	fd, err := unix.FcntlInt(uintptr(r.fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("shm: dup: %w", err)
	}
	return fd, nil
}

// Close unmaps the region and then closes its descriptor.
func (r *Region) Close() error {
	var errs []error
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			errs = append(errs, fmt.Errorf("shm: munmap: %w", err))
		}
		r.data = nil
	}
	if r.fd >= 0 {
		if err := unix.Close(r.fd); err != nil {
			errs = append(errs, fmt.Errorf("shm: close: %w", err))
		}
		r.fd = -1
	}
	return errors.Join(errs...)
}
