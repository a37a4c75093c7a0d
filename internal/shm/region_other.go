// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package shm

// Region is a memory-mapped shared-memory segment. It cannot be created on
// this platform.
type Region struct {
	fd       int
	data     []byte
	size     int
	readOnly bool
}

// Supported reports whether shared memory is available.
func Supported() bool { return false }

// Create always fails with ErrUnsupported.
func Create(name string, size int) (*Region, error) { return nil, ErrUnsupported }

// Map always fails with ErrUnsupported.
func Map(fd, size int, readOnly bool) (*Region, error) { return nil, ErrUnsupported }

// Bytes returns the mapped memory.
func (r *Region) Bytes() []byte { return r.data }

// Size returns the mapped size in bytes.
func (r *Region) Size() int { return r.size }

// FD returns -1.
func (r *Region) FD() int { return -1 }

// ReadOnly reports whether the mapping lacks write protection.
func (r *Region) ReadOnly() bool { return r.readOnly }

// Dup always fails with ErrUnsupported.
func (r *Region) Dup() (int, error) { return -1, ErrUnsupported }

// Close releases nothing on this platform.
func (r *Region) Close() error {
	r.data = nil
	return nil
}
