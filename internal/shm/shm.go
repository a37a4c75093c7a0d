// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shm provides anonymous shared-memory regions backed by a file
// descriptor, suitable for handing pixel memory to another process.
//
// A Region owns exactly one mapping and one descriptor. Close always unmaps
// first and then closes the descriptor, and is safe to call more than once.
// Descriptors passed to another process must come from Dup so that each side
// owns an independent handle.
package shm

import "errors"

// ErrUnsupported is returned on platforms without anonymous shared memory.
var ErrUnsupported = errors.New("shm: shared memory not supported on this platform")

// ErrClosed is returned when using a region after Close.
var ErrClosed = errors.New("shm: region closed")
