// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package parcel

import "net"

func dupFD(int) (int, error) {
	return -1, ErrUnsupported
}

func closeFD(int) error {
	return ErrUnsupported
}

// Send reports ErrUnsupported on this platform.
func Send(*net.UnixConn, *Parcel) error {
	return ErrUnsupported
}

// Receive reports ErrUnsupported on this platform.
func Receive(*net.UnixConn) (*Parcel, error) {
	return nil, ErrUnsupported
}
