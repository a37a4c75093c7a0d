//go:build !linux

package main

import (
	"bytes"

	"github.com/gogpu/pixelmap/parcel"
)

// exchange copies the data of p into a new parcel. Descriptors cannot be
// passed on this platform, so only inline payloads survive.
func exchange(p *parcel.Parcel) (*parcel.Parcel, error) {
	if len(p.FDs()) > 0 {
		return nil, parcel.ErrUnsupported
	}
	return parcel.FromBytes(bytes.Clone(p.Bytes()), nil), nil
}
