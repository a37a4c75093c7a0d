// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package shm

import (
	"bytes"
	"testing"
)

func TestCreateReadWrite(t *testing.T) {
	r, err := Create("pixelmap-test", 4096)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	if r.Size() != 4096 || len(r.Bytes()) != 4096 {
		t.Fatalf("Size() = %d, len(Bytes()) = %d, want 4096", r.Size(), len(r.Bytes()))
	}
	if r.FD() < 0 {
		t.Fatalf("FD() = %d, want valid descriptor", r.FD())
	}
	copy(r.Bytes(), "pixels")
	if !bytes.HasPrefix(r.Bytes(), []byte("pixels")) {
		t.Error("written bytes not visible through mapping")
	}
}

func TestCreateInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Create("bad", size); err == nil {
			t.Errorf("Create(size=%d) succeeded, want error", size)
		}
	}
}

func TestDupSharesMemory(t *testing.T) {
	r, err := Create("pixelmap-dup", 64)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	fd, err := r.Dup()
	if err != nil {
		t.Fatalf("Dup() error = %v", err)
	}
	if fd == r.FD() {
		t.Fatal("Dup() returned the original descriptor")
	}

	other, err := Map(fd, 64, true)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	defer func() { _ = other.Close() }()

	r.Bytes()[10] = 0xAB
	if other.Bytes()[10] != 0xAB {
		t.Errorf("mapped copy sees %#x, want 0xab", other.Bytes()[10])
	}
	if !other.ReadOnly() {
		t.Error("ReadOnly() = false, want true")
	}
}

func TestMapRejectsShortSegment(t *testing.T) {
	r, err := Create("pixelmap-short", 16)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	fd, err := r.Dup()
	if err != nil {
		t.Fatalf("Dup() error = %v", err)
	}
	if _, err := Map(fd, 4096, false); err == nil {
		t.Error("Map() of 4096 bytes from a 16-byte segment succeeded")
	}
}

func TestCloseIdempotent(t *testing.T) {
	r, err := Create("pixelmap-close", 32)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if r.Bytes() != nil || r.FD() != -1 {
		t.Errorf("after Close: Bytes() = %v, FD() = %d", r.Bytes(), r.FD())
	}
	if _, err := r.Dup(); err == nil {
		t.Error("Dup() after Close succeeded")
	}
}
