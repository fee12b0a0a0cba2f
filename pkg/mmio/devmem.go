// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

type devMem struct {
	f *os.File
	// mapping covers the window rounded out to page boundaries; skip is
	// the distance from the mapping start to the window start.
	mapping []byte
	skip    uintptr
	size    uintptr
}

// Open maps size bytes of physical address space starting at base through
// /dev/mem. The mapping is held until Close.
func Open(base uintptr, size int) (Mem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, err
	}
	ps := uintptr(unix.Getpagesize())
	page := base & ^(ps - 1)
	skip := base - page
	m, err := unix.Mmap(int(f.Fd()), int64(page), int(skip)+size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmio: mmap %#x+%#x: %w", base, size, err)
	}
	return &devMem{f: f, mapping: m, skip: skip, size: uintptr(size)}, nil
}

func (m *devMem) at(off uintptr, width uintptr) unsafe.Pointer {
	if m.mapping == nil {
		panic("mmio: access after Close")
	}
	if off+width > m.size {
		panic(fmt.Sprintf("mmio: access %#x beyond window size %#x", off, m.size))
	}
	return unsafe.Pointer(&m.mapping[m.skip+off])
}

func (m *devMem) MustRead32(off uintptr) uint32 {
	return *(*uint32)(m.at(off, 4))
}

func (m *devMem) MustRead8(off uintptr) uint8 {
	return *(*uint8)(m.at(off, 1))
}

func (m *devMem) MustWrite32(off uintptr, v uint32) {
	*(*uint32)(m.at(off, 4)) = v
}

func (m *devMem) Close() {
	if m.mapping != nil {
		unix.Munmap(m.mapping)
		m.mapping = nil
	}
	m.f.Close()
}
