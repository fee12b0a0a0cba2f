// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmio provides access to a memory-mapped register window.
//
// All offsets are relative to the start of the window, so drivers built on
// top of a Mem never see physical addresses and can be tested against a
// scripted fake.
package mmio

// Mem is a single device register window.
//
// The Must* accessors have no error return; the /dev/mem backend panics on
// a mapping failure, and mapping failures are caught at Open time. This
// mirrors the fact that a MMIO access cannot meaningfully fail halfway
// through a register transaction.
type Mem interface {
	MustRead32(off uintptr) uint32
	MustRead8(off uintptr) uint8
	MustWrite32(off uintptr, v uint32)
	Close()
}
