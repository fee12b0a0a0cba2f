// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform resolves the OTP controller variant and register window
// from the flattened device tree of the running system.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinasystems/fdt"
	"github.com/spf13/afero"

	"github.com/u-root/rkotp/pkg/otp"
)

// DefaultDTBPath is where the kernel exposes the flattened device tree.
const DefaultDTBPath = "/sys/firmware/fdt"

// ErrNoController is returned when the device tree names no supported OTP
// controller.
var ErrNoController = errors.New("platform: no otp controller in device tree")

// Info describes the OTP controller found in the device tree.
type Info struct {
	Variant otp.Variant
	// Base and Size are the physical register window from the reg
	// property.
	Base uintptr
	Size uintptr
}

var compatibles = map[string]otp.Variant{
	"rockchip,px30-otp":     otp.PX30,
	"rockchip,rk3308-otp":   otp.PX30,
	"rockchip,px30s-otp":    otp.RK3308BS,
	"rockchip,rk3308bs-otp": otp.RK3308BS,
}

// SoCs whose OTP controller is the rk3308bs generation even when the
// controller node claims the px30 compatible.
var socOverrides = []string{
	"rockchip,px30s",
	"rockchip,rk3308bs",
}

// Resolve parses the device tree blob at dtbPath and locates the OTP
// controller node.
func Resolve(fs afero.Fs, dtbPath string) (*Info, error) {
	b, err := afero.ReadFile(fs, dtbPath)
	if err != nil {
		return nil, fmt.Errorf("platform: read dtb: %w", err)
	}
	t := &fdt.Tree{}
	if err := t.Parse(b); err != nil {
		return nil, fmt.Errorf("platform: parse dtb: %w", err)
	}
	return resolveTree(t)
}

func resolveTree(t *fdt.Tree) (*Info, error) {
	var info *Info
	var perr error
	t.EachProperty("compatible", "", func(n *fdt.Node, name, value string) {
		if info != nil || perr != nil {
			return
		}
		v, ok := matchCompatible(value)
		if !ok {
			return
		}
		base, size, err := regWindow(t, n)
		if err != nil {
			perr = err
			return
		}
		info = &Info{Variant: v, Base: base, Size: size}
	})
	if perr != nil {
		return nil, perr
	}
	if info == nil {
		return nil, ErrNoController
	}
	if socIsRK3308BS(t) {
		info.Variant = otp.RK3308BS
	}
	return info, nil
}

// matchCompatible checks a NUL-separated compatible list for a supported
// controller.
func matchCompatible(value string) (otp.Variant, bool) {
	for _, compat := range strings.Split(value, "\x00") {
		if v, ok := compatibles[compat]; ok {
			return v, true
		}
	}
	return 0, false
}

// regWindow decodes the node's reg property. Rockchip trees use either one
// 32-bit cell or two 32-bit cells per address and size, depending on
// #address-cells of the parent.
func regWindow(t *fdt.Tree, n *fdt.Node) (base, size uintptr, err error) {
	reg, ok := n.Properties["reg"]
	if !ok {
		return 0, 0, fmt.Errorf("platform: node %s has no reg property", n.Name)
	}
	cells := t.PropUint32Slice(reg)
	switch len(cells) {
	case 2:
		return uintptr(cells[0]), uintptr(cells[1]), nil
	case 4:
		base = uintptr(uint64(cells[0])<<32 | uint64(cells[1]))
		size = uintptr(uint64(cells[2])<<32 | uint64(cells[3]))
		return base, size, nil
	}
	return 0, 0, fmt.Errorf("platform: node %s has unsupported reg layout (%d cells)", n.Name, len(cells))
}

// socIsRK3308BS reports whether the board compatible list pins the SoC to a
// revision carrying the rk3308bs controller.
func socIsRK3308BS(t *fdt.Tree) bool {
	root := t.RootNode
	if root == nil {
		return false
	}
	compat, ok := root.Properties["compatible"]
	if !ok {
		return false
	}
	for _, c := range strings.Split(string(compat), "\x00") {
		for _, soc := range socOverrides {
			if c == soc {
				return true
			}
		}
	}
	return false
}
