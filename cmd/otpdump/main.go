// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// otpdump reads the OTP fuse region of a Rockchip SoC and hex-dumps it.
//
// By default the controller is located through the flattened device tree;
// -base and -variant bypass the lookup. The controller clocks are assumed
// to be ungated (firmware and the vendor kernels leave them running), so
// the driver is wired with no-op gates and reset here.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/u-root/rkotp/pkg/logger"
	"github.com/u-root/rkotp/pkg/mmio"
	"github.com/u-root/rkotp/pkg/otp"
	"github.com/u-root/rkotp/pkg/platform"
)

var log = logger.LogContainer.GetSimpleLogger()

// Register window size to map when -base bypasses the device tree lookup.
const defaultWindowSize = 0x4000

var (
	dtbPath = flag.String("dtb", platform.DefaultDTBPath, "flattened device tree to locate the controller in")
	base    = flag.Uint64("base", 0, "physical register window base, bypassing the device tree")
	variant = flag.String("variant", "", "controller variant when -base is set (px30 or rk3308bs)")
	offset  = flag.Uint("offset", 0, "first byte to read")
	length  = flag.Uint("length", 0, "number of bytes to read (default: rest of the region)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	info, err := controllerInfo()
	if err != nil {
		return err
	}

	mem, err := mmio.Open(info.Base, int(info.Size))
	if err != nil {
		return err
	}
	defer mem.Close()

	c, err := otp.New(info.Variant, otp.Config{
		Mem:     mem,
		Clk:     otp.NopGate("clk_otp"),
		PClk:    otp.NopGate("pclk_otp"),
		PClkPhy: otp.NopGate("pclk_otp_phy"),
		Reset:   otp.NopReset(),
	})
	if err != nil {
		return err
	}

	if *offset >= uint(c.Size()) {
		return fmt.Errorf("offset %#x beyond region size %#x", *offset, c.Size())
	}
	n := uint(c.Size()) - *offset
	if *length > 0 {
		n = *length
	}

	buf := make([]byte, n)
	if err := c.Read(uint32(*offset), buf); err != nil {
		return err
	}
	fmt.Print(hex.Dump(buf))
	return nil
}

func controllerInfo() (*platform.Info, error) {
	if *base == 0 {
		info, err := platform.Resolve(afero.NewOsFs(), *dtbPath)
		if err != nil {
			return nil, err
		}
		if *variant != "" {
			fmt.Fprintln(os.Stderr, "-variant ignored without -base")
		}
		return info, nil
	}
	info := &platform.Info{Base: uintptr(*base), Size: defaultWindowSize}
	switch *variant {
	case "px30":
		info.Variant = otp.PX30
	case "rk3308bs":
		info.Variant = otp.RK3308BS
	default:
		return nil, fmt.Errorf("-base needs -variant px30 or rk3308bs, got %q", *variant)
	}
	return info, nil
}
