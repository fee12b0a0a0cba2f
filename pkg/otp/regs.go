// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import "time"

// Register offsets into the OTP controller window.
//
// Registers below 0x2000 belong to the px30/rk3308 generation, the 0x2000
// block to the px30s/rk3308bs generation. The upper halfword of most control
// registers is a write-enable mask for the corresponding lower bits, so
// every write carries the mask bits for the field it touches.
const (
	OTPC_SBPI_CTRL          uintptr = 0x0020
	OTPC_SBPI_CMD_VALID_PRE uintptr = 0x0024
	OTPC_SBPI_CS_VALID_PRE  uintptr = 0x0028
	OTPC_SBPI_STATUS        uintptr = 0x002c
	OTPC_USER_CTRL          uintptr = 0x0100
	OTPC_USER_ADDR          uintptr = 0x0104
	OTPC_USER_ENABLE        uintptr = 0x0108
	OTPC_USER_Q             uintptr = 0x0124
	OTPC_INT_STATUS         uintptr = 0x0304
	OTPC_SBPI_CMD0_OFFSET   uintptr = 0x1000
	OTPC_SBPI_CMD1_OFFSET   uintptr = 0x1004

	OTPC_MODE_CTRL         uintptr = 0x2000
	OTPC_IRQ_ST            uintptr = 0x2008
	OTPC_ACCESS_ADDR       uintptr = 0x200c
	OTPC_RD_DATA           uintptr = 0x2010
	OTPC_REPR_RD_TRANS_NUM uintptr = 0x2020
)

// OTPC_MODE_CTRL power modes. The register holds the live mode; writing a
// mode value requests a transition whose completion is signalled in
// OTPC_IRQ_ST.
const (
	OTPC_DEEP_STANDBY uint32 = 0x0
	OTPC_STANDBY      uint32 = 0x1
	OTPC_ACTIVE       uint32 = 0x2
	OTPC_READ_ACCESS  uint32 = 0x3
)

// OTPC_IRQ_ST bits, write-1-to-clear.
const (
	OTPC_RDM_IRQ_ST     uint32 = 1 << 0
	OTPC_STB2ACT_IRQ_ST uint32 = 1 << 7
	OTPC_DP2STB_IRQ_ST  uint32 = 1 << 8
	OTPC_ACT2STB_IRQ_ST uint32 = 1 << 9
	OTPC_STB2DP_IRQ_ST  uint32 = 1 << 10
)

// Register bits and masks.
const (
	OTPC_USER_ADDR_MASK       uint32 = 0xffff0000
	OTPC_USE_USER             uint32 = 1 << 0
	OTPC_USE_USER_MASK        uint32 = 1 << 16
	OTPC_USER_FSM_ENABLE      uint32 = 1 << 0
	OTPC_USER_FSM_ENABLE_MASK uint32 = 1 << 16

	// OTPC_INT_STATUS bits, write-1-to-clear.
	OTPC_SBPI_DONE uint32 = 1 << 1
	OTPC_USER_DONE uint32 = 1 << 2

	OTPC_TRANS_NUM uint32 = 0x1
)

// Side-band programming interface command bytes. The only SBPI program the
// driver issues is the write of the ECC control register; there is no
// general command builder.
const (
	SBPI_DAP_ADDR       uint32 = 0x02
	SBPI_DAP_ADDR_SHIFT        = 8
	SBPI_DAP_ADDR_MASK  uint32 = 0xff000000
	SBPI_CMD_VALID_MASK uint32 = 0xffff0000
	SBPI_DAP_CMD_WRF    uint32 = 0xc0
	SBPI_DAP_REG_ECC    uint32 = 0x3a
	SBPI_ECC_ENABLE     uint32 = 0x00
	SBPI_ECC_DISABLE    uint32 = 0x09
	SBPI_ENABLE         uint32 = 1 << 0
	SBPI_ENABLE_MASK    uint32 = 1 << 16
)

const (
	// OTPC_NBYTES is the access granularity of the rk3308bs read engine.
	OTPC_NBYTES uint32 = 4
	// RK3308BS_NO_SECURE_OFFSET is the word address of the first
	// non-secure OTP word; everything below it is secure-world only.
	RK3308BS_NO_SECURE_OFFSET uint32 = 224

	PX30_OTP_SIZE     uint32 = 0x40
	RK3308BS_OTP_SIZE uint32 = 0x80
)

const (
	// statusTimeout bounds every polled wait for a controller status bit.
	statusTimeout = 10000 * time.Microsecond
	pollInterval  = 1 * time.Microsecond
	// resetHoldDelay is the minimum PHY reset assertion time.
	resetHoldDelay = 2 * time.Microsecond
	// userSettleDelay is the wait after switching the controller into
	// user access mode.
	userSettleDelay = 5 * time.Microsecond
)
