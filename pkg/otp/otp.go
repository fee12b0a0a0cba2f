// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package otp drives the Rockchip OTP memory controller.
//
// The controller exposes a small read-only region of factory-programmed
// fuses (calibration data, chip IDs, keys). Two controller generations
// exist: the px30/rk3308 generation reads the region one byte at a time
// through the user access registers after disabling on-die ECC over the
// side-band programming interface, while the px30s/rk3308bs generation
// reads 32-bit words through a direct access register pair and has to be
// walked up and down an explicit power mode state machine around every
// access.
//
// Reads are synchronous and busy-poll the controller status registers;
// a single read may occupy the calling goroutine for up to 10ms per
// register transaction. The hardware mode state is global, so concurrent
// callers must serialize Read calls themselves.
package otp

import (
	"errors"
	"fmt"

	"github.com/jmhodges/clock"

	"github.com/u-root/rkotp/pkg/logger"
	"github.com/u-root/rkotp/pkg/metric"
	"github.com/u-root/rkotp/pkg/mmio"
)

var log = logger.LogContainer.GetSimpleLogger()

var (
	// ErrClockEnable is returned when one of the controller clocks could
	// not be enabled.
	ErrClockEnable = errors.New("otp: failed to enable clock")
	// ErrReset is returned when the PHY reset line could not be pulsed.
	ErrReset = errors.New("otp: failed to reset phy")
	// ErrTimeout is returned when the controller did not signal
	// completion of a transaction within the status timeout.
	ErrTimeout = errors.New("otp: timed out waiting for status")
	// ErrOutOfRange is returned for a read starting beyond the end of
	// the OTP region.
	ErrOutOfRange = errors.New("otp: read offset out of range")
)

var (
	readsTotal = metric.Counter(metric.Opts{
		Namespace: "rkotp", Subsystem: "otp", Name: "reads_total",
	}, nil)
	readErrors = metric.Counter(metric.Opts{
		Namespace: "rkotp", Subsystem: "otp", Name: "read_errors_total",
	}, nil)
	waitTimeouts = metric.Counter(metric.Opts{
		Namespace: "rkotp", Subsystem: "otp", Name: "wait_timeouts_total",
	}, nil)
)

// Variant selects one of the two controller generations.
type Variant int

const (
	// PX30 is the byte-wise user-access controller found on px30 and
	// rk3308.
	PX30 Variant = iota
	// RK3308BS is the word-wise controller with the power mode state
	// machine, found on px30s and rk3308bs.
	RK3308BS
)

func (v Variant) String() string {
	switch v {
	case PX30:
		return "px30"
	case RK3308BS:
		return "rk3308bs"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// variantData is the immutable per-generation descriptor: the exposed
// region size and the read strategy.
type variantData struct {
	size uint32
	read func(c *Controller, offset uint32, buf []byte) error
}

var variants = map[Variant]*variantData{
	PX30:     {size: PX30_OTP_SIZE, read: (*Controller).px30Read},
	RK3308BS: {size: RK3308BS_OTP_SIZE, read: (*Controller).rk3308bsRead},
}

// Gate is an individually switchable clock feeding the controller.
type Gate interface {
	Name() string
	Enable() error
	Disable()
}

// ResetLine controls the OTP PHY reset.
type ResetLine interface {
	Assert() error
	Deassert() error
}

// Config carries the collaborator handles for a controller instance.
type Config struct {
	// Mem is the controller register window.
	Mem mmio.Mem
	// Clk, PClk and PClkPhy are the controller core clock, the bus
	// clock and the PHY bus clock ("clk_otp", "pclk_otp",
	// "pclk_otp_phy").
	Clk     Gate
	PClk    Gate
	PClkPhy Gate
	// Reset is the "otp_phy" reset line.
	Reset ResetLine
	// Clock drives delays and poll timeouts. Defaults to the system
	// clock; tests inject a fake.
	Clock clock.Clock
}

// Controller is one OTP controller instance. It is immutable after New;
// all hardware state lives in the device registers.
type Controller struct {
	mem   mmio.Mem
	clk   Gate
	pclk  Gate
	phy   Gate
	rst   ResetLine
	clock clock.Clock
	data  *variantData
}

// New builds a Controller for the given variant. All collaborators in cfg
// except Clock are mandatory.
func New(v Variant, cfg Config) (*Controller, error) {
	data, ok := variants[v]
	if !ok {
		return nil, fmt.Errorf("otp: unknown variant %d", int(v))
	}
	if cfg.Mem == nil {
		return nil, errors.New("otp: no register window")
	}
	if cfg.Clk == nil || cfg.PClk == nil || cfg.PClkPhy == nil {
		return nil, errors.New("otp: missing clock gate")
	}
	if cfg.Reset == nil {
		return nil, errors.New("otp: missing phy reset line")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{
		mem:   cfg.Mem,
		clk:   cfg.Clk,
		pclk:  cfg.PClk,
		phy:   cfg.PClkPhy,
		rst:   cfg.Reset,
		clock: clk,
		data:  data,
	}, nil
}

// Size returns the byte size of the readable OTP region.
func (c *Controller) Size() uint32 {
	return c.data.size
}

// Read fills buf with OTP contents starting at offset, dispatching to the
// variant's read engine. On error the contents of buf are undefined.
func (c *Controller) Read(offset uint32, buf []byte) error {
	readsTotal.Inc()
	if err := c.data.read(c, offset, buf); err != nil {
		readErrors.Inc()
		return err
	}
	return nil
}
