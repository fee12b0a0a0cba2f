// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import "fmt"

// enableClocks switches on the controller clocks in a fixed order: core
// clock, bus clock, PHY bus clock. On success the returned release func
// disables them in reverse order; it must be called exactly once. If any
// gate fails to enable, the gates already enabled are released (again in
// reverse) before the error is returned.
func (c *Controller) enableClocks() (func(), error) {
	var on []Gate
	release := func() {
		for i := len(on) - 1; i >= 0; i-- {
			on[i].Disable()
		}
	}
	for _, g := range []Gate{c.clk, c.pclk, c.phy} {
		if err := g.Enable(); err != nil {
			log.Errorf("failed to enable %s: %v", g.Name(), err)
			release()
			return nil, fmt.Errorf("%w %s: %v", ErrClockEnable, g.Name(), err)
		}
		on = append(on, g)
	}
	return release, nil
}

// resetPhy pulses the OTP PHY reset line to bring the analog front end into
// a known state. Must run with clocks enabled and before any register
// transaction.
func (c *Controller) resetPhy() error {
	if err := c.rst.Assert(); err != nil {
		log.Errorf("failed to assert otp phy reset: %v", err)
		return fmt.Errorf("%w: assert: %v", ErrReset, err)
	}
	c.clock.Sleep(resetHoldDelay)
	if err := c.rst.Deassert(); err != nil {
		log.Errorf("failed to deassert otp phy reset: %v", err)
		return fmt.Errorf("%w: deassert: %v", ErrReset, err)
	}
	return nil
}

// NopGate returns a Gate that is always on. Useful on systems where
// firmware leaves the OTP clocks ungated.
func NopGate(name string) Gate {
	return nopGate(name)
}

type nopGate string

func (g nopGate) Name() string  { return string(g) }
func (g nopGate) Enable() error { return nil }
func (g nopGate) Disable()      {}

// NopReset returns a ResetLine that does nothing.
func NopReset() ResetLine {
	return nopReset{}
}

type nopReset struct{}

func (nopReset) Assert() error   { return nil }
func (nopReset) Deassert() error { return nil }
