// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import "fmt"

// waitStatus busy-polls reg until one of the bits in flag is set, then
// clears the flag by writing it back (write-1-to-clear) and returns nil.
// There is no interrupt path; this is the only completion mechanism in the
// driver. Polling runs at 1µs granularity and gives up after 10ms, leaving
// the status bits untouched.
func (c *Controller) waitStatus(reg uintptr, flag uint32) error {
	deadline := c.clock.Now().Add(statusTimeout)
	for {
		if v := c.mem.MustRead32(reg); v&flag != 0 {
			c.mem.MustWrite32(reg, flag)
			return nil
		}
		if !c.clock.Now().Before(deadline) {
			waitTimeouts.Inc()
			return fmt.Errorf("%w: flag %#x in reg %#04x", ErrTimeout, flag, reg)
		}
		c.clock.Sleep(pollInterval)
	}
}
