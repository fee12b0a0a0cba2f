// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import "encoding/binary"

// modeStep is one edge of the power mode state machine. A step fires only
// when the current mode equals from; completion of the requested transition
// is signalled by the done bit in OTPC_IRQ_ST.
type modeStep struct {
	from uint32
	to   uint32
	done uint32
}

// The mode register is walked one edge at a time; a fired step leaves the
// machine in the from state of the next, so a full walk is just the table
// applied in order. A machine already at the target matches no step.
var (
	activateSteps = []modeStep{
		{OTPC_DEEP_STANDBY, OTPC_STANDBY, OTPC_DP2STB_IRQ_ST},
		{OTPC_STANDBY, OTPC_ACTIVE, OTPC_STB2ACT_IRQ_ST},
	}
	standbySteps = []modeStep{
		{OTPC_ACTIVE, OTPC_STANDBY, OTPC_ACT2STB_IRQ_ST},
		{OTPC_STANDBY, OTPC_DEEP_STANDBY, OTPC_STB2DP_IRQ_ST},
	}
)

// stepMode reads the live power mode and applies the matching steps of the
// table. A timeout aborts the walk with the machine parked mid-way.
func (c *Controller) stepMode(steps []modeStep) error {
	mode := c.mem.MustRead32(OTPC_MODE_CTRL)
	for _, s := range steps {
		if mode != s.from {
			continue
		}
		c.mem.MustWrite32(OTPC_MODE_CTRL, s.to)
		if err := c.waitStatus(OTPC_IRQ_ST, s.done); err != nil {
			log.Errorf("timeout during wait mode %#x to %#x: %v", s.from, s.to, err)
			return err
		}
		mode = s.to
	}
	return nil
}

// activate walks the controller up to the Active mode
// (deep standby → standby → active).
func (c *Controller) activate() error {
	return c.stepMode(activateSteps)
}

// standby walks the controller back down to deep standby
// (active → standby → deep standby).
func (c *Controller) standby() error {
	return c.stepMode(standbySteps)
}

// rk3308bsRead is the word-wise read engine of the px30s/rk3308bs
// generation. The byte request is served by reading the covering 4-byte
// aligned words from the non-secure region and slicing the result.
func (c *Controller) rk3308bsRead(offset uint32, buf []byte) error {
	if offset >= c.data.size {
		return ErrOutOfRange
	}
	if offset+uint32(len(buf)) > c.data.size {
		buf = buf[:c.data.size-offset]
	}

	release, err := c.enableClocks()
	if err != nil {
		return err
	}
	defer release()

	if err := c.resetPhy(); err != nil {
		return err
	}
	if err := c.activate(); err != nil {
		return err
	}
	// Park the macro back in its low power mode whichever way the word
	// loop ends.
	defer func() {
		if err := c.standby(); err != nil {
			log.Errorf("failed to re-enter standby: %v", err)
		}
	}()

	wordStart := offset / OTPC_NBYTES
	wordEnd := (offset + uint32(len(buf)) + OTPC_NBYTES - 1) / OTPC_NBYTES
	skip := offset % OTPC_NBYTES
	addr := wordStart + RK3308BS_NO_SECURE_OFFSET
	nwords := wordEnd - wordStart

	scratch := make([]byte, 0, nwords*OTPC_NBYTES)
	for i := uint32(0); i < nwords; i++ {
		c.mem.MustWrite32(OTPC_REPR_RD_TRANS_NUM, OTPC_TRANS_NUM)
		c.mem.MustWrite32(OTPC_ACCESS_ADDR, addr+i)
		c.mem.MustWrite32(OTPC_MODE_CTRL, OTPC_READ_ACCESS)
		if err := c.waitStatus(OTPC_IRQ_ST, OTPC_RDM_IRQ_ST); err != nil {
			log.Errorf("timeout during wait rd: %v", err)
			return err
		}
		scratch = binary.LittleEndian.AppendUint32(scratch, c.mem.MustRead32(OTPC_RD_DATA))
	}
	copy(buf, scratch[skip:])
	return nil
}
