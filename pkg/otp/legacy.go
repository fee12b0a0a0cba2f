// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

// eccEnable programs the ECC control register of the OTP macro through the
// side-band programming interface and waits for the SBPI transaction to
// complete. The read path only ever disables ECC so that raw fuse bytes
// come back unaltered.
func (c *Controller) eccEnable(enable bool) error {
	c.mem.MustWrite32(OTPC_SBPI_CTRL, SBPI_DAP_ADDR_MASK|SBPI_DAP_ADDR<<SBPI_DAP_ADDR_SHIFT)
	c.mem.MustWrite32(OTPC_SBPI_CMD_VALID_PRE, SBPI_CMD_VALID_MASK|0x1)
	c.mem.MustWrite32(OTPC_SBPI_CMD0_OFFSET, SBPI_DAP_CMD_WRF|SBPI_DAP_REG_ECC)
	if enable {
		c.mem.MustWrite32(OTPC_SBPI_CMD1_OFFSET, SBPI_ECC_ENABLE)
	} else {
		c.mem.MustWrite32(OTPC_SBPI_CMD1_OFFSET, SBPI_ECC_DISABLE)
	}
	c.mem.MustWrite32(OTPC_SBPI_CTRL, SBPI_ENABLE_MASK|SBPI_ENABLE)

	if err := c.waitStatus(OTPC_INT_STATUS, OTPC_SBPI_DONE); err != nil {
		log.Errorf("timeout during ecc_enable: %v", err)
		return err
	}
	return nil
}

// px30Read is the byte-wise read engine of the px30/rk3308 generation:
// disable ECC over SBPI, switch the controller into user access mode and
// fetch one byte per polled user transaction.
//
// Unlike the rk3308bs engine this one performs no bound check against the
// region size; callers are trusted to stay within the 0x40 byte region.
func (c *Controller) px30Read(offset uint32, buf []byte) error {
	release, err := c.enableClocks()
	if err != nil {
		return err
	}
	defer release()

	if err := c.resetPhy(); err != nil {
		return err
	}
	if err := c.eccEnable(false); err != nil {
		return err
	}

	c.mem.MustWrite32(OTPC_USER_CTRL, OTPC_USE_USER|OTPC_USE_USER_MASK)
	// Leave user access mode again whichever way the byte loop ends.
	defer c.mem.MustWrite32(OTPC_USER_CTRL, OTPC_USE_USER_MASK)
	c.clock.Sleep(userSettleDelay)

	for i := range buf {
		c.mem.MustWrite32(OTPC_USER_ADDR, (offset+uint32(i))|OTPC_USER_ADDR_MASK)
		c.mem.MustWrite32(OTPC_USER_ENABLE, OTPC_USER_FSM_ENABLE|OTPC_USER_FSM_ENABLE_MASK)
		if err := c.waitStatus(OTPC_INT_STATUS, OTPC_USER_DONE); err != nil {
			log.Errorf("timeout during read setup: %v", err)
			return err
		}
		buf[i] = c.mem.MustRead8(OTPC_USER_Q)
	}
	return nil
}
