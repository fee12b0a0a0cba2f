// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import (
	"errors"
	"testing"

	"github.com/jmhodges/clock"
)

// brokenFixture builds a RK3308BS controller whose nth clock gate (0-based)
// fails to enable, or whose reset line fails when failGate is -1.
func brokenFixture(t *testing.T, failGate int, failAssert, failDeassert bool) (*fixture, *fakeMem) {
	f := &fixture{
		fm:  fakeMemory(t),
		hw:  &hwLog{},
		clk: clock.NewFake(),
	}
	gates := []*fakeGate{
		{name: "clk_otp", log: f.hw},
		{name: "pclk_otp", log: f.hw},
		{name: "pclk_otp_phy", log: f.hw},
	}
	if failGate >= 0 {
		gates[failGate].fail = true
	}
	c, err := New(RK3308BS, Config{
		Mem:     f.fm,
		Clk:     gates[0],
		PClk:    gates[1],
		PClkPhy: gates[2],
		Reset:   &fakeReset{log: f.hw, failAssert: failAssert, failDeassert: failDeassert},
		Clock:   f.clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.c = c
	return f, f.fm
}

func TestClockFailureUnwindsInReverse(t *testing.T) {
	cases := []struct {
		failGate int
		events   []string
	}{
		{0, []string{
			"enable clk_otp failed",
		}},
		{1, []string{
			"enable clk_otp", "enable pclk_otp failed",
			"disable clk_otp",
		}},
		{2, []string{
			"enable clk_otp", "enable pclk_otp", "enable pclk_otp_phy failed",
			"disable pclk_otp", "disable clk_otp",
		}},
	}
	for _, tc := range cases {
		f, fm := brokenFixture(t, tc.failGate, false, false)
		err := f.c.Read(0, make([]byte, 4))
		if !errors.Is(err, ErrClockEnable) {
			t.Errorf("gate %d: Read returned %v, expected ErrClockEnable", tc.failGate, err)
		}
		fm.drained()
		f.hw.expect(t, tc.events...)
	}
}

func TestResetAssertFailure(t *testing.T) {
	f, fm := brokenFixture(t, -1, true, false)
	err := f.c.Read(0, make([]byte, 4))
	if !errors.Is(err, ErrReset) {
		t.Fatalf("Read returned %v, expected ErrReset", err)
	}
	fm.drained()
	f.hw.expect(t,
		"enable clk_otp", "enable pclk_otp", "enable pclk_otp_phy",
		"assert failed",
		"disable pclk_otp_phy", "disable pclk_otp", "disable clk_otp")
}

func TestResetDeassertFailure(t *testing.T) {
	f, fm := brokenFixture(t, -1, false, true)
	err := f.c.Read(0, make([]byte, 4))
	if !errors.Is(err, ErrReset) {
		t.Fatalf("Read returned %v, expected ErrReset", err)
	}
	fm.drained()
	f.hw.expect(t,
		"enable clk_otp", "enable pclk_otp", "enable pclk_otp_phy",
		"assert", "deassert failed",
		"disable pclk_otp_phy", "disable pclk_otp", "disable clk_otp")
}

func TestResetHoldDelay(t *testing.T) {
	f := newFixture(t, RK3308BS)
	start := f.clk.Now()
	if err := f.c.resetPhy(); err != nil {
		t.Fatalf("resetPhy: %v", err)
	}
	if d := f.clk.Now().Sub(start); d != resetHoldDelay {
		t.Errorf("reset held for %v, expected %v", d, resetHoldDelay)
	}
}

func TestNewValidation(t *testing.T) {
	fm := fakeMemory(t)
	hw := &hwLog{}
	gate := &fakeGate{name: "clk_otp", log: hw}
	rst := &fakeReset{log: hw}

	if _, err := New(Variant(42), Config{Mem: fm, Clk: gate, PClk: gate, PClkPhy: gate, Reset: rst}); err == nil {
		t.Error("New accepted an unknown variant")
	}
	if _, err := New(PX30, Config{Clk: gate, PClk: gate, PClkPhy: gate, Reset: rst}); err == nil {
		t.Error("New accepted a missing register window")
	}
	if _, err := New(PX30, Config{Mem: fm, Clk: gate, PClkPhy: gate, Reset: rst}); err == nil {
		t.Error("New accepted a missing clock gate")
	}
	if _, err := New(PX30, Config{Mem: fm, Clk: gate, PClk: gate, PClkPhy: gate}); err == nil {
		t.Error("New accepted a missing reset line")
	}
}

func TestVariantSizes(t *testing.T) {
	px30 := newFixture(t, PX30)
	if s := px30.c.Size(); s != 0x40 {
		t.Errorf("px30 size %#x, expected 0x40", s)
	}
	bs := newFixture(t, RK3308BS)
	if s := bs.c.Size(); s != 0x80 {
		t.Errorf("rk3308bs size %#x, expected 0x80", s)
	}
}
