// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jmhodges/clock"
)

type op struct {
	write  bool
	off    uintptr
	data8  uint8
	data32 uint32
	size   int
}

func opstr(o *op) string {
	t := "read"
	if o.write {
		t = "write"
	}
	d := uint32(o.data8)
	if o.size == 32 {
		d = o.data32
	}
	return fmt.Sprintf("{%s @ %#04x, %v bit = %#08x}", t, o.off, o.size, d)
}

// fakeMem is a register window scripted with the exact sequence of
// operations a test expects the driver to perform.
type fakeMem struct {
	t   *testing.T
	ops []op
}

func fakeMemory(t *testing.T) *fakeMem {
	return &fakeMem{t, make([]op, 0)}
}

func (m *fakeMem) next(kind string, off uintptr) op {
	if len(m.ops) == 0 {
		m.t.Fatalf("unexpected %s on %#04x, no operations left in script", kind, off)
	}
	o := m.ops[0]
	m.ops = m.ops[1:]
	return o
}

func (m *fakeMem) MustRead32(off uintptr) uint32 {
	o := m.next("32 bit read", off)
	if o.write || o.off != off || o.size != 32 {
		m.t.Errorf("Expected %s, got 32 bit read on %#04x", opstr(&o), off)
	}
	return o.data32
}

func (m *fakeMem) MustRead8(off uintptr) uint8 {
	o := m.next("8 bit read", off)
	if o.write || o.off != off || o.size != 8 {
		m.t.Errorf("Expected %s, got 8 bit read on %#04x", opstr(&o), off)
	}
	return o.data8
}

func (m *fakeMem) MustWrite32(off uintptr, d uint32) {
	o := m.next("32 bit write", off)
	if !o.write || o.off != off || o.size != 32 || o.data32 != d {
		m.t.Errorf("Expected %s, got 32 bit write of %#08x on %#04x", opstr(&o), d, off)
	}
}

func (m *fakeMem) Close() {
}

func (m *fakeMem) ExpectWrite32(off uintptr, d uint32) {
	m.ops = append(m.ops, op{write: true, off: off, data32: d, size: 32})
}

func (m *fakeMem) FakeRead32(off uintptr, d uint32) {
	m.ops = append(m.ops, op{off: off, data32: d, size: 32})
}

func (m *fakeMem) FakeRead8(off uintptr, d uint8) {
	m.ops = append(m.ops, op{off: off, data8: d, size: 8})
}

// FakeRead32N scripts n identical reads, for driving the poller into its
// timeout.
func (m *fakeMem) FakeRead32N(n int, off uintptr, d uint32) {
	for i := 0; i < n; i++ {
		m.FakeRead32(off, d)
	}
}

// drained fails the test when scripted operations were never consumed.
func (m *fakeMem) drained() {
	for i := range m.ops {
		m.t.Errorf("scripted operation never performed: %s", opstr(&m.ops[i]))
	}
}

// hwLog records clock gate and reset line activity in order.
type hwLog struct {
	events []string
}

func (l *hwLog) add(e string) {
	l.events = append(l.events, e)
}

func (l *hwLog) expect(t *testing.T, want ...string) {
	if len(l.events) != len(want) {
		t.Errorf("hardware events %v, expected %v", l.events, want)
		return
	}
	for i := range want {
		if l.events[i] != want[i] {
			t.Errorf("hardware event %d was %q, expected %q", i, l.events[i], want[i])
		}
	}
}

type fakeGate struct {
	name string
	log  *hwLog
	fail bool
}

func (g *fakeGate) Name() string { return g.name }

func (g *fakeGate) Enable() error {
	if g.fail {
		g.log.add("enable " + g.name + " failed")
		return errors.New("gate stuck")
	}
	g.log.add("enable " + g.name)
	return nil
}

func (g *fakeGate) Disable() {
	g.log.add("disable " + g.name)
}

type fakeReset struct {
	log          *hwLog
	failAssert   bool
	failDeassert bool
}

func (r *fakeReset) Assert() error {
	if r.failAssert {
		r.log.add("assert failed")
		return errors.New("reset line stuck")
	}
	r.log.add("assert")
	return nil
}

func (r *fakeReset) Deassert() error {
	if r.failDeassert {
		r.log.add("deassert failed")
		return errors.New("reset line stuck")
	}
	r.log.add("deassert")
	return nil
}

type fixture struct {
	fm  *fakeMem
	hw  *hwLog
	clk clock.FakeClock
	c   *Controller
}

func newFixture(t *testing.T, v Variant) *fixture {
	f := &fixture{
		fm:  fakeMemory(t),
		hw:  &hwLog{},
		clk: clock.NewFake(),
	}
	c, err := New(v, Config{
		Mem:     f.fm,
		Clk:     &fakeGate{name: "clk_otp", log: f.hw},
		PClk:    &fakeGate{name: "pclk_otp", log: f.hw},
		PClkPhy: &fakeGate{name: "pclk_otp_phy", log: f.hw},
		Reset:   &fakeReset{log: f.hw},
		Clock:   f.clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.c = c
	return f
}

// powerUpEvents is the gate/reset activity of every read that makes it past
// the power-on sequence, successful or not.
func powerUpEvents(rest ...string) []string {
	events := []string{
		"enable clk_otp", "enable pclk_otp", "enable pclk_otp_phy",
		"assert", "deassert",
	}
	events = append(events, rest...)
	return append(events,
		"disable pclk_otp_phy", "disable pclk_otp", "disable clk_otp")
}
