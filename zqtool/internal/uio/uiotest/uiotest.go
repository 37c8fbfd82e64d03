// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uiotest provides in-memory register banks and interrupts for
// testing code written against the uio.Regs and uio.IRQ interfaces.
package uiotest

import (
	"errors"
	"fmt"
	"time"
)

// Access records a single register access.
type Access struct {
	Write bool
	Reg   int
	Val   uint32
}

func (a Access) String() string {
	if a.Write {
		return fmt.Sprintf("W%d=%#x", a.Reg, a.Val)
	}
	return fmt.Sprintf("R%d=%#x", a.Reg, a.Val)
}

// Regs is a simulated register bank. Registers without hooks behave like
// plain memory.
type Regs struct {
	Mem map[int]uint32
	Log []Access

	// OnRead, if not nil, is called for every read. If it returns false
	// the value is taken from Mem.
	OnRead func(reg int) (uint32, bool)

	// OnWrite, if not nil, is called for every write after Mem is updated.
	OnWrite func(reg int, v uint32)
}

func NewRegs() *Regs {
	return &Regs{Mem: make(map[int]uint32)}
}

func (r *Regs) Read32(reg int) uint32 {
	v, ok := uint32(0), false
	if r.OnRead != nil {
		v, ok = r.OnRead(reg)
	}
	if !ok {
		v = r.Mem[reg]
	}
	r.Log = append(r.Log, Access{false, reg, v})
	return v
}

func (r *Regs) Write32(reg int, v uint32) {
	r.Mem[reg] = v
	r.Log = append(r.Log, Access{true, reg, v})
	if r.OnWrite != nil {
		r.OnWrite(reg, v)
	}
}

// Writes returns the values written to reg in order.
func (r *Regs) Writes(reg int) []uint32 {
	var vs []uint32
	for _, a := range r.Log {
		if a.Write && a.Reg == reg {
			vs = append(vs, a.Val)
		}
	}
	return vs
}

var ErrNotEnabled = errors.New("uiotest: wait with interrupt disabled")

// IRQ is a simulated UIO interrupt. Wait fails if the interrupt was not
// enabled before, which catches the missing re-enable after each interrupt.
type IRQ struct {
	Enabled bool
	Count   uint32
	Enables int

	// OnWait, if not nil, is called by Wait to simulate the hardware
	// event. Returning an error fails the Wait.
	OnWait func() error
}

func (q *IRQ) Enable() error {
	q.Enabled = true
	q.Enables++
	return nil
}

func (q *IRQ) Disable() error {
	q.Enabled = false
	return nil
}

func (q *IRQ) Wait() (uint32, error) {
	if !q.Enabled {
		return 0, ErrNotEnabled
	}
	if q.OnWait != nil {
		if err := q.OnWait(); err != nil {
			return 0, err
		}
	}
	q.Enabled = false
	q.Count++
	return q.Count, nil
}

func (q *IRQ) WaitTimeout(d time.Duration) (uint32, error) {
	return q.Wait()
}
