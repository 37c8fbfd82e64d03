// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package i2cm drives the byte-oriented I2C master core found in the
// programmable logic. Every bus operation is a single command written to
// the control/status register and completes with an interrupt.
package i2cm

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const csr = 0

const (
	CmdStart = 1 << (8 + iota)
	CmdStop
	CmdRead
	CmdWrite
	CmdNACK
)

const (
	StErr = 1 << (16 + 1 + iota)
	StArbLost
	StBusBusy
	StACK
)

const rd = 1

var (
	ErrNoAck   = errors.New("i2cm: missing ACK")
	ErrArbLost = errors.New("i2cm: arbitration lost")
	ErrBusBusy = errors.New("i2cm: bus busy")
	ErrFailed  = errors.New("i2cm: command failed")
)

// Master is the I2C master core. It implements periph.io/x/conn/v3/i2c.Bus.
type Master struct {
	regs    uio.Regs
	irq     uio.IRQ
	Timeout time.Duration // interrupt wait limit, negative means forever
}

func New(regs uio.Regs, irq uio.IRQ) *Master {
	return &Master{regs: regs, irq: irq, Timeout: time.Second}
}

func (m *Master) String() string { return "i2cm" }

// SetSpeed is not supported: the bit rate is fixed in the logic.
func (m *Master) SetSpeed(f physic.Frequency) error {
	return fmt.Errorf("i2cm: cannot set speed to %s", f)
}

// Cmd issues cmd and waits for its completion. It returns the resulting
// status word.
func (m *Master) Cmd(cmd uint32) (uint32, error) {
	m.regs.Write32(csr, 0)
	if err := m.irq.Enable(); err != nil {
		return 0, err
	}
	m.regs.Write32(csr, cmd)
	if _, err := m.irq.WaitTimeout(m.Timeout); err != nil {
		return 0, fmt.Errorf("i2cm: cmd %#x: %w", cmd, err)
	}
	st := m.regs.Read32(csr)
	util.Debug("i2cm: cmd %#08x status %#08x", cmd, st)
	if st&StErr == 0 {
		return st, nil
	}
	switch {
	case st&StArbLost != 0:
		return st, fmt.Errorf("%w (status %#08x)", ErrArbLost, st)
	case st&StBusBusy != 0:
		return st, fmt.Errorf("%w (status %#08x)", ErrBusBusy, st)
	}
	return st, fmt.Errorf("%w (status %#08x)", ErrFailed, st)
}

func (m *Master) cmdAck(cmd uint32, what string) error {
	st, err := m.Cmd(cmd)
	if err != nil {
		return err
	}
	if st&StACK == 0 {
		return fmt.Errorf("%w (%s): %#08x", ErrNoAck, what, st)
	}
	return nil
}

// Stop generates the STOP condition.
func (m *Master) Stop() error {
	_, err := m.Cmd(CmdStop)
	return err
}

// Tx writes w and then reads len(r) bytes from the slave at addr using a
// repeated START between both phases. The bus is always left with a STOP.
func (m *Master) Tx(addr uint16, w, r []byte) (err error) {
	if addr > 0x7f {
		return fmt.Errorf("i2cm: invalid slave address %#x (> 0x7f)", addr)
	}
	defer func() {
		if serr := m.Stop(); err == nil {
			err = serr
		}
	}()
	sla := CmdStart | CmdWrite | uint32(addr)<<1
	if len(w) != 0 || len(r) == 0 {
		if err = m.cmdAck(sla, "addressing slave for write"); err != nil {
			return
		}
		for _, b := range w {
			if err = m.cmdAck(CmdWrite|uint32(b), "sending data"); err != nil {
				return
			}
		}
	}
	if len(r) == 0 {
		return
	}
	if err = m.cmdAck(sla|rd, "addressing slave for read"); err != nil {
		return
	}
	cmd := uint32(CmdRead)
	for i := range r {
		if i == len(r)-1 {
			cmd |= CmdNACK
		}
		var st uint32
		if st, err = m.Cmd(cmd); err != nil {
			return
		}
		r[i] = byte(st)
	}
	return
}
