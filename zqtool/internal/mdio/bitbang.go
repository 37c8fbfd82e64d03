// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mdio provides access to Ethernet PHY management registers.
package mdio

import (
	"errors"
	"fmt"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

// Bit-bang interface registers.
const (
	regCmd = 1
	regSta = 5

	cmdVal = 1 << 5
	cmdClk = 1 << 4
	staVal = 0x80000000
)

// Clause 22 frame fields.
const (
	frameStart = 0x40000000
	frameRead  = 0x20000000
	frameWrite = 0x10000000
	frameTA    = 0x00020000
	preamble   = 0xffffffff
)

var ErrRange = errors.New("mdio: argument out of range")

// BitBang drives the MDC/MDIO lines through the general purpose bits of
// a register pair: the command register holds the MDC and MDIO output bits,
// the status register returns the MDIO input.
type BitBang struct {
	regs uio.Regs
}

func NewBitBang(regs uio.Regs) *BitBang {
	return &BitBang{regs}
}

func (bb *BitBang) clkLow() {
	bb.regs.Write32(regCmd, bb.regs.Read32(regCmd)&^cmdClk)
}

func (bb *BitBang) bit(b bool) bool {
	v := bb.regs.Read32(regCmd)
	if b {
		v |= cmdVal
	} else {
		v &^= cmdVal
	}
	bb.regs.Write32(regCmd, v)
	bb.regs.Write32(regCmd, v|cmdClk)
	bb.regs.Write32(regCmd, v)
	return bb.regs.Read32(regSta)&staVal != 0
}

// word shifts out tx MSB first. It returns the 16 bits sampled in the data
// phase of the frame.
func (bb *BitBang) word(tx uint32) uint16 {
	util.Debug("mdio: send word %#08x", tx)
	var rx uint32
	for i := 0; i < 32; i++ {
		rx <<= 1
		if bb.bit(tx&(1<<31) != 0) {
			rx |= 1
		}
		tx <<= 1
	}
	return uint16(rx >> 1)
}

// Frame returns the clause 22 management frame for the given PHY register.
// A negative val gives the read frame.
func Frame(phy, reg, val int) uint32 {
	f := uint32(frameStart) | uint32(phy<<7|reg<<2)<<16
	if val < 0 {
		return f | frameRead
	}
	return f | frameWrite | frameTA | uint32(val&0xffff)
}

func check(phy, reg, val int) error {
	if phy < 0 || phy > 31 || phy == 0 && val < 0 {
		return fmt.Errorf("%w: invalid phy #%d", ErrRange, phy)
	}
	if reg < 0 || reg > 31 {
		return fmt.Errorf("%w: invalid reg #%d", ErrRange, reg)
	}
	if val > 0xffff {
		return fmt.Errorf("%w: value %#x", ErrRange, val)
	}
	return nil
}

func (bb *BitBang) xact(phy, reg, val int) (uint16, error) {
	if err := check(phy, reg, val); err != nil {
		return 0, err
	}
	bb.clkLow()
	bb.word(preamble)
	v := bb.word(Frame(phy, reg, val))
	bb.clkLow()
	return v, nil
}

// Read reads the PHY register. Phy 0 is the broadcast address and can be
// used only for writing.
func (bb *BitBang) Read(phy, reg int) (uint16, error) {
	return bb.xact(phy, reg, -1)
}

func (bb *BitBang) Write(phy, reg int, val uint16) error {
	_, err := bb.xact(phy, reg, int(val))
	return err
}
