// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mdio

import (
	"errors"
	"fmt"
	"time"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

// 10G Ethernet MAC management registers (register numbers, byte offsets
// 0x500..0x50c).
const (
	regC0 = 0x140
	regC1 = 0x141
	regTD = 0x142
	regRD = 0x143
)

const (
	c0Enable = 1 << 6
	Div      = 62 // 156.25 MHz / 2.5 MHz

	opAddr  = 0 << 14
	opWrite = 1 << 14
	opRead  = 3 << 14

	cmdGo  = 0x800
	stDone = 0x080
)

var ErrTimeout = errors.New("mdio: timeout")

// XGE is the clause 45 MDIO master of the 10G Ethernet MAC.
type XGE struct {
	regs    uio.Regs
	Poll    time.Duration
	Timeout time.Duration
}

func NewXGE(regs uio.Regs) *XGE {
	return &XGE{regs: regs, Poll: time.Millisecond, Timeout: time.Second}
}

// Init enables the MDIO interface if it was not configured yet. It reports
// whether it had to do it.
func (x *XGE) Init() bool {
	if x.regs.Read32(regC0) != 0 {
		return false
	}
	x.regs.Write32(regC0, c0Enable|Div)
	return true
}

func cmd(port, dev int, op uint32) uint32 {
	return uint32(port)<<24 | uint32(dev)<<16 | op | cmdGo
}

func (x *XGE) exec(c uint32) error {
	util.Debug("mdio: xge cmd %#08x", c)
	x.regs.Write32(regC1, c)
	deadline := time.Now().Add(x.Timeout)
	for {
		time.Sleep(x.Poll)
		if x.regs.Read32(regC1)&stDone != 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w (cmd %#08x)", ErrTimeout, c)
		}
	}
}

func (x *XGE) address(port, dev, reg int) error {
	if port < 0 || port > 31 || dev < 0 || dev > 31 {
		return fmt.Errorf("%w: port %d dev %d", ErrRange, port, dev)
	}
	if reg < 0 || reg > 0xffff {
		return fmt.Errorf("%w: reg %#x", ErrRange, reg)
	}
	x.regs.Write32(regTD, uint32(reg))
	return x.exec(cmd(port, dev, opAddr))
}

// Read reads the register reg of the MMD dev of the PHY at port.
func (x *XGE) Read(port, dev, reg int) (uint32, error) {
	if err := x.address(port, dev, reg); err != nil {
		return 0, err
	}
	if err := x.exec(cmd(port, dev, opRead)); err != nil {
		return 0, err
	}
	return x.regs.Read32(regRD), nil
}

func (x *XGE) Write(port, dev, reg int, v uint32) error {
	if err := x.address(port, dev, reg); err != nil {
		return err
	}
	x.regs.Write32(regTD, v)
	return x.exec(cmd(port, dev, opWrite))
}
