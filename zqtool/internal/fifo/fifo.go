// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fifo drives the memory-mapped AXI4-Stream FIFO core used to move
// audio samples and Ethernet test frames between the processor and the
// programmable logic.
package fifo

import (
	"context"
	"time"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
)

// Register numbers.
const (
	ISR  = 0x0 // interrupt status
	IER  = 0x1 // interrupt enable
	TDFR = 0x2 // TX reset
	TDFV = 0x3 // TX vacancy
	TDFD = 0x4 // TX data
	TLR  = 0x5 // TX length
	RDFR = 0x6 // RX reset
	RDFO = 0x7 // RX occupancy
	RDFD = 0x8 // RX data
	RLR  = 0x9 // RX length
	TDR  = 0xb // TX destination
)

// ISR/IER bits.
const (
	RxEmpty   = 1 << 19
	RxFull    = 1 << 20
	TxEmpty   = 1 << 21
	TxFull    = 1 << 22
	RxRstDone = 1 << 23
	TxRstDone = 1 << 24
)

const (
	ResetKey = 0xa5
	cntMask  = 1<<12 - 1
	lenMask  = 0x1ffff
)

// FIFO is a single AXI4-Stream FIFO core.
type FIFO struct {
	regs uio.Regs
	irq  uio.IRQ

	// UseIRQ selects interrupt driven waits instead of polling the status
	// register. The caller enables the interrupt once before the first
	// Write or Read.
	UseIRQ bool

	// IRQTimeout bounds a single interrupt wait so that a cancelled
	// context is noticed, negative means forever.
	IRQTimeout time.Duration
}

func New(regs uio.Regs, irq uio.IRQ) *FIFO {
	return &FIFO{regs: regs, irq: irq, IRQTimeout: 100 * time.Millisecond}
}

// Ack clears the status bits in mask.
func (f *FIFO) Ack(mask uint32) {
	f.regs.Write32(ISR, mask)
}

func (f *FIFO) waitStatus(ctx context.Context, mask uint32) error {
	for f.regs.Read32(ISR)&mask == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// waitIRQ blocks until the interrupt fires or ctx is done.
func (f *FIFO) waitIRQ(ctx context.Context) error {
	for {
		_, err := f.irq.WaitTimeout(f.IRQTimeout)
		if err != uio.ErrTimeout {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (f *FIFO) reset(ctx context.Context, rstReg int, done uint32) error {
	f.regs.Write32(rstReg, ResetKey)
	return f.waitStatus(ctx, done)
}

// InitTx resets the transmit side, sets the stream destination and enables
// the TX empty interrupt.
func (f *FIFO) InitTx(ctx context.Context, dest uint32) error {
	f.Ack(TxEmpty | TxRstDone)
	if err := f.reset(ctx, TDFR, TxRstDone); err != nil {
		return err
	}
	f.regs.Write32(TDR, dest)
	f.regs.Write32(IER, TxEmpty)
	return nil
}

// InitRx resets the receive side and enables the RX full interrupt.
func (f *FIFO) InitRx(ctx context.Context) error {
	mask := uint32(RxFull | RxRstDone)
	f.Ack(mask)
	if err := f.reset(ctx, RDFR, RxRstDone); err != nil {
		return err
	}
	f.Ack(mask)
	f.regs.Write32(IER, RxFull)
	return nil
}

// Vacancy returns the number of free words in the transmit FIFO.
func (f *FIFO) Vacancy() int {
	return int(f.regs.Read32(TDFV) & cntMask)
}

// Occupancy returns the number of words in the receive FIFO.
func (f *FIFO) Occupancy() int {
	return int(f.regs.Read32(RDFO) & cntMask)
}

// Write pushes all words into the transmit FIFO, waiting for free space when
// the FIFO is full.
func (f *FIFO) Write(ctx context.Context, words []uint32) error {
	for len(words) != 0 {
		vac := f.Vacancy()
		for vac == 0 {
			if f.UseIRQ {
				if err := f.waitIRQ(ctx); err != nil {
					return err
				}
				f.Ack(TxEmpty)
				if err := f.irq.Enable(); err != nil {
					return err
				}
			} else {
				if err := f.waitStatus(ctx, TxEmpty); err != nil {
					return err
				}
				f.Ack(TxEmpty | TxFull)
			}
			vac = f.Vacancy()
		}
		vac = min(vac, len(words))
		for _, w := range words[:vac] {
			f.regs.Write32(TDFD, w)
		}
		words = words[vac:]
	}
	return nil
}

// Read fills buf with words from the receive FIFO. The first skip received
// words are discarded.
func (f *FIFO) Read(ctx context.Context, buf []uint32, skip int) error {
	for len(buf) != 0 {
		if f.UseIRQ {
			if err := f.waitIRQ(ctx); err != nil {
				return err
			}
		} else if err := f.waitStatus(ctx, RxFull); err != nil {
			return err
		}
		occ := f.Occupancy()
		n := min(skip, occ)
		for i := 0; i < n; i++ {
			f.regs.Read32(RDFD)
		}
		skip -= n
		n = min(occ-n, len(buf))
		for i := range buf[:n] {
			buf[i] = f.regs.Read32(RDFD)
		}
		buf = buf[n:]
		f.Ack(RxFull)
		if f.UseIRQ {
			if err := f.irq.Enable(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Drain reads complete packets from the receive FIFO until it is empty. For
// every packet fn is called with the content of the length register and the
// packet words.
func (f *FIFO) Drain(fn func(rlr uint32, words []uint32)) {
	var words []uint32
	for {
		rlr := f.regs.Read32(RLR)
		if rlr == 0 {
			return
		}
		words = words[:0]
		for n := (rlr & lenMask) >> 2; n != 0; n-- {
			words = append(words, f.regs.Read32(RDFD))
		}
		fn(rlr, words)
	}
}

// Send pushes a frame into the transmit FIFO without waiting for space. If
// last is true it also writes the length register which terminates the
// stream packet (TLAST).
func (f *FIFO) Send(words []uint32, last bool) {
	for _, w := range words {
		f.regs.Write32(TDFD, w)
	}
	if last {
		f.regs.Write32(TLR, 4)
	}
}

// TestFrame returns the Ethernet test frame: the destination and
// source addresses, the ethertype and a counting payload. The least
// significant byte of every word goes out first.
func TestFrame() []uint32 {
	pkt := make([]uint32, 128)
	copy(pkt, []uint32{0x02350a00, 0x54529de6, 0xec853b00, 0x00000008})
	for i := 4; i < len(pkt); i++ {
		pkt[i] = uint32(i)
	}
	return pkt
}
