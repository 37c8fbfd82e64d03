// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import (
	"fmt"
	"io"

	"github.com/embeddedgo/uiotools/zqtool/internal/fifo"
)

// window is the byte addressable view of a mapped register window.
type window interface {
	Len() int
	Read8At(off int) uint8
	Read16At(off int) uint16
	Read32At(off int) uint32
	Write8At(off int, v uint8)
	Write16At(off int, v uint16)
	Write32At(off int, v uint32)
}

// access describes n consecutive reads or writes. If width is 0 the start is
// a 32-bit register number, otherwise it is a byte offset.
type access struct {
	width int
	start int
	n     int
	write bool
	val   uint32
}

func (a *access) step() int {
	if a.width == 0 {
		return 1
	}
	return a.width
}

// offset returns the byte offset of the i-th location.
func (a *access) offset(i int) int {
	o := a.start + i*a.step()
	if a.width == 0 {
		o *= 4
	}
	return o
}

func (a *access) check(size int) error {
	switch a.width {
	case 0, 1, 2, 4:
	default:
		return fmt.Errorf("invalid width %d: must be 0, 1, 2 or 4", a.width)
	}
	if a.n < 1 {
		return fmt.Errorf("invalid number of accesses %d", a.n)
	}
	if a.start < 0 {
		return fmt.Errorf("negative offset %d", a.start)
	}
	bytes := a.width
	if bytes == 0 {
		bytes = 4
	}
	if end := a.offset(a.n-1) + bytes; end > size {
		return fmt.Errorf(
			"access to byte %#x beyond the %#x byte window", end-1, size,
		)
	}
	return nil
}

// drainCheck reports whether a window of size bytes covers the receive
// registers read by fifo.Drain.
func drainCheck(size int) error {
	if need := (fifo.RLR + 1) * 4; size < need {
		return fmt.Errorf(
			"the %#x byte window does not cover the FIFO registers (%#x bytes)",
			size, need,
		)
	}
	return nil
}

// run performs the access. Every read value is printed to w followed by the
// lines returned by decode (if not nil) for its byte offset.
func (a *access) run(w io.Writer, win window, decode func(off int, v uint32) []string) error {
	if err := a.check(win.Len()); err != nil {
		return err
	}
	pre := "byte"
	if a.width == 0 {
		pre = "reg"
	}
	for i := 0; i < a.n; i++ {
		off := a.offset(i)
		if a.write {
			switch a.width {
			case 1:
				win.Write8At(off, uint8(a.val))
			case 2:
				win.Write16At(off, uint16(a.val))
			default:
				win.Write32At(off, a.val)
			}
			continue
		}
		var v uint32
		switch a.width {
		case 1:
			v = uint32(win.Read8At(off))
		case 2:
			v = uint32(win.Read16At(off))
		default:
			v = win.Read32At(off)
		}
		o := off
		if a.width == 0 {
			o = off / 4
		}
		if _, err := fmt.Fprintf(w, "%s offset 0x%08x: 0x%08x\n", pre, o, v); err != nil {
			return err
		}
		if decode == nil {
			continue
		}
		for _, s := range decode(off, v) {
			if _, err := fmt.Fprintf(w, "    %s\n", s); err != nil {
				return err
			}
		}
	}
	return nil
}
