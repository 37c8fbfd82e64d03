// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uio maps the register window of a Linux UIO device into the
// process address space and provides ordered register access together with
// the UIO interrupt enable / wait protocol.
package uio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultSize is the size of the register window mapped by default.
const DefaultSize = 0x1000

var ErrTimeout = errors.New("uio: timeout waiting for interrupt")

// Regs is a bank of 32-bit registers addressed by index.
type Regs interface {
	Read32(reg int) uint32
	Write32(reg int, v uint32)
}

// IRQ is the interrupt side of a UIO device.
type IRQ interface {
	Enable() error
	Disable() error
	Wait() (uint32, error)
	WaitTimeout(d time.Duration) (uint32, error)
}

// Interrupt is an open UIO device file used only for interrupt handling.
type Interrupt struct {
	f *os.File
}

// OpenInterrupt opens the UIO device file name for interrupt handling only.
func OpenInterrupt(name string) (*Interrupt, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &Interrupt{f}, nil
}

func (i *Interrupt) Close() error {
	return i.f.Close()
}

func (i *Interrupt) set(on uint32) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], on)
	if _, err := i.f.Write(buf[:]); err != nil {
		return fmt.Errorf("uio: set irq %d: %w", on, err)
	}
	return nil
}

// Enable unmasks the device interrupt. UIO masks the interrupt again every
// time it fires so Enable must be called before each Wait.
func (i *Interrupt) Enable() error { return i.set(1) }

// Disable masks the device interrupt.
func (i *Interrupt) Disable() error { return i.set(0) }

// Wait blocks until the interrupt fires and returns the total number of
// interrupts seen by the driver.
func (i *Interrupt) Wait() (uint32, error) {
	var buf [4]byte
	n, err := i.f.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("uio: wait irq: %w", err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("uio: wait irq: short read (%d bytes)", n)
	}
	return binary.NativeEndian.Uint32(buf[:]), nil
}

// WaitTimeout is like Wait but gives up with ErrTimeout after d. A negative d
// waits forever.
func (i *Interrupt) WaitTimeout(d time.Duration) (uint32, error) {
	if d < 0 {
		return i.Wait()
	}
	fds := []unix.PollFd{{Fd: int32(i.f.Fd()), Events: unix.POLLIN}}
	deadline := time.Now().Add(d)
	for {
		n, err := unix.Poll(fds, pollTimeout(d))
		if err == unix.EINTR {
			d = max(time.Until(deadline), 0)
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("uio: poll: %w", err)
		}
		if n == 0 {
			return 0, ErrTimeout
		}
		return i.Wait()
	}
}

// pollTimeout converts d to poll milliseconds, rounding up.
func pollTimeout(d time.Duration) int {
	return int((d + time.Millisecond - 1) / time.Millisecond)
}

// Device is a mapped UIO register window.
type Device struct {
	*Interrupt
	mem []byte
	off int
}

// Open opens the UIO device file name and maps size bytes of it starting at
// the byte offset off, which must be page aligned.
func Open(name string, size, off int) (*Device, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if off < 0 || off%os.Getpagesize() != 0 {
		return nil, fmt.Errorf("uio: offset %#x not page aligned", off)
	}
	irq, err := OpenInterrupt(name)
	if err != nil {
		return nil, err
	}
	mem, err := unix.Mmap(
		int(irq.f.Fd()), int64(off), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED,
	)
	if err != nil {
		irq.Close()
		return nil, fmt.Errorf("%s: mmap: %w", name, err)
	}
	return &Device{irq, mem, off}, nil
}

// Close unmaps the register window and closes the device file.
func (d *Device) Close() error {
	err := unix.Munmap(d.mem)
	if cerr := d.Interrupt.Close(); err == nil {
		err = cerr
	}
	return err
}

// Addr returns the address at which the window is mapped.
func (d *Device) Addr() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(d.mem)))
}

// Offset returns the device offset at which the window starts.
func (d *Device) Offset() int { return d.off }

// Len returns the size of the mapped window in bytes.
func (d *Device) Len() int { return len(d.mem) }

// NumRegs returns the number of 32-bit registers in the window.
func (d *Device) NumRegs() int { return len(d.mem) / 4 }

func (d *Device) Read32(reg int) uint32 {
	return d.Read32At(reg * 4)
}

func (d *Device) Write32(reg int, v uint32) {
	d.Write32At(reg*4, v)
}

func (d *Device) Read8At(off int) uint8 {
	return *(*uint8)(unsafe.Pointer(&d.mem[off]))
}

func (d *Device) Write8At(off int, v uint8) {
	*(*uint8)(unsafe.Pointer(&d.mem[off])) = v
}

func (d *Device) Read16At(off int) uint16 {
	_ = d.mem[off+1]
	return *(*uint16)(unsafe.Pointer(&d.mem[off]))
}

func (d *Device) Write16At(off int, v uint16) {
	_ = d.mem[off+1]
	*(*uint16)(unsafe.Pointer(&d.mem[off])) = v
}

// Read32At reads the 32-bit word at the byte offset off. Unaligned offsets
// are allowed if the hardware supports them.
func (d *Device) Read32At(off int) uint32 {
	_ = d.mem[off+3]
	p := unsafe.Pointer(&d.mem[off])
	if off&3 != 0 {
		return *(*uint32)(p)
	}
	return atomic.LoadUint32((*uint32)(p))
}

func (d *Device) Write32At(off int, v uint32) {
	_ = d.mem[off+3]
	p := unsafe.Pointer(&d.mem[off])
	if off&3 != 0 {
		*(*uint32)(p) = v
		return
	}
	atomic.StoreUint32((*uint32)(p), v)
}
