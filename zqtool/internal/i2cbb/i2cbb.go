// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package i2cbb implements an I2C master by bit-banging two GPIO lines.
//
// The lines are driven open-drain: a line is released (high level provided
// by the pull-up) by switching the pin to input and pulled low by switching
// it to output low. The slave may hold SCL low to stretch the clock.
package i2cbb

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin is the subset of gpio.PinIO used to drive a line.
type Pin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Out(l gpio.Level) error
	Read() gpio.Level
}

var (
	ErrNoAck          = errors.New("i2cbb: missing ACK")
	ErrStretchTimeout = errors.New("i2cbb: SCL held low too long")
)

const DefaultSpeed = 100 * physic.KiloHertz

// Bus is a bit-banged I2C bus. It implements periph.io/x/conn/v3/i2c.Bus.
type Bus struct {
	scl, sda Pin
	half     time.Duration

	// StretchTimeout limits the time the slave can hold SCL low.
	StretchTimeout time.Duration

	err error
}

// New initializes the scl and sda lines and returns the bus in the idle
// state.
func New(scl, sda Pin) (*Bus, error) {
	b := &Bus{scl: scl, sda: sda, StretchTimeout: 10 * time.Millisecond}
	if err := b.SetSpeed(DefaultSpeed); err != nil {
		return nil, err
	}
	for _, p := range []Pin{sda, scl} {
		if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bus) String() string { return "i2cbb" }

// SetSpeed sets the SCL frequency. The real frequency is lower because of
// the time it takes to toggle the lines.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("i2cbb: invalid speed %s", f)
	}
	b.half = f.Period() / 2
	return nil
}

func (b *Bus) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Bus) delay() {
	if b.half > 0 {
		time.Sleep(b.half)
	}
}

func (b *Bus) release(p Pin) {
	if b.err == nil {
		b.setErr(p.In(gpio.PullNoChange, gpio.NoEdge))
	}
}

func (b *Bus) pull(p Pin) {
	if b.err == nil {
		b.setErr(p.Out(gpio.Low))
	}
}

func (b *Bus) level(p Pin) gpio.Level {
	if b.err != nil {
		return gpio.High
	}
	return p.Read()
}

// sclHigh releases SCL and waits until the slave releases it too.
func (b *Bus) sclHigh() {
	b.release(b.scl)
	deadline := time.Now().Add(b.StretchTimeout)
	for b.err == nil && !b.level(b.scl) {
		if time.Now().After(deadline) {
			b.setErr(ErrStretchTimeout)
		}
	}
}

func (b *Bus) start() {
	b.release(b.sda)
	b.sclHigh()
	b.delay()
	b.pull(b.sda)
	b.delay()
	b.pull(b.scl)
}

func (b *Bus) stop() {
	b.pull(b.sda)
	b.delay()
	b.sclHigh()
	b.delay()
	b.release(b.sda)
	b.delay()
}

func (b *Bus) writeBit(bit bool) {
	if bit {
		b.release(b.sda)
	} else {
		b.pull(b.sda)
	}
	b.delay()
	b.sclHigh()
	b.delay()
	b.pull(b.scl)
}

func (b *Bus) readBit() gpio.Level {
	b.release(b.sda)
	b.delay()
	b.sclHigh()
	l := b.level(b.sda)
	b.delay()
	b.pull(b.scl)
	return l
}

// writeByte sends v MSB first and reports whether the slave acknowledged it.
func (b *Bus) writeByte(v byte) bool {
	for i := 0; i < 8; i++ {
		b.writeBit(v&0x80 != 0)
		v <<= 1
	}
	return b.readBit() == gpio.Low
}

func (b *Bus) readByte(ack bool) byte {
	var v byte
	for i := 0; i < 8; i++ {
		v <<= 1
		if b.readBit() {
			v |= 1
		}
	}
	b.writeBit(!ack)
	return v
}

func (b *Bus) sendAck(v byte, what string) {
	if !b.writeByte(v) {
		b.setErr(fmt.Errorf("%w (%s)", ErrNoAck, what))
	}
}

// Tx writes w and then reads len(r) bytes from the slave at addr using
// a repeated START between both phases.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7f {
		return fmt.Errorf("i2cbb: invalid slave address %#x (> 0x7f)", addr)
	}
	b.err = nil
	sla := byte(addr << 1)
	b.start()
	started := false
	if len(w) != 0 || len(r) == 0 {
		b.sendAck(sla, "addressing slave for write")
		for _, v := range w {
			b.sendAck(v, "sending data")
		}
		started = true
	}
	if len(r) != 0 && b.err == nil {
		if started {
			b.start()
		}
		b.sendAck(sla|1, "addressing slave for read")
		for i := range r {
			r[i] = b.readByte(i != len(r)-1)
		}
	}
	err := b.err
	if !errors.Is(err, ErrStretchTimeout) {
		b.err = nil
		b.stop()
		if err == nil {
			err = b.err
		}
	}
	return err
}

// Writer buffers the bytes written to it and sends them to the slave as
// a single write transaction on Flush.
type Writer struct {
	bus  *Bus
	addr uint16
	buf  []byte
}

func NewWriter(bus *Bus, addr uint16) *Writer {
	return &Writer{bus: bus, addr: addr}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *Writer) WriteByte(c byte) error {
	w.buf = append(w.buf, c)
	return nil
}

// Buffered returns the number of bytes waiting for Flush.
func (w *Writer) Buffered() int { return len(w.buf) }

// Flush sends the buffered bytes. The buffer is emptied even if the
// transaction fails.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.bus.Tx(w.addr, w.buf, nil)
	w.buf = w.buf[:0]
	return err
}
