// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eeprom accesses small I2C EEPROMs with a single address byte
// (24C02 and alike).
package eeprom

import (
	"fmt"
	"io"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"periph.io/x/conn/v3/i2c"
)

const (
	DefaultAddr = 0x50
	Size        = 256
)

// Check validates the slave address, the offset and the length of an
// access.
func Check(addr uint16, off, n int) error {
	if addr&^0x7f != 0 {
		return fmt.Errorf("invalid slave address %#x (> 0x7f)", addr)
	}
	if off&^0xff != 0 {
		return fmt.Errorf("invalid offset %d (> 255)", off)
	}
	if n < 0 || n > Size {
		return fmt.Errorf("invalid length %d (> %d)", n, Size)
	}
	return nil
}

// Read reads n bytes starting at off. Reads wrap around at the end of the
// device.
func Read(bus i2c.Bus, addr uint16, off, n int) ([]byte, error) {
	if err := Check(addr, off, n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := bus.Tx(addr, []byte{byte(off)}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write writes data starting at off in one bus transaction.
func Write(bus i2c.Bus, addr uint16, off int, data []byte) error {
	if err := Check(addr, off, len(data)); err != nil {
		return err
	}
	w := make([]byte, 0, 1+len(data))
	w = append(w, byte(off))
	w = append(w, data...)
	return bus.Tx(addr, w, nil)
}

// Dump writes data as lines of 16 bytes prefixed by their address. The
// first byte of data is at the address base.
func Dump(w io.Writer, base int, data []byte) error {
	var err error
	for i, b := range data {
		if i&0xf == 0 {
			_, err = fmt.Fprintf(w, "\n%04x: ", base+i)
		}
		if err == nil {
			_, err = fmt.Fprintf(w, " %02X", b)
		}
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// ParseValues parses the byte values to be written. Values out of the 0..255
// range are truncated with a warning.
func ParseValues(args []string) ([]byte, error) {
	data := make([]byte, len(args))
	for i, s := range args {
		v, err := util.ParseInt(s, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		if v&^0xff != 0 {
			util.Warn("Warning: value %d out of range (0..255), truncating", i+1)
		}
		data[i] = byte(v)
	}
	return data, nil
}
