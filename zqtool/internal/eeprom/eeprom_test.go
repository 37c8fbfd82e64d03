// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eeprom

import (
	"bytes"
	"testing"

	"periph.io/x/conn/v3/physic"
)

type memBus struct {
	mem  [Size]byte
	ptr  byte
	txs  int
	addr uint16
}

func (b *memBus) String() string                    { return "mem" }
func (b *memBus) SetSpeed(f physic.Frequency) error { return nil }

func (b *memBus) Tx(addr uint16, w, r []byte) error {
	b.txs++
	b.addr = addr
	if len(w) != 0 {
		b.ptr = w[0]
		for _, v := range w[1:] {
			b.mem[b.ptr] = v
			b.ptr++
		}
	}
	for i := range r {
		r[i] = b.mem[b.ptr]
		b.ptr++
	}
	return nil
}

func TestReadWrite(t *testing.T) {
	bus := new(memBus)
	if err := Write(bus, DefaultAddr, 0xfe, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if bus.mem[0xfe] != 1 || bus.mem[0xff] != 2 || bus.mem[0] != 3 {
		t.Errorf("write did not wrap: %x %x", bus.mem[0xfe:], bus.mem[:1])
	}
	got, err := Read(bus, DefaultAddr, 0xfe, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Read = %x", got)
	}
	if bus.txs != 2 || bus.addr != DefaultAddr {
		t.Errorf("txs = %d, addr = %#x", bus.txs, bus.addr)
	}
}

func TestCheck(t *testing.T) {
	bus := new(memBus)
	if _, err := Read(bus, 0x80, 0, 1); err == nil {
		t.Error("address 0x80 accepted")
	}
	if _, err := Read(bus, 0x50, 256, 1); err == nil {
		t.Error("offset 256 accepted")
	}
	if _, err := Read(bus, 0x50, 0, 257); err == nil {
		t.Error("length 257 accepted")
	}
	if bus.txs != 0 {
		t.Error("bus used for invalid requests")
	}
}

func TestDump(t *testing.T) {
	data := make([]byte, 18)
	for i := range data {
		data[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, 0x10, data); err != nil {
		t.Fatal(err)
	}
	want := "\n0010:  00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F" +
		"\n0020:  10 11\n"
	if buf.String() != want {
		t.Errorf("Dump:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestParseValues(t *testing.T) {
	data, err := ParseValues([]string{"0x12", "255", "0377", "0x1ab", "-1"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0x12, 0xff, 0xff, 0xab, 0xff}) {
		t.Errorf("ParseValues = %x", data)
	}
	if _, err := ParseValues([]string{"1", "x"}); err == nil {
		t.Error("bad value accepted")
	}
}
