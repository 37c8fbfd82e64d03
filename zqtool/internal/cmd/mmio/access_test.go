// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/embeddedgo/uiotools/zqtool/internal/svd"
)

type memWin []byte

func (m memWin) Len() int                    { return len(m) }
func (m memWin) Read8At(off int) uint8       { return m[off] }
func (m memWin) Read16At(off int) uint16     { return binary.LittleEndian.Uint16(m[off:]) }
func (m memWin) Read32At(off int) uint32     { return binary.LittleEndian.Uint32(m[off:]) }
func (m memWin) Write8At(off int, v uint8)   { m[off] = v }
func (m memWin) Write16At(off int, v uint16) { binary.LittleEndian.PutUint16(m[off:], v) }
func (m memWin) Write32At(off int, v uint32) { binary.LittleEndian.PutUint32(m[off:], v) }

func newWin() memWin {
	m := make(memWin, 64)
	for i := range m {
		m[i] = byte(i)
	}
	return m
}

func TestRead(t *testing.T) {
	tests := []struct {
		a    access
		want string
	}{
		{
			access{width: 0, start: 1, n: 2},
			"reg offset 0x00000001: 0x07060504\nreg offset 0x00000002: 0x0b0a0908\n",
		},
		{
			access{width: 1, start: 5, n: 2},
			"byte offset 0x00000005: 0x00000005\nbyte offset 0x00000006: 0x00000006\n",
		},
		{
			access{width: 2, start: 3, n: 1},
			"byte offset 0x00000003: 0x00000403\n",
		},
		{
			access{width: 4, start: 1, n: 1},
			"byte offset 0x00000001: 0x04030201\n",
		},
	}
	for i, tc := range tests {
		var sb strings.Builder
		if err := tc.a.run(&sb, newWin(), nil); err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if sb.String() != tc.want {
			t.Errorf("%d: got\n%s\nwant\n%s", i, sb.String(), tc.want)
		}
	}
}

func TestWrite(t *testing.T) {
	m := make(memWin, 16)
	a := access{width: 0, start: 1, n: 2, write: true, val: 0xdeadbeef}
	var sb strings.Builder
	if err := a.run(&sb, m, nil); err != nil {
		t.Fatal(err)
	}
	if sb.Len() != 0 {
		t.Errorf("write printed %q", sb.String())
	}
	if m.Read32At(0) != 0 || m.Read32At(4) != 0xdeadbeef || m.Read32At(8) != 0xdeadbeef ||
		m.Read32At(12) != 0 {
		t.Errorf("memory % x", []byte(m))
	}
	a = access{width: 1, start: 3, n: 1, write: true, val: 0x1ff}
	a.run(&sb, m, nil)
	if m[3] != 0xff || m[4] != 0xef {
		t.Errorf("byte write % x", []byte(m))
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		a  access
		ok bool
	}{
		{access{width: 0, start: 15, n: 1}, true},
		{access{width: 0, start: 15, n: 2}, false},
		{access{width: 0, start: 16, n: 1}, false},
		{access{width: 4, start: 61, n: 1}, false},
		{access{width: 2, start: 62, n: 1}, true},
		{access{width: 3, start: 0, n: 1}, false},
		{access{width: 1, start: 0, n: 0}, false},
		{access{width: 1, start: -1, n: 1}, false},
	}
	for _, tc := range tests {
		err := tc.a.check(64)
		if (err == nil) != tc.ok {
			t.Errorf("%+v: %v", tc.a, err)
		}
	}
}

func TestDrainCheck(t *testing.T) {
	for ldSize := 2; ldSize <= 12; ldSize++ {
		err := drainCheck(1 << ldSize)
		if ok := ldSize >= 6; (err == nil) != ok {
			t.Errorf("-s %d: %v", ldSize, err)
		}
	}
	if err := drainCheck(40); err != nil {
		t.Errorf("40 bytes: %v", err)
	}
}

func TestDecode(t *testing.T) {
	const doc = `<device><peripherals><peripheral><name>FIFO</name>
<registers><register><name>RLR</name><addressOffset>0x24</addressOffset>
<fields><field><name>LEN</name><bitRange>[22:0]</bitRange></field></fields>
</register></registers></peripheral></peripherals></device>`
	dev, err := svd.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := dev.Peripheral("FIFO")
	reg, err := regArg("rlr", 0, p)
	if err != nil || reg != 9 {
		t.Fatalf("regArg = %d, %v", reg, err)
	}
	if off, _ := regArg("RLR", 4, p); off != 0x24 {
		t.Errorf("byte offset %#x", off)
	}
	if _, err := regArg("RDFD", 0, p); err == nil {
		t.Error("unknown register accepted")
	}
	if _, err := regArg("RLR", 0, nil); err == nil {
		t.Error("register name accepted without SVD")
	}
	decode := func(off int, v uint32) []string {
		if r := p.RegisterAt(uint64(off)); r != nil {
			return []string{fmt.Sprint(r.Decode(uint64(v)))}
		}
		return nil
	}
	m := newWin()
	var sb strings.Builder
	a := access{start: 8, n: 2}
	if err := a.run(&sb, m, decode); err != nil {
		t.Fatal(err)
	}
	want := "reg offset 0x00000008: 0x23222120\n" +
		"reg offset 0x00000009: 0x27262524\n" +
		"    [LEN[22:0]=0x262524]\n"
	if sb.String() != want {
		t.Errorf("got\n%s\nwant\n%s", sb.String(), want)
	}
}
