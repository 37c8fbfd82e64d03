// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svd

import (
	"errors"
	"strings"
	"testing"
)

const fifoSVD = `<?xml version="1.0" encoding="utf-8"?>
<device>
  <name>ZYNQ_PL</name>
  <width>32</width>
  <peripherals>
    <peripheral>
      <name>FIFO0</name>
      <baseAddress>0x43c00000</baseAddress>
      <registers>
        <register>
          <name>ISR</name>
          <addressOffset>0x0</addressOffset>
          <fields>
            <field><name>RC</name><bitOffset>26</bitOffset><bitWidth>1</bitWidth></field>
            <field><name>RFPF</name><lsb>19</lsb><msb>19</msb></field>
            <field>
              <name>MODE</name><bitRange>[3:0]</bitRange>
              <enumeratedValues>
                <enumeratedValue><name>IDLE</name><value>0</value></enumeratedValue>
                <enumeratedValue><name>BUSY</name><value>#1x1</value></enumeratedValue>
              </enumeratedValues>
            </field>
            <field><name>BAD</name><bitRange>[1:2]</bitRange></field>
          </fields>
        </register>
        <register>
          <name>RLR</name>
          <addressOffset>0x24</addressOffset>
        </register>
      </registers>
    </peripheral>
    <peripheral derivedFrom="FIFO0">
      <name>FIFO1</name>
      <baseAddress>0x43c10000</baseAddress>
    </peripheral>
  </peripherals>
</device>`

func TestLookup(t *testing.T) {
	dev, err := Load(strings.NewReader(fifoSVD))
	if err != nil {
		t.Fatal(err)
	}
	p, err := dev.Peripheral("fifo1")
	if err != nil {
		t.Fatal(err)
	}
	if p.BaseAddress != 0x43c10000 || len(p.Registers) != 2 {
		t.Errorf("derived peripheral: %#x, %d registers", p.BaseAddress, len(p.Registers))
	}
	r, err := p.Register("rlr")
	if err != nil || r.AddressOffset != 0x24 {
		t.Errorf("Register: %v, %v", r, err)
	}
	if p.RegisterAt(0) == nil || p.RegisterAt(4) != nil {
		t.Error("RegisterAt")
	}
	if _, err := p.Register("TDFD"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing register: %v", err)
	}
	if _, err := dev.Peripheral("GPIO"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing peripheral: %v", err)
	}
}

func TestDerivedCycle(t *testing.T) {
	const doc = `<device><peripherals>
<peripheral derivedFrom="SELF"><name>SELF</name></peripheral>
<peripheral derivedFrom="B"><name>A</name></peripheral>
<peripheral derivedFrom="a"><name>B</name></peripheral>
<peripheral derivedFrom="A"><name>C</name></peripheral>
</peripherals></device>`
	dev, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"SELF", "A", "B", "C"} {
		if _, err := dev.Peripheral(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: %v, want ErrNotFound", name, err)
		}
	}
}

func TestDecode(t *testing.T) {
	dev, err := Load(strings.NewReader(fifoSVD))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := dev.Peripherals[0].Register("ISR")
	fvs := r.Decode(1<<26 | 1<<19 | 5)
	if len(fvs) != 3 {
		t.Fatalf("decoded %d fields: %v", len(fvs), fvs)
	}
	want := []string{"RC[26]=0x1", "RFPF[19]=0x1", "MODE[3:0]=0x5 (BUSY)"}
	for i, fv := range fvs {
		if s := fv.String(); s != want[i] {
			t.Errorf("field %d: got %q, want %q", i, s, want[i])
		}
	}
	if fvs := r.Decode(0); fvs[2].Enum != "IDLE" {
		t.Errorf("MODE=0 decoded as %q", fvs[2].Enum)
	}
}
