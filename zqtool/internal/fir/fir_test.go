// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fir

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio/uiotest"
)

func TestReadCoeffs(t *testing.T) {
	cs, err := ReadCoeffs(strings.NewReader("1 ffff\n0x7fff -1\t12345\n"), MaxCoeffs)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{1, -1, 0x7fff, -1, 0x2345}
	if !slices.Equal(cs, want) {
		t.Errorf("got %v, want %v", cs, want)
	}
	cs, err = ReadCoeffs(strings.NewReader("1 2 3 4"), 2)
	if err != nil || len(cs) != 2 {
		t.Errorf("limited read: %v, %v", cs, err)
	}
	if _, err := ReadCoeffs(strings.NewReader("1 zz"), MaxCoeffs); err == nil ||
		!strings.Contains(err.Error(), "#2") {
		t.Errorf("bad input: %v", err)
	}
	cs, err = ReadCoeffs(strings.NewReader("0x -0x +a -0X10"), MaxCoeffs)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int16{0, 0, 10, -16}; !slices.Equal(cs, want) {
		t.Errorf("got %v, want %v", cs, want)
	}
	for _, s := range []string{"--5", "+-5", "-+5", "++5", "-", "0x-5", "0x0x5"} {
		if _, err := ReadCoeffs(strings.NewReader(s), MaxCoeffs); err == nil {
			t.Errorf("'%s' accepted", s)
		}
	}
}

// core simulates the coefficient RAM of a filter with n coefficients.
func core(ld uint32, broken int) *uiotest.Regs {
	r := uiotest.NewRegs()
	r.Mem[regInfo] = coeffWidth<<16 | ld
	ram := make(map[uint32]uint32)
	r.OnWrite = func(reg int, v uint32) {
		if reg == regCoeff {
			if int(r.Mem[regIndex]) != broken {
				ram[r.Mem[regIndex]] = v & 0xffff
			}
		}
	}
	r.OnRead = func(reg int) (uint32, bool) {
		if reg == regCoeff {
			return ram[r.Mem[regIndex]], true
		}
		return 0, false
	}
	return r
}

func TestLoad(t *testing.T) {
	r := core(3, -1)
	f := New(r)
	n, err := f.NumCoeffs()
	if err != nil || n != 4 {
		t.Fatalf("NumCoeffs = %d, %v", n, err)
	}
	calls := 0
	err = f.Load([]int16{1, -2, 3, -4}, func(done, total int) {
		calls++
		if total != 4 || done != calls {
			t.Errorf("progress(%d, %d)", done, total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 4 {
		t.Errorf("progress called %d times", calls)
	}
	if got := r.Writes(regCoeff); got[1] != 0xfffffffe {
		t.Errorf("coefficient -2 written as %#x", got[1])
	}
}

func TestLoadErrors(t *testing.T) {
	f := New(core(3, 2))
	err := f.Load([]int16{1, 2, 3, 4}, nil)
	if !errors.Is(err, ErrReadback) {
		t.Errorf("Load: %v, want ErrReadback", err)
	}
	if err := f.Load([]int16{1, 2}, nil); err == nil {
		t.Error("wrong coefficient count accepted")
	}
	r := core(3, -1)
	r.Mem[regInfo] = 18<<16 | 3
	if _, err := New(r).NumCoeffs(); err == nil {
		t.Error("18-bit coefficients accepted")
	}
}
