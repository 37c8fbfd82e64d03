// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// A regular file can stand in for the device: it can be mapped shared and
// read/written like the UIO interrupt interface.
func tempDev(t *testing.T, size int) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "uio0")
	if err := os.WriteFile(name, make([]byte, size), 0o666); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestDeviceAccess(t *testing.T) {
	name := tempDev(t, DefaultSize)
	d, err := Open(name, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != DefaultSize || d.NumRegs() != DefaultSize/4 {
		t.Fatalf("Len = %d, NumRegs = %d", d.Len(), d.NumRegs())
	}
	d.Write32(1, 0xdeadbeef)
	d.Write16At(8, 0x1234)
	d.Write8At(11, 0x56)
	if v := d.Read32(1); v != 0xdeadbeef {
		t.Errorf("Read32(1) = %#x", v)
	}
	var w [4]byte
	binary.NativeEndian.PutUint32(w[:], 0xdeadbeef)
	if v := d.Read8At(4); v != w[0] {
		t.Errorf("Read8At(4) = %#x", v)
	}
	if v := d.Read16At(8); v != 0x1234 {
		t.Errorf("Read16At(8) = %#x", v)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if v := binary.NativeEndian.Uint32(data[4:]); v != 0xdeadbeef {
		t.Errorf("register 1 in file = %#x", v)
	}
	if data[11] != 0x56 {
		t.Errorf("byte 11 in file = %#x", data[11])
	}
}

func TestOpenUnaligned(t *testing.T) {
	name := tempDev(t, 2*DefaultSize)
	if _, err := Open(name, DefaultSize, 3); err == nil {
		t.Fatal("unaligned offset accepted")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "none"), 0, 0); err == nil {
		t.Fatal("missing device accepted")
	}
}

func TestInterrupt(t *testing.T) {
	name := tempDev(t, 0)
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 7)
	if err := os.WriteFile(name, buf[:], 0o666); err != nil {
		t.Fatal(err)
	}
	irq, err := OpenInterrupt(name)
	if err != nil {
		t.Fatal(err)
	}
	n, err := irq.WaitTimeout(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("Wait() = %d, want 7", n)
	}
	// The file offset is now at EOF so the next write appends.
	if err := irq.Enable(); err != nil {
		t.Fatal(err)
	}
	if err := irq.Disable(); err != nil {
		t.Fatal(err)
	}
	if _, err := irq.Wait(); err == nil {
		t.Error("Wait at EOF succeeded")
	}
	irq.Close()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 12 {
		t.Fatalf("file has %d bytes, want 12", len(data))
	}
	if binary.NativeEndian.Uint32(data[4:]) != 1 || binary.NativeEndian.Uint32(data[8:]) != 0 {
		t.Errorf("enable/disable wrote %x", data[4:])
	}
}

func TestWaitTimeout(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	irq := &Interrupt{r}
	defer irq.Close()
	_, err = irq.WaitTimeout(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitTimeout: %v, want ErrTimeout", err)
	}

	const short = 100 * time.Microsecond
	start := time.Now()
	_, err = irq.WaitTimeout(short)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitTimeout(%v): %v, want ErrTimeout", short, err)
	}
	if el := time.Since(start); el < short {
		t.Errorf("WaitTimeout(%v) returned after %v", short, el)
	}

	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 3)
	if _, err := w.Write(buf[:]); err != nil {
		t.Fatal(err)
	}
	if n, err := irq.WaitTimeout(short); err != nil || n != 3 {
		t.Errorf("WaitTimeout(%v) = %d, %v, want 3", short, n, err)
	}
}

func TestPollTimeout(t *testing.T) {
	tests := []struct {
		d  time.Duration
		ms int
	}{
		{0, 0},
		{time.Nanosecond, 1},
		{100 * time.Microsecond, 1},
		{time.Millisecond, 1},
		{time.Millisecond + 1, 2},
		{time.Second, 1000},
	}
	for _, tc := range tests {
		if ms := pollTimeout(tc.d); ms != tc.ms {
			t.Errorf("pollTimeout(%v) = %d, want %d", tc.d, ms, tc.ms)
		}
	}
}
