// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fir loads coefficients into the FIR filter core.
package fir

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
)

// MaxCoeffs is the largest number of coefficients accepted from a file.
const MaxCoeffs = 2048

const (
	regInfo  = 0 // coefficient width in bits 31:16, log2(2*ncoeffs) in 15:0
	regIndex = 1
	regCoeff = 2

	coeffWidth = 16
)

var ErrReadback = errors.New("fir: coefficient readback failed")

// ReadCoeffs reads up to max white-space separated hexadecimal numbers from
// r. Only the low 16 bits of every number are kept.
func ReadCoeffs(r io.Reader, max int) ([]int16, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var cs []int16
	for len(cs) < max && sc.Scan() {
		v, err := parseHex(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("fir: bad coefficient #%d '%s'", len(cs)+1, sc.Text())
		}
		cs = append(cs, int16(uint16(v)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fir: %w", err)
	}
	return cs, nil
}

// parseHex parses a hexadecimal number with an optional sign and 0x prefix.
// A bare prefix is 0.
func parseHex(s string) (uint64, error) {
	neg := strings.HasPrefix(s, "-")
	if neg || strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		if s == "" {
			return 0, nil
		}
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if neg {
		v = -v
	}
	return v, err
}

// Filter is the coefficient interface of the filter core.
type Filter struct {
	regs uio.Regs
}

func New(regs uio.Regs) *Filter {
	return &Filter{regs}
}

// NumCoeffs returns the number of coefficients the core expects.
func (f *Filter) NumCoeffs() (int, error) {
	info := f.regs.Read32(regInfo)
	if w := info >> 16; w != coeffWidth {
		return 0, fmt.Errorf("fir: coefficient width %d, want %d", w, coeffWidth)
	}
	ld := info & 0xffff
	if ld == 0 || ld > 16 {
		return 0, fmt.Errorf("fir: bad coefficient count field %#x", ld)
	}
	return 1 << (ld - 1), nil
}

// Load programs all coefficients and verifies each one by reading it back.
// The progress function, if not nil, is called after every coefficient.
func (f *Filter) Load(cs []int16, progress func(done, total int)) error {
	n, err := f.NumCoeffs()
	if err != nil {
		return err
	}
	if len(cs) != n {
		return fmt.Errorf("fir: got %d coefficients, expected %d", len(cs), n)
	}
	for i, c := range cs {
		f.regs.Write32(regIndex, uint32(i))
		f.regs.Write32(regCoeff, uint32(int32(c)))
		f.regs.Write32(regIndex, uint32(i))
		if got := f.regs.Read32(regCoeff); int16(got) != c {
			return fmt.Errorf(
				"%w (i=%d, got %#x, expected %#x)",
				ErrReadback, i, got, uint16(c),
			)
		}
		if progress != nil {
			progress(i+1, len(cs))
		}
	}
	return nil
}
