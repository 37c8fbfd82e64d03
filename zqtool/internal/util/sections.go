// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Section is a contiguous block of data destined for the flash/ROM address
// Paddr.
type Section struct {
	Paddr uint64
	Data  []byte
}

type Sections []*Section

// ReadBin reads all data from r and returns it as a single section loaded at
// addr.
func ReadBin(r io.Reader, addr uint64) (*Section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Section{addr, data}, nil
}

// ReadBins reads binary files acording to the description and returns them
// as a slice of sections.
func ReadBins(descr string) (Sections, error) {
	bins := strings.Split(descr, ",")
	ss := make(Sections, len(bins))
	for k, ba := range bins {
		i := strings.LastIndexByte(ba, ':')
		if i <= 0 {
			return nil, fmt.Errorf("bad '%s' in the -inc option", ba)
		}
		bin, addr := ba[:i], ba[i+1:]
		s := new(Section)
		var err error
		s.Paddr, err = ParseUint(addr, 32)
		if err != nil {
			return nil, fmt.Errorf("bad address in '%s': %w", ba, err)
		}
		s.Data, err = os.ReadFile(bin)
		if err != nil {
			return nil, err
		}
		ss[k] = s
	}
	return ss, nil
}

// ReadELF reads the loadable segments of the program and returns them as
// a slice. The order of the returned sections is unspecified.
func ReadELF(name string) (Sections, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ss Sections
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := p.ReadAt(data, 0); err != nil {
			return nil, err
		}
		ss = append(ss, &Section{p.Paddr, data})
	}
	return ss, nil
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	sort.Slice(
		ss,
		func(i, j int) bool {
			return ss[i].Paddr < ss[j].Paddr
		},
	)
}

// Size returns the total number of data bytes in all sections.
func (ss Sections) Size() (n int) {
	for _, s := range ss {
		n += len(s.Data)
	}
	return
}
