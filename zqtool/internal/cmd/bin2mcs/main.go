// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin2mcs

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"github.com/marcinbor85/gohex"
)

const Descr = "convert a binary file into MCS (Intel HEX) records on stdout"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s -b LOAD_ADDR [OPTIONS]\n  %s -elf FILE [OPTIONS]\nOptions:\n",
			cmd, cmd,
		)
		fs.PrintDefaults()
	}
	base := fs.String("b", "", "load `address`")
	name := fs.String("f", "", "read from `file` instead of stdin")
	elfName := fs.String("elf", "", "convert the loadable segments of the ELF `file`")
	inc := fs.String(
		"inc", "",
		"binary files to be included BIN1:ADDR1[,BIN2:ADDR2[,...]]",
	)
	fs.BoolVar(&util.Verbose, "v", false, "print the section summary")
	fs.Parse(args)
	if fs.NArg() != 0 || *elfName != "" && (*base != "" || *name != "") {
		fs.Usage()
		os.Exit(1)
	}
	var sections util.Sections
	if *elfName != "" {
		var err error
		sections, err = util.ReadELF(*elfName)
		util.FatalErr("readelf", err)
	} else {
		if *base == "" {
			fmt.Fprintf(os.Stderr, "Missing load address - must use -b option\n\n")
			fs.Usage()
			os.Exit(1)
		}
		addr, err := util.ParseUint(*base, 32)
		util.FatalErr("load address", err)
		var r io.Reader = os.Stdin
		if *name != "" {
			f, err := os.Open(*name)
			util.FatalErr("", err)
			defer f.Close()
			r = f
		}
		s, err := util.ReadBin(r, addr)
		util.FatalErr("reading file", err)
		sections = util.Sections{s}
	}
	if *inc != "" {
		isec, err := util.ReadBins(*inc)
		util.FatalErr("readbins", err)
		sections = append(sections, isec...)
	}
	util.Debug("%d bytes in %d sections", sections.Size(), len(sections))
	w := bufio.NewWriter(os.Stdout)
	util.FatalErr("", convert(w, sections))
	util.FatalErr("", w.Flush())
}

// convert writes sections as Intel HEX records with 16 data bytes per line.
func convert(w io.Writer, sections util.Sections) error {
	sections.SortByPaddr()
	mem := gohex.NewMemory()
	for _, s := range sections {
		if len(s.Data) == 0 {
			continue
		}
		if s.Paddr+uint64(len(s.Data)) > 1<<32 {
			return fmt.Errorf("section at %#x does not fit in 32-bit address space", s.Paddr)
		}
		if err := mem.AddBinary(uint32(s.Paddr), s.Data); err != nil {
			return fmt.Errorf("section at %#x: %w", s.Paddr, err)
		}
	}
	return mem.DumpIntelHex(w, 16)
}
