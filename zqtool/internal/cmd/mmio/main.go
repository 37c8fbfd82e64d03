// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/fifo"
	"github.com/embeddedgo/uiotools/zqtool/internal/svd"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "read or write registers of a UIO device"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] REG [VAL]\n"+
				"REG is a 32-bit register number, NOT a byte offset. However, if\n"+
				"-w is 1, 2 or 4 then REG IS a byte offset which allows arbitrary,\n"+
				"unaligned access. REG can be a register name if -svd is used.\n"+
				"Options:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "/dev/uio0", "UIO device file")
	var ldSize, width, num, mapOff int
	util.IntVar(fs, &ldSize, "s", 12, "map 1<<`ld_size` bytes")
	util.IntVar(fs, &width, "w", 0, "access `width` in bytes: 0 (register), 1, 2 or 4")
	util.IntVar(fs, &num, "n", 1, "access `num` consecutive locations")
	util.IntVar(fs, &mapOff, "o", 0, "map the device from the byte `offset`")
	drain := fs.Bool("D", false, "drain the stream FIFO receive packets")
	svdFile := fs.String("svd", "", "SVD `file` with register descriptions")
	periph := fs.String("p", "", "peripheral in the SVD file")
	fs.BoolVar(&util.Verbose, "v", false, "verbose output")
	fs.Parse(args)

	if ldSize < 2 || ldSize > 30 {
		util.Fatal("invalid -s %d", ldSize)
	}
	if (*svdFile == "") != (*periph == "") {
		util.Fatal("-svd and -p must be used together")
	}
	if fs.NArg() > 2 || fs.NArg() == 0 && !*drain {
		fs.Usage()
		os.Exit(1)
	}

	var p *svd.Peripheral
	if *svdFile != "" {
		var err error
		p, err = loadPeriph(*svdFile, *periph)
		util.FatalErr(*svdFile, err)
	}
	a := access{width: width, n: num}
	if fs.NArg() != 0 {
		start, err := regArg(fs.Arg(0), width, p)
		util.FatalErr("", err)
		a.start = start
	}
	if fs.NArg() == 2 {
		v, err := util.ParseUint(fs.Arg(1), 32)
		util.FatalErr("", err)
		a.write, a.val = true, uint32(v)
	}
	// Check before mapping anything.
	if *drain {
		util.FatalErr("", drainCheck(1<<ldSize))
	} else {
		util.FatalErr("", a.check(1<<ldSize))
	}

	d, err := uio.Open(*dev, 1<<ldSize, mapOff)
	util.FatalErr("", err)
	defer d.Close()
	util.Debug("bar @%#x", d.Addr())

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if *drain {
		fifo.New(d, nil).Drain(func(rlr uint32, words []uint32) {
			fmt.Fprintf(w, "** %08x\n", rlr)
			for _, v := range words {
				fmt.Fprintf(w, "%08x\n", v)
			}
		})
		return
	}
	var decode func(off int, v uint32) []string
	if p != nil {
		decode = func(off int, v uint32) []string {
			r := p.RegisterAt(uint64(off))
			if r == nil {
				return nil
			}
			lines := []string{r.Name}
			for _, fv := range r.Decode(uint64(v)) {
				lines = append(lines, "  "+fv.String())
			}
			return lines
		}
	}
	if err := a.run(w, d, decode); err != nil {
		w.Flush()
		util.FatalErr("", err)
	}
}

func loadPeriph(name, periph string) (*svd.Peripheral, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dev, err := svd.Load(f)
	if err != nil {
		return nil, err
	}
	return dev.Peripheral(periph)
}

// regArg parses the register argument. A name is resolved using the
// peripheral description p.
func regArg(s string, width int, p *svd.Peripheral) (int, error) {
	v, err := util.ParseInt(s, 32)
	if err == nil || p == nil {
		return int(v), err
	}
	r, rerr := p.Register(s)
	if rerr != nil {
		return 0, errors.Join(err, rerr)
	}
	off := int(r.AddressOffset)
	if width != 0 {
		return off, nil
	}
	if off&3 != 0 {
		return 0, fmt.Errorf("register %s at unaligned offset %#x", r.Name, off)
	}
	return off / 4, nil
}
