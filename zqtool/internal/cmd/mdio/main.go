// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mdio

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/mdio"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "read or write a PHY register using the bit-banged MDIO interface"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "/dev/uio2", "UIO device file")
	var phy, reg, val int
	util.IntVar(fs, &phy, "p", 4, "PHY address (0 broadcasts, write only)")
	util.IntVar(fs, &reg, "r", 0, "register number")
	util.IntVar(fs, &val, "v", -1, "value to write, negative means read")
	fs.BoolVar(&util.Verbose, "trace", false, "print the MDIO words")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}

	d, err := uio.Open(*dev, 0, 0)
	util.FatalErr("", err)
	defer d.Close()
	bb := mdio.NewBitBang(d)
	if val >= 0 {
		if val > 0xffff {
			util.Fatal("Value out of range")
		}
		util.FatalErr("", bb.Write(phy, reg, uint16(val)))
		return
	}
	v, err := bb.Read(phy, reg)
	util.FatalErr("", err)
	fmt.Printf("MMIO (phy %d) @reg %d: 0x%04x\n", phy, reg, v)
}
