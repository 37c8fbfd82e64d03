// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mdio10g

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/mdio"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "read or write a clause 45 PHY register using the 10G Ethernet MAC"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -d UIO_DEV [OPTIONS] REG [VALUE]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "", "UIO device file of the Ethernet MAC")
	var port, mmd int
	util.IntVar(fs, &port, "P", 0, "PHY port address")
	util.IntVar(fs, &mmd, "D", 1, "MMD device address")
	timeout := fs.Duration("t", 0, "command timeout (0 means default)")
	fs.BoolVar(&util.Verbose, "v", false, "print the MDIO commands")
	fs.Parse(args)
	if *dev == "" {
		util.Fatal("Need -d <uio_dev> argument")
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	reg, err := util.ParseInt(fs.Arg(0), 32)
	util.FatalErr("register", err)
	var val uint64
	if fs.NArg() == 2 {
		val, err = util.ParseUint(fs.Arg(1), 32)
		util.FatalErr("value", err)
	}

	d, err := uio.Open(*dev, 0, 0)
	util.FatalErr("", err)
	defer d.Close()
	x := mdio.NewXGE(d)
	if *timeout > 0 {
		x.Timeout = *timeout
	}
	if x.Init() {
		util.Warn(
			"Info: Setting divider to %d and enabling MDIO interface",
			mdio.Div,
		)
	}
	if fs.NArg() == 2 {
		util.FatalErr("", x.Write(port, mmd, int(reg), uint32(val)))
		return
	}
	v, err := x.Read(port, mmd, int(reg))
	util.FatalErr("", err)
	fmt.Printf("%d.%d: %08x\n", mmd, reg, v)
}
