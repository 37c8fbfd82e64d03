// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2cm

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/eeprom"
	"github.com/embeddedgo/uiotools/zqtool/internal/i2cm"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "read or write an I2C EEPROM using the I2C master core"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [VALUE...]\n"+
				"Writes the VALUEs starting at the offset or, if none given,\n"+
				"reads and dumps the EEPROM content.\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "/dev/uio0", "UIO device file of the I2C master")
	var off, addr, n int
	util.IntVar(fs, &off, "o", 0, "EEPROM `offset`")
	util.IntVar(fs, &addr, "a", eeprom.DefaultAddr, "slave `address`")
	util.IntVar(fs, &n, "l", eeprom.Size, "number of bytes to read")
	fs.BoolVar(&util.Verbose, "v", false, "trace the master commands")
	fs.Parse(args)
	if addr < 0 {
		util.Fatal("invalid slave address %d", addr)
	}
	util.FatalErr("", eeprom.Check(uint16(addr), off, n))
	var data []byte
	if fs.NArg() != 0 {
		var err error
		data, err = eeprom.ParseValues(fs.Args())
		util.FatalErr("", err)
	}

	d, err := uio.Open(*dev, 0, 0)
	util.FatalErr("", err)
	defer d.Close()
	bus := i2cm.New(d, d)
	if data != nil {
		err = eeprom.Write(bus, uint16(addr), off, data)
		util.FatalErr(bus.String(), err)
		return
	}
	data, err = eeprom.Read(bus, uint16(addr), off, n)
	util.FatalErr(bus.String(), err)
	util.FatalErr("", eeprom.Dump(os.Stdout, off, data))
}
