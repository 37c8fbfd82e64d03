// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2cbb

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/eeprom"
	"github.com/embeddedgo/uiotools/zqtool/internal/i2cbb"
	"github.com/embeddedgo/uiotools/zqtool/internal/sysgpio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "read or write an I2C EEPROM using two GPIO pins"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s -scl PIN -sda PIN [OPTIONS] [VALUE...]\n"+
				"Writes the VALUEs starting at the offset or, if none given,\n"+
				"reads and dumps the EEPROM content.\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	var scl, sda, off, addr, n int
	util.IntVar(fs, &scl, "scl", -1, "SCL pin number")
	util.IntVar(fs, &sda, "sda", -1, "SDA pin number")
	emio := fs.Bool("emio", false, "pin numbers are EMIO pins")
	root := fs.String("root", sysgpio.Root, "sysfs directory searched for the controller")
	label := fs.String("label", sysgpio.Label, "GPIO controller label prefix")
	freq := i2cbb.DefaultSpeed
	fs.Var(&freq, "f", "SCL `frequency`")
	util.IntVar(fs, &off, "o", 0, "EEPROM `offset`")
	util.IntVar(fs, &addr, "a", eeprom.DefaultAddr, "slave `address`")
	util.IntVar(fs, &n, "l", eeprom.Size, "number of bytes to read")
	fs.BoolVar(&util.Verbose, "v", false, "verbose output")
	fs.Parse(args)
	if scl < 0 || sda < 0 || scl == sda {
		fs.Usage()
		os.Exit(1)
	}
	if addr < 0 {
		util.Fatal("invalid slave address %d", addr)
	}
	util.FatalErr("", eeprom.Check(uint16(addr), off, n))
	var data []byte
	if fs.NArg() != 0 {
		var err error
		data, err = eeprom.ParseValues(fs.Args())
		util.FatalErr("", err)
		util.FatalErr("", eeprom.Check(uint16(addr), off, len(data)))
	}

	chip, err := sysgpio.FindChip(*root, *label)
	util.FatalErr("", err)
	sclPin, err := chip.Open(scl, *emio)
	util.FatalErr("SCL", err)
	sdaPin, err := chip.Open(sda, *emio)
	util.FatalErr("SDA", err)
	bus, err := i2cbb.New(sclPin, sdaPin)
	util.FatalErr("", err)
	util.FatalErr("", bus.SetSpeed(freq))
	util.Debug("%s: SCL %s, SDA %s, %s", bus, sclPin, sdaPin, freq)

	if data != nil {
		w := i2cbb.NewWriter(bus, uint16(addr))
		w.WriteByte(byte(off))
		w.Write(data)
		util.FatalErr(bus.String(), w.Flush())
		return
	}
	data, err = eeprom.Read(bus, uint16(addr), off, n)
	util.FatalErr(bus.String(), err)
	util.FatalErr("", eeprom.Dump(os.Stdout, off, data))
}
