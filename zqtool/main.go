// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Zqtool is a collection of small utilities for poking at the programmable
// logic cores of Zynq based boards from Linux userspace.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/audio"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/bin2mac"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/bin2mcs"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/delmod"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/ethsnd"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/gpio"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/i2cbb"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/i2cm"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/irq"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/ldfilt"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/mdio"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/mdio10g"
	"github.com/embeddedgo/uiotools/zqtool/internal/cmd/mmio"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"audio":   {audio.Descr, audio.Main},
	"bin2mac": {bin2mac.Descr, bin2mac.Main},
	"bin2mcs": {bin2mcs.Descr, bin2mcs.Main},
	"delmod":  {delmod.Descr, delmod.Main},
	"ethsnd":  {ethsnd.Descr, ethsnd.Main},
	"gpio":    {gpio.Descr, gpio.Main},
	"i2cbb":   {i2cbb.Descr, i2cbb.Main},
	"i2cm":    {i2cm.Descr, i2cm.Main},
	"irq":     {irq.Descr, irq.Main},
	"ldfilt":  {ldfilt.Descr, ldfilt.Main},
	"mdio":    {mdio.Descr, mdio.Main},
	"mdio10g": {mdio10g.Descr, mdio10g.Main},
	"mmio":    {mmio.Descr, mmio.Main},
}

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  zqtool COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %-*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "zqtool: unknown command '%s'\n\n", os.Args[1])
		printToolList()
		os.Exit(1)
	}
	tool.main(os.Args[1], os.Args[2:])
}
