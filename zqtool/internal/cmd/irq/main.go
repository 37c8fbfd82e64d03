// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irq

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "enable a UIO interrupt and block for the event"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -d /dev/uioX [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "", "UIO device file")
	timeout := fs.Duration("t", 0, "give up after `timeout`, 0 means wait forever")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	if *dev == "" {
		util.Fatal("Need UIO device file (-d option)")
	}
	irq, err := uio.OpenInterrupt(*dev)
	util.FatalErr("", err)
	defer irq.Close()
	util.FatalErr("enable IRQ", irq.Enable())
	d := *timeout
	if d <= 0 {
		d = -1
	}
	n, err := irq.WaitTimeout(d)
	util.FatalErr("wait for IRQ", err)
	fmt.Printf("Interrupts: %d\n", n)
}
