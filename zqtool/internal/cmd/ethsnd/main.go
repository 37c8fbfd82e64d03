// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethsnd

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/fifo"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "push an Ethernet test frame into the stream FIFO"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -d UIO_DEV [-s]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "", "UIO device file of the FIFO")
	last := fs.Bool("s", false, "issue TLAST after the frame")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	if *dev == "" {
		util.Fatal("Need -d <uio_dev> argument")
	}
	d, err := uio.Open(*dev, 0, 0)
	util.FatalErr("", err)
	defer d.Close()
	fifo.New(d, nil).Send(fifo.TestFrame(), *last)
}
