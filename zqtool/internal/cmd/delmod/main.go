// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package delmod

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"golang.org/x/sys/unix"
)

const Descr = "remove a kernel module without waiting for its users"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s MODULE\n", cmd)
	}
	fs.Parse(args)
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		fs.Usage()
		os.Exit(1)
	}
	err := unix.DeleteModule(fs.Arg(0), unix.O_NONBLOCK)
	util.FatalErr("delete_module", err)
}
