// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldfilt

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embeddedgo/uiotools/zqtool/internal/fir"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "load the FIR filter coefficients"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS]\n"+
				"Reads white-space separated hexadecimal coefficients.\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	dev := fs.String("d", "/dev/uio3", "UIO device file of the filter")
	name := fs.String("f", "", "coefficient `file` (default stdin)")
	quiet := fs.Bool("q", false, "do not show progress")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}

	var r io.Reader = os.Stdin
	if *name != "" {
		f, err := os.Open(*name)
		util.FatalErr("", err)
		defer f.Close()
		r = f
	}
	d, err := uio.Open(*dev, 0, 0)
	util.FatalErr("", err)
	defer d.Close()
	filter := fir.New(d)

	// Check the core before reading a possibly long input.
	n, err := filter.NumCoeffs()
	util.FatalErr("", err)
	cs, err := fir.ReadCoeffs(r, fir.MaxCoeffs)
	util.FatalErr("", err)
	if len(cs) != n {
		util.Fatal("File contains %d coefficients, expected %d", len(cs), n)
	}
	var progress func(done, total int)
	if !*quiet {
		progress = func(done, total int) {
			util.Progress("Loading:", done, total, 1, "coefficients")
		}
	}
	util.FatalErr("", filter.Load(cs, progress))
}
