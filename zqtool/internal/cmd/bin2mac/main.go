// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin2mac

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "print the first six bytes of a file as a MAC address"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [-n] [FILE]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	noNL := fs.Bool("n", false, "do not print the trailing newline")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	var r io.Reader = os.Stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		util.FatalErr("", err)
		defer f.Close()
		r = f
	}
	mac, err := readMAC(r)
	util.FatalErr("reading file", err)
	if !*noNL {
		mac += "\n"
	}
	os.Stdout.WriteString(mac)
}

// readMAC formats the first six bytes read from r as XX:XX:XX:XX:XX:XX.
func readMAC(r io.Reader) (string, error) {
	buf := make(net.HardwareAddr, 6)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return strings.ToUpper(buf.String()), nil
}
