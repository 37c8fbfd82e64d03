// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpio

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/embeddedgo/uiotools/zqtool/internal/sysgpio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"periph.io/x/conn/v3/gpio"
)

const Descr = "control a Zynq MIO/EMIO pin through the sysfs GPIO interface"

// pin is the subset of gpio.PinIO used by the operations.
type pin interface {
	fmt.Stringer
	In(pull gpio.Pull, edge gpio.Edge) error
	Out(l gpio.Level) error
	Read() gpio.Level
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] PIN {get|set|clr|in|out|toggle}\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	root := fs.String("root", sysgpio.Root, "sysfs directory searched for the controller")
	label := fs.String("label", sysgpio.Label, "GPIO controller label prefix")
	emio := fs.Bool("emio", false, "PIN is an EMIO pin number")
	var n int
	util.IntVar(fs, &n, "n", 5, "number of toggle cycles")
	period := fs.Duration("p", time.Second, "toggle half `period`")
	fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(1)
	}
	num, err := strconv.Atoi(fs.Arg(0))
	util.FatalErr("bad pin number", err)

	chip, err := sysgpio.FindChip(*root, *label)
	util.FatalErr("", err)
	p, err := chip.Open(num, *emio)
	util.FatalErr("", err)
	util.FatalErr(p.String(), run(os.Stdout, p, fs.Arg(1), n, *period))
}

func run(w io.Writer, p pin, op string, n int, period time.Duration) error {
	switch op {
	case "get":
		_, err := fmt.Fprintf(w, "%s: %v\n", p, p.Read())
		return err
	case "set":
		return p.Out(gpio.High)
	case "clr":
		return p.Out(gpio.Low)
	case "in":
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case "out":
		// Keep the level the pin has as an input.
		return p.Out(p.Read())
	case "toggle":
		return toggle(p, n, period)
	}
	return fmt.Errorf("unknown operation '%s'", op)
}

// toggle produces n low/high cycles on p.
func toggle(p pin, n int, period time.Duration) error {
	for i := 0; i < n; i++ {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
		time.Sleep(period)
		if err := p.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(period)
	}
	return nil
}
