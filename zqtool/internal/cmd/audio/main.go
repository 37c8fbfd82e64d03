// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package audio

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/embeddedgo/uiotools/zqtool/internal/fifo"
	"github.com/embeddedgo/uiotools/zqtool/internal/uio"
	"github.com/embeddedgo/uiotools/zqtool/internal/util"
)

const Descr = "fill the audio stream FIFO with a sine wave or stdin, or read it"

const defaultAmp = 10000

type options struct {
	dev      string
	nsamples int
	read     bool
	period   int
	pre      int
	dest     uint32
	amp      float64
	shift    uint
	irq      bool
	stream   bool
	bufsz    int
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS]\n"+
				"Fills the FIFO with a sine wave (until interrupted) or stdin.\n"+
				"Options:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	var o options
	var dest, amp int
	fs.StringVar(&o.dev, "d", "/dev/uio2", "UIO device file of the FIFO")
	fs.Func("r", "read `n` samples from the FIFO to stdout (0 means 10 periods)", func(s string) error {
		v, err := util.ParseInt(s, 32)
		o.nsamples, o.read = int(v), true
		return err
	})
	util.IntVar(fs, &o.period, "P", 109, "sine wave period in samples")
	util.IntVar(fs, &o.pre, "p", 2000, "discard the first `n` read samples")
	util.IntVar(fs, &dest, "D", 0, "stream destination address")
	util.IntVar(fs, &amp, "a", -1, "sine wave amplitude < 32768 (default 10000)")
	left := fs.Bool("L", false, "fill the left channel (default)")
	right := fs.Bool("R", false, "fill the right channel")
	fs.BoolVar(&o.irq, "i", false, "interrupt driven operation")
	fs.BoolVar(&o.stream, "s", false, "stream stdin (little-endian 32-bit words)")
	util.IntVar(fs, &o.bufsz, "b", 900, "stream buffer size in words")
	fs.Parse(args)
	if fs.NArg() != 0 || *left && *right {
		fs.Usage()
		os.Exit(1)
	}
	if o.period <= 0 || o.pre < 0 || o.nsamples < 0 || o.bufsz <= 0 {
		util.Fatal("invalid period, pre, sample count or buffer size")
	}
	o.dest = uint32(dest)
	o.amp = defaultAmp
	if amp >= 0 && amp < 32768 {
		o.amp = float64(amp)
	}
	if *right {
		o.shift = 16
	}
	if o.nsamples == 0 {
		o.nsamples = 10 * o.period
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The second signal kills the program.
	context.AfterFunc(ctx, stop)
	util.FatalErr("", run(ctx, &o))
}

func run(ctx context.Context, o *options) (err error) {
	d, err := uio.Open(o.dev, 0, 0)
	if err != nil {
		return err
	}
	defer d.Close()
	f := fifo.New(d, d)
	f.UseIRQ = o.irq
	if o.read {
		err = f.InitRx(ctx)
	} else {
		err = f.InitTx(ctx, o.dest)
	}
	if err != nil {
		return err
	}
	if o.irq {
		if err := d.Enable(); err != nil {
			return err
		}
		defer func() {
			if derr := d.Disable(); err == nil {
				err = derr
			}
		}()
	}

	switch {
	case o.read:
		buf := make([]uint32, o.nsamples)
		if err := f.Read(ctx, buf, o.pre); err != nil {
			return err
		}
		w := bufio.NewWriter(os.Stdout)
		for _, v := range buf {
			fmt.Fprintf(w, "%08x\n", v)
		}
		return w.Flush()
	case o.stream:
		err := stream(ctx, os.Stdin, f, o.bufsz)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	dat := sine(o.period, o.amp, o.shift)
	for {
		if err := f.Write(ctx, dat); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
