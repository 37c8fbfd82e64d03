// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package audio

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"golang.org/x/sync/errgroup"
)

// sine returns one period of a sine wave. Every sample is a signed 16-bit
// value shifted left by shift bits.
func sine(period int, amp float64, shift uint) []uint32 {
	dat := make([]uint32, period)
	for i := range dat {
		s := math.RoundToEven(amp * math.Sin(2*math.Pi*float64(i)/float64(period)))
		dat[i] = uint32(uint16(int16(s))) << shift
	}
	return dat
}

type wordWriter interface {
	Write(ctx context.Context, words []uint32) error
}

type readResult struct {
	n   int
	err error
}

// readCtx is r.Read that returns early when ctx is done. The abandoned Read
// may still write to buf.
func readCtx(ctx context.Context, r io.Reader, buf []byte) (int, error) {
	res := make(chan readResult, 1)
	go func() {
		n, err := r.Read(buf)
		res <- readResult{n, err}
	}()
	select {
	case rr := <-res:
		return rr.n, rr.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// stream copies little-endian 32-bit words from r to w in chunks of up to
// bufsz words. Reading the next chunk overlaps with writing the previous one.
// stream returns as soon as ctx is done or w fails, even if r blocks.
func stream(ctx context.Context, r io.Reader, w wordWriter, bufsz int) error {
	g, ctx := errgroup.WithContext(ctx)
	chunks := make(chan []uint32, 1)
	g.Go(func() error {
		defer close(chunks)
		buf := make([]byte, bufsz*4)
		carry := 0
		for {
			n, err := readCtx(ctx, r, buf[carry:])
			n += carry
			k := n &^ 3
			if k != 0 {
				words := make([]uint32, k/4)
				for i := range words {
					words[i] = binary.LittleEndian.Uint32(buf[i*4:])
				}
				select {
				case chunks <- words:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			carry = copy(buf, buf[k:n])
			if err == io.EOF {
				if carry != 0 {
					util.Warn("ignoring %d trailing bytes", carry)
				}
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		for words := range chunks {
			if err := w.Write(ctx, words); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
