// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Verbose enables the Debug output.
var Verbose bool

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Debug(f string, args ...any) {
	if Verbose {
		fmt.Fprintf(os.Stderr, f+"\n", args...)
	}
}

func Fatal(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	os.Exit(1)
}

// ParseInt parses s as a signed integer in the C notation (0x hex, 0 octal
// prefixes) that fits in the given number of bits.
func ParseInt(s string, bits int) (int64, error) {
	v, err := strconv.ParseInt(s, 0, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, fmt.Errorf("bad number '%s': %w", s, err)
	}
	return v, nil
}

// ParseUint is like ParseInt but for unsigned numbers. Negative numbers are
// accepted and converted to their two's complement representation.
func ParseUint(s string, bits int) (uint64, error) {
	if len(s) != 0 && s[0] == '-' {
		v, err := ParseInt(s, bits)
		return uint64(v) & (1<<bits - 1), err
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, fmt.Errorf("bad number '%s': %w", s, err)
	}
	return v, nil
}

// IntVar defines an integer flag in fs that accepts the C number notation.
func IntVar(fs *flag.FlagSet, p *int, name string, value int, usage string) {
	*p = value
	fs.Func(name, fmt.Sprintf("%s (default %d)", usage, value), func(s string) error {
		v, err := ParseInt(s, strconv.IntSize)
		*p = int(v)
		return err
	})
}

var pbuf = make([]byte, 80)

const (
	ptodo = "                         ] "
	pdone = " [========================="
)

func Progress(pre string, cur, max, scale int, post string) {
	pbuf = pbuf[:0]
	pbuf = append(pbuf, '\r')
	pbuf = append(pbuf, pre...)
	done := 25 * cur / max
	pbuf = append(pbuf, pdone[:2+done]...)
	pbuf = append(pbuf, ptodo[done:]...)
	pbuf = strconv.AppendInt(pbuf, int64(cur/scale), 10)
	pbuf = append(pbuf, ' ')
	pbuf = append(pbuf, post...)
	if cur == max {
		pbuf = append(pbuf, '\n')
	}
	os.Stderr.Write(pbuf)
}
