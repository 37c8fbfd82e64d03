// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin2mac

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadMAC(t *testing.T) {
	mac, err := readMAC(strings.NewReader("\x00\x0a\x35\xbe\xef\x0f\x99"))
	if err != nil {
		t.Fatal(err)
	}
	if mac != "00:0A:35:BE:EF:0F" {
		t.Errorf("got %s", mac)
	}
	_, err = readMAC(strings.NewReader("\x00\x0a\x35"))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short input: %v", err)
	}
}
