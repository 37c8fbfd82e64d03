// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sysgpio finds the Zynq GPIO controller in the Linux sysfs GPIO tree
// and resolves its MIO/EMIO pins to the periph sysfs pins.
package sysgpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/embeddedgo/uiotools/zqtool/internal/util"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
)

const (
	// Root is the default location of the sysfs GPIO class.
	Root = "/sys/class/gpio"

	// Label is the label of the Zynq GPIO controller.
	Label = "zynq_gpio"

	// EMIOOffset is the number of MIO pins. EMIO pins follow them.
	EMIOOffset = 54
)

var ErrNoChip = errors.New("sysgpio: controller not found")

// Chip is a GPIO controller found in the sysfs tree.
type Chip struct {
	Name  string
	Base  int
	NGPIO int

	// pin resolves a Linux GPIO number.
	pin func(num int) (gpio.PinIO, error)
}

func readInt(name string) (int, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("sysgpio: %s: bad number '%s'", name, s)
	}
	return n, nil
}

// FindChip looks in the root directory for the first gpiochip whose label
// starts with label. Empty root and label select Root and Label.
func FindChip(root, label string) (*Chip, error) {
	if root == "" {
		root = Root
	}
	if label == "" {
		label = Label
	}
	ents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("sysgpio: %w", err)
	}
	for _, e := range ents {
		name := e.Name()
		if !strings.HasPrefix(name, "gpiochip") {
			continue
		}
		dir := filepath.Join(root, name)
		l, err := os.ReadFile(filepath.Join(dir, "label"))
		if err != nil {
			util.Warn("sysgpio: skipping %s: %v", name, err)
			continue
		}
		if !strings.HasPrefix(string(l), label) {
			continue
		}
		c := &Chip{Name: name, pin: hostPin}
		if c.Base, err = readInt(filepath.Join(dir, "base")); err != nil {
			return nil, err
		}
		if c.NGPIO, err = readInt(filepath.Join(dir, "ngpio")); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: no '%s' in %s", ErrNoChip, label, root)
}

// hostPin initializes the periph host drivers and returns the sysfs pin
// with the Linux GPIO number num.
func hostPin(num int) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sysgpio: %w", err)
	}
	p, ok := sysfs.Pins[num]
	if !ok {
		return nil, fmt.Errorf("sysgpio: no gpio%d in %s", num, Root)
	}
	return p, nil
}

// Open returns the controller pin. Pins are numbered from 0 separately for
// MIO and for EMIO. The pin is exported on its first use.
func (c *Chip) Open(pin int, emio bool) (gpio.PinIO, error) {
	if pin < 0 || pin >= EMIOOffset {
		return nil, fmt.Errorf("sysgpio: invalid pin number %d (must be < %d)", pin, EMIOOffset)
	}
	if emio {
		pin += EMIOOffset
	}
	if pin >= c.NGPIO {
		return nil, fmt.Errorf("sysgpio: invalid pin %d (max: %d)", pin, c.NGPIO-1)
	}
	lookup := c.pin
	if lookup == nil {
		lookup = hostPin
	}
	p, err := lookup(c.Base + pin)
	if err != nil {
		return nil, err
	}
	util.Debug("sysgpio: pin %d is %s", pin, p)
	return p, nil
}
