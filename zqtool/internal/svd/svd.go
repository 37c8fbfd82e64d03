// Copyright 2019 Michal Derkacz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svd reads the subset of the CMSIS-SVD register description format
// needed to name registers of a memory mapped core and decode their fields.
package svd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Uint uint

func (u *Uint) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 0)
	*u = Uint(v)
	return err
}

type Uint64 uint64

func (u *Uint64) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	*u = Uint64(v)
	return err
}

type Device struct {
	Name        string        `xml:"name"`
	Description string        `xml:"description"`
	Width       Uint          `xml:"width"`
	Size        *Uint         `xml:"size"`
	Peripherals []*Peripheral `xml:"peripherals>peripheral"`
}

type Peripheral struct {
	DerivedFrom *string     `xml:"derivedFrom,attr"`
	Name        string      `xml:"name"`
	Description *string     `xml:"description"`
	BaseAddress Uint64      `xml:"baseAddress"`
	Size        *Uint       `xml:"size"`
	Registers   []*Register `xml:"registers>register"`
}

type Register struct {
	Name          string   `xml:"name"`
	Description   *string  `xml:"description"`
	AddressOffset Uint64   `xml:"addressOffset"`
	Size          *Uint    `xml:"size"`
	Access        *string  `xml:"access"`
	Fields        []*Field `xml:"fields>field"`
}

type Field struct {
	Name             string              `xml:"name"`
	Description      *string             `xml:"description"`
	BitOffset        *Uint               `xml:"bitOffset"`
	BitWidth         *Uint               `xml:"bitWidth"`
	LSB              *Uint               `xml:"lsb"`
	MSB              *Uint               `xml:"msb"`
	BitRangePattern  *string             `xml:"bitRange"`
	EnumeratedValues []*EnumeratedValues `xml:"enumeratedValues"`
}

type EnumeratedValues struct {
	EnumeratedValue []*EnumeratedValue `xml:"enumeratedValue"`
}

type EnumeratedValue struct {
	Name        *string `xml:"name"`
	Description *string `xml:"description"`
	Value       *string `xml:"value"`
	IsDefault   *bool   `xml:"isDefault"`
}

var (
	ErrNilValue   = errors.New("nil value")
	ErrNotFound   = errors.New("svd: not found")
	ErrBadBitSpec = errors.New("svd: bad bit range")
)

func (ev *EnumeratedValue) Val() (uint64, error) {
	if ev.Value == nil {
		return 0, ErrNilValue
	}
	s := *ev.Value
	if s != "" && s[0] == '#' {
		// binary #1011 or binary #1x0x "do not care" format
		s = "0b" + strings.ReplaceAll(s[1:], "x", "0")
	}
	return strconv.ParseUint(s, 0, 64)
}

// Load decodes an SVD document.
func Load(r io.Reader) (*Device, error) {
	dev := new(Device)
	if err := xml.NewDecoder(r).Decode(dev); err != nil {
		return nil, fmt.Errorf("svd: %w", err)
	}
	return dev, nil
}

// Peripheral returns the named peripheral. A derived peripheral inherits the
// register list of its base.
func (d *Device) Peripheral(name string) (*Peripheral, error) {
	return d.peripheral(name, nil)
}

// peripheral looks up name. The seen set holds the derived peripherals that
// led to it.
func (d *Device) peripheral(name string, seen map[string]bool) (*Peripheral, error) {
	var p *Peripheral
	for _, q := range d.Peripherals {
		if strings.EqualFold(q.Name, name) {
			p = q
			break
		}
	}
	if p == nil {
		return nil, fmt.Errorf("%w: peripheral %s", ErrNotFound, name)
	}
	if p.DerivedFrom != nil && len(p.Registers) == 0 {
		key := strings.ToLower(p.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: peripheral %s derived from itself", ErrNotFound, p.Name)
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[key] = true
		base, err := d.peripheral(*p.DerivedFrom, seen)
		if err != nil {
			return nil, err
		}
		derived := *p
		derived.Registers = base.Registers
		p = &derived
	}
	return p, nil
}

// Register returns the named register.
func (p *Peripheral) Register(name string) (*Register, error) {
	for _, r := range p.Registers {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: register %s.%s", ErrNotFound, p.Name, name)
}

// RegisterAt returns the register at the byte offset off or nil.
func (p *Peripheral) RegisterAt(off uint64) *Register {
	for _, r := range p.Registers {
		if uint64(r.AddressOffset) == off {
			return r
		}
	}
	return nil
}

// Bits returns the position of the least significant bit of the field and
// its width.
func (f *Field) Bits() (lsb, width uint, err error) {
	switch {
	case f.BitOffset != nil:
		width = 1
		if f.BitWidth != nil {
			width = uint(*f.BitWidth)
		}
		return uint(*f.BitOffset), width, nil
	case f.LSB != nil && f.MSB != nil:
		if *f.MSB < *f.LSB {
			break
		}
		return uint(*f.LSB), uint(*f.MSB-*f.LSB) + 1, nil
	case f.BitRangePattern != nil:
		// [msb:lsb]
		s := strings.TrimSpace(*f.BitRangePattern)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		ms, ls, ok := strings.Cut(s, ":")
		if !ok {
			break
		}
		msb, err1 := strconv.ParseUint(ms, 10, 8)
		lsb, err2 := strconv.ParseUint(ls, 10, 8)
		if err1 != nil || err2 != nil || msb < lsb {
			break
		}
		return uint(lsb), uint(msb-lsb) + 1, nil
	}
	return 0, 0, fmt.Errorf("%w in field %s", ErrBadBitSpec, f.Name)
}

// Extract returns the field value contained in the register value v.
func (f *Field) Extract(v uint64) (uint64, error) {
	lsb, width, err := f.Bits()
	if err != nil {
		return 0, err
	}
	if width >= 64 {
		return v >> lsb, nil
	}
	return v >> lsb & (1<<width - 1), nil
}

// Enum returns the name of the enumerated value equal to v or "".
func (f *Field) Enum(v uint64) string {
	for _, evs := range f.EnumeratedValues {
		for _, ev := range evs.EnumeratedValue {
			if ev.Name == nil {
				continue
			}
			if x, err := ev.Val(); err == nil && x == v {
				return *ev.Name
			}
		}
	}
	return ""
}

// FieldValue is a single decoded register field.
type FieldValue struct {
	Name  string
	LSB   uint
	Width uint
	Value uint64
	Enum  string
}

func (fv FieldValue) String() string {
	bits := strconv.FormatUint(uint64(fv.LSB), 10)
	if fv.Width > 1 {
		bits = strconv.FormatUint(uint64(fv.LSB+fv.Width-1), 10) + ":" + bits
	}
	s := fmt.Sprintf("%s[%s]=%#x", fv.Name, bits, fv.Value)
	if fv.Enum != "" {
		s += " (" + fv.Enum + ")"
	}
	return s
}

// Decode splits the register value v into fields ordered as in the
// description. Fields with an invalid bit range are skipped.
func (r *Register) Decode(v uint64) []FieldValue {
	fvs := make([]FieldValue, 0, len(r.Fields))
	for _, f := range r.Fields {
		lsb, width, err := f.Bits()
		if err != nil {
			continue
		}
		x, _ := f.Extract(v)
		fvs = append(fvs, FieldValue{f.Name, lsb, width, x, f.Enum(x)})
	}
	return fvs
}
