// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialport exposes a serial device, typically a USB to RS-485
// adapter, as a periph.io uart.Port.
//
// The line is driven by go.bug.st/serial, so it works on Linux, macOS,
// the BSDs and Windows.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("serialport: %w", err)
}

// PortInfo describes a serial device found by List.
type PortInfo struct {
	// Name is the device to pass to Open, for example "/dev/ttyUSB0" or
	// "COM3".
	Name string
	// Description is a human readable description, empty when unknown.
	Description string
}

func (p PortInfo) String() string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + " - " + p.Description
}

// List returns the serial devices present on the system, sorted by name.
func List() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		out = append(out, PortInfo{Name: d.Name, Description: describe(d)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// describe formats the USB identification of a port.
func describe(d *enumerator.PortDetails) string {
	if !d.IsUSB {
		return ""
	}
	parts := make([]string, 0, 3)
	if d.Product != "" {
		parts = append(parts, d.Product)
	}
	parts = append(parts, fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(d.VID), strings.ToUpper(d.PID)))
	if d.SerialNumber != "" {
		parts = append(parts, "SER="+d.SerialNumber)
	}
	return strings.Join(parts, " ")
}

// Port is an open serial device.
type Port struct {
	name string

	mu    sync.Mutex
	s     serial.Port
	limit physic.Frequency
}

// Open opens the serial device name, for example "/dev/ttyUSB0",
// "/dev/cu.usbserial-BG00Q8VA" or "COM3". The line settings are applied by
// Connect.
func Open(name string) (*Port, error) {
	s, err := serial.Open(name, &serial.Mode{BaudRate: 4800, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &Port{name: name, s: s}, nil
}

func (p *Port) String() string {
	return p.name
}

// LimitSpeed implements uart.Port. Connect uses at most f.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("serialport: invalid speed %s", f)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limit = f
	return nil
}

// mode converts periph line settings.
func mode(f physic.Frequency, stopBit uart.Stop, parity uart.Parity, flow uart.Flow, bits int) (*serial.Mode, error) {
	m := &serial.Mode{BaudRate: int(f / physic.Hertz), DataBits: bits}
	if m.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid speed %s", f)
	}
	if bits < 5 || bits > 8 {
		return nil, fmt.Errorf("invalid number of data bits %d", bits)
	}
	switch parity {
	case uart.NoParity:
		m.Parity = serial.NoParity
	case uart.Even:
		m.Parity = serial.EvenParity
	case uart.Odd:
		m.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", rune(parity))
	}
	switch stopBit {
	case uart.One:
		m.StopBits = serial.OneStopBit
	case uart.Two:
		m.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", stopBit)
	}
	if flow != uart.NoFlow {
		return nil, errors.New("flow control is not supported")
	}
	return m, nil
}

// Connect implements uart.Port.
//
// bits is the number of data bits, 5 to 8. Flow control is not supported,
// RS-485 adapters switch direction by themselves.
func (p *Port) Connect(f physic.Frequency, stopBit uart.Stop, parity uart.Parity, flow uart.Flow, bits int) (conn.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return nil, wrapErr(os.ErrClosed)
	}
	if p.limit != 0 && f > p.limit {
		f = p.limit
	}
	m, err := mode(f, stopBit, parity, flow, bits)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := p.s.SetMode(m); err != nil {
		return nil, wrapErr(err)
	}
	return &portConn{p: p, f: f}, nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return nil
	}
	err := p.s.Close()
	p.s = nil
	return wrapErr(err)
}

// portConn is the connection returned by Connect.
type portConn struct {
	p *Port
	f physic.Frequency
}

func (c *portConn) String() string {
	return fmt.Sprintf("%s@%s", c.p.name, c.f)
}

// Duplex implements conn.Conn. An RS-485 pair carries one direction at a
// time.
func (c *portConn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn. It writes w, waits for it to be transmitted then
// reads exactly len(r) bytes.
func (c *portConn) Tx(w, r []byte) error {
	c.p.mu.Lock()
	s := c.p.s
	c.p.mu.Unlock()
	if s == nil {
		return wrapErr(os.ErrClosed)
	}
	if len(w) != 0 {
		n, err := s.Write(w)
		if err == nil && n != len(w) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return wrapErr(err)
		}
		if err := s.Drain(); err != nil {
			return wrapErr(err)
		}
	}
	if len(r) != 0 {
		if _, err := io.ReadFull(s, r); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

// Write implements io.Writer.
func (c *portConn) Write(p []byte) (int, error) {
	if err := c.Tx(p, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying port.
func (c *portConn) Close() error {
	return c.p.Close()
}

var _ uart.PortCloser = &Port{}
var _ conn.Conn = &portConn{}
var _ io.WriteCloser = &portConn{}
