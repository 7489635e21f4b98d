// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serialport

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

// fakeSerial records what is sent. Methods not overridden panic.
type fakeSerial struct {
	serial.Port
	mode    *serial.Mode
	w       bytes.Buffer
	r       *bytes.Reader
	drained int
	closed  bool
}

func (f *fakeSerial) SetMode(m *serial.Mode) error {
	f.mode = m
	return nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func (f *fakeSerial) Drain() error {
	f.drained++
	return nil
}

func (f *fakeSerial) Close() error {
	f.closed = true
	return nil
}

func TestConnect(t *testing.T) {
	f := &fakeSerial{r: bytes.NewReader([]byte("ok"))}
	p := &Port{name: "fake", s: f}
	c, err := p.Connect(4800*physic.Hertz, uart.One, uart.NoParity, uart.NoFlow, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := &serial.Mode{BaudRate: 4800, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	if diff := cmp.Diff(want, f.mode); diff != "" {
		t.Errorf("mode (-want +got):\n%s", diff)
	}
	if c.Duplex() != conn.Half {
		t.Error("expected half duplex")
	}
	if s := c.String(); !strings.HasPrefix(s, "fake@") {
		t.Errorf("String()=%q", s)
	}
	frame := []byte{0x02, '1', '2', '0', '1', '0', '0', 0x03, 'D', '9'}
	reply := make([]byte, 2)
	if err := c.Tx(frame, reply); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(f.w.Bytes(), frame) {
		t.Errorf("wrote %q expected %q", f.w.Bytes(), frame)
	}
	if string(reply) != "ok" || f.drained != 1 {
		t.Errorf("reply %q, drained %d", reply, f.drained)
	}
}

func TestConnectLimit(t *testing.T) {
	f := &fakeSerial{}
	p := &Port{name: "fake", s: f}
	if err := p.LimitSpeed(0); err == nil {
		t.Error("expected an error")
	}
	if err := p.LimitSpeed(2400 * physic.Hertz); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Connect(9600*physic.Hertz, uart.Two, uart.Odd, uart.NoFlow, 7); err != nil {
		t.Fatal(err)
	}
	want := &serial.Mode{BaudRate: 2400, DataBits: 7, Parity: serial.OddParity, StopBits: serial.TwoStopBits}
	if diff := cmp.Diff(want, f.mode); diff != "" {
		t.Errorf("mode (-want +got):\n%s", diff)
	}
}

func TestConnectInvalid(t *testing.T) {
	for _, tc := range []struct {
		name   string
		f      physic.Frequency
		stop   uart.Stop
		parity uart.Parity
		flow   uart.Flow
		bits   int
	}{
		{"bits", 4800 * physic.Hertz, uart.One, uart.NoParity, uart.NoFlow, 9},
		{"parity", 4800 * physic.Hertz, uart.One, uart.Parity('X'), uart.NoFlow, 8},
		{"stop", 4800 * physic.Hertz, uart.Stop(7), uart.NoParity, uart.NoFlow, 8},
		{"flow", 4800 * physic.Hertz, uart.One, uart.NoParity, uart.RTSCTS, 8},
		{"speed", physic.Hertz / 2, uart.One, uart.NoParity, uart.NoFlow, 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeSerial{}
			p := &Port{name: "fake", s: f}
			if _, err := p.Connect(tc.f, tc.stop, tc.parity, tc.flow, tc.bits); err == nil {
				t.Error("expected an error")
			}
			if f.mode != nil {
				t.Error("mode applied")
			}
		})
	}
}

func TestClose(t *testing.T) {
	f := &fakeSerial{}
	p := &Port{name: "fake", s: f}
	c, err := p.Connect(4800*physic.Hertz, uart.One, uart.NoParity, uart.NoFlow, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.(*portConn).Close(); err != nil {
		t.Fatal(err)
	}
	if !f.closed {
		t.Error("port not closed")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close()=%v", err)
	}
	if _, err := c.(*portConn).Write([]byte{1}); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Write() after Close()=%v", err)
	}
	if _, err := p.Connect(4800*physic.Hertz, uart.One, uart.NoParity, uart.NoFlow, 8); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Connect() after Close()=%v", err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		d    enumerator.PortDetails
		want string
	}{
		{enumerator.PortDetails{Name: "/dev/ttyS0"}, ""},
		{enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "BG00Q8VA", Product: "FT232R USB UART"}, "FT232R USB UART USB VID:PID=0403:6001 SER=BG00Q8VA"},
		{enumerator.PortDetails{Name: "COM3", IsUSB: true, VID: "1a86", PID: "7523"}, "USB VID:PID=1A86:7523"},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			if got := describe(&tt.d); got != tt.want {
				t.Errorf("describe()=%q want %q", got, tt.want)
			}
		})
	}
	p := PortInfo{Name: "/dev/ttyUSB0", Description: "FT232R"}
	if s := p.String(); s != "/dev/ttyUSB0 - FT232R" {
		t.Errorf("String()=%q", s)
	}
	if s := (PortInfo{Name: "COM1"}).String(); s != "COM1" {
		t.Errorf("String()=%q", s)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open("/nonexistent/ttyMissing"); err == nil {
		t.Fatal("expected an error")
	}
}
