// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flipdotsim

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/flipdot/hanover"
)

func newPair(t *testing.T, opts *hanover.Opts, simAddr int) (*hanover.Dev, *Dev, *bytes.Buffer) {
	var out bytes.Buffer
	sim, err := New(&Opts{Columns: opts.Columns, Rows: opts.Rows, Address: simAddr, Writer: &out})
	if err != nil {
		t.Fatal(err)
	}
	dev, err := hanover.NewWriter(sim, opts)
	if err != nil {
		t.Fatal(err)
	}
	return dev, sim, &out
}

func TestMirrorsDriver(t *testing.T) {
	for _, flipped := range []bool{false, true} {
		dev, sim, out := newPair(t, &hanover.Opts{Address: 2, Columns: 20, Rows: 16, Flipped: flipped}, 2)
		dev.WriteText("Go", 1, 3)
		dev.SetDot(19, 15, true)
		if err := dev.Send(); err != nil {
			t.Fatal(err)
		}
		if sim.Frames() != 1 {
			t.Fatalf("flipped=%t frames %d", flipped, sim.Frames())
		}
		for col := 0; col < 20; col++ {
			for row := 0; row < 16; row++ {
				// The simulator shows the physical panel.
				lc, lr := col, row
				if flipped {
					lc, lr = 19-col, 15-row
				}
				if got, want := sim.Dot(col, row), dev.Dot(lc, lr); got != want {
					t.Errorf("flipped=%t Dot(%d, %d)=%t expected %t", flipped, col, row, got, want)
				}
			}
		}
		if n := strings.Count(out.String(), "\n"); n != 16 {
			t.Errorf("painted %d lines, expected 16", n)
		}
	}
}

func TestRepaint(t *testing.T) {
	dev, sim, out := newPair(t, &hanover.Opts{Address: 1, Columns: 4, Rows: 8}, 0)
	dev.Fill()
	if err := dev.Send(); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	dev.Erase()
	if err := dev.Send(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "\033[8A") {
		t.Errorf("second paint doesn't move the cursor back: %q", out.String()[:8])
	}
	if sim.Dot(0, 0) || sim.Frames() != 2 {
		t.Error("panel not updated by the second frame")
	}
}

func TestSplitWrites(t *testing.T) {
	src, err := hanover.New(&hanover.Opts{Address: 2, Columns: 3, Rows: 8})
	if err != nil {
		t.Fatal(err)
	}
	src.SetDot(1, 1, true)
	frame := src.Frame()
	var out bytes.Buffer
	sim, err := New(&Opts{Columns: 3, Rows: 8, Writer: &out})
	if err != nil {
		t.Fatal(err)
	}
	stream := append([]byte("\xff\x00"), frame...)
	for _, b := range stream {
		if _, err := sim.Write([]byte{b}); err != nil {
			t.Fatal(err)
		}
	}
	if sim.Frames() != 1 || !sim.Dot(1, 1) {
		t.Errorf("frame not decoded from single byte writes")
	}
}

func TestAddressFilter(t *testing.T) {
	dev, sim, out := newPair(t, &hanover.Opts{Address: 5, Columns: 3, Rows: 8}, 2)
	dev.Fill()
	if err := dev.Send(); err != nil {
		t.Fatal(err)
	}
	if sim.Frames() != 0 || sim.Dot(0, 0) || out.Len() != 0 {
		t.Error("frame for another address was shown")
	}
}

func TestBadFrames(t *testing.T) {
	var out bytes.Buffer
	sim, err := New(&Opts{Columns: 2, Rows: 8, Writer: &out})
	if err != nil {
		t.Fatal(err)
	}
	// One column instead of two.
	src, err := hanover.New(&hanover.Opts{Address: 2, Columns: 1, Rows: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Write(src.Frame()); err == nil {
		t.Error("expected a size error")
	}
	corrupted := []byte{0x02, '1', '2', '0', '1', '0', '0', 0x03, 'D', '8'}
	_, err = sim.Write(corrupted)
	var ce *hanover.ChecksumError
	if !errors.As(err, &ce) {
		t.Errorf("expected a checksum error, got %v", err)
	}
	if sim.Frames() != 0 {
		t.Error("bad frames were counted")
	}
}

func TestNewInvalid(t *testing.T) {
	for _, opts := range []Opts{{Columns: 0, Rows: 8}, {Columns: 1, Rows: 0}, {Columns: 1, Rows: 8, Address: 17}} {
		if _, err := New(&opts); err == nil {
			t.Errorf("New(%+v) expected an error", opts)
		}
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	sim, err := New(&Opts{Columns: 1, Rows: 8, Writer: &out})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Halt(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\n\033[0m" {
		t.Errorf("Halt() wrote %q", out.String())
	}
	if sim.String() != "FlipDotSim 1x8" {
		t.Errorf("String()=%q", sim.String())
	}
}
