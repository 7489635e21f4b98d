// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flipdotsim implements a flip-dot panel simulator that outputs to
// the terminal (stdout) using ANSI color codes.
//
// A Dev is an io.Writer receiving the same byte stream as the serial line:
// pass it to hanover.NewWriter in place of the serial port and every frame
// sent is decoded and painted. Useful while the panel is still on its way
// or the RS-485 adapter is missing.
package flipdotsim

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/flipdot/hanover"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
)

var (
	// DotOn is the color of a dot showing its bright side.
	DotOn = color.NRGBA{255, 255, 0, 255}
	// DotOff is the color of a hidden dot.
	DotOff = color.NRGBA{50, 50, 50, 255}
)

// Opts represents the options available for the simulator.
type Opts struct {
	// Columns and Rows are the panel size. Rows is rounded up to a multiple
	// of 8 like the driver does.
	Columns int
	Rows    int
	// Address is the logical address to answer to. Zero accepts frames for
	// any address.
	Address int
	Palette *ansi256.Palette
	// Writer receives the rendering. Defaults to stdout.
	Writer io.Writer

	_ struct{}
}

// Dev is a flip-dot panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette

	mu      sync.Mutex
	r       *hanover.Receiver
	painted bool
	buf     bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	r, err := hanover.NewReceiver(opts.Address, opts.Columns, opts.Rows)
	if err != nil {
		return nil, fmt.Errorf("flipdotsim: %w", err)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{w: w, palette: *p, r: r}, nil
}

func (d *Dev) String() string {
	b := d.r.Bounds()
	return fmt.Sprintf("FlipDotSim %dx%d", b.Dx(), b.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	if err != nil {
		return err
	}
	return nil
}

// Write accepts the serial byte stream. Each complete frame updates the
// panel and repaints it; partial frames are kept until the rest arrives.
//
// An error is returned for a frame that fails to decode or doesn't match the
// panel size. The bytes are consumed anyway, like a real panel ignoring a
// corrupted frame.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := d.r.Frames()
	n, err := d.r.Write(p)
	if err != nil {
		err = fmt.Errorf("flipdotsim: %w", err)
	}
	if d.r.Frames() != before {
		if rerr := d.refresh(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return n, err
}

// Bounds returns the panel size.
func (d *Dev) Bounds() image.Rectangle {
	return d.r.Bounds()
}

// Dot returns the state of a dot as physically shown by the panel, which is
// rotated compared to the driver's coordinates when it is flipped.
func (d *Dev) Dot(col, row int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Dot(col, row)
}

// Frames returns the number of frames shown so far.
func (d *Dev) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Frames()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	b := d.r.Bounds()
	d.buf.Reset()
	if d.painted {
		// Go back to the top of the previous rendering.
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", b.Dy())
	}
	for row := 0; row < b.Dy(); row++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for col := 0; col < b.Dx(); col++ {
			c := DotOff
			if d.r.Dot(col, row) {
				c = DotOn
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.painted = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ io.Writer = &Dev{}
var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
