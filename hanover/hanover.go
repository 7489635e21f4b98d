// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

const (
	// addressOffset is added to the logical address on the wire.
	addressOffset = 16
	// maxRows is the number of rows a column word can hold.
	maxRows = 64

	// Baud is the bus speed of the panels.
	Baud = 4800 * physic.Hertz
	// MinSpeedFactor replaces non-positive speed factors.
	MinSpeedFactor = 0.05
)

// ErrNoTransport is returned by Send when the Dev was created without a
// transport.
var ErrNoTransport = errors.New("hanover: no transport attached")

// DefaultOpts is the configuration of the common 84x8 panel at address 2.
var DefaultOpts = Opts{
	Address:     2,
	Columns:     84,
	Rows:        8,
	Flipped:     false,
	SpeedFactor: 1,
}

// Opts defines the options for the device.
type Opts struct {
	// Address is the logical address set on the panel, 1 to 16.
	Address int
	// Columns is the panel width in dots.
	Columns int
	// Rows is the panel height in dots. It is rounded up to a multiple of 8,
	// up to 64.
	Rows int
	// Flipped rotates addressing by 180° for panels mounted upside down.
	Flipped bool
	// SpeedFactor scales the delays returned by AdjustDelay. Zero means 1.
	SpeedFactor float64
	// Verbose logs every operation through the log package.
	Verbose bool
}

// Display is the set of operations callers use to draw on a panel and push
// it out. Dev implements it whatever transport it was created with.
type Display interface {
	SetDot(col, row int, on bool) bool
	Dot(col, row int) bool
	InvertDot(col, row int) bool
	Fill()
	Erase()
	WriteText(text string, col, row int)
	ToggleOrientation()
	SetSpeedFactor(f float64)
	SpeedFactor() float64
	AdjustDelay(d float64) float64
	Send() error
}

// Dev is a handle to a Hanover flip-dot panel.
type Dev struct {
	c conn.Conn
	w io.Writer

	address int
	cols    int
	rows    int
	flipped bool
	speed   float64
	verbose bool

	// buf holds one word per column, bit n being the dot at row n.
	buf []uint64
	// frame is reused by Send.
	frame []byte
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("hanover: %w", err)
}

// New returns a Dev without transport. Send returns ErrNoTransport but
// Frame still encodes the buffer.
func New(opts *Opts) (*Dev, error) {
	return newDev(nil, nil, opts)
}

// NewWriter returns a Dev sending frames to w. Use it for serial libraries
// periph.io doesn't support, pipes, or the simulators.
func NewWriter(w io.Writer, opts *Opts) (*Dev, error) {
	if w == nil {
		return nil, errors.New("hanover: nil writer")
	}
	return newDev(nil, w, opts)
}

// NewConn returns a Dev sending frames through c.Tx.
func NewConn(c conn.Conn, opts *Opts) (*Dev, error) {
	if c == nil {
		return nil, errors.New("hanover: nil connection")
	}
	return newDev(c, nil, opts)
}

// NewUART connects p with the bus settings, 4800 baud 8N1 without flow
// control, and returns a Dev using it.
func NewUART(p uart.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(Baud, uart.One, uart.NoParity, uart.NoFlow, 8)
	if err != nil {
		return nil, wrapErr(err)
	}
	return newDev(c, nil, opts)
}

func newDev(c conn.Conn, w io.Writer, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Address < 1 || opts.Address > 16 {
		return nil, fmt.Errorf("hanover: invalid address %d, must be 1 to 16", opts.Address)
	}
	if opts.Columns < 1 {
		return nil, fmt.Errorf("hanover: invalid number of columns %d", opts.Columns)
	}
	if opts.Rows < 1 || opts.Rows > maxRows {
		return nil, fmt.Errorf("hanover: invalid number of rows %d, must be 1 to %d", opts.Rows, maxRows)
	}
	rows := opts.Rows
	if rows%8 != 0 {
		rows += 8 - rows%8
	}
	d := &Dev{
		c:       c,
		w:       w,
		address: opts.Address,
		cols:    opts.Columns,
		rows:    rows,
		flipped: opts.Flipped,
		speed:   1,
		verbose: opts.Verbose,
		buf:     make([]uint64, opts.Columns),
	}
	if opts.SpeedFactor != 0 {
		d.SetSpeedFactor(opts.SpeedFactor)
	}
	if d.verbose {
		log.Printf("hanover: %dx%d panel, address %d (bus 0x%02x), flipped %t, speed factor %.2f, %d data bytes",
			d.cols, d.rows, d.address, d.WireAddress(), d.flipped, d.speed, d.dataSize())
	}
	return d, nil
}

// Address returns the logical address of the panel.
func (d *Dev) Address() int {
	return d.address
}

// WireAddress returns the address sent on the bus.
func (d *Dev) WireAddress() byte {
	return byte(d.address + addressOffset)
}

// Cols returns the panel width in dots.
func (d *Dev) Cols() int {
	return d.cols
}

// Rows returns the panel height in dots, always a multiple of 8.
func (d *Dev) Rows() int {
	return d.rows
}

func (d *Dev) String() string {
	var ioType any
	if d.c != nil {
		ioType = d.c
	} else {
		ioType = d.w
	}
	return fmt.Sprintf("Hanover flip-dot %dx%d address %d: Connection: %T", d.cols, d.rows, d.address, ioType)
}

// Halt implements conn.Resource.
//
// It doesn't change the panel, flip-dots keep their state unpowered. The
// transport is closed if it implements io.Closer.
func (d *Dev) Halt() error {
	var cl io.Closer
	var ok bool
	if d.c != nil {
		cl, ok = d.c.(io.Closer)
	} else if d.w != nil {
		cl, ok = d.w.(io.Closer)
	}
	if !ok {
		return nil
	}
	return wrapErr(cl.Close())
}

// SetSpeedFactor sets the multiplier applied by AdjustDelay. Higher is
// slower. Values that are not strictly positive are replaced by
// MinSpeedFactor.
func (d *Dev) SetSpeedFactor(f float64) {
	if f <= 0 || math.IsNaN(f) {
		log.Printf("hanover: speed factor %g must be positive, using %g", f, MinSpeedFactor)
		f = MinSpeedFactor
	}
	d.speed = f
	if d.verbose {
		log.Printf("hanover: speed factor set to %.2f", d.speed)
	}
}

// SpeedFactor returns the current speed factor.
func (d *Dev) SpeedFactor() float64 {
	return d.speed
}

// AdjustDelay scales a delay, in any unit, by the speed factor.
func (d *Dev) AdjustDelay(delay float64) float64 {
	return delay * d.speed
}

// AdjustDuration is AdjustDelay for time.Duration.
func (d *Dev) AdjustDuration(delay time.Duration) time.Duration {
	return time.Duration(float64(delay) * d.speed)
}

var _ Display = &Dev{}
var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
