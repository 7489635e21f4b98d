// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import (
	"errors"
	"fmt"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Receiver is the panel side of the bus. It accepts the serial byte stream
// through Write and keeps the dots shown by the last valid frame addressed
// to it.
//
// Coordinates are physical: a Dev flipped by 180° shows its content rotated
// on the Receiver.
type Receiver struct {
	address int
	cols    int
	rows    int

	pending []byte
	panel   *image1bit.VerticalLSB
	frames  int
}

// NewReceiver returns a Receiver for a panel of the given size. rows is
// rounded up to a multiple of 8. An address of 0 accepts every frame.
func NewReceiver(address, cols, rows int) (*Receiver, error) {
	if address < 0 || address > 16 {
		return nil, fmt.Errorf("hanover: invalid address %d", address)
	}
	if cols < 1 || rows < 1 || rows > maxRows {
		return nil, fmt.Errorf("hanover: invalid size %dx%d", cols, rows)
	}
	if rows%8 != 0 {
		rows += 8 - rows%8
	}
	return &Receiver{
		address: address,
		cols:    cols,
		rows:    rows,
		panel:   image1bit.NewVerticalLSB(image.Rect(0, 0, cols, rows)),
	}, nil
}

// Write implements io.Writer. Frames may be split across calls, bytes
// outside frames are dropped.
//
// Every byte is always consumed. The error reports the frames that were
// rejected, the panel keeping its previous state for them.
func (r *Receiver) Write(p []byte) (int, error) {
	r.pending = append(r.pending, p...)
	var errs []error
	for {
		advance, token, _ := ScanFrames(r.pending, false)
		if advance == 0 {
			break
		}
		if token != nil {
			if err := r.apply(token); err != nil {
				errs = append(errs, err)
			}
		}
		r.pending = append(r.pending[:0], r.pending[advance:]...)
	}
	return len(p), errors.Join(errs...)
}

func (r *Receiver) apply(frame []byte) error {
	f, err := DecodeFrame(frame)
	if err != nil {
		return err
	}
	if r.address != 0 && f.LogicalAddress() != r.address {
		return nil
	}
	words, err := f.Columns(r.rows)
	if err != nil {
		return err
	}
	if len(words) != r.cols {
		return fmt.Errorf("hanover: frame has %d columns, panel has %d", len(words), r.cols)
	}
	for col, word := range words {
		for row := 0; row < r.rows; row++ {
			r.panel.SetBit(col, row, image1bit.Bit(word&(1<<uint(row)) != 0))
		}
	}
	r.frames++
	return nil
}

// Bounds returns the panel size.
func (r *Receiver) Bounds() image.Rectangle {
	return r.panel.Bounds()
}

// Dot returns whether the dot at col, row is shown.
func (r *Receiver) Dot(col, row int) bool {
	return r.panel.BitAt(col, row) == image1bit.On
}

// Frames returns the number of frames applied.
func (r *Receiver) Frames() int {
	return r.frames
}

// Image returns the panel. It is updated in place by Write.
func (r *Receiver) Image() *image1bit.VerticalLSB {
	return r.panel
}
