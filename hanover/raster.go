// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import "log"

// locate applies the orientation to a logical coordinate and reports whether
// the result lies on the panel.
func (d *Dev) locate(col, row int) (int, int, bool) {
	if d.flipped {
		col = d.cols - 1 - col
		row = d.rows - 1 - row
	}
	if col < 0 || col >= d.cols || row < 0 || row >= d.rows {
		return 0, 0, false
	}
	return col, row, true
}

// SetDot turns the dot at col, row on or off in the buffer. It returns false
// and does nothing if the coordinate is off the panel.
func (d *Dev) SetDot(col, row int, on bool) bool {
	col, row, ok := d.locate(col, row)
	if !ok {
		return false
	}
	if on {
		d.buf[col] |= 1 << uint(row)
	} else {
		d.buf[col] &^= 1 << uint(row)
	}
	return true
}

// Dot returns the state of the dot at col, row in the buffer. Coordinates
// off the panel read as off.
func (d *Dev) Dot(col, row int) bool {
	col, row, ok := d.locate(col, row)
	if !ok {
		return false
	}
	return d.buf[col]&(1<<uint(row)) != 0
}

// InvertDot toggles the dot at col, row. It returns false and does nothing
// if the coordinate is off the panel.
func (d *Dev) InvertDot(col, row int) bool {
	col, row, ok := d.locate(col, row)
	if !ok {
		return false
	}
	d.buf[col] ^= 1 << uint(row)
	return true
}

// Fill turns every dot on.
func (d *Dev) Fill() {
	if d.verbose {
		log.Printf("hanover: filling display")
	}
	full := d.columnMask()
	for i := range d.buf {
		d.buf[i] = full
	}
}

// Erase turns every dot off.
func (d *Dev) Erase() {
	if d.verbose {
		log.Printf("hanover: erasing display")
	}
	for i := range d.buf {
		d.buf[i] = 0
	}
}

// ToggleOrientation switches between normal and 180° rotated addressing.
//
// The buffer is not redrawn: what was drawn before is read back through the
// new mapping.
func (d *Dev) ToggleOrientation() {
	d.flipped = !d.flipped
	if d.verbose {
		log.Printf("hanover: orientation flipped: %t", d.flipped)
	}
}

// Flipped reports whether addressing is rotated by 180°.
func (d *Dev) Flipped() bool {
	return d.flipped
}

// columnMask has one bit set per row.
func (d *Dev) columnMask() uint64 {
	if d.rows >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(d.rows) - 1
}
