// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import (
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ColorModel implements display.Drawer.
//
// A dot is either shown or hidden, see image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. It is in logical coordinates, before the
// orientation is applied.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.cols, d.rows)
}

// Draw implements display.Drawer.
//
// The part of src starting at sp is copied to r on the buffer, converting
// colors with ColorModel, then the whole buffer is sent. Dots of the buffer
// outside r keep their state.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sY := y - r.Min.Y + sp.Y
		if sY < srcR.Min.Y || sY >= srcR.Max.Y {
			continue
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			sX := x - r.Min.X + sp.X
			if sX < srcR.Min.X || sX >= srcR.Max.X {
				continue
			}
			b := image1bit.BitModel.Convert(src.At(sX, sY)).(image1bit.Bit)
			d.SetDot(x, y, bool(b))
		}
	}
	return d.Send()
}

// Image returns a copy of the buffer as seen through the current
// orientation.
func (d *Dev) Image() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(d.Bounds())
	for col := 0; col < d.cols; col++ {
		for row := 0; row < d.rows; row++ {
			if d.Dot(col, row) {
				img.SetBit(col, row, image1bit.On)
			}
		}
	}
	return img
}

var _ display.Drawer = &Dev{}
