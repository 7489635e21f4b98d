// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package textrender draws proportional text on 1 bit displays.
//
// The built-in 5x7 font of the hanover package is enough for most messages;
// this package renders the embedded Go Mono TrueType font, or any font.Face,
// at an arbitrary size and hands the result to a display.Drawer.
package textrender

import (
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts controls the rendering. The zero value renders left aligned text as
// tall as the bounds.
type Opts struct {
	// Face is the font to use. Defaults to Go Mono at Size.
	Face font.Face
	// Size is the Go Mono size in dots. Defaults to the bounds height.
	Size float64
	// Align positions the text horizontally in the bounds.
	Align gg.Align
	// OffsetX shifts the text right, negative values shift left. Useful to
	// scroll text longer than the panel.
	OffsetX float64
	// Threshold is the 8 bit gray level at or above which a dot is on.
	// Defaults to 128.
	Threshold uint8
}

var (
	parseOnce sync.Once
	goMono    *truetype.Font
	parseErr  error
)

func defaultFont() (*truetype.Font, error) {
	parseOnce.Do(func() {
		goMono, parseErr = truetype.Parse(gomono.TTF)
	})
	return goMono, parseErr
}

func (o *Opts) face(height int) (font.Face, error) {
	if o.Face != nil {
		return o.Face, nil
	}
	f, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("textrender: %w", err)
	}
	size := o.Size
	if size <= 0 {
		size = float64(height)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

func (o *Opts) context(bounds image.Rectangle) (*gg.Context, error) {
	face, err := o.face(bounds.Dy())
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(face)
	return dc, nil
}

// Measure returns the width in dots text takes with opts.
func Measure(text string, height int, opts *Opts) (float64, error) {
	if opts == nil {
		opts = &Opts{}
	}
	dc, err := opts.context(image.Rect(0, 0, 1, height))
	if err != nil {
		return 0, err
	}
	w, _ := dc.MeasureString(text)
	return w, nil
}

// Render returns text drawn vertically centered in an image of the given
// bounds. Dots covered by the text are image1bit.On.
func Render(text string, bounds image.Rectangle, opts *Opts) (*image1bit.VerticalLSB, error) {
	if opts == nil {
		opts = &Opts{}
	}
	img := image1bit.NewVerticalLSB(bounds)
	if bounds.Empty() {
		return img, nil
	}
	dc, err := opts.context(bounds)
	if err != nil {
		return nil, err
	}
	x, ax := 0.0, 0.0
	switch opts.Align {
	case gg.AlignCenter:
		x, ax = float64(bounds.Dx())/2, 0.5
	case gg.AlignRight:
		x, ax = float64(bounds.Dx()), 1
	}
	dc.DrawStringAnchored(text, x+opts.OffsetX, float64(bounds.Dy())/2, ax, 0.5)

	threshold := uint32(opts.Threshold)
	if threshold == 0 {
		threshold = 128
	}
	src := dc.Image()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, _, _, _ := src.At(x, y).RGBA()
			if r>>8 >= threshold {
				img.SetBit(bounds.Min.X+x, bounds.Min.Y+y, image1bit.On)
			}
		}
	}
	return img, nil
}

// Draw renders text over the whole display and draws it.
func Draw(d display.Drawer, text string, opts *Opts) error {
	img, err := Render(text, d.Bounds(), opts)
	if err != nil {
		return err
	}
	return d.Draw(d.Bounds(), img, d.Bounds().Min)
}
