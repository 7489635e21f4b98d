// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package textrender

import (
	"image"
	"testing"

	"github.com/GermanBionicSystems/flipdot/hanover"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// span returns the first and last column with a dot on, or -1, -1.
func span(img *image1bit.VerticalLSB) (int, int) {
	first, last := -1, -1
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if img.BitAt(x, y) == image1bit.On {
				if first < 0 {
					first = x
				}
				last = x
				break
			}
		}
	}
	return first, last
}

func TestRender(t *testing.T) {
	bounds := image.Rect(0, 0, 84, 16)
	img, err := Render("HI", bounds, nil)
	if err != nil {
		t.Fatal(err)
	}
	first, last := span(img)
	if first < 0 {
		t.Fatal("nothing rendered")
	}
	if first > 4 || last > 30 {
		t.Errorf("left aligned text spans %d..%d", first, last)
	}

	img, err = Render("HI", bounds, &Opts{Align: gg.AlignRight})
	if err != nil {
		t.Fatal(err)
	}
	if _, last := span(img); last < 75 {
		t.Errorf("right aligned text ends at %d", last)
	}
}

func TestRenderEmpty(t *testing.T) {
	img, err := Render("", image.Rect(0, 0, 10, 8), nil)
	if err != nil {
		t.Fatal(err)
	}
	if first, _ := span(img); first != -1 {
		t.Errorf("empty text rendered dots at %d", first)
	}
	img, err = Render("x", image.Rectangle{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !img.Bounds().Empty() {
		t.Error("expected an empty image")
	}
}

func TestRenderOffset(t *testing.T) {
	bounds := image.Rect(0, 0, 40, 8)
	opts := &Opts{Face: basicfont.Face7x13, OffsetX: 20}
	img, err := Render("|", bounds, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first, _ := span(img); first < 20 {
		t.Errorf("offset text starts at %d", first)
	}
	opts.OffsetX = -100
	img, err = Render("|", bounds, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first, _ := span(img); first != -1 {
		t.Errorf("text shifted out still shows at %d", first)
	}
}

func TestMeasure(t *testing.T) {
	w, err := Measure("ABCD", 8, &Opts{Face: basicfont.Face7x13})
	if err != nil {
		t.Fatal(err)
	}
	if w != 28 {
		t.Errorf("Measure()=%g expected 28", w)
	}
}

func TestDraw(t *testing.T) {
	dev, err := hanover.New(&hanover.Opts{Address: 2, Columns: 40, Rows: 8})
	if err != nil {
		t.Fatal(err)
	}
	if err := Draw(dev, "88", nil); err != hanover.ErrNoTransport {
		t.Fatalf("Draw()=%v", err)
	}
	on := 0
	for col := 0; col < dev.Cols(); col++ {
		for row := 0; row < dev.Rows(); row++ {
			if dev.Dot(col, row) {
				on++
			}
		}
	}
	if on == 0 {
		t.Error("text not drawn on the panel")
	}
}
