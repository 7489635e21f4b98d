// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

const (
	// GlyphWidth is the number of columns drawn per character.
	GlyphWidth = 5
	// GlyphHeight is the number of rows drawn per character.
	GlyphHeight = 7
	// GlyphAdvance is the number of columns a character takes, spacing
	// included. Characters missing from the font advance by the same amount
	// without drawing.
	GlyphAdvance = GlyphWidth + 1
)

// font5x7 maps printable ASCII to 5 columns, bit n of a column being the
// dot n rows below the text origin.
var font5x7 = map[rune][GlyphWidth]byte{
	' ': {0x00, 0x00, 0x00, 0x00, 0x00},
	'!': {0x00, 0x00, 0x5f, 0x00, 0x00},
	'"': {0x00, 0x07, 0x00, 0x07, 0x00},
	'#': {0x14, 0x7f, 0x14, 0x7f, 0x14},
	'$': {0x24, 0x2a, 0x7f, 0x2a, 0x12},
	'%': {0x23, 0x13, 0x08, 0x64, 0x62},
	'&': {0x36, 0x49, 0x56, 0x20, 0x50},
	'\'': {0x00, 0x08, 0x07, 0x03, 0x00},
	'(': {0x00, 0x1c, 0x22, 0x41, 0x00},
	')': {0x00, 0x41, 0x22, 0x1c, 0x00},
	'*': {0x14, 0x08, 0x3e, 0x08, 0x14},
	'+': {0x08, 0x08, 0x3e, 0x08, 0x08},
	',': {0x00, 0x50, 0x30, 0x00, 0x00},
	'-': {0x08, 0x08, 0x08, 0x08, 0x08},
	'.': {0x00, 0x60, 0x60, 0x00, 0x00},
	'/': {0x20, 0x10, 0x08, 0x04, 0x02},
	'0': {0x3e, 0x51, 0x49, 0x45, 0x3e},
	'1': {0x00, 0x42, 0x7f, 0x40, 0x00},
	'2': {0x42, 0x61, 0x51, 0x49, 0x46},
	'3': {0x21, 0x41, 0x45, 0x4b, 0x31},
	'4': {0x18, 0x14, 0x12, 0x7f, 0x10},
	'5': {0x27, 0x45, 0x45, 0x45, 0x39},
	'6': {0x3c, 0x4a, 0x49, 0x49, 0x30},
	'7': {0x01, 0x71, 0x09, 0x05, 0x03},
	'8': {0x36, 0x49, 0x49, 0x49, 0x36},
	'9': {0x06, 0x49, 0x49, 0x29, 0x1e},
	':': {0x00, 0x36, 0x36, 0x00, 0x00},
	';': {0x00, 0x56, 0x36, 0x00, 0x00},
	'<': {0x08, 0x14, 0x22, 0x41, 0x00},
	'=': {0x14, 0x14, 0x14, 0x14, 0x14},
	'>': {0x00, 0x41, 0x22, 0x14, 0x08},
	'?': {0x02, 0x01, 0x51, 0x09, 0x06},
	'@': {0x3e, 0x41, 0x5d, 0x55, 0x5e},
	'A': {0x7c, 0x12, 0x11, 0x12, 0x7c},
	'B': {0x7f, 0x49, 0x49, 0x49, 0x36},
	'C': {0x3e, 0x41, 0x41, 0x41, 0x22},
	'D': {0x7f, 0x41, 0x41, 0x22, 0x1c},
	'E': {0x7f, 0x49, 0x49, 0x49, 0x41},
	'F': {0x7f, 0x09, 0x09, 0x09, 0x01},
	'G': {0x3e, 0x41, 0x49, 0x49, 0x3a},
	'H': {0x7f, 0x08, 0x08, 0x08, 0x7f},
	'I': {0x00, 0x41, 0x7f, 0x41, 0x00},
	'J': {0x20, 0x40, 0x41, 0x3f, 0x01},
	'K': {0x7f, 0x08, 0x14, 0x22, 0x41},
	'L': {0x7f, 0x40, 0x40, 0x40, 0x40},
	'M': {0x7f, 0x02, 0x0c, 0x02, 0x7f},
	'N': {0x7f, 0x04, 0x08, 0x10, 0x7f},
	'O': {0x3e, 0x41, 0x41, 0x41, 0x3e},
	'P': {0x7f, 0x09, 0x09, 0x09, 0x06},
	'Q': {0x3e, 0x41, 0x51, 0x21, 0x5e},
	'R': {0x7f, 0x09, 0x19, 0x29, 0x46},
	'S': {0x26, 0x49, 0x49, 0x49, 0x32},
	'T': {0x01, 0x01, 0x7f, 0x01, 0x01},
	'U': {0x3f, 0x40, 0x40, 0x40, 0x3f},
	'V': {0x1f, 0x20, 0x40, 0x20, 0x1f},
	'W': {0x3f, 0x40, 0x30, 0x40, 0x3f},
	'X': {0x63, 0x14, 0x08, 0x14, 0x63},
	'Y': {0x07, 0x08, 0x70, 0x08, 0x07},
	'Z': {0x61, 0x51, 0x49, 0x45, 0x43},
	'[': {0x00, 0x7f, 0x41, 0x41, 0x00},
	'\\': {0x02, 0x04, 0x08, 0x10, 0x20},
	']': {0x00, 0x41, 0x41, 0x7f, 0x00},
	'^': {0x04, 0x02, 0x01, 0x02, 0x04},
	'_': {0x40, 0x40, 0x40, 0x40, 0x40},
	'`': {0x00, 0x01, 0x02, 0x04, 0x00},
	'a': {0x20, 0x54, 0x54, 0x54, 0x78},
	'b': {0x7f, 0x48, 0x44, 0x44, 0x38},
	'c': {0x38, 0x44, 0x44, 0x44, 0x20},
	'd': {0x38, 0x44, 0x44, 0x48, 0x7f},
	'e': {0x38, 0x54, 0x54, 0x54, 0x18},
	'f': {0x08, 0x7e, 0x09, 0x01, 0x02},
	'g': {0x0c, 0x52, 0x52, 0x52, 0x3e},
	'h': {0x7f, 0x08, 0x04, 0x04, 0x78},
	'i': {0x00, 0x44, 0x7d, 0x40, 0x00},
	'j': {0x20, 0x40, 0x44, 0x3d, 0x00},
	'k': {0x7f, 0x10, 0x28, 0x44, 0x00},
	'l': {0x00, 0x41, 0x7f, 0x40, 0x00},
	'm': {0x7c, 0x04, 0x18, 0x04, 0x78},
	'n': {0x7c, 0x08, 0x04, 0x04, 0x78},
	'o': {0x38, 0x44, 0x44, 0x44, 0x38},
	'p': {0x7c, 0x14, 0x14, 0x14, 0x08},
	'q': {0x08, 0x14, 0x14, 0x18, 0x7c},
	'r': {0x7c, 0x08, 0x04, 0x04, 0x08},
	's': {0x48, 0x54, 0x54, 0x54, 0x20},
	't': {0x04, 0x3f, 0x44, 0x40, 0x20},
	'u': {0x3c, 0x40, 0x40, 0x20, 0x7c},
	'v': {0x1c, 0x20, 0x40, 0x20, 0x1c},
	'w': {0x3c, 0x40, 0x30, 0x40, 0x3c},
	'x': {0x44, 0x28, 0x10, 0x28, 0x44},
	'y': {0x0c, 0x50, 0x50, 0x50, 0x3c},
	'z': {0x44, 0x64, 0x54, 0x4c, 0x44},
}

// Glyph returns the columns drawn for r and whether the font has it.
func Glyph(r rune) ([GlyphWidth]byte, bool) {
	g, ok := font5x7[r]
	return g, ok
}

// TextWidth returns the number of columns WriteText advances over for text.
func TextWidth(text string) int {
	n := 0
	for range text {
		n += GlyphAdvance
	}
	return n
}

// WriteText erases the buffer and draws text with its top left corner at
// col, row.
//
// Characters missing from the font are left blank. Text is clipped at the
// right edge of the panel and never wrapped. Everything else on the buffer is
// lost; combine text with other content by drawing dots after WriteText.
func (d *Dev) WriteText(text string, col, row int) {
	d.Erase()
	x := col
	for _, r := range text {
		g, ok := font5x7[r]
		if !ok {
			x += GlyphAdvance
			continue
		}
		for i, bits := range g {
			if x+i >= d.cols {
				break
			}
			for k := 0; k < GlyphHeight; k++ {
				if bits&(1<<uint(k)) != 0 {
					d.SetDot(x+i, row+k, true)
				}
			}
		}
		x += GlyphAdvance
	}
}
