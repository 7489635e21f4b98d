// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestDev(t *testing.T, cols, rows int, flipped bool) *Dev {
	dev, err := New(&Opts{Address: 2, Columns: cols, Rows: rows, Flipped: flipped})
	if err != nil {
		t.Fatal(err)
	}
	return dev
}

func TestSetDotRoundTrip(t *testing.T) {
	for _, flipped := range []bool{false, true} {
		dev := newTestDev(t, 7, 16, flipped)
		for col := 0; col < dev.Cols(); col++ {
			for row := 0; row < dev.Rows(); row++ {
				if !dev.SetDot(col, row, true) {
					t.Fatalf("flipped=%t SetDot(%d, %d) failed", flipped, col, row)
				}
				if !dev.Dot(col, row) {
					t.Errorf("flipped=%t Dot(%d, %d) is off after setting it", flipped, col, row)
				}
				if !dev.SetDot(col, row, false) {
					t.Fatalf("flipped=%t SetDot(%d, %d) failed", flipped, col, row)
				}
				if dev.Dot(col, row) {
					t.Errorf("flipped=%t Dot(%d, %d) is on after clearing it", flipped, col, row)
				}
			}
		}
	}
}

func TestFlippedMapping(t *testing.T) {
	dev := newTestDev(t, 4, 8, true)
	dev.SetDot(0, 0, true)
	if diff := cmp.Diff(dev.buf, []uint64{0, 0, 0, 0x80}); diff != "" {
		t.Errorf("buffer (-got +want):\n%s", diff)
	}
	dev.ToggleOrientation()
	if !dev.Dot(3, 7) || dev.Dot(0, 0) {
		t.Error("content is not reinterpreted through the new orientation")
	}
}

func TestToggleOrientationInvolution(t *testing.T) {
	dev := newTestDev(t, 5, 8, false)
	dev.SetDot(1, 2, true)
	before := append([]uint64(nil), dev.buf...)
	dev.ToggleOrientation()
	if !dev.Flipped() {
		t.Error("expected flipped orientation")
	}
	dev.ToggleOrientation()
	if dev.Flipped() {
		t.Error("expected normal orientation")
	}
	if diff := cmp.Diff(dev.buf, before); diff != "" {
		t.Errorf("toggling changed the buffer (-got +want):\n%s", diff)
	}
	if !dev.Dot(1, 2) {
		t.Error("dot not found at its original place")
	}
}

func TestFillErase(t *testing.T) {
	for _, rows := range []int{8, 16, 64} {
		dev := newTestDev(t, 3, rows, false)
		dev.Fill()
		for col := 0; col < dev.Cols(); col++ {
			for row := 0; row < dev.Rows(); row++ {
				if !dev.Dot(col, row) {
					t.Errorf("rows=%d Dot(%d, %d) off after Fill()", rows, col, row)
				}
			}
		}
		if rows == 8 && dev.buf[0] != 0xff {
			t.Errorf("column word 0x%x, expected 0xff", dev.buf[0])
		}
		dev.Erase()
		for col := 0; col < dev.Cols(); col++ {
			for row := 0; row < dev.Rows(); row++ {
				if dev.Dot(col, row) {
					t.Errorf("rows=%d Dot(%d, %d) on after Erase()", rows, col, row)
				}
			}
		}
		if len(dev.buf) != 3 {
			t.Errorf("buffer length changed to %d", len(dev.buf))
		}
	}
}

func TestOutOfRange(t *testing.T) {
	coords := [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 8}, {10, 8}, {-5, -5}}
	for _, flipped := range []bool{false, true} {
		dev := newTestDev(t, 10, 8, flipped)
		dev.SetDot(3, 3, true)
		before := append([]uint64(nil), dev.buf...)
		for _, c := range coords {
			if dev.SetDot(c[0], c[1], true) {
				t.Errorf("flipped=%t SetDot(%d, %d) succeeded", flipped, c[0], c[1])
			}
			if dev.InvertDot(c[0], c[1]) {
				t.Errorf("flipped=%t InvertDot(%d, %d) succeeded", flipped, c[0], c[1])
			}
			if dev.Dot(c[0], c[1]) {
				t.Errorf("flipped=%t Dot(%d, %d) is on", flipped, c[0], c[1])
			}
		}
		if diff := cmp.Diff(dev.buf, before); diff != "" {
			t.Errorf("flipped=%t buffer changed (-got +want):\n%s", flipped, diff)
		}
	}
}

func TestInvertDot(t *testing.T) {
	dev := newTestDev(t, 2, 8, false)
	if !dev.InvertDot(1, 4) || !dev.Dot(1, 4) {
		t.Error("InvertDot() didn't turn the dot on")
	}
	if !dev.InvertDot(1, 4) || dev.Dot(1, 4) {
		t.Error("InvertDot() didn't turn the dot off")
	}
}
