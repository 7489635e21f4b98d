// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"testing"
	"time"

	"github.com/GermanBionicSystems/flipdot/hanover"
)

func TestTour(t *testing.T) {
	r, err := hanover.NewReceiver(2, 84, 8)
	if err != nil {
		t.Fatal(err)
	}
	d, err := hanover.NewWriter(r, &hanover.Opts{Address: 2, Columns: 84, Rows: 8, SpeedFactor: 2})
	if err != nil {
		t.Fatal(err)
	}
	var total time.Duration
	tr := tour{
		d: d,
		sleep: func(ctx context.Context, d time.Duration) error {
			total += d
			return nil
		},
	}
	if err := tr.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.Frames() == 0 {
		t.Fatal("nothing sent")
	}
	if d.Flipped() {
		t.Error("orientation not restored")
	}
	if f := d.SpeedFactor(); f != 2 {
		t.Errorf("speed factor not restored: %g", f)
	}
	if total == 0 {
		t.Error("no pauses")
	}
	for x := 0; x < 84; x++ {
		for y := 0; y < 8; y++ {
			if r.Dot(x, y) {
				t.Fatalf("dot (%d, %d) still on", x, y)
			}
		}
	}
}

func TestDrawBorder(t *testing.T) {
	d, err := hanover.New(&hanover.Opts{Address: 2, Columns: 6, Rows: 8})
	if err != nil {
		t.Fatal(err)
	}
	drawBorder(d, 1, 1, 4, 3)
	want := []string{
		"......",
		".####.",
		".#..#.",
		".####.",
		"......",
	}
	for y, line := range want {
		for x, c := range line {
			if got := d.Dot(x, y); got != (c == '#') {
				t.Errorf("dot (%d, %d) = %t", x, y, got)
			}
		}
	}
}

func TestTourOrientationRestored(t *testing.T) {
	for _, flipped := range []bool{false, true} {
		d, err := hanover.New(&hanover.Opts{Address: 2, Columns: 84, Rows: 8, Flipped: flipped})
		if err != nil {
			t.Fatal(err)
		}
		tr := tour{
			d: d,
			sleep: func(ctx context.Context, _ time.Duration) error {
				return nil
			},
		}
		// Without a transport the first show fails, after the first label.
		if err := tr.orientation(context.Background()); err == nil {
			t.Fatal("expected ErrNoTransport")
		}
		if d.Flipped() != flipped {
			t.Errorf("started flipped=%t, ended flipped=%t", flipped, d.Flipped())
		}
	}
}

func TestTourOrientationSequence(t *testing.T) {
	r, err := hanover.NewReceiver(2, 84, 8)
	if err != nil {
		t.Fatal(err)
	}
	d, err := hanover.NewWriter(r, &hanover.Opts{Address: 2, Columns: 84, Rows: 8, Flipped: true})
	if err != nil {
		t.Fatal(err)
	}
	var seen []bool
	tr := tour{
		d: d,
		sleep: func(ctx context.Context, _ time.Duration) error {
			seen = append(seen, d.Flipped())
			return nil
		},
	}
	if err := tr.orientation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || !seen[0] || seen[1] || !seen[2] {
		t.Errorf("orientations shown %v", seen)
	}
	if !d.Flipped() {
		t.Error("orientation not restored")
	}
}
