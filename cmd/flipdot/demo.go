// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/flipdot/hanover"
)

// tour walks through the driver features on one panel.
type tour struct {
	d *hanover.Dev
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

func (t *tour) steps() []step {
	return []step{
		{"Basic operations", t.basics},
		{"Individual dots", t.dots},
		{"Text", t.text},
		{"Reading dots", t.queries},
		{"Inverting dots", t.invert},
		{"Orientation", t.orientation},
		{"Speed control", t.speed},
		{"Animation", t.animation},
		{"Progress bar", t.progress},
	}
}

// pause sleeps d scaled by the speed factor.
func (t *tour) pause(ctx context.Context, d time.Duration) error {
	return t.sleep(ctx, t.d.AdjustDuration(d))
}

// show sends the buffer then pauses.
func (t *tour) show(ctx context.Context, d time.Duration) error {
	if err := t.d.Send(); err != nil {
		return err
	}
	return t.pause(ctx, d)
}

func (t *tour) run(ctx context.Context) error {
	for i, s := range t.steps() {
		fmt.Printf("%d. %s\n", i+1, s.name)
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	t.d.Erase()
	return t.d.Send()
}

func (t *tour) basics(ctx context.Context) error {
	t.d.Erase()
	if err := t.show(ctx, time.Second); err != nil {
		return err
	}
	t.d.Fill()
	if err := t.show(ctx, time.Second); err != nil {
		return err
	}
	t.d.Erase()
	return t.show(ctx, time.Second)
}

func (t *tour) dots(ctx context.Context) error {
	cols, rows := t.d.Cols(), t.d.Rows()
	t.d.Erase()
	for x := 0; x < cols; x += 4 {
		for y := 0; y < rows; y += 2 {
			t.d.SetDot(x, y, true)
		}
	}
	if err := t.show(ctx, 2*time.Second); err != nil {
		return err
	}
	t.d.Erase()
	drawBorder(t.d, 0, 0, cols, rows)
	return t.show(ctx, 2*time.Second)
}

// drawBorder draws the outline of the w x h rectangle at col, row.
func drawBorder(d hanover.Display, col, row, w, h int) {
	for x := col; x < col+w; x++ {
		d.SetDot(x, row, true)
		d.SetDot(x, row+h-1, true)
	}
	for y := row; y < row+h; y++ {
		d.SetDot(col, y, true)
		d.SetDot(col+w-1, y, true)
	}
}

func (t *tour) text(ctx context.Context) error {
	t.d.WriteText("HELLO WORLD", 5, 0)
	if err := t.show(ctx, 2*time.Second); err != nil {
		return err
	}
	t.d.WriteText("123 + 456 = 579", 2, 0)
	return t.show(ctx, 2*time.Second)
}

func (t *tour) queries(ctx context.Context) error {
	t.d.Erase()
	t.d.SetDot(10, 3, true)
	t.d.SetDot(20, 4, true)
	t.d.SetDot(30, 5, false)
	for _, p := range [][2]int{{10, 3}, {20, 4}, {30, 5}, {0, 0}} {
		state := "off"
		if t.d.Dot(p[0], p[1]) {
			state = "on"
		}
		fmt.Printf("   dot (%d, %d) is %s\n", p[0], p[1], state)
	}
	return t.show(ctx, 2*time.Second)
}

func (t *tour) invert(ctx context.Context) error {
	t.d.Erase()
	for x := 10; x < 30; x += 3 {
		t.d.SetDot(x, 3, true)
	}
	if err := t.show(ctx, time.Second); err != nil {
		return err
	}
	for x := 10; x < 30; x += 6 {
		t.d.InvertDot(x, 3)
		t.d.InvertDot(x, 4)
	}
	return t.show(ctx, 2*time.Second)
}

// orientation flips the panel and back. The labels are relative to the
// orientation the tour started with, which is restored.
func (t *tour) orientation(ctx context.Context) error {
	start := t.d.Flipped()
	defer func() {
		if t.d.Flipped() != start {
			t.d.ToggleOrientation()
		}
	}()
	for i, label := range []string{"NORMAL", "FLIPPED", "NORMAL"} {
		if i > 0 {
			t.d.ToggleOrientation()
		}
		t.d.WriteText(label, 25, 0)
		if err := t.show(ctx, 2*time.Second); err != nil {
			return err
		}
	}
	return nil
}

func (t *tour) speed(ctx context.Context) error {
	orig := t.d.SpeedFactor()
	defer t.d.SetSpeedFactor(orig)
	for _, s := range []struct {
		label  string
		factor float64
	}{{"NORMAL", 1}, {"SLOW", 2}, {"FAST", 0.5}} {
		t.d.SetSpeedFactor(s.factor)
		for i := 1; i <= 3; i++ {
			t.d.WriteText(fmt.Sprintf("%s %d", s.label, i), 20, 0)
			if err := t.show(ctx, 500*time.Millisecond); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tour) animation(ctx context.Context) error {
	cols, rows := t.d.Cols(), t.d.Rows()
	mid := rows / 2
	for x := 0; x < cols; x++ {
		t.d.Erase()
		for trail := 0; trail < 3 && x-trail >= 0; trail++ {
			t.d.SetDot(x-trail, mid, true)
		}
		if err := t.show(ctx, 50*time.Millisecond); err != nil {
			return err
		}
	}
	x, y, dx, dy := 0, 0, 1, 1
	for i := 0; i < 100; i++ {
		t.d.Erase()
		t.d.SetDot(x, y, true)
		if err := t.show(ctx, 100*time.Millisecond); err != nil {
			return err
		}
		x, y = x+dx, y+dy
		if x <= 0 || x >= cols-1 {
			dx = -dx
		}
		if y <= 0 || y >= rows-1 {
			dy = -dy
		}
	}
	return nil
}

func (t *tour) progress(ctx context.Context) error {
	cols := t.d.Cols()
	if cols < 12 || t.d.Rows() < 6 {
		return nil
	}
	for p := 0; p < cols-10; p += 3 {
		t.d.Erase()
		drawBorder(t.d, 5, 2, cols-10, 4)
		for x := 6; x < 6+p && x < cols-6; x++ {
			t.d.SetDot(x, 3, true)
			t.d.SetDot(x, 4, true)
		}
		if err := t.show(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
	return t.pause(ctx, time.Second)
}

func runDemo(ctx context.Context, cfg *config, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		fmt.Printf("Panel: %s\n", d)
		return (&tour{d: d, sleep: sleep}).run(ctx)
	})
}
