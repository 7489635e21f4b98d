// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package x11sim shows a simulated flip-dot panel in an X11 window.
//
// Like flipdotsim, a Dev is an io.Writer standing in for the serial port:
// give it to hanover.NewWriter and every frame sent is drawn as round dots.
package x11sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/GermanBionicSystems/flipdot/hanover"
	"periph.io/x/conn/v3"
)

// Opts represents the options available for the simulator window.
type Opts struct {
	// Columns and Rows are the panel size.
	Columns int
	Rows    int
	// Address is the logical address to answer to, 0 for any.
	Address int
	// Display is the X display to connect to. Defaults to $DISPLAY.
	Display string
	// DotSize is the dot diameter in pixels. Defaults to 8.
	DotSize int
	// Gap is the space between dots in pixels. Defaults to 2.
	Gap int
}

// Dev is a flip-dot panel drawn in a window.
type Dev struct {
	c      *xgb.Conn
	win    xproto.Window
	gc     xproto.Gcontext
	on     uint32
	off    uint32
	bg     uint32
	dot    int
	gap    int
	margin int

	mu   sync.Mutex
	r    *hanover.Receiver
	done chan struct{}
}

// New opens the window. Call Close to release it.
func New(opts *Opts) (*Dev, error) {
	r, err := hanover.NewReceiver(opts.Address, opts.Columns, opts.Rows)
	if err != nil {
		return nil, fmt.Errorf("x11sim: %w", err)
	}
	d := &Dev{r: r, dot: opts.DotSize, gap: opts.Gap, done: make(chan struct{})}
	if d.dot <= 0 {
		d.dot = 8
	}
	if d.gap <= 0 {
		d.gap = 2
	}
	d.margin = 3 * d.dot

	if opts.Display != "" {
		d.c, err = xgb.NewConnDisplay(opts.Display)
	} else {
		d.c, err = xgb.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("x11sim: %w", err)
	}
	if err := d.init(); err != nil {
		d.c.Close()
		return nil, fmt.Errorf("x11sim: %w", err)
	}
	go d.events()
	return d, nil
}

func (d *Dev) size() (uint16, uint16) {
	b := d.r.Bounds()
	pitch := d.dot + d.gap
	return uint16(2*d.margin + b.Dx()*pitch - d.gap), uint16(2*d.margin + b.Dy()*pitch - d.gap)
}

func (d *Dev) init() error {
	screen := xproto.Setup(d.c).DefaultScreen(d.c)
	var err error
	if d.on, err = d.alloc(screen, 255, 255, 0); err != nil {
		return err
	}
	if d.off, err = d.alloc(screen, 50, 50, 50); err != nil {
		return err
	}
	if d.bg, err = d.alloc(screen, 25, 25, 25); err != nil {
		return err
	}
	if d.win, err = xproto.NewWindowId(d.c); err != nil {
		return err
	}
	w, h := d.size()
	err = xproto.CreateWindowChecked(
		d.c,
		xproto.WindowClassCopyFromParent,
		d.win,
		screen.Root,
		0, 0,
		w, h,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{d.bg, xproto.EventMaskExposure | xproto.EventMaskStructureNotify},
	).Check()
	if err != nil {
		return err
	}
	b := d.r.Bounds()
	title := fmt.Sprintf("Flip-dot %dx%d", b.Dx(), b.Dy())
	xproto.ChangeProperty(d.c, xproto.PropModeReplace, d.win, xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title))
	if d.gc, err = xproto.NewGcontextId(d.c); err != nil {
		return err
	}
	xproto.CreateGC(d.c, d.gc, xproto.Drawable(d.win), xproto.GcForeground, []uint32{d.off})
	return xproto.MapWindowChecked(d.c, d.win).Check()
}

func (d *Dev) alloc(screen *xproto.ScreenInfo, r, g, b uint8) (uint32, error) {
	reply, err := xproto.AllocColor(d.c, screen.DefaultColormap, uint16(r)<<8, uint16(g)<<8, uint16(b)<<8).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Pixel, nil
}

// events repaints on expose until the connection closes.
func (d *Dev) events() {
	defer close(d.done)
	for {
		ev, err := d.c.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.ExposeEvent:
			if e.Count == 0 {
				d.mu.Lock()
				d.paint()
				d.mu.Unlock()
			}
		case xproto.DestroyNotifyEvent:
			return
		}
	}
}

// arcs returns the dots, split by state, as drawn in the window.
func (d *Dev) arcs() (on, off []xproto.Arc) {
	b := d.r.Bounds()
	pitch := d.dot + d.gap
	for row := 0; row < b.Dy(); row++ {
		for col := 0; col < b.Dx(); col++ {
			a := xproto.Arc{
				X:      int16(d.margin + col*pitch),
				Y:      int16(d.margin + row*pitch),
				Width:  uint16(d.dot),
				Height: uint16(d.dot),
				Angle1: 0,
				Angle2: 360 * 64,
			}
			if d.r.Dot(col, row) {
				on = append(on, a)
			} else {
				off = append(off, a)
			}
		}
	}
	return on, off
}

func (d *Dev) paint() {
	on, off := d.arcs()
	for _, set := range []struct {
		pixel uint32
		arcs  []xproto.Arc
	}{{d.off, off}, {d.on, on}} {
		if len(set.arcs) == 0 {
			continue
		}
		xproto.ChangeGC(d.c, d.gc, xproto.GcForeground, []uint32{set.pixel})
		xproto.PolyFillArc(d.c, xproto.Drawable(d.win), d.gc, set.arcs)
	}
}

func (d *Dev) String() string {
	b := d.r.Bounds()
	return fmt.Sprintf("X11Sim %dx%d", b.Dx(), b.Dy())
}

// Write accepts the serial byte stream and repaints the window after each
// complete frame.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := d.r.Frames()
	n, err := d.r.Write(p)
	if err != nil {
		err = fmt.Errorf("x11sim: %w", err)
	}
	if d.r.Frames() != before {
		d.paint()
	}
	return n, err
}

// Dot returns the state of a dot as physically shown.
func (d *Dev) Dot(col, row int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Dot(col, row)
}

// Halt implements conn.Resource. The window stays open.
func (d *Dev) Halt() error {
	return nil
}

// Close destroys the window and closes the X connection.
func (d *Dev) Close() error {
	xproto.DestroyWindow(d.c, d.win)
	d.c.Close()
	<-d.done
	return nil
}

var _ io.WriteCloser = &Dev{}
var _ conn.Resource = &Dev{}
