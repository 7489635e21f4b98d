// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/GermanBionicSystems/flipdot/flipdotsim"
	"github.com/GermanBionicSystems/flipdot/hanover"
	"github.com/GermanBionicSystems/flipdot/serialport"
	"github.com/GermanBionicSystems/flipdot/x11sim"
	"github.com/mattn/go-isatty"
)

// bus is the RS-485 line, real or simulated. Several panels with different
// addresses can share it.
type bus struct {
	cfg     *config
	port    *serialport.Port
	w       io.Writer
	closers []io.Closer
	halt    func() error
}

// isTerminal reports if f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// simulator returns the simulator to use. Without a port, an interactive
// stdout defaults to the terminal simulator.
func (c *config) simulator() string {
	if c.sim != "" {
		return c.sim
	}
	if c.port == "" && isTerminal(os.Stdout) {
		return simTerm
	}
	return simNone
}

func openBus(cfg *config) (*bus, error) {
	b := &bus{cfg: cfg}
	switch cfg.simulator() {
	case simTerm:
		s, err := flipdotsim.New(&flipdotsim.Opts{Columns: cfg.opts.Columns, Rows: cfg.opts.Rows, Address: cfg.opts.Address})
		if err != nil {
			return nil, err
		}
		b.w = s
		b.halt = s.Halt
	case simX11:
		s, err := x11sim.New(&x11sim.Opts{Columns: cfg.opts.Columns, Rows: cfg.opts.Rows, Address: cfg.opts.Address, Display: cfg.display})
		if err != nil {
			return nil, err
		}
		b.w = s
		b.closers = append(b.closers, s)
	default:
		if cfg.port == "" {
			return nil, errors.New("no serial port, use -port, FLIPDOT_PORT or -sim")
		}
		p, err := serialport.Open(cfg.port)
		if err != nil {
			return nil, err
		}
		b.port = p
		b.closers = append(b.closers, p)
	}
	if cfg.opts.Verbose {
		log.Printf("bus: %s", b)
	}
	return b, nil
}

func (b *bus) String() string {
	if b.port != nil {
		return b.port.String()
	}
	if s, ok := b.w.(fmt.Stringer); ok {
		return s.String()
	}
	return "unknown"
}

// panel returns a Dev for the panel at address on the bus, with the other
// settings taken from the configuration.
//
// The speed factor is always set explicitly: on the command line 0 is a
// request for the fastest speed, not for the default.
func (b *bus) panel(address int) (*hanover.Dev, error) {
	opts := b.cfg.opts
	opts.Address = address
	var d *hanover.Dev
	var err error
	if b.port != nil {
		d, err = hanover.NewUART(b.port, &opts)
	} else {
		d, err = hanover.NewWriter(b.w, &opts)
	}
	if err != nil {
		return nil, err
	}
	d.SetSpeedFactor(b.cfg.opts.SpeedFactor)
	return d, nil
}

// Close releases the bus. Panels created by panel must not be used after.
func (b *bus) Close() error {
	var errs []error
	if b.halt != nil {
		errs = append(errs, b.halt())
	}
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
