// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/flipdot/hanover"
)

// Simulator kinds accepted by -sim.
const (
	simNone = "none"
	simTerm = "term"
	simX11  = "x11"
)

// config is the global configuration shared by every subcommand.
type config struct {
	port    string
	sim     string
	display string
	opts    hanover.Opts
}

// parseConfig parses the global flags in args. Defaults come from getenv so
// FLIPDOT_* variables (or a .env file) can replace flags. It returns the
// remaining arguments, starting with the subcommand.
func parseConfig(args []string, getenv func(string) string, out io.Writer) (*config, []string, error) {
	cfg := &config{opts: hanover.DefaultOpts}
	env := envDefaults{getenv: getenv}
	fs := flag.NewFlagSet("flipdot", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&cfg.port, "port", env.str("FLIPDOT_PORT", ""), "serial port connected to the panel bus")
	fs.StringVar(&cfg.sim, "sim", env.str("FLIPDOT_SIM", ""), "simulator instead of the serial port: none, term or x11")
	fs.StringVar(&cfg.display, "display", env.str("FLIPDOT_DISPLAY", ""), "X display for -sim x11")
	fs.IntVar(&cfg.opts.Address, "addr", env.integer("FLIPDOT_ADDRESS", cfg.opts.Address), "panel address, 1 to 16")
	fs.IntVar(&cfg.opts.Columns, "cols", env.integer("FLIPDOT_COLUMNS", cfg.opts.Columns), "panel width in dots")
	fs.IntVar(&cfg.opts.Rows, "rows", env.integer("FLIPDOT_ROWS", cfg.opts.Rows), "panel height in dots")
	fs.BoolVar(&cfg.opts.Flipped, "flip", env.boolean("FLIPDOT_FLIP", false), "panel is mounted upside down")
	fs.Float64Var(&cfg.opts.SpeedFactor, "speed", env.float("FLIPDOT_SPEED", 1), "delay multiplier, higher is slower")
	fs.BoolVar(&cfg.opts.Verbose, "v", env.boolean("FLIPDOT_VERBOSE", false), "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(out, "usage: flipdot [flags] <command> [args]\n\n")
		fmt.Fprintf(out, "commands:\n")
		for _, c := range commands {
			fmt.Fprintf(out, "  %-8s %s\n", c.name, c.help)
		}
		fmt.Fprintf(out, "\nflags:\n")
		fs.PrintDefaults()
	}
	if env.err != nil {
		return nil, nil, env.err
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	switch cfg.sim {
	case "", simNone, simTerm, simX11:
	default:
		return nil, nil, fmt.Errorf("unknown simulator %q, use none, term or x11", cfg.sim)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, flag.ErrHelp
	}
	return cfg, fs.Args(), nil
}

// envDefaults reads typed defaults from the environment and keeps the first
// parsing error.
type envDefaults struct {
	getenv func(string) string
	err    error
}

func (e *envDefaults) lookup(key string) (string, bool) {
	v := strings.TrimSpace(e.getenv(key))
	return v, v != ""
}

func (e *envDefaults) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s=%q: %w", key, v, err)
	}
}

func (e *envDefaults) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *envDefaults) integer(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return i
}

func (e *envDefaults) float(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envDefaults) boolean(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}
