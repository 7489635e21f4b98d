// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// flipdot drives Hanover flip-dot panels over RS-485.
//
// The serial port and panel geometry come from flags, FLIPDOT_* environment
// variables or a .env file in the current directory. Without a port, the
// panel is simulated in the terminal.
//
// Usage:
//
//	flipdot -port /dev/ttyUSB0 text "HELLO WORLD"
//	flipdot -sim x11 clock
//	flipdot locate -from 1 -to 16
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/GermanBionicSystems/flipdot/serialport"
	"github.com/GermanBionicSystems/flipdot/textrender"
	"github.com/fogleman/gg"
	"github.com/joho/godotenv"
	"periph.io/x/host/v3"
)

type command struct {
	name string
	help string
	run  func(ctx context.Context, cfg *config, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"text", "show text in the built-in 5x7 font: text [-col N] [-row N] <text>", runText},
		{"ttf", "show text in Go Mono: ttf [-size N] [-align left|center|right] <text>", runTTF},
		{"fill", "turn every dot on", runFill},
		{"clear", "turn every dot off", runClear},
		{"locate", "cycle addresses to find a panel: locate [-from N] [-to N] [-delay D] [-cycles N]", runLocate},
		{"clock", "show a 24h clock", runClock},
		{"demo", "run the feature tour", runDemo},
		{"ports", "list serial ports", runPorts},
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func runText(ctx context.Context, cfg *config, args []string) error {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	col := fs.Int("col", 0, "first column")
	row := fs.Int("row", 0, "top row")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		d.WriteText(strings.Join(fs.Args(), " "), *col, *row)
		return d.Send()
	})
}

func runTTF(ctx context.Context, cfg *config, args []string) error {
	fs := flag.NewFlagSet("ttf", flag.ContinueOnError)
	size := fs.Float64("size", 0, "font size in dots, defaults to the panel height")
	align := fs.String("align", "left", "left, center or right")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts := textrender.Opts{Size: *size}
	switch *align {
	case "left":
		opts.Align = gg.AlignLeft
	case "center":
		opts.Align = gg.AlignCenter
	case "right":
		opts.Align = gg.AlignRight
	default:
		return fmt.Errorf("invalid alignment %q", *align)
	}
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		return textrender.Draw(d, strings.Join(fs.Args(), " "), &opts)
	})
}

func runFill(ctx context.Context, cfg *config, args []string) error {
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		d.Fill()
		return d.Send()
	})
}

func runClear(ctx context.Context, cfg *config, args []string) error {
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		d.Erase()
		return d.Send()
	})
}

func runPorts(ctx context.Context, cfg *config, args []string) error {
	ports, err := serialport.List()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for i, p := range ports {
		fmt.Printf("%d. %s\n", i+1, p)
	}
	return nil
}

// withPanel opens the bus, runs fn and closes the bus.
func withPanel(cfg *config, fn func(b *bus) error) error {
	b, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Printf("closing %s: %v", b, err)
		}
	}()
	return fn(b)
}

func mainImpl(args []string, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	cfg, rest, err := parseConfig(args, os.Getenv, stdout)
	if err != nil {
		return err
	}
	if !cfg.opts.Verbose {
		log.SetFlags(0)
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	for _, c := range commands {
		if c.name == rest[0] {
			err := c.run(ctx, cfg, rest[1:])
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return fmt.Errorf("unknown command %q", rest[0])
}

func main() {
	if err := mainImpl(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "flipdot: %s.\n", err)
		os.Exit(1)
	}
}

// checkAddress verifies a is a valid panel address.
func checkAddress(a int) error {
	if a < 1 || a > 16 {
		return fmt.Errorf("invalid address %d, must be 1 to 16", a)
	}
	return nil
}
