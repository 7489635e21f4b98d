// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// locator cycles a range of addresses, filling then clearing a panel at each
// one, so the address a panel answers to can be read off the display.
type locator struct {
	from, to int
	cycles   int
	delay    time.Duration
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// run cycles the addresses on b. Failures for one address are logged and the
// cycle continues. The default address 2 is cleared at the end, even when
// ctx is cancelled.
func (l *locator) run(ctx context.Context, b *bus) error {
	defer func() {
		d, err := b.panel(2)
		if err == nil {
			d.Erase()
			err = d.Send()
		}
		if err != nil {
			log.Printf("final clear: %v", err)
		}
	}()
	for c := 0; c < l.cycles; c++ {
		fmt.Printf("Cycle %d of %d\n", c+1, l.cycles)
		for a := l.from; a <= l.to; a++ {
			if err := l.flash(ctx, b, a); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("address %d: %v", a, err)
			}
		}
	}
	fmt.Println("Done. The address your panel reacted to is its address.")
	return nil
}

func (l *locator) flash(ctx context.Context, b *bus, address int) error {
	d, err := b.panel(address)
	if err != nil {
		return err
	}
	fmt.Printf("Address %2d: fill\n", address)
	d.Fill()
	if err := d.Send(); err != nil {
		return err
	}
	if err := l.sleep(ctx, l.delay); err != nil {
		return err
	}
	fmt.Printf("Address %2d: clear\n", address)
	d.Erase()
	if err := d.Send(); err != nil {
		return err
	}
	return l.sleep(ctx, l.delay)
}

func runLocate(ctx context.Context, cfg *config, args []string) error {
	l := locator{sleep: sleep}
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	fs.IntVar(&l.from, "from", 1, "first address")
	fs.IntVar(&l.to, "to", 16, "last address")
	fs.IntVar(&l.cycles, "cycles", 2, "number of passes")
	fs.DurationVar(&l.delay, "delay", 3*time.Second, "time spent filled and cleared at each address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkAddress(l.from); err != nil {
		return err
	}
	if err := checkAddress(l.to); err != nil {
		return err
	}
	if l.from > l.to {
		return fmt.Errorf("-from %d is after -to %d", l.from, l.to)
	}
	return withPanel(cfg, func(b *bus) error {
		fmt.Printf("Testing addresses %d to %d on %s, %s filled then %s cleared each.\n", l.from, l.to, b, l.delay, l.delay)
		if isTerminal(os.Stdin) {
			fmt.Print("Watch the panel. Press Enter to start...")
			if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
				return err
			}
		}
		return l.run(ctx, b)
	})
}
