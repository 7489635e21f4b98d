// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/GermanBionicSystems/flipdot/hanover"
)

// bigDigits are 4x8 glyphs using the full height of an 8 row panel, one byte
// per column, LSB at the top.
var bigDigits = map[rune][4]byte{
	'0': {0xFF, 0x81, 0x81, 0xFF},
	'1': {0x84, 0x82, 0xFF, 0x80},
	'2': {0xF9, 0x89, 0x89, 0x8F},
	'3': {0x89, 0x89, 0x89, 0xFF},
	'4': {0x0F, 0x08, 0x08, 0xFF},
	'5': {0x8F, 0x89, 0x89, 0xF9},
	'6': {0xFF, 0x89, 0x89, 0xF9},
	'7': {0x01, 0x01, 0x01, 0xFF},
	'8': {0xFF, 0x89, 0x89, 0xFF},
	'9': {0x8F, 0x89, 0x89, 0xFF},
	':': {0x00, 0x66, 0x66, 0x00},
}

const (
	clockCol       = 2
	clockAdvance   = 5
	temperatureCol = 45
	pictogramCol   = 65
	pictogramWidth = 10

	// Weather is refreshed every minute during the day, every 5 minutes at
	// night.
	dayStart       = 8
	dayEnd         = 20
	dayRefresh     = time.Minute
	nightRefresh   = 5 * time.Minute
	unknownWeather = "Unknown"
)

// drawBig draws s in bigDigits starting at col without erasing first.
func drawBig(d hanover.Display, s string, col int) {
	for _, r := range s {
		g, ok := bigDigits[r]
		if ok {
			for i, bits := range g {
				for y := 0; y < 8; y++ {
					if bits&(1<<uint(y)) != 0 {
						d.SetDot(col+i, y, true)
					}
				}
			}
		}
		col += clockAdvance
	}
}

// wmoConditions names the WMO weather interpretation codes. Codes missing
// from the table are reported as "Unknown" by condition.
var wmoConditions = map[int]string{
	0:  "Clear",
	1:  "Clear",
	2:  "Fair",
	3:  "Cloudy",
	45: "Fog",
	48: "Fog",
	51: "Drizzle",
	53: "Drizzle",
	55: "Drizzle",
	56: "Frz Drzl",
	57: "Frz Drzl",
	61: "Rain",
	63: "Rain",
	65: "Rain",
	66: "Frz Rain",
	67: "Frz Rain",
	71: "Snow",
	73: "Snow",
	75: "Snow",
	77: "Snow",
	80: "Showers",
	81: "Showers",
	82: "Showers",
	85: "Snow Shr",
	86: "Snow Shr",
	95: "Storm",
	96: "Storm",
	99: "Storm",
}

// condition returns the readable name of a WMO weather code.
func condition(code int) string {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return unknownWeather
}

type point struct{ x, y int }

// pictograms are drawn in a 10 column area. Codes without a pictogram leave
// the area blank.
var pictograms = []struct {
	codes []int
	dots  []point
}{
	// Sun.
	{[]int{0, 1}, []point{
		{4, 3},
		{3, 2}, {5, 2}, {3, 4}, {5, 4}, {2, 3}, {6, 3},
		{4, 0}, {4, 6}, {1, 3}, {7, 3}, {2, 1}, {6, 1}, {2, 5}, {6, 5},
	}},
	// Cloud.
	{[]int{2, 3}, []point{
		{3, 2}, {4, 2}, {5, 2}, {2, 3}, {6, 3}, {2, 4}, {3, 4}, {4, 4}, {5, 4}, {6, 4},
	}},
	// Rain.
	{[]int{51, 53, 55, 61, 63, 65, 80, 81, 82}, []point{
		{3, 1}, {4, 1}, {5, 1}, {2, 2}, {6, 2}, {2, 3}, {3, 3}, {4, 3}, {5, 3}, {6, 3},
		{3, 4}, {5, 5}, {2, 6}, {4, 6}, {6, 6},
	}},
	// Snow.
	{[]int{71, 73, 75, 77, 85, 86}, []point{
		{4, 1}, {4, 2}, {4, 3}, {4, 4}, {4, 5}, {4, 6},
		{2, 2}, {6, 2}, {3, 3}, {5, 3}, {2, 4}, {6, 4}, {3, 5}, {5, 5},
	}},
	// Lightning.
	{[]int{95, 96, 99}, []point{
		{4, 1}, {5, 2}, {4, 3}, {3, 4}, {2, 5}, {3, 6},
	}},
	// Fog.
	{[]int{45, 48}, []point{
		{2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}, {7, 2},
		{2, 4}, {3, 4}, {4, 4}, {5, 4}, {6, 4}, {7, 4},
		{2, 6}, {3, 6}, {4, 6}, {5, 6}, {6, 6}, {7, 6},
	}},
}

// drawPictogram clears the 10x8 area at col and draws the pictogram for the
// WMO code.
func drawPictogram(d hanover.Display, col, code int) {
	for y := 0; y < 8; y++ {
		for x := col; x < col+pictogramWidth; x++ {
			d.SetDot(x, y, false)
		}
	}
	for _, p := range pictograms {
		for _, c := range p.codes {
			if c != code {
				continue
			}
			for _, dot := range p.dots {
				d.SetDot(col+dot.x, dot.y, true)
			}
			return
		}
	}
}

// drawTemperature writes temp in degrees Celsius at temperatureCol in the
// 5x7 font. Unlike WriteText it only clears its own area.
func drawTemperature(d hanover.Display, temp int) {
	s := fmt.Sprintf("%dC", temp)
	for y := 0; y < hanover.GlyphHeight; y++ {
		for x := 0; x < len(s)*hanover.GlyphAdvance; x++ {
			d.SetDot(temperatureCol+x, y, false)
		}
	}
	col := temperatureCol
	for _, r := range s {
		g, ok := hanover.Glyph(r)
		if ok {
			for i, bits := range g {
				for y := 0; y < hanover.GlyphHeight; y++ {
					if bits&(1<<uint(y)) != 0 {
						d.SetDot(col+i, y, true)
					}
				}
			}
		}
		col += hanover.GlyphAdvance
	}
}

// weatherProvider returns the current temperature in degrees Celsius and
// WMO weather code.
type weatherProvider interface {
	Current(ctx context.Context) (temp float64, code int, err error)
}

// weather is the last observation shown next to the clock.
type weather struct {
	temp  int
	code  int
	valid bool
	// err is the error of the last refresh. The previous observation is kept
	// on failure.
	err        error
	lastUpdate time.Time
}

// refreshInterval returns how often the weather is fetched at now.
func refreshInterval(now time.Time) time.Duration {
	if h := now.Hour(); h >= dayStart && h < dayEnd {
		return dayRefresh
	}
	return nightRefresh
}

// clockState is what the clock remembers between ticks.
type clockState struct {
	lastMinute int
	lastHour   int
	updates    int

	provider weatherProvider
	weather  weather
}

func newClockState(p weatherProvider) *clockState {
	return &clockState{lastMinute: -1, lastHour: -1, provider: p}
}

// refreshWeather fetches the weather when the refresh interval elapsed. It
// returns true when a fetch was attempted.
func (s *clockState) refreshWeather(ctx context.Context, now time.Time) bool {
	if s.provider == nil {
		return false
	}
	if !s.weather.lastUpdate.IsZero() && now.Sub(s.weather.lastUpdate) < refreshInterval(now) {
		return false
	}
	s.weather.lastUpdate = now
	temp, code, err := s.provider.Current(ctx)
	if err != nil {
		s.weather.err = err
		return true
	}
	s.weather.temp = int(math.Round(temp))
	s.weather.code = code
	s.weather.valid = true
	s.weather.err = nil
	return true
}

// tick refreshes the weather if due and redraws d when the minute changed
// since the last tick. It returns true if a frame was sent.
func (s *clockState) tick(ctx context.Context, d hanover.Display, now time.Time) (bool, error) {
	s.refreshWeather(ctx, now)
	if now.Minute() == s.lastMinute && now.Hour() == s.lastHour {
		return false, nil
	}
	d.Erase()
	drawBig(d, now.Format("15:04"), clockCol)
	if s.weather.valid {
		drawTemperature(d, s.weather.temp)
		drawPictogram(d, pictogramCol, s.weather.code)
	}
	if err := d.Send(); err != nil {
		return false, err
	}
	s.lastMinute = now.Minute()
	s.lastHour = now.Hour()
	s.updates++
	return true, nil
}

// run ticks every poll until ctx is done, then erases the panel.
func (s *clockState) run(ctx context.Context, d hanover.Display, poll time.Duration, verbose bool) error {
	defer func() {
		d.Erase()
		if err := d.Send(); err != nil {
			log.Printf("clock: clearing: %v", err)
		}
	}()
	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		now := time.Now()
		if s.refreshWeather(ctx, now) {
			if w := s.weather; w.err != nil {
				log.Printf("clock: weather: %v", w.err)
			} else if verbose {
				log.Printf("clock: weather %dC, %s (code %d)", w.temp, condition(w.code), w.code)
			}
		}
		sent, err := s.tick(ctx, d, now)
		if err != nil {
			return err
		}
		if sent && verbose {
			log.Printf("clock: update %d", s.updates)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func runClock(ctx context.Context, cfg *config, args []string) error {
	fs := flag.NewFlagSet("clock", flag.ContinueOnError)
	poll := fs.Duration("poll", time.Second, "how often the time is checked")
	showWeather := fs.Bool("weather", true, "show temperature and weather from open-meteo.com")
	lat := fs.Float64("lat", 51.4545, "latitude for the weather")
	lon := fs.Float64("lon", -2.5879, "longitude for the weather")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var p weatherProvider
	if *showWeather {
		p = newOpenMeteo(*lat, *lon)
	}
	return withPanel(cfg, func(b *bus) error {
		d, err := b.panel(cfg.opts.Address)
		if err != nil {
			return err
		}
		return newClockState(p).run(ctx, d, *poll, cfg.opts.Verbose)
	})
}
