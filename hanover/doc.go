// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hanover drives Hanover flip-dot panels over their RS-485 serial
// bus.
//
// A Dev keeps the whole panel in memory as one word per column, each bit
// being a dot of that column. Dots are changed locally with SetDot, Fill,
// Erase and WriteText, and nothing reaches the panel until Send is called.
// Send transmits the full buffer as a single frame:
//
//	STX addr(2) size(2) payload(2*size) ETX checksum(2)
//
// where every field after STX and ETX is ASCII-hex encoded. The bus runs at
// 4800 baud, 8 data bits, no parity.
//
// A Dev does not own timing: the speed factor only scales delays that the
// caller sleeps on. A Dev is not safe for concurrent use; callers sharing one
// must serialize the mutate-then-Send sequence themselves.
//
// # Transports
//
// The frame sink is injected at construction. NewUART connects a
// uart.Port, NewConn uses any conn.Conn and NewWriter any io.Writer, which is
// how the terminal and X11 simulators in this repository replace the
// hardware. New creates a Dev with no transport, useful to render frames
// offline.
//
// # Addresses
//
// Panels are configured with a logical address 1 to 16 using the rotary
// switch behind the panel. The bus address is the logical address plus 16.
package hanover
