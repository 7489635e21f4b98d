// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flipdot is a container for the Hanover flip-dot panel driver and
// its tools.
//
// The driver lives in hanover. serialport connects it to an RS-485 adapter,
// flipdotsim and x11sim stand in for the panel when no hardware is at hand,
// and textrender draws proportional text on it. cmd/flipdot ties them
// together.
package flipdot
