// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

// ASCIIHex returns the two uppercase ASCII hex digits representing b, high
// nibble first. For example 0x67 is represented by '6', '7'.
func ASCIIHex(b byte) (hi, lo byte) {
	return hexDigit(b >> 4), hexDigit(b & 0x0f)
}

// ParseASCIIHex is the inverse of ASCIIHex. It only accepts the uppercase
// digits the bus uses.
func ParseASCIIHex(hi, lo byte) (byte, bool) {
	h, ok := nibble(hi)
	if !ok {
		return 0, false
	}
	l, ok := nibble(lo)
	if !ok {
		return 0, false
	}
	return h<<4 | l, true
}

func hexDigit(n byte) byte {
	if n > 9 {
		return 'A' + n - 10
	}
	return '0' + n
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
