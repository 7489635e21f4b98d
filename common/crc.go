// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the ASCII-hex encoding and checksum of the Hanover bus protocol.
package common

// Checksum calculates the Hanover frame checksum from the byte sum of the
// frame header and the byte sum of the ASCII-hex payload.
//
// The protocol adds one to the sum before truncating it, then returns the
// two's complement of the truncated value.
func Checksum(headerSum, payloadSum int) byte {
	sum := (headerSum + payloadSum + 1) & 0xff
	return byte(((sum ^ 0xff) + 1) & 0xff)
}

// Sum returns the arithmetic sum of the bytes.
func Sum(bytes []byte) int {
	s := 0
	for _, b := range bytes {
		s += int(b)
	}
	return s
}
