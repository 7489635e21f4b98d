// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hanover

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/GermanBionicSystems/flipdot/common"
)

const (
	stx = 0x02
	etx = 0x03

	headerLen = 5
	footerLen = 3
)

// ErrShortFrame is returned by DecodeFrame when the frame is truncated.
var ErrShortFrame = errors.New("hanover: short frame")

// FrameError describes a malformed frame.
type FrameError struct {
	// Offset is the index of the offending byte in the frame.
	Offset int
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("hanover: invalid frame at byte %d: %s", e.Offset, e.Reason)
}

// ChecksumError is returned by DecodeFrame when the checksum doesn't match
// the frame content.
type ChecksumError struct {
	Got, Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("hanover: checksum mismatch, frame has 0x%02X, content sums to 0x%02X", e.Got, e.Want)
}

// dataSize is the number of raw bytes the buffer encodes into.
func (d *Dev) dataSize() int {
	return d.rows * d.cols / 8
}

func (d *Dev) header() [headerLen]byte {
	a1, a2 := common.ASCIIHex(d.WireAddress())
	s1, s2 := common.ASCIIHex(byte(d.dataSize() & 0xff))
	return [headerLen]byte{stx, a1, a2, s1, s2}
}

// FrameLen returns the length in bytes of the frames sent to the panel.
func (d *Dev) FrameLen() int {
	return headerLen + 2*d.dataSize() + footerLen
}

// AppendFrame appends the frame encoding the current buffer to dst and
// returns the extended slice.
//
// Each column word is sent least significant byte first, every byte as two
// ASCII hex digits. The checksum covers the header bytes and the ASCII
// digits of the payload.
func (d *Dev) AppendFrame(dst []byte) []byte {
	h := d.header()
	dst = append(dst, h[:]...)
	crc := 0
	perColumn := d.rows / 8
	for _, word := range d.buf {
		for i := 0; i < perColumn; i++ {
			hi, lo := common.ASCIIHex(byte(word >> (8 * uint(i))))
			crc += int(hi) + int(lo)
			dst = append(dst, hi, lo)
		}
	}
	c1, c2 := common.ASCIIHex(common.Checksum(common.Sum(h[:]), crc))
	return append(dst, etx, c1, c2)
}

// Frame returns the frame encoding the current buffer.
func (d *Dev) Frame() []byte {
	return d.AppendFrame(make([]byte, 0, d.FrameLen()))
}

// Send transmits the whole buffer to the panel.
//
// The frame is fully encoded before the first byte is written. Errors from
// the transport are returned as is, wrapped; nothing is retried and the
// buffer is unchanged so Send can be called again.
func (d *Dev) Send() error {
	if d.c == nil && d.w == nil {
		if d.verbose {
			log.Printf("hanover: no transport, frame not sent")
		}
		return ErrNoTransport
	}
	d.frame = d.AppendFrame(d.frame[:0])
	if d.verbose {
		log.Printf("hanover: sending %d bytes, header % X", len(d.frame), d.frame[:headerLen])
	}
	if d.c != nil {
		return wrapErr(d.c.Tx(d.frame, nil))
	}
	n, err := d.w.Write(d.frame)
	if err == nil && n != len(d.frame) {
		err = io.ErrShortWrite
	}
	return wrapErr(err)
}

// Frame is a decoded bus frame.
type Frame struct {
	// Address is the bus address, the logical address plus 16.
	Address byte
	// Data is the raw dot data, column after column, each column least
	// significant byte first.
	Data []byte
}

// LogicalAddress returns the address as configured on the panel.
func (f *Frame) LogicalAddress() int {
	return int(f.Address) - addressOffset
}

// Columns splits Data into column words for a panel of the given number of
// rows.
func (f *Frame) Columns(rows int) ([]uint64, error) {
	if rows < 8 || rows > maxRows || rows%8 != 0 {
		return nil, fmt.Errorf("hanover: invalid number of rows %d", rows)
	}
	perColumn := rows / 8
	if len(f.Data)%perColumn != 0 {
		return nil, fmt.Errorf("hanover: %d data bytes don't fit %d rows", len(f.Data), rows)
	}
	words := make([]uint64, len(f.Data)/perColumn)
	for i, b := range f.Data {
		words[i/perColumn] |= uint64(b) << (8 * uint(i%perColumn))
	}
	return words, nil
}

// DecodeFrame parses and verifies a complete frame as produced by
// AppendFrame.
//
// The size field only carries the low byte of the data size, so the payload
// extends up to ETX and the size field is checked against it.
func DecodeFrame(p []byte) (*Frame, error) {
	if len(p) < headerLen+footerLen {
		return nil, ErrShortFrame
	}
	if p[0] != stx {
		return nil, &FrameError{Offset: 0, Reason: "missing STX"}
	}
	end := bytes.IndexByte(p[headerLen:], etx)
	if end < 0 {
		return nil, ErrShortFrame
	}
	end += headerLen
	if len(p) < end+footerLen {
		return nil, ErrShortFrame
	}
	if len(p) > end+footerLen {
		return nil, &FrameError{Offset: end + footerLen, Reason: "trailing bytes"}
	}
	payload := p[headerLen:end]
	if len(payload)%2 != 0 {
		return nil, &FrameError{Offset: end, Reason: "odd payload length"}
	}
	addr, ok := common.ParseASCIIHex(p[1], p[2])
	if !ok {
		return nil, &FrameError{Offset: 1, Reason: "address is not ASCII hex"}
	}
	size, ok := common.ParseASCIIHex(p[3], p[4])
	if !ok {
		return nil, &FrameError{Offset: 3, Reason: "size is not ASCII hex"}
	}
	if int(size) != (len(payload)/2)&0xff {
		return nil, &FrameError{Offset: 3, Reason: fmt.Sprintf("size 0x%02X doesn't match %d payload bytes", size, len(payload)/2)}
	}
	f := &Frame{Address: addr, Data: make([]byte, len(payload)/2)}
	for i := range f.Data {
		b, ok := common.ParseASCIIHex(payload[2*i], payload[2*i+1])
		if !ok {
			return nil, &FrameError{Offset: headerLen + 2*i, Reason: "payload is not ASCII hex"}
		}
		f.Data[i] = b
	}
	got, ok := common.ParseASCIIHex(p[end+1], p[end+2])
	if !ok {
		return nil, &FrameError{Offset: end + 1, Reason: "checksum is not ASCII hex"}
	}
	if want := common.Checksum(common.Sum(p[:headerLen]), common.Sum(payload)); got != want {
		return nil, &ChecksumError{Got: got, Want: want}
	}
	return f, nil
}

// ScanFrames is a bufio.SplitFunc returning one frame per token. Bytes
// before STX are dropped.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.IndexByte(data, stx)
	if start < 0 {
		return len(data), nil, nil
	}
	end := bytes.IndexByte(data[start:], etx)
	if end >= 0 && start+end+footerLen <= len(data) {
		n := start + end + footerLen
		return n, data[start:n], nil
	}
	if atEOF {
		return len(data), nil, ErrShortFrame
	}
	return start, nil, nil
}
