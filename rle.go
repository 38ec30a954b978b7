// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import "io"

// TGA run-length encoding is packet based: a one-byte packet header whose
// top bit selects the packet kind and whose low seven bits hold the run
// length minus one. A repeated packet is followed by a single pixel to be
// replayed run-length times; a raw packet is followed by run-length pixels
// stored verbatim.

type rleDecoderState int

const (
	rleStatePacketHeader rleDecoderState = iota
	rleStateRepeated
	rleStateRaw
)

// rleDecoder decompresses a TGA run-length encoded pixel stream. It is a
// plain io.Reader so the scanline readers never know the data was
// compressed, and it reassembles pixels correctly however the caller
// splits its reads: a read that ends mid-pixel resumes at the same byte
// on the next call.
type rleDecoder struct {
	r             io.Reader
	bytesPerPixel int

	state rleDecoderState

	// One-pixel lookback for repeated packets.
	pixel    []byte
	pixelPos int

	repeatCount int // pixels left to emit in the current repeated run
	rawCount    int // bytes left to forward in the current raw run
}

func newRLEDecoder(r io.Reader, bytesPerPixel int) *rleDecoder {
	return &rleDecoder{
		r:             r,
		bytesPerPixel: bytesPerPixel,
		pixel:         make([]byte, bytesPerPixel),
	}
}

func (d *rleDecoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		switch d.state {
		case rleStatePacketHeader:
			var hdr [1]byte
			if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
				return n, err
			}
			runLength := int(hdr[0]&0x7f) + 1
			if hdr[0]&0x80 != 0 {
				if _, err := io.ReadFull(d.r, d.pixel); err != nil {
					return n, err
				}
				d.repeatCount = runLength
				d.pixelPos = 0
				d.state = rleStateRepeated
			} else {
				d.rawCount = runLength * d.bytesPerPixel
				d.state = rleStateRaw
			}
		case rleStateRepeated:
			for n < len(p) && d.repeatCount > 0 {
				p[n] = d.pixel[d.pixelPos]
				n++
				d.pixelPos++
				if d.pixelPos == d.bytesPerPixel {
					d.pixelPos = 0
					d.repeatCount--
				}
			}
			if d.repeatCount == 0 {
				d.state = rleStatePacketHeader
			}
		case rleStateRaw:
			want := len(p) - n
			if want > d.rawCount {
				want = d.rawCount
			}
			if _, err := io.ReadFull(d.r, p[n:n+want]); err != nil {
				return n, err
			}
			n += want
			d.rawCount -= want
			if d.rawCount == 0 {
				d.state = rleStatePacketHeader
			}
		default:
			return n, newInvalidFormatErrorf("run-length read from undefined state %d", d.state)
		}
	}
	return n, nil
}
