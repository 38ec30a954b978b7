// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import (
	"encoding/binary"
	"io"
)

// The scanline readers consume exactly width*height pixels from r, which is
// either the raw stream or the run-length decoder; they cannot tell which.
// Rows are stored bottom-to-top unless the descriptor says otherwise, so
// stored row y lands at output row height-y-1 in the default case. The
// right-to-left descriptor bit is not honored; columns always fill
// left-to-right.

func destRow(y, height int, topToBottom bool) int {
	if topToBottom {
		return y
	}
	return height - 1 - y
}

func readGrayscale8(r io.Reader, pixels []Grayscale8, width, height int, topToBottom bool) error {
	buf := make([]byte, width)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		row := pixels[destRow(y, height, topToBottom)*width:]
		for x := 0; x < width; x++ {
			row[x] = Grayscale8{V: buf[x]}
		}
	}
	return nil
}

func readIndexed8(r io.Reader, pixels *Indexed8, width, height int, topToBottom bool) error {
	buf := make([]byte, width)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		copy(pixels.Indices[destRow(y, height, topToBottom)*width:], buf)
	}
	return nil
}

func readRGB555(r io.Reader, pixels []RGB555, width, height int, topToBottom bool) error {
	buf := make([]byte, width*2)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		row := pixels[destRow(y, height, topToBottom)*width:]
		for x := 0; x < width; x++ {
			// ARRRRRGGGGGBBBBB; the top bit is an unused attribute bit.
			word := binary.LittleEndian.Uint16(buf[x*2:])
			row[x] = RGB555{
				R: uint8(word >> 10 & 0x1f),
				G: uint8(word >> 5 & 0x1f),
				B: uint8(word & 0x1f),
			}
		}
	}
	return nil
}

func readRGB24(r io.Reader, pixels []RGB24, width, height int, topToBottom bool) error {
	buf := make([]byte, width*3)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		row := pixels[destRow(y, height, topToBottom)*width:]
		for x := 0; x < width; x++ {
			// Channels are stored blue, green, red.
			row[x] = RGB24{
				B: buf[x*3],
				G: buf[x*3+1],
				R: buf[x*3+2],
			}
		}
	}
	return nil
}

// readRGBA32 reads 8-8-8-8 pixels stored as blue, green, red, alpha. The
// alpha byte is always consumed; forceOpaque discards it in favor of 255.
// That is the extension-block policy: an extension that does not mark the
// alpha channel useful overrides whatever the pixel data says, while a file
// without an extension is trusted verbatim.
func readRGBA32(r io.Reader, pixels []RGBA32, width, height int, topToBottom bool, forceOpaque bool) error {
	buf := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		row := pixels[destRow(y, height, topToBottom)*width:]
		for x := 0; x < width; x++ {
			a := buf[x*4+3]
			if forceOpaque {
				a = 255
			}
			row[x] = RGBA32{
				B: buf[x*4],
				G: buf[x*4+1],
				R: buf[x*4+2],
				A: a,
			}
		}
	}
	return nil
}

// readColorMap reads the palette from r, which is always the raw stream;
// the color map is never run-length encoded regardless of the image type.
// Only 15- and 16-bit entries are supported: both are 16-bit words holding
// 5-5-5 RGB with the top bit unused. 24- and 32-bit maps pass header
// validation but are rejected here. Entries land at
// [FirstEntryIndex, FirstEntryIndex+Length); the rest of the palette is
// left untouched.
func readColorMap(r io.Reader, spec ColorMapSpec, palette *[256]RGBA32) error {
	switch spec.BitDepth {
	case 15, 16:
	default:
		return newUnsupportedErrorf("color map bit depth %d", spec.BitDepth)
	}

	buf := make([]byte, 2)
	for i := 0; i < int(spec.Length); i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		idx := int(spec.FirstEntryIndex) + i
		if idx >= len(palette) {
			continue
		}
		word := binary.LittleEndian.Uint16(buf)
		palette[idx] = RGBA32{
			R: scale5to8(uint8(word >> 10 & 0x1f)),
			G: scale5to8(uint8(word >> 5 & 0x1f)),
			B: scale5to8(uint8(word & 0x1f)),
			A: 255,
		}
	}
	return nil
}
