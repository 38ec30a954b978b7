// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

// Byte sizes of the fixed-layout records.
const (
	headerSize    = 18
	footerSize    = 26
	extensionSize = 495
)

// tgaSignature is the TGA 2.0 footer signature.
const tgaSignature = "TRUEVISION-XFILE"

// ImageType is the header's image-type byte. The low bits are independent
// flags: bit 0 selects color-mapped data, bit 1 truecolor data (both set
// means grayscale by convention), bit 3 run-length encoding. Bit 2 and the
// top four bits are reserved and must be zero.
type ImageType uint8

// Indexed reports whether the color-mapped flag is set.
func (t ImageType) Indexed() bool {
	return t&0x01 != 0
}

// Truecolor reports whether the truecolor flag is set.
func (t ImageType) Truecolor() bool {
	return t&0x02 != 0
}

// RunLength reports whether the pixel data is run-length encoded.
func (t ImageType) RunLength() bool {
	return t&0x08 != 0
}

func (t ImageType) reservedZero() bool {
	return t&0x04 == 0 && t&0xf0 == 0
}

// Descriptor is the last byte of the image spec: four attribute bits, the
// right-to-left bit (bit 4) and the top-to-bottom bit (bit 5). The top two
// bits are reserved.
type Descriptor uint8

// AttributeBits returns the number of attribute (alpha) bits per pixel.
func (d Descriptor) AttributeBits() uint8 {
	return uint8(d) & 0x0f
}

// RightToLeft reports whether pixels are stored right-to-left within a row.
// The bit is parsed but not honored by any scanline reader; mirrored rows
// come out unmirrored.
func (d Descriptor) RightToLeft() bool {
	return d&0x10 != 0
}

// TopToBottom reports whether rows are stored top-to-bottom. Unset is the
// TGA default, bottom-to-top.
func (d Descriptor) TopToBottom() bool {
	return d&0x20 != 0
}

// ColorMapSpec describes the color map, if any.
type ColorMapSpec struct {
	FirstEntryIndex uint16
	Length          uint16
	BitDepth        uint8
}

// ImageSpec describes the pixel raster.
type ImageSpec struct {
	OriginX     uint16
	OriginY     uint16
	Width       uint16
	Height      uint16
	BitPerPixel uint8
	Descriptor  Descriptor
}

// Header is the fixed 18-byte record at the start of every TGA file.
type Header struct {
	IDLength     uint8
	HasColorMap  uint8
	ImageType    ImageType
	ColorMapSpec ColorMapSpec
	ImageSpec    ImageSpec
}

// valid checks the header invariants: the color-map type must be 0 or 1,
// the reserved image-type bits must be zero and the color-map bit depth
// must be one of the values the format defines.
func (h Header) valid() bool {
	if h.HasColorMap > 1 {
		return false
	}
	if !h.ImageType.reservedZero() {
		return false
	}
	switch h.ColorMapSpec.BitDepth {
	case 0, 15, 16, 24, 32:
	default:
		return false
	}
	return true
}

func (h Header) bytesPerPixel() int {
	return (int(h.ImageSpec.BitPerPixel) + 7) / 8
}

func (e *streamReader) readHeader() Header {
	var h Header
	h.IDLength = e.read1()
	h.HasColorMap = e.read1()
	h.ImageType = ImageType(e.read1())
	h.ColorMapSpec.FirstEntryIndex = e.read2()
	h.ColorMapSpec.Length = e.read2()
	h.ColorMapSpec.BitDepth = e.read1()
	h.ImageSpec.OriginX = e.read2()
	h.ImageSpec.OriginY = e.read2()
	h.ImageSpec.Width = e.read2()
	h.ImageSpec.Height = e.read2()
	h.ImageSpec.BitPerPixel = e.read1()
	h.ImageSpec.Descriptor = Descriptor(e.read1())
	return h
}

// Footer is the fixed 26-byte record at the end of a TGA 2.0 file.
type Footer struct {
	ExtensionOffset uint32
	DevAreaOffset   uint32
	Signature       [16]byte
	Dot             uint8
	NullTerminator  uint8
}

// isSigned reports whether the footer carries the TGA 2.0 signature.
func (f Footer) isSigned() bool {
	return string(f.Signature[:]) == tgaSignature
}

// isValid reports whether the footer fully identifies a TGA 2.0 file,
// including the trailing '.' and NUL bytes.
func (f Footer) isValid() bool {
	return f.isSigned() && f.Dot == '.' && f.NullTerminator == 0
}

func (e *streamReader) readFooter() Footer {
	var f Footer
	f.ExtensionOffset = e.read4()
	f.DevAreaOffset = e.read4()
	e.readBytes(f.Signature[:])
	f.Dot = e.read1()
	f.NullTerminator = e.read1()
	return f
}
