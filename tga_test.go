// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/bep/tga"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

var eq = qt.CmpEquals(
	cmp.Comparer(func(x, y time.Time) bool {
		return x.Equal(y)
	}),
)

// testImage synthesizes TGA byte streams for the decoder under test.
type testImage struct {
	id           []byte
	colorMapType uint8
	imageType    uint8
	cmFirst      uint16
	cmLength     uint16
	cmDepth      uint8
	width        uint16
	height       uint16
	bitPerPixel  uint8
	descriptor   uint8
	colorMap     []byte
	pixels       []byte

	v2            bool
	devAreaOffset uint32
	extension     []byte
}

func (ti testImage) encode() []byte {
	var b bytes.Buffer

	le16 := func(v uint16) {
		binary.Write(&b, binary.LittleEndian, v)
	}
	le32 := func(v uint32) {
		binary.Write(&b, binary.LittleEndian, v)
	}

	b.WriteByte(uint8(len(ti.id)))
	b.WriteByte(ti.colorMapType)
	b.WriteByte(ti.imageType)
	le16(ti.cmFirst)
	le16(ti.cmLength)
	b.WriteByte(ti.cmDepth)
	le16(0) // origin x
	le16(0) // origin y
	le16(ti.width)
	le16(ti.height)
	b.WriteByte(ti.bitPerPixel)
	b.WriteByte(ti.descriptor)

	b.Write(ti.id)
	b.Write(ti.colorMap)
	b.Write(ti.pixels)

	if ti.v2 {
		var extensionOffset uint32
		if ti.extension != nil {
			extensionOffset = uint32(b.Len())
			b.Write(ti.extension)
		}
		le32(extensionOffset)
		le32(ti.devAreaOffset)
		b.WriteString("TRUEVISION-XFILE")
		b.WriteByte('.')
		b.WriteByte(0)
	}

	return b.Bytes()
}

func (ti testImage) decode(c *qt.C) tga.DecodeResult {
	c.Helper()
	result, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode())})
	c.Assert(err, qt.IsNil)
	return result
}

// newTestExtension returns a zeroed 495-byte extension record with the
// given attributes tag.
func newTestExtension(attributes tga.Attributes) []byte {
	e := make([]byte, 495)
	binary.LittleEndian.PutUint16(e, 495)
	e[494] = byte(attributes)
	return e
}

func TestDecode24BitBottomToTop(t *testing.T) {
	c := qt.New(t)

	// 2x2, bottom-to-top: the stream carries row 1 first, channels B, G, R.
	ti := testImage{
		imageType:   2,
		width:       2,
		height:      2,
		bitPerPixel: 24,
		pixels: []byte{
			1, 2, 3, 4, 5, 6, // stored row 0 => output row 1
			7, 8, 9, 10, 11, 12, // stored row 1 => output row 0
		},
	}

	result := ti.decode(c)

	c.Assert(result.ImageConfig.Width, qt.Equals, 2)
	c.Assert(result.ImageConfig.Height, qt.Equals, 2)
	c.Assert(result.ImageConfig.PixelFormat, qt.Equals, tga.PixelFormatRGB24)
	c.Assert(result.Version, qt.Equals, 1)

	c.Assert(result.Pixels.RGB24, qt.DeepEquals, []tga.RGB24{
		{B: 7, G: 8, R: 9}, {B: 10, G: 11, R: 12},
		{B: 1, G: 2, R: 3}, {B: 4, G: 5, R: 6},
	})
}

func TestDecode24BitTopToBottom(t *testing.T) {
	c := qt.New(t)

	ti := testImage{
		imageType:   2,
		width:       2,
		height:      2,
		bitPerPixel: 24,
		descriptor:  0x20,
		pixels: []byte{
			1, 2, 3, 4, 5, 6,
			7, 8, 9, 10, 11, 12,
		},
	}

	result := ti.decode(c)

	c.Assert(result.Pixels.RGB24, qt.DeepEquals, []tga.RGB24{
		{B: 1, G: 2, R: 3}, {B: 4, G: 5, R: 6},
		{B: 7, G: 8, R: 9}, {B: 10, G: 11, R: 12},
	})
}

func TestDecode32BitAlphaPolicy(t *testing.T) {
	c := qt.New(t)

	base := testImage{
		// The id pads the v1 variants past the footer-size minimum.
		id:          []byte("alpha policy test"),
		imageType:   2,
		width:       1,
		height:      1,
		bitPerPixel: 32,
		pixels:      []byte{10, 20, 30, 7}, // B, G, R, A
	}

	c.Run("no extension, v1", func(c *qt.C) {
		result := base.decode(c)
		c.Assert(result.Pixels.RGBA32[0], qt.Equals, tga.RGBA32{B: 10, G: 20, R: 30, A: 7})
	})

	c.Run("no extension, v2", func(c *qt.C) {
		ti := base
		ti.v2 = true
		result := ti.decode(c)
		c.Assert(result.Version, qt.Equals, 2)
		c.Assert(result.Pixels.RGBA32[0].A, qt.Equals, uint8(7))
	})

	c.Run("extension without useful alpha forces opaque", func(c *qt.C) {
		ti := base
		ti.v2 = true
		ti.extension = newTestExtension(tga.AttributesNoAlpha)
		result := ti.decode(c)
		c.Assert(result.Extension, qt.IsNotNil)
		c.Assert(result.Pixels.RGBA32[0].A, qt.Equals, uint8(255))
	})

	c.Run("extension with useful alpha keeps stored byte", func(c *qt.C) {
		ti := base
		ti.v2 = true
		ti.extension = newTestExtension(tga.AttributesUsefulAlpha)
		result := ti.decode(c)
		c.Assert(result.Pixels.RGBA32[0].A, qt.Equals, uint8(7))
	})
}

func TestDecodeGrayscale(t *testing.T) {
	c := qt.New(t)

	// Both image-type flags set means grayscale by convention.
	ti := testImage{
		imageType:   3,
		width:       2,
		height:      1,
		bitPerPixel: 8,
		pixels:      []byte{5, 250},
		v2:          true,
	}

	result := ti.decode(c)

	c.Assert(result.ImageConfig.PixelFormat, qt.Equals, tga.PixelFormatGrayscale8)
	c.Assert(result.Pixels.Grayscale8, qt.DeepEquals, []tga.Grayscale8{{V: 5}, {V: 250}})
}

func TestDecodeRGB555(t *testing.T) {
	c := qt.New(t)

	word := uint16(10)<<10 | uint16(20)<<5 | uint16(30)
	ti := testImage{
		imageType:   2,
		width:       1,
		height:      1,
		bitPerPixel: 16,
		pixels:      []byte{byte(word), byte(word >> 8)},
		v2:          true,
	}

	result := ti.decode(c)

	c.Assert(result.ImageConfig.PixelFormat, qt.Equals, tga.PixelFormatRGB555)
	// Channels are kept at their stored 5-bit range.
	c.Assert(result.Pixels.RGB555[0], qt.Equals, tga.RGB555{R: 10, G: 20, B: 30})
}

func TestDecodeIndexed(t *testing.T) {
	c := qt.New(t)

	colorMap := make([]byte, 5*2)
	for i := 0; i < 5; i++ {
		// 5-bit red channel i<<2, the rest zero.
		word := uint16(i<<2) << 10
		binary.LittleEndian.PutUint16(colorMap[i*2:], word)
	}

	ti := testImage{
		imageType:    1,
		colorMapType: 1,
		cmFirst:      10,
		cmLength:     5,
		cmDepth:      16,
		width:        2,
		height:       1,
		bitPerPixel:  8,
		colorMap:     colorMap,
		pixels:       []byte{10, 14},
	}

	result := ti.decode(c)

	c.Assert(result.ImageConfig.PixelFormat, qt.Equals, tga.PixelFormatIndexed8)
	px := result.Pixels.Indexed8
	c.Assert(px.Indices, qt.DeepEquals, []uint8{10, 14})

	// Entries outside [10, 15) are untouched.
	for _, i := range []int{0, 5, 9, 15, 100, 255} {
		c.Assert(px.Palette[i], qt.Equals, tga.RGBA32{}, qt.Commentf("palette index %d", i))
	}
	c.Assert(px.Palette[10], qt.Equals, tga.RGBA32{A: 255})
	// 5-bit 16 widens to 10000100 by bit replication.
	c.Assert(px.Palette[14], qt.Equals, tga.RGBA32{R: 0x84, A: 255})
}

func TestDecodeIndexedRunLength(t *testing.T) {
	c := qt.New(t)

	colorMap := make([]byte, 2*2)
	binary.LittleEndian.PutUint16(colorMap[0:], 31<<10) // red
	binary.LittleEndian.PutUint16(colorMap[2:], 31)     // blue

	// The color map is stored raw; only the indices are run-length encoded.
	ti := testImage{
		imageType:    9,
		colorMapType: 1,
		cmLength:     2,
		cmDepth:      15,
		width:        2,
		height:       2,
		bitPerPixel:  8,
		colorMap:     colorMap,
		pixels:       []byte{0x83, 1}, // one repeated packet, four pixels of index 1
		v2:           true,
	}

	result := ti.decode(c)

	px := result.Pixels.Indexed8
	c.Assert(px.Indices, qt.DeepEquals, []uint8{1, 1, 1, 1})
	c.Assert(px.Palette[0], qt.Equals, tga.RGBA32{R: 255, A: 255})
	c.Assert(px.Palette[1], qt.Equals, tga.RGBA32{B: 255, A: 255})
}

func TestDecodeRunLength24Bit(t *testing.T) {
	c := qt.New(t)

	var pixels bytes.Buffer
	// Repeated packet: three pixels of (B=1, G=2, R=3).
	pixels.Write([]byte{0x82, 1, 2, 3})
	// Raw packet: one literal pixel.
	pixels.Write([]byte{0x00, 4, 5, 6})

	ti := testImage{
		imageType:   10,
		width:       2,
		height:      2,
		bitPerPixel: 24,
		pixels:      pixels.Bytes(),
	}

	result := ti.decode(c)

	c.Assert(result.Pixels.RGB24, qt.DeepEquals, []tga.RGB24{
		{B: 1, G: 2, R: 3}, {B: 4, G: 5, R: 6},
		{B: 1, G: 2, R: 3}, {B: 1, G: 2, R: 3},
	})
}

func TestDecodeImageID(t *testing.T) {
	c := qt.New(t)

	ti := testImage{
		id:          []byte("made by hand"),
		imageType:   2,
		width:       1,
		height:      1,
		bitPerPixel: 24,
		pixels:      []byte{1, 2, 3},
		v2:          true,
	}

	result := ti.decode(c)
	c.Assert(result.Pixels.RGB24[0], qt.Equals, tga.RGB24{B: 1, G: 2, R: 3})
}

func TestDecodeInvalidHeader(t *testing.T) {
	c := qt.New(t)

	valid := testImage{
		imageType:   2,
		width:       2,
		height:      2,
		bitPerPixel: 24,
		pixels:      make([]byte, 12),
	}

	for name, mutate := range map[string]func(*testImage){
		"color map type out of range": func(ti *testImage) { ti.colorMapType = 2 },
		"reserved image type bit":     func(ti *testImage) { ti.imageType = 2 | 0x04 },
		"reserved high bits":          func(ti *testImage) { ti.imageType = 2 | 0x40 },
		"color map depth 7":           func(ti *testImage) { ti.cmDepth = 7 },
	} {
		c.Run(name, func(c *qt.C) {
			ti := valid
			mutate(&ti)
			_, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode())})
			c.Assert(tga.IsInvalidFormat(err), qt.IsTrue, qt.Commentf("err: %v", err))
		})
	}

	// The unmutated image decodes.
	_, err := tga.Decode(tga.Options{R: bytes.NewReader(valid.encode())})
	c.Assert(err, qt.IsNil)
}

func TestDecodeUnsupported(t *testing.T) {
	c := qt.New(t)

	c.Run("truecolor bit depth", func(c *qt.C) {
		ti := testImage{
			imageType:   2,
			width:       2,
			height:      2,
			bitPerPixel: 8,
			pixels:      make([]byte, 12),
		}
		_, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode())})
		c.Assert(tga.IsUnsupported(err), qt.IsTrue, qt.Commentf("err: %v", err))
	})

	c.Run("color map depth 24", func(c *qt.C) {
		// Passes header validation, fails in the color-map reader.
		ti := testImage{
			imageType:    1,
			colorMapType: 1,
			cmLength:     2,
			cmDepth:      24,
			width:        2,
			height:       2,
			bitPerPixel:  8,
			colorMap:     make([]byte, 6),
			pixels:       make([]byte, 4),
		}
		_, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode())})
		c.Assert(tga.IsUnsupported(err), qt.IsTrue, qt.Commentf("err: %v", err))
	})
}

func TestDecodeTruncated(t *testing.T) {
	c := qt.New(t)

	c.Run("stream shorter than footer", func(c *qt.C) {
		_, err := tga.Decode(tga.Options{R: bytes.NewReader(make([]byte, 10))})
		c.Assert(tga.IsInvalidFormat(err), qt.IsTrue)
	})

	c.Run("image id truncated", func(c *qt.C) {
		ti := testImage{
			imageType:   2,
			width:       1,
			height:      1,
			bitPerPixel: 24,
			pixels:      make([]byte, 20),
		}
		b := ti.encode()
		b[0] = 200 // declares more id bytes than the stream holds
		_, err := tga.Decode(tga.Options{R: bytes.NewReader(b)})
		c.Assert(tga.IsInvalidFormat(err), qt.IsTrue)
	})

	c.Run("pixel data truncated", func(c *qt.C) {
		ti := testImage{
			imageType:   2,
			width:       10,
			height:      10,
			bitPerPixel: 24,
			pixels:      make([]byte, 30),
		}
		_, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode())})
		c.Assert(tga.IsInvalidFormat(err), qt.IsTrue)
	})
}

func TestIsTGA(t *testing.T) {
	c := qt.New(t)

	v1 := testImage{
		imageType:   2,
		width:       2,
		height:      2,
		bitPerPixel: 24,
		pixels:      make([]byte, 12),
	}

	c.Run("v1 valid header", func(c *qt.C) {
		c.Assert(tga.IsTGA(bytes.NewReader(v1.encode())), qt.IsTrue)
	})

	c.Run("v1 corrupted reserved bit", func(c *qt.C) {
		ti := v1
		ti.imageType |= 0x04
		c.Assert(tga.IsTGA(bytes.NewReader(ti.encode())), qt.IsFalse)
	})

	c.Run("v1 color map depth out of table", func(c *qt.C) {
		ti := v1
		ti.cmDepth = 7
		c.Assert(tga.IsTGA(bytes.NewReader(ti.encode())), qt.IsFalse)
	})

	c.Run("v2 footer wins regardless of header", func(c *qt.C) {
		ti := v1
		ti.colorMapType = 9 // invalid header
		ti.v2 = true
		c.Assert(tga.IsTGA(bytes.NewReader(ti.encode())), qt.IsTrue)
	})

	c.Run("v2 footer with wrong terminator", func(c *qt.C) {
		ti := v1
		ti.colorMapType = 9
		b := ti.encode()
		b = append(b, make([]byte, 8)...)
		b = append(b, "TRUEVISION-XFILE"...)
		b = append(b, 'x', 0)
		c.Assert(tga.IsTGA(bytes.NewReader(b)), qt.IsFalse)
	})

	c.Run("too short", func(c *qt.C) {
		c.Assert(tga.IsTGA(bytes.NewReader([]byte{1, 2, 3})), qt.IsFalse)
	})
}

func TestDecodeConfig(t *testing.T) {
	c := qt.New(t)

	ti := testImage{
		imageType:   2,
		width:       640,
		height:      480,
		bitPerPixel: 32,
		// No pixel data: DecodeConfig must not need it.
	}

	config, err := tga.DecodeConfig(tga.Options{R: bytes.NewReader(ti.encode())})
	c.Assert(err, qt.IsNil)
	c.Assert(config, qt.Equals, tga.ImageConfig{Width: 640, Height: 480, PixelFormat: tga.PixelFormatRGBA32})

	ti.cmDepth = 7
	_, err = tga.DecodeConfig(tga.Options{R: bytes.NewReader(ti.encode())})
	c.Assert(tga.IsInvalidFormat(err), qt.IsTrue)
}

func TestDecodeExtension(t *testing.T) {
	c := qt.New(t)

	ext := newTestExtension(tga.AttributesUsefulAlpha)
	copy(ext[2:], "Jane Doe\x00")
	copy(ext[43:], "A hand-built test image\x00")
	// Timestamp: month, day, year, hour, minute, second.
	for i, v := range []uint16{4, 5, 2003, 6, 7, 8} {
		binary.LittleEndian.PutUint16(ext[367+i*2:], v)
	}
	copy(ext[379:], "nightly render\x00")
	for i, v := range []uint16{1, 2, 3} {
		binary.LittleEndian.PutUint16(ext[420+i*2:], v)
	}
	copy(ext[426:], "Paintbrush\x00")
	binary.LittleEndian.PutUint16(ext[467:], 117)
	ext[469] = 'b'

	ti := testImage{
		imageType:   2,
		width:       1,
		height:      1,
		bitPerPixel: 24,
		pixels:      []byte{1, 2, 3},
		v2:          true,
		extension:   ext,
	}

	result := ti.decode(c)

	c.Assert(result.Extension, qt.IsNotNil)
	c.Assert(result.Extension.Size, qt.Equals, uint16(495))
	c.Assert(result.Extension.AuthorName, qt.Equals, "Jane Doe")
	c.Assert(result.Extension.AuthorComment, qt.Equals, "A hand-built test image")
	c.Assert(result.Extension.Timestamp, eq, time.Date(2003, time.April, 5, 6, 7, 8, 0, time.UTC))
	c.Assert(result.Extension.JobName, qt.Equals, "nightly render")
	c.Assert(result.Extension.JobTime, qt.Equals, time.Hour+2*time.Minute+3*time.Second)
	c.Assert(result.Extension.SoftwareID, qt.Equals, "Paintbrush")
	c.Assert(result.Extension.SoftwareVersion, qt.Equals, "1.17b")
	c.Assert(result.Extension.Attributes, qt.Equals, tga.AttributesUsefulAlpha)
}

func TestDecodeWarnf(t *testing.T) {
	c := qt.New(t)

	ti := testImage{
		imageType:     2,
		width:         1,
		height:        1,
		bitPerPixel:   24,
		pixels:        []byte{1, 2, 3},
		v2:            true,
		devAreaOffset: 18,
	}

	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	_, err := tga.Decode(tga.Options{R: bytes.NewReader(ti.encode()), Warnf: warnf})
	c.Assert(err, qt.IsNil)
	c.Assert(warnings, qt.Contains, "tga: developer area present, ignored")
}

func TestDecodeNoReader(t *testing.T) {
	c := qt.New(t)

	_, err := tga.Decode(tga.Options{})
	c.Assert(err, qt.IsNotNil)

	_, err = tga.DecodeConfig(tga.Options{})
	c.Assert(err, qt.IsNotNil)
}
