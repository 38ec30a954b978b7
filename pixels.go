// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

// PixelFormat is the storage format of the decoded pixels.
type PixelFormat int

const (
	// PixelFormatInvalid is the zero value; no valid decode produces it.
	PixelFormatInvalid PixelFormat = iota
	// PixelFormatGrayscale8 is 8 bits per sample grayscale.
	PixelFormatGrayscale8
	// PixelFormatIndexed8 is an 8-bit index into a 256-entry palette.
	PixelFormatIndexed8
	// PixelFormatRGB555 is 5 bits per channel RGB packed into 16 bits.
	PixelFormatRGB555
	// PixelFormatRGB24 is 8 bits per channel RGB.
	PixelFormatRGB24
	// PixelFormatRGBA32 is 8 bits per channel RGBA.
	PixelFormatRGBA32
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatGrayscale8:
		return "Grayscale8"
	case PixelFormatIndexed8:
		return "Indexed8"
	case PixelFormatRGB555:
		return "RGB555"
	case PixelFormatRGB24:
		return "RGB24"
	case PixelFormatRGBA32:
		return "RGBA32"
	default:
		return "Invalid"
	}
}

// Grayscale8 is a single 8-bit sample.
type Grayscale8 struct {
	V uint8
}

// RGB555 holds three 5-bit channels, values 0–31 as stored.
type RGB555 struct {
	R, G, B uint8
}

// RGB24 is 8-8-8 RGB.
type RGB24 struct {
	R, G, B uint8
}

// RGBA32 is 8-8-8-8 RGBA.
type RGBA32 struct {
	R, G, B, A uint8
}

// Indexed8 is a run of palette indices plus the palette itself. Palette
// entries not written by the color-map reader keep their zero value.
type Indexed8 struct {
	Indices []uint8
	Palette [256]RGBA32
}

// PixelStorage holds the decoded pixels in one of the five supported
// formats. Exactly one of the variant fields is populated, matching Format.
type PixelStorage struct {
	Format PixelFormat

	Grayscale8 []Grayscale8
	Indexed8   *Indexed8
	RGB555     []RGB555
	RGB24      []RGB24
	RGBA32     []RGBA32
}

// Len returns the number of pixels.
func (p *PixelStorage) Len() int {
	switch p.Format {
	case PixelFormatGrayscale8:
		return len(p.Grayscale8)
	case PixelFormatIndexed8:
		return len(p.Indexed8.Indices)
	case PixelFormatRGB555:
		return len(p.RGB555)
	case PixelFormatRGB24:
		return len(p.RGB24)
	case PixelFormatRGBA32:
		return len(p.RGBA32)
	default:
		return 0
	}
}

// maxPixelCount guards against absurd allocations from hostile headers.
// 65535x65535 is the largest raster the 16-bit dimensions can declare.
const maxPixelCount int64 = 0xffff * 0xffff

func newPixelStorage(format PixelFormat, pixelCount int64) (*PixelStorage, error) {
	if pixelCount < 0 || pixelCount > maxPixelCount {
		return nil, newInvalidFormatErrorf("pixel count %d out of range", pixelCount)
	}
	count := int(pixelCount)
	p := &PixelStorage{Format: format}
	switch format {
	case PixelFormatGrayscale8:
		p.Grayscale8 = make([]Grayscale8, count)
	case PixelFormatIndexed8:
		p.Indexed8 = &Indexed8{Indices: make([]uint8, count)}
	case PixelFormatRGB555:
		p.RGB555 = make([]RGB555, count)
	case PixelFormatRGB24:
		p.RGB24 = make([]RGB24, count)
	case PixelFormatRGBA32:
		p.RGBA32 = make([]RGBA32, count)
	default:
		return nil, newUnsupportedErrorf("pixel format %s", format)
	}
	return p, nil
}

// resolvePixelFormat maps the header's image-type flags and bit depth to a
// storage format. Both flags set means grayscale by TGA convention; any
// combination outside the table is unsupported.
func resolvePixelFormat(t ImageType, bitPerPixel uint8) (PixelFormat, error) {
	switch {
	case t.Indexed() && t.Truecolor():
		return PixelFormatGrayscale8, nil
	case t.Indexed():
		return PixelFormatIndexed8, nil
	case t.Truecolor():
		switch bitPerPixel {
		case 16:
			return PixelFormatRGB555, nil
		case 24:
			return PixelFormatRGB24, nil
		case 32:
			return PixelFormatRGBA32, nil
		}
		return PixelFormatInvalid, newUnsupportedErrorf("truecolor bit depth %d", bitPerPixel)
	}
	return PixelFormatInvalid, newUnsupportedErrorf("image type %#02x", uint8(t))
}

// scale5to8 widens a 5-bit channel to 8 bits by bit replication (31 → 255).
func scale5to8(v uint8) uint8 {
	return v<<3 | v>>2
}
