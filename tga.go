// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package tga decodes Truevision TGA images: the fixed 18-byte header, the
// optional color map, raw or run-length encoded pixel data, and the
// optional TGA 2.0 footer/extension records at the end of the file.
// Encoding is not implemented.
package tga

import (
	"bufio"
	"fmt"
	"io"
)

// Options contains the options for the Decode and DecodeConfig functions.
type Options struct {
	// The Reader (typically a *os.File or bytes.Reader) to read the image
	// from. It must support seeking: TGA is identified by trailing records,
	// so decoding starts at the end of the stream.
	R io.ReadSeeker

	// Warnf will be called for non-fatal oddities in the stream.
	Warnf func(string, ...any)
}

// ImageConfig contains basic image configuration.
type ImageConfig struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
}

// DecodeResult contains the result of a Decode operation.
type DecodeResult struct {
	ImageConfig ImageConfig

	// Pixels holds the decoded pixel data in one of the five supported
	// storage formats.
	Pixels *PixelStorage

	// Version is 1 for original TGA files and 2 for files carrying the
	// TRUEVISION-XFILE footer.
	Version int

	// Extension is the optional TGA 2.0 extension record, nil if absent.
	Extension *Extension

	// Header is the raw file header.
	Header Header
}

// Decode reads a TGA image from opts.R.
//
// Decoding is all-or-nothing: any truncation or validation failure aborts
// with an InvalidFormatError, and structurally valid files using an
// unimplemented pixel-format or color-map combination fail with an
// UnsupportedError.
func Decode(opts Options) (result DecodeResult, err error) {
	var base *decoder

	errFinal := func(err2 error) error {
		if err2 == errStop {
			err2 = nil
			if base != nil {
				err2 = base.streamErr()
			}
			if err2 == nil {
				err2 = newInvalidFormatErrorf("corrupt stream")
			}
		}

		if err2 == nil {
			return nil
		}

		if isInvalidFormatErrorCandidate(err2) {
			err2 = newInvalidFormatError(err2)
		}

		return err2
	}

	defer func() {
		err = errFinal(err)
	}()

	errFromRecover := func(r any) (err2 error) {
		if r == nil {
			return nil
		}
		if errp, ok := r.(error); ok {
			err2 = errp
		} else {
			err2 = fmt.Errorf("unknown panic: %v", r)
		}
		return
	}

	defer func() {
		err2 := errFromRecover(recover())
		if err == nil {
			err = err2
		}
	}()

	if opts.R == nil {
		return result, fmt.Errorf("no reader provided")
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	base = &decoder{
		streamReader: newStreamReader(opts.R),
		opts:         opts,
		result:       &result,
	}

	err = base.decode()

	return
}

// DecodeConfig returns the dimensions and pixel format of a TGA image
// without decoding the pixel data. Only the header is read.
func DecodeConfig(opts Options) (config ImageConfig, err error) {
	if opts.R == nil {
		return config, fmt.Errorf("no reader provided")
	}

	defer func() {
		if r := recover(); r != nil {
			err = newInvalidFormatErrorf("short header")
		}
	}()

	e := newStreamReader(opts.R)
	e.seek(0)
	h := e.readHeader()
	if !h.valid() {
		return config, newInvalidFormatErrorf("invalid header")
	}

	format, err := resolvePixelFormat(h.ImageType, h.ImageSpec.BitPerPixel)
	if err != nil {
		return config, err
	}

	return ImageConfig{
		Width:       int(h.ImageSpec.Width),
		Height:      int(h.ImageSpec.Height),
		PixelFormat: format,
	}, nil
}

// IsTGA reports whether r looks like a TGA stream. TGA has no leading
// magic, so this first probes for the TGA 2.0 footer and then falls back
// to validating the header. It is advisory only; I/O errors are swallowed
// into a false result.
func IsTGA(r io.ReadSeeker) (is bool) {
	defer func() {
		if recover() != nil {
			is = false
		}
	}()

	e := newStreamReader(r)
	length := e.length()

	if length > footerSize {
		e.seek(length - footerSize)
		if e.readFooter().isValid() {
			return true
		}
	}

	if length > headerSize {
		e.seek(0)
		return e.readHeader().valid()
	}

	return false
}

type decoder struct {
	*streamReader
	opts Options

	header    Header
	footer    Footer
	extension *Extension
	version   int

	result *DecodeResult
}

func (d *decoder) streamErr() error {
	return d.readErr
}

func (d *decoder) decode() error {
	length := d.length()
	if length < footerSize {
		return newInvalidFormatErrorf("stream too short: %d bytes", length)
	}

	// The footer sits at the very end; its signature decides whether this
	// is a TGA 2.0 file with trailing records or an original TGA file.
	d.seek(length - footerSize)
	d.footer = d.readFooter()
	d.version = 1
	if d.footer.isSigned() {
		d.version = 2
	}

	if d.version == 2 && d.footer.ExtensionOffset > 0 {
		d.seek(int64(d.footer.ExtensionOffset))
		d.extension = d.readExtension()
		if d.extension.Size != extensionSize {
			d.opts.Warnf("tga: unexpected extension size %d", d.extension.Size)
		}
	}
	if d.version == 2 && d.footer.DevAreaOffset > 0 {
		d.opts.Warnf("tga: developer area present, ignored")
	}

	d.seek(0)
	d.header = d.readHeader()
	if !d.header.valid() {
		return newInvalidFormatErrorf("invalid header")
	}

	// The free-text image identifier carries no decode-relevant data.
	if d.header.IDLength > 0 {
		d.skip(int64(d.header.IDLength))
	}

	format, err := resolvePixelFormat(d.header.ImageType, d.header.ImageSpec.BitPerPixel)
	if err != nil {
		return err
	}

	width := int(d.header.ImageSpec.Width)
	height := int(d.header.ImageSpec.Height)

	pixels, err := newPixelStorage(format, int64(width)*int64(height))
	if err != nil {
		return err
	}

	// All downstream readers see a plain io.Reader; whether it
	// decompresses is decided here, once.
	raw := bufio.NewReader(d.r)
	var pixelStream io.Reader = raw
	if d.header.ImageType.RunLength() {
		if d.header.bytesPerPixel() == 0 {
			return newInvalidFormatErrorf("run-length data with zero bits per pixel")
		}
		pixelStream = newRLEDecoder(raw, d.header.bytesPerPixel())
	}

	topToBottom := d.header.ImageSpec.Descriptor.TopToBottom()

	switch format {
	case PixelFormatGrayscale8:
		err = readGrayscale8(pixelStream, pixels.Grayscale8, width, height, topToBottom)
	case PixelFormatIndexed8:
		// The color map is never run-length encoded; it is read from the
		// raw stream even when the pixel data is compressed.
		if err = readColorMap(raw, d.header.ColorMapSpec, &pixels.Indexed8.Palette); err != nil {
			break
		}
		err = readIndexed8(pixelStream, pixels.Indexed8, width, height, topToBottom)
	case PixelFormatRGB555:
		err = readRGB555(pixelStream, pixels.RGB555, width, height, topToBottom)
	case PixelFormatRGB24:
		err = readRGB24(pixelStream, pixels.RGB24, width, height, topToBottom)
	case PixelFormatRGBA32:
		forceOpaque := d.extension != nil && d.extension.Attributes != AttributesUsefulAlpha
		err = readRGBA32(pixelStream, pixels.RGBA32, width, height, topToBottom, forceOpaque)
	}
	if err != nil {
		return err
	}

	d.result.ImageConfig = ImageConfig{Width: width, Height: height, PixelFormat: format}
	d.result.Pixels = pixels
	d.result.Version = d.version
	d.result.Extension = d.extension
	d.result.Header = d.header

	return nil
}
