// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import (
	"bytes"
	"image"
	"image/color"
	"io"
)

// Image converts the decoded pixels to an image.NRGBA. The conversion is
// lossy for RGB555 (5-bit channels are widened by bit replication) and
// flattens indexed pixels through the palette.
func (r DecodeResult) Image() image.Image {
	width, height := r.ImageConfig.Width, r.ImageConfig.Height
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	p := r.Pixels
	if p == nil {
		return img
	}

	set := func(i int, c color.NRGBA) {
		img.SetNRGBA(i%width, i/width, c)
	}

	switch p.Format {
	case PixelFormatGrayscale8:
		for i, px := range p.Grayscale8 {
			set(i, color.NRGBA{R: px.V, G: px.V, B: px.V, A: 255})
		}
	case PixelFormatIndexed8:
		for i, idx := range p.Indexed8.Indices {
			entry := p.Indexed8.Palette[idx]
			set(i, color.NRGBA{R: entry.R, G: entry.G, B: entry.B, A: entry.A})
		}
	case PixelFormatRGB555:
		for i, px := range p.RGB555 {
			set(i, color.NRGBA{R: scale5to8(px.R), G: scale5to8(px.G), B: scale5to8(px.B), A: 255})
		}
	case PixelFormatRGB24:
		for i, px := range p.RGB24 {
			set(i, color.NRGBA{R: px.R, G: px.G, B: px.B, A: 255})
		}
	case PixelFormatRGBA32:
		for i, px := range p.RGBA32 {
			set(i, color.NRGBA{R: px.R, G: px.G, B: px.B, A: px.A})
		}
	}

	return img
}

// DecodeImage reads a TGA image from r and returns it as an image.Image.
// If r does not support seeking the stream is buffered in memory first.
func DecodeImage(r io.Reader) (image.Image, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}
	result, err := Decode(Options{R: rs})
	if err != nil {
		return nil, err
	}
	return result.Image(), nil
}

// DecodeImageConfig returns the color model and dimensions of a TGA image
// without decoding the pixel data.
func DecodeImageConfig(r io.Reader) (image.Config, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return image.Config{}, err
	}
	config, err := DecodeConfig(Options{R: rs})
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      config.Width,
		Height:     config.Height,
	}, nil
}

func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func init() {
	// TGA has no leading magic bytes, so register with an empty prefix;
	// image.Decode will try this decoder after every format with a real
	// signature has been ruled out.
	image.RegisterFormat("tga", "", DecodeImage, DecodeImageConfig)
}
