// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import (
	"fmt"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// Attributes is the extension block's alpha-channel tag. Only
// AttributesUsefulAlpha has any decode-time effect; the others force the
// alpha channel of 32-bit pixels to opaque.
type Attributes uint8

const (
	// AttributesNoAlpha means there is no alpha data in the file.
	AttributesNoAlpha Attributes = iota
	// AttributesUndefinedAlphaIgnore means alpha data can be ignored.
	AttributesUndefinedAlphaIgnore
	// AttributesUndefinedAlphaRetained means alpha data is undefined but kept.
	AttributesUndefinedAlphaRetained
	// AttributesUsefulAlpha means the alpha channel carries real data.
	AttributesUsefulAlpha
	// AttributesPremultipliedAlpha means color values are premultiplied.
	AttributesPremultipliedAlpha
)

func (a Attributes) String() string {
	switch a {
	case AttributesNoAlpha:
		return "NoAlpha"
	case AttributesUndefinedAlphaIgnore:
		return "UndefinedAlphaIgnore"
	case AttributesUndefinedAlphaRetained:
		return "UndefinedAlphaRetained"
	case AttributesUsefulAlpha:
		return "UsefulAlpha"
	case AttributesPremultipliedAlpha:
		return "PremultipliedAlpha"
	default:
		return "Attributes(unknown)"
	}
}

// Extension is the optional 495-byte TGA 2.0 metadata record located via
// the footer's extension offset. Apart from Attributes none of it affects
// decoding; it is surfaced as-is.
type Extension struct {
	Size          uint16
	AuthorName    string
	AuthorComment string
	Timestamp     time.Time
	JobName       string
	JobTime       time.Duration
	SoftwareID    string
	// SoftwareVersion is e.g. "1.17b" for version number 117, letter 'b'.
	SoftwareVersion string
	KeyColor        uint32
	// PixelAspectNum/Den and GammaNum/Den are stored ratios; a zero
	// denominator means unused.
	PixelAspectNum        uint16
	PixelAspectDen        uint16
	GammaNum              uint16
	GammaDen              uint16
	ColorCorrectionOffset uint32
	PostageStampOffset    uint32
	ScanLineOffset        uint32
	Attributes            Attributes
}

// The extension's text fields predate Unicode; treat them as Latin-1 the
// same way legacy IPTC strings are handled.
func decodeLatin1(b []byte) string {
	// Fields are NUL padded.
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	b = b[:end]
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func (e *streamReader) readExtension() *Extension {
	var ext Extension

	ext.Size = e.read2()
	ext.AuthorName = decodeLatin1(e.readBytesVolatile(41))
	ext.AuthorComment = decodeLatin1(e.readBytesVolatile(324))

	month, day, year := e.read2(), e.read2(), e.read2()
	hour, minute, second := e.read2(), e.read2(), e.read2()
	if year > 0 && month >= 1 && month <= 12 {
		ext.Timestamp = time.Date(int(year), time.Month(month), int(day),
			int(hour), int(minute), int(second), 0, time.UTC)
	}

	ext.JobName = decodeLatin1(e.readBytesVolatile(41))

	jobHours, jobMinutes, jobSeconds := e.read2(), e.read2(), e.read2()
	ext.JobTime = time.Duration(jobHours)*time.Hour +
		time.Duration(jobMinutes)*time.Minute +
		time.Duration(jobSeconds)*time.Second

	ext.SoftwareID = decodeLatin1(e.readBytesVolatile(41))

	versionNumber := e.read2()
	versionLetter := e.read1()
	ext.SoftwareVersion = formatSoftwareVersion(versionNumber, versionLetter)

	ext.KeyColor = e.read4()
	ext.PixelAspectNum = e.read2()
	ext.PixelAspectDen = e.read2()
	ext.GammaNum = e.read2()
	ext.GammaDen = e.read2()
	ext.ColorCorrectionOffset = e.read4()
	ext.PostageStampOffset = e.read4()
	ext.ScanLineOffset = e.read4()
	ext.Attributes = Attributes(e.read1())

	return &ext
}

// formatSoftwareVersion renders the stored (number, letter) pair, e.g.
// (117, 'b') => "1.17b". Zero means the field is unused.
func formatSoftwareVersion(number uint16, letter uint8) string {
	if number == 0 {
		return ""
	}
	s := fmt.Sprintf("%d.%02d", number/100, number%100)
	if letter != ' ' && letter != 0 {
		s += string(rune(letter))
	}
	return s
}
