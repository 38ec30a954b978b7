// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import (
	"errors"
	"fmt"
	"io"
)

// InvalidFormatError is returned when the stream is structurally broken:
// a header that fails validation, a truncated field, or run-length data
// consumed from an undefined state.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("tga: invalid format: %s", e.Err)
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether err is an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	var e *InvalidFormatError
	return errors.As(err, &e)
}

func newInvalidFormatError(err error) error {
	return &InvalidFormatError{Err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &InvalidFormatError{Err: fmt.Errorf(format, args...)}
}

// UnsupportedError is returned for streams that are structurally valid TGA
// but use a pixel-format or color-map combination this decoder does not
// implement.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return "tga: unsupported: " + e.Reason
}

// IsUnsupported reports whether err is an UnsupportedError.
func IsUnsupported(err error) bool {
	var e *UnsupportedError
	return errors.As(err, &e)
}

func newUnsupportedErrorf(format string, args ...any) error {
	return &UnsupportedError{Reason: fmt.Sprintf(format, args...)}
}

// isInvalidFormatErrorCandidate reports whether err signals data that ran
// out or came up short, which at decode time means a malformed file.
func isInvalidFormatErrorCandidate(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, errShortRead)
}
