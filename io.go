// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tga

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var errShortRead = errors.New("short read")

// Internal error to signal that we should stop any further processing.
var errStop = fmt.Errorf("stop")

// streamReader is a wrapper around a ReadSeeker that provides methods to
// read binary data. TGA is little-endian throughout.
// Note that this is not thread safe.
type streamReader struct {
	r io.ReadSeeker

	buf []byte

	readErr error
}

func newStreamReader(r io.ReadSeeker) *streamReader {
	return &streamReader{r: r}
}

// length returns the total number of bytes in the stream and restores the
// current position.
func (e *streamReader) length() int64 {
	pos := e.pos()
	end, err := e.r.Seek(0, io.SeekEnd)
	if err != nil {
		e.stop(err)
	}
	e.seek(pos)
	return end
}

func (e *streamReader) pos() int64 {
	n, _ := e.r.Seek(0, io.SeekCurrent)
	return n
}

func (e *streamReader) seek(pos int64) {
	_, err := e.r.Seek(pos, io.SeekStart)
	if err != nil {
		e.stop(err)
	}
}

func (e *streamReader) skip(n int64) {
	if _, err := io.CopyN(io.Discard, e.r, n); err != nil {
		e.stop(err)
	}
}

func (e *streamReader) read1() uint8 {
	const n = 1
	e.readNIntoBuf(n)
	return e.buf[0]
}

func (e *streamReader) read2() uint16 {
	const n = 2
	e.readNIntoBuf(n)
	return binary.LittleEndian.Uint16(e.buf[:n])
}

func (e *streamReader) read4() uint32 {
	const n = 4
	e.readNIntoBuf(n)
	return binary.LittleEndian.Uint32(e.buf[:n])
}

func (e *streamReader) readBytes(b []byte) {
	if _, err := io.ReadFull(e.r, b); err != nil {
		e.stop(err)
	}
}

// readBytesVolatile reads a slice of bytes from the stream
// which is not guaranteed to be valid after the next read.
func (e *streamReader) readBytesVolatile(n int) []byte {
	e.readNIntoBuf(n)
	return e.buf[:n]
}

func (e *streamReader) readNIntoBuf(n int) {
	if err := e.readNIntoBufE(n); err != nil {
		e.stop(err)
	}
}

func (e *streamReader) readNIntoBufE(n int) error {
	e.allocateBuf(n)
	n2, err := io.ReadFull(e.r, e.buf[:n])
	if err != nil {
		return err
	}
	if n != n2 {
		return errShortRead
	}
	return nil
}

func (e *streamReader) allocateBuf(length int) {
	if length > cap(e.buf) {
		e.buf = make([]byte, length)
	}
}

func (e *streamReader) stop(err error) {
	if err != nil {
		e.readErr = err
	}
	panic(errStop)
}
