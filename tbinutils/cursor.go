// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import (
	"encoding/binary"
)

// Cursor is a forward-only view over a borrowed input buffer.
// It never copies or mutates the buffer, it only narrows the view.
type Cursor struct {
	buffer   []byte
	position int
}

func NewCursor(buffer []byte) *Cursor {
	return &Cursor{
		buffer: buffer,
	}
}

// Position returns the number of bytes consumed so far.
func (c *Cursor) Position() int {
	return c.position
}

// Len returns the number of bytes left in the view.
func (c *Cursor) Len() int {
	return len(c.buffer) - c.position
}

// Remaining returns the unconsumed part of the buffer.
func (c *Cursor) Remaining() []byte {
	return c.buffer[c.position:]
}

func (c *Cursor) Peek() (byte, error) {
	if c.position >= len(c.buffer) {
		return 0, ErrUnexpectedEnd
	}
	return c.buffer[c.position], nil
}

// Advance drops n bytes from the view. The caller must have checked that
// n bytes are available.
func (c *Cursor) Advance(n int) {
	c.position += n
}

func (c *Cursor) Require(n int) error {
	if n < 0 || c.Len() < n {
		return ErrUnexpectedEnd
	}
	return nil
}

// NextByte consumes and returns a single byte.
func (c *Cursor) NextByte() (byte, error) {
	b, err := c.Peek()
	if err != nil {
		return 0, err
	}
	c.position++
	return b, nil
}

// ReadUint8 consumes a tag byte followed by a single payload byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	if c.Len() < 2 {
		return 0, ErrUnexpectedEnd
	}
	val := c.buffer[c.position+1]
	c.position += 2
	return val, nil
}

// ReadUint16 consumes a tag byte followed by a big endian uint16.
func (c *Cursor) ReadUint16() (uint16, error) {
	if c.Len() < 3 {
		return 0, ErrUnexpectedEnd
	}
	val := binary.BigEndian.Uint16(c.buffer[c.position+1:])
	c.position += 3
	return val, nil
}

// ReadUint32 consumes a tag byte followed by a big endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	if c.Len() < 5 {
		return 0, ErrUnexpectedEnd
	}
	val := binary.BigEndian.Uint32(c.buffer[c.position+1:])
	c.position += 5
	return val, nil
}

// ReadUint64 consumes a tag byte followed by a big endian uint64.
func (c *Cursor) ReadUint64() (uint64, error) {
	if c.Len() < 9 {
		return 0, ErrUnexpectedEnd
	}
	val := binary.BigEndian.Uint64(c.buffer[c.position+1:])
	c.position += 9
	return val, nil
}

// ReadBytes consumes n bytes and returns them as a sub-slice of the input.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.Require(n); err != nil {
		return nil, err
	}
	buf := c.buffer[c.position : c.position+n : c.position+n]
	c.position += n
	return buf, nil
}
