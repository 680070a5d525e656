// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorReadUint(t *testing.T) {
	data := []byte{
		0x04, 0x2a,
		0x05, 0x01, 0x02,
		0x06, 0x01, 0x02, 0x03, 0x04,
		0x07, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}
	c := NewCursor(data)

	v8, err := c.ReadUint8()
	if err != nil || v8 != 0x2a {
		t.Fatalf("ReadUint8: got %v, %v", v8, err)
	}
	if c.Position() != 2 {
		t.Fatalf("expected position 2, got %d", c.Position())
	}

	v16, err := c.ReadUint16()
	if err != nil || v16 != 0x0102 {
		t.Fatalf("ReadUint16: got %x, %v", v16, err)
	}

	v32, err := c.ReadUint32()
	if err != nil || v32 != 0x01020304 {
		t.Fatalf("ReadUint32: got %x, %v", v32, err)
	}

	v64, err := c.ReadUint64()
	if err != nil || v64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64: got %x, %v", v64, err)
	}

	if c.Len() != 0 || c.Position() != len(data) {
		t.Fatalf("expected cursor at end, position %d len %d", c.Position(), c.Len())
	}
}

func TestCursorShortReads(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(c *Cursor) error
	}{
		{"uint8", []byte{0x04}, func(c *Cursor) error { _, err := c.ReadUint8(); return err }},
		{"uint16", []byte{0x05, 0x01}, func(c *Cursor) error { _, err := c.ReadUint16(); return err }},
		{"uint32", []byte{0x06, 0x01, 0x02, 0x03}, func(c *Cursor) error { _, err := c.ReadUint32(); return err }},
		{"uint64", []byte{0x07, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, func(c *Cursor) error { _, err := c.ReadUint64(); return err }},
		{"peek", []byte{}, func(c *Cursor) error { _, err := c.Peek(); return err }},
		{"next", []byte{}, func(c *Cursor) error { _, err := c.NextByte(); return err }},
		{"bytes", []byte{0x01, 0x02}, func(c *Cursor) error { _, err := c.ReadBytes(3); return err }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewCursor(test.data)
			err := test.read(c)
			if !errors.Is(err, ErrUnexpectedEnd) {
				t.Fatalf("expected ErrUnexpectedEnd, got %v", err)
			}
			if c.Position() != 0 {
				t.Fatalf("failed read moved the cursor to %d", c.Position())
			}
		})
	}
}

func TestCursorReadBytes(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04})
	c.Advance(1)

	buf, err := c.ReadBytes(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf, []byte{0x02, 0x03}) {
		t.Fatalf("unexpected bytes %x", buf)
	}
	if cap(buf) != 2 {
		t.Fatalf("expected capped sub-slice, got cap %d", cap(buf))
	}
	if !bytes.Equal(c.Remaining(), []byte{0x04}) {
		t.Fatalf("unexpected remaining bytes %x", c.Remaining())
	}
}

func TestCursorRequire(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})

	if err := c.Require(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Require(3); !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("expected ErrUnexpectedEnd, got %v", err)
	}
	if err := c.Require(-1); !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("expected ErrUnexpectedEnd for negative length, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{Offset: 7, Tag: 0x15, Err: ErrExpectedString}
	if !errors.Is(err, ErrExpectedString) {
		t.Fatal("expected DecodeError to unwrap to its cause")
	}

	var decErr *DecodeError
	if !errors.As(error(err), &decErr) || decErr.Offset != 7 {
		t.Fatal("expected errors.As to find the DecodeError")
	}

	if msg := err.Error(); msg == "" {
		t.Fatal("expected error message")
	}
}
