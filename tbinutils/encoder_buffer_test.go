// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestBufferEncoderScalars(t *testing.T) {
	tests := []struct {
		name     string
		encode   func(e *BufferEncoder)
		expected []byte
	}{
		{"none", func(e *BufferEncoder) { e.EncodeNone() }, []byte{0x00}},
		{"false", func(e *BufferEncoder) { e.EncodeBool(false) }, []byte{0x10}},
		{"true", func(e *BufferEncoder) { e.EncodeBool(true) }, []byte{0x11}},
		{"uint8", func(e *BufferEncoder) { e.EncodeUint8(0xfe) }, []byte{0x04, 0xfe}},
		{"uint16", func(e *BufferEncoder) { e.EncodeUint16(0x0102) }, []byte{0x05, 0x01, 0x02}},
		{"uint32", func(e *BufferEncoder) { e.EncodeUint32(0x01020304) }, []byte{0x06, 0x01, 0x02, 0x03, 0x04}},
		{"uint64", func(e *BufferEncoder) { e.EncodeUint64(1) }, []byte{0x07, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"int8", func(e *BufferEncoder) { e.EncodeInt8(-1) }, []byte{0x08, 0xff}},
		{"int16", func(e *BufferEncoder) { e.EncodeInt16(-2) }, []byte{0x09, 0xff, 0xfe}},
		{"int32", func(e *BufferEncoder) { e.EncodeInt32(-1) }, []byte{0x0a, 0xff, 0xff, 0xff, 0xff}},
		{"int64", func(e *BufferEncoder) { e.EncodeInt64(math.MinInt64) }, []byte{0x0b, 0x80, 0, 0, 0, 0, 0, 0, 0}},
		{"float32", func(e *BufferEncoder) { e.EncodeFloat32(1.0) }, []byte{0x0c, 0x3f, 0x80, 0x00, 0x00}},
		{"float64", func(e *BufferEncoder) { e.EncodeFloat64(1.0) }, []byte{0x0d, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0}},
		{"seq", func(e *BufferEncoder) { e.EncodeSeqOpen(); e.EncodeClose() }, []byte{0x15, 0x17}},
		{"map", func(e *BufferEncoder) { e.EncodeMapOpen(); e.EncodeClose() }, []byte{0x16, 0x17}},
		{"raw", func(e *BufferEncoder) { e.EncodeRaw([]byte{0xaa, 0xbb}) }, []byte{0xaa, 0xbb}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := NewBufferEncoder(nil)
			test.encode(e)
			if !bytes.Equal(e.GetBuffer(), test.expected) {
				t.Fatalf("expected %x, got %x", test.expected, e.GetBuffer())
			}
			if e.GetPosition() != len(test.expected) {
				t.Fatalf("expected position %d, got %d", len(test.expected), e.GetPosition())
			}
		})
	}
}

func TestBufferEncoderStrings(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		class  StringClass
		header []byte
	}{
		{"inline_empty", "", StringInline, []byte{0x80}},
		{"inline", "hey", StringInline, []byte{0x83}},
		{"string8", "hey", String8, []byte{0xc4, 0x03}},
		{"string16", "hey", String16, []byte{0xc5, 0x00, 0x03}},
		{"string32", "hey", String32, []byte{0xc6, 0x00, 0x00, 0x00, 0x03}},
		{"string64", "hey", String64, []byte{0xc7, 0, 0, 0, 0, 0, 0, 0, 0x03}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := NewBufferEncoder(nil)
			e.EncodeStringClass(test.value, test.class)
			expected := append(append([]byte{}, test.header...), test.value...)
			if !bytes.Equal(e.GetBuffer(), expected) {
				t.Fatalf("expected %x, got %x", expected, e.GetBuffer())
			}
		})
	}
}

func TestBufferEncoderSmallestString(t *testing.T) {
	e := NewBufferEncoder(nil)
	e.EncodeString(strings.Repeat("a", 63))
	if e.GetBuffer()[0] != 0xbf {
		t.Fatalf("expected inline tag 0xbf, got 0x%02x", e.GetBuffer()[0])
	}

	e.SetBuffer(nil)
	e.EncodeString(strings.Repeat("a", 64))
	if !bytes.Equal(e.GetBuffer()[:2], []byte{0xc4, 0x40}) {
		t.Fatalf("expected 8-bit length class, got %x", e.GetBuffer()[:2])
	}
}

func TestBufferEncoderStringClassOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for string exceeding its class")
		}
	}()

	NewBufferEncoder(nil).EncodeStringClass(strings.Repeat("a", 64), StringInline)
}
