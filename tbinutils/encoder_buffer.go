// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import (
	"encoding/binary"
	"math"
)

// BufferEncoder appends TBin productions to a byte slice.
// It writes single grammar items only; framing nested values is up to the caller.
type BufferEncoder struct {
	buffer []byte
}

// NewBufferEncoder creates a new BufferEncoder appending to the provided buffer.
func NewBufferEncoder(buffer []byte) *BufferEncoder {
	return &BufferEncoder{
		buffer: buffer,
	}
}

func (e *BufferEncoder) GetPosition() int {
	return len(e.buffer)
}

func (e *BufferEncoder) GetBuffer() []byte {
	return e.buffer
}

func (e *BufferEncoder) SetBuffer(buffer []byte) {
	e.buffer = buffer
}

func (e *BufferEncoder) EncodeNone() {
	e.buffer = append(e.buffer, TagNone)
}

func (e *BufferEncoder) EncodeBool(v bool) {
	if v {
		e.buffer = append(e.buffer, TagTrue)
	} else {
		e.buffer = append(e.buffer, TagFalse)
	}
}

func (e *BufferEncoder) EncodeUint8(v uint8) {
	e.buffer = append(e.buffer, TagUint8, v)
}

func (e *BufferEncoder) EncodeUint16(v uint16) {
	e.buffer = binary.BigEndian.AppendUint16(append(e.buffer, TagUint16), v)
}

func (e *BufferEncoder) EncodeUint32(v uint32) {
	e.buffer = binary.BigEndian.AppendUint32(append(e.buffer, TagUint32), v)
}

func (e *BufferEncoder) EncodeUint64(v uint64) {
	e.buffer = binary.BigEndian.AppendUint64(append(e.buffer, TagUint64), v)
}

func (e *BufferEncoder) EncodeInt8(v int8) {
	e.buffer = append(e.buffer, TagInt8, byte(v))
}

func (e *BufferEncoder) EncodeInt16(v int16) {
	e.buffer = binary.BigEndian.AppendUint16(append(e.buffer, TagInt16), uint16(v))
}

func (e *BufferEncoder) EncodeInt32(v int32) {
	e.buffer = binary.BigEndian.AppendUint32(append(e.buffer, TagInt32), uint32(v))
}

func (e *BufferEncoder) EncodeInt64(v int64) {
	e.buffer = binary.BigEndian.AppendUint64(append(e.buffer, TagInt64), uint64(v))
}

func (e *BufferEncoder) EncodeFloat32(v float32) {
	e.buffer = binary.BigEndian.AppendUint32(append(e.buffer, TagFloat32), math.Float32bits(v))
}

func (e *BufferEncoder) EncodeFloat64(v float64) {
	e.buffer = binary.BigEndian.AppendUint64(append(e.buffer, TagFloat64), math.Float64bits(v))
}

// EncodeString writes s using the smallest length class that fits.
func (e *BufferEncoder) EncodeString(s string) {
	e.EncodeStringClass(s, SmallestStringClass(len(s)))
}

// EncodeStringClass writes s with an explicit length class. It panics if the
// class cannot represent len(s).
func (e *BufferEncoder) EncodeStringClass(s string, class StringClass) {
	n := uint64(len(s))
	if n > class.MaxLength() {
		panic("tbinutils: string too long for length class")
	}

	switch class {
	case StringInline:
		e.buffer = append(e.buffer, TagInlineString|byte(n))
	case String8:
		e.buffer = append(e.buffer, TagString8, byte(n))
	case String16:
		e.buffer = binary.BigEndian.AppendUint16(append(e.buffer, TagString16), uint16(n))
	case String32:
		e.buffer = binary.BigEndian.AppendUint32(append(e.buffer, TagString32), uint32(n))
	case String64:
		e.buffer = binary.BigEndian.AppendUint64(append(e.buffer, TagString64), n)
	}
	e.buffer = append(e.buffer, s...)
}

func (e *BufferEncoder) EncodeSeqOpen() {
	e.buffer = append(e.buffer, TagSeqOpen)
}

func (e *BufferEncoder) EncodeMapOpen() {
	e.buffer = append(e.buffer, TagMapOpen)
}

func (e *BufferEncoder) EncodeClose() {
	e.buffer = append(e.buffer, TagClose)
}

// EncodeRaw appends bytes verbatim.
func (e *BufferEncoder) EncodeRaw(b []byte) {
	e.buffer = append(e.buffer, b...)
}
