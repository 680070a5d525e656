// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import "fmt"

// Tag bytes of the TBin grammar. This table is shared by the encoder and the
// decoder and is the only place tag values are spelled out.
const (
	TagNone byte = 0x00

	TagUint8   byte = 0x04
	TagUint16  byte = 0x05
	TagUint32  byte = 0x06
	TagUint64  byte = 0x07
	TagInt8    byte = 0x08
	TagInt16   byte = 0x09
	TagInt32   byte = 0x0a
	TagInt64   byte = 0x0b
	TagFloat32 byte = 0x0c
	TagFloat64 byte = 0x0d

	TagFalse byte = 0x10
	TagTrue  byte = 0x11

	TagSeqOpen byte = 0x15
	TagMapOpen byte = 0x16
	TagClose   byte = 0x17

	// inline strings carry their length in the low 6 bits
	TagInlineString     byte = 0x80
	TagInlineStringMask byte = 0xc0
	InlineStringMaxLen       = 0x3f

	TagString8  byte = 0xc4
	TagString16 byte = 0xc5
	TagString32 byte = 0xc6
	TagString64 byte = 0xc7
)

// Shape is the kind of production a leading tag byte opens.
type Shape uint8

const (
	ShapeInvalid Shape = iota
	ShapeNone
	ShapeUint8
	ShapeUint16
	ShapeUint32
	ShapeUint64
	ShapeInt8
	ShapeInt16
	ShapeInt32
	ShapeInt64
	ShapeFloat32
	ShapeFloat64
	ShapeBool
	ShapeSeqOpen
	ShapeMapOpen
	ShapeClose
	ShapeString
)

var shapeNames = [...]string{
	ShapeInvalid: "invalid",
	ShapeNone:    "none",
	ShapeUint8:   "uint8",
	ShapeUint16:  "uint16",
	ShapeUint32:  "uint32",
	ShapeUint64:  "uint64",
	ShapeInt8:    "int8",
	ShapeInt16:   "int16",
	ShapeInt32:   "int32",
	ShapeInt64:   "int64",
	ShapeFloat32: "float32",
	ShapeFloat64: "float64",
	ShapeBool:    "bool",
	ShapeSeqOpen: "sequence",
	ShapeMapOpen: "map",
	ShapeClose:   "container end",
	ShapeString:  "string",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// IsInteger reports whether the shape is one of the fixed-width integer kinds.
func (s Shape) IsInteger() bool {
	return s >= ShapeUint8 && s <= ShapeInt64
}

// IsFloat reports whether the shape is one of the float kinds.
func (s Shape) IsFloat() bool {
	return s == ShapeFloat32 || s == ShapeFloat64
}

// PayloadWidth returns the number of payload bytes following the tag of a
// fixed-width scalar, or 0 for every other shape.
func (s Shape) PayloadWidth() int {
	switch s {
	case ShapeUint8, ShapeInt8:
		return 1
	case ShapeUint16, ShapeInt16:
		return 2
	case ShapeUint32, ShapeInt32, ShapeFloat32:
		return 4
	case ShapeUint64, ShapeInt64, ShapeFloat64:
		return 8
	}
	return 0
}

// StringClass selects how the length of a string is encoded.
type StringClass uint8

const (
	StringInline StringClass = iota
	String8
	String16
	String32
	String64
)

// Tag returns the tag byte opening a string of this class. For inline strings
// the length bits still need to be or'ed in.
func (c StringClass) Tag() byte {
	switch c {
	case String8:
		return TagString8
	case String16:
		return TagString16
	case String32:
		return TagString32
	case String64:
		return TagString64
	}
	return TagInlineString
}

// LengthWidth returns the size in bytes of the length field following the tag.
func (c StringClass) LengthWidth() int {
	switch c {
	case String8:
		return 1
	case String16:
		return 2
	case String32:
		return 4
	case String64:
		return 8
	}
	return 0
}

// MaxLength returns the largest length representable by the class.
func (c StringClass) MaxLength() uint64 {
	switch c {
	case String8:
		return 0xff
	case String16:
		return 0xffff
	case String32:
		return 0xffffffff
	case String64:
		return ^uint64(0)
	}
	return InlineStringMaxLen
}

// StringClassOf returns the length class a string tag selects.
func StringClassOf(tag byte) (StringClass, bool) {
	if tag&TagInlineStringMask == TagInlineString {
		return StringInline, true
	}
	switch tag {
	case TagString8:
		return String8, true
	case TagString16:
		return String16, true
	case TagString32:
		return String32, true
	case TagString64:
		return String64, true
	}
	return 0, false
}

// SmallestStringClass returns the smallest class able to hold n bytes.
func SmallestStringClass(n int) StringClass {
	switch {
	case n <= InlineStringMaxLen:
		return StringInline
	case n <= 0xff:
		return String8
	case n <= 0xffff:
		return String16
	case uint64(n) <= 0xffffffff:
		return String32
	}
	return String64
}

var shapeTable [256]Shape

func init() {
	assign := func(tag byte, shape Shape) {
		if shapeTable[tag] != ShapeInvalid {
			panic(fmt.Sprintf("tbinutils: tag 0x%02x assigned to %v and %v", tag, shapeTable[tag], shape))
		}
		shapeTable[tag] = shape
	}

	assign(TagNone, ShapeNone)
	for i, shape := range []Shape{
		ShapeUint8, ShapeUint16, ShapeUint32, ShapeUint64,
		ShapeInt8, ShapeInt16, ShapeInt32, ShapeInt64,
		ShapeFloat32, ShapeFloat64,
	} {
		assign(TagUint8+byte(i), shape)
	}
	assign(TagFalse, ShapeBool)
	assign(TagTrue, ShapeBool)
	assign(TagSeqOpen, ShapeSeqOpen)
	assign(TagMapOpen, ShapeMapOpen)
	assign(TagClose, ShapeClose)
	for n := 0; n <= InlineStringMaxLen; n++ {
		assign(TagInlineString|byte(n), ShapeString)
	}
	for _, tag := range []byte{TagString8, TagString16, TagString32, TagString64} {
		assign(tag, ShapeString)
	}
}

// ShapeOf classifies a leading tag byte. Unassigned tags yield ShapeInvalid.
func ShapeOf(tag byte) Shape {
	return shapeTable[tag]
}

// IsStringTag reports whether tag opens a string of any length class.
func IsStringTag(tag byte) bool {
	return shapeTable[tag] == ShapeString
}
