// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import (
	"testing"
)

func TestShapeOf(t *testing.T) {
	tests := []struct {
		tag   byte
		shape Shape
	}{
		{0x00, ShapeNone},
		{0x04, ShapeUint8},
		{0x05, ShapeUint16},
		{0x06, ShapeUint32},
		{0x07, ShapeUint64},
		{0x08, ShapeInt8},
		{0x09, ShapeInt16},
		{0x0a, ShapeInt32},
		{0x0b, ShapeInt64},
		{0x0c, ShapeFloat32},
		{0x0d, ShapeFloat64},
		{0x10, ShapeBool},
		{0x11, ShapeBool},
		{0x15, ShapeSeqOpen},
		{0x16, ShapeMapOpen},
		{0x17, ShapeClose},
		{0x80, ShapeString},
		{0xbf, ShapeString},
		{0xc4, ShapeString},
		{0xc7, ShapeString},
		{0x01, ShapeInvalid},
		{0x12, ShapeInvalid},
		{0x7f, ShapeInvalid},
		{0xc0, ShapeInvalid},
		{0xc8, ShapeInvalid},
		{0xff, ShapeInvalid},
	}

	for _, test := range tests {
		if got := ShapeOf(test.tag); got != test.shape {
			t.Errorf("tag 0x%02x: expected shape %v, got %v", test.tag, test.shape, got)
		}
	}
}

func TestShapeTableIsPartition(t *testing.T) {
	assigned := 0
	for tag := 0; tag < 256; tag++ {
		shape := ShapeOf(byte(tag))
		if shape == ShapeInvalid {
			continue
		}
		assigned++

		if IsStringTag(byte(tag)) != (shape == ShapeString) {
			t.Errorf("tag 0x%02x: IsStringTag disagrees with shape %v", tag, shape)
		}
	}

	// 1 none + 10 numbers + 2 bools + 3 container tags + 64 inline + 4 sized strings
	if assigned != 84 {
		t.Errorf("expected 84 assigned tags, got %d", assigned)
	}
}

func TestShapePayloadWidth(t *testing.T) {
	tests := []struct {
		shape Shape
		width int
	}{
		{ShapeUint8, 1},
		{ShapeInt8, 1},
		{ShapeUint16, 2},
		{ShapeInt16, 2},
		{ShapeUint32, 4},
		{ShapeInt32, 4},
		{ShapeFloat32, 4},
		{ShapeUint64, 8},
		{ShapeInt64, 8},
		{ShapeFloat64, 8},
		{ShapeBool, 0},
		{ShapeString, 0},
	}

	for _, test := range tests {
		if got := test.shape.PayloadWidth(); got != test.width {
			t.Errorf("%v: expected width %d, got %d", test.shape, test.width, got)
		}
	}

	if !ShapeInt64.IsInteger() || ShapeFloat32.IsInteger() || !ShapeFloat64.IsFloat() || ShapeBool.IsFloat() {
		t.Error("unexpected integer/float classification")
	}
}

func TestStringClasses(t *testing.T) {
	tests := []struct {
		tag         byte
		class       StringClass
		lengthWidth int
	}{
		{0x80, StringInline, 0},
		{0x85, StringInline, 0},
		{0xbf, StringInline, 0},
		{0xc4, String8, 1},
		{0xc5, String16, 2},
		{0xc6, String32, 4},
		{0xc7, String64, 8},
	}

	for _, test := range tests {
		class, ok := StringClassOf(test.tag)
		if !ok {
			t.Errorf("tag 0x%02x: expected string class", test.tag)
			continue
		}
		if class != test.class {
			t.Errorf("tag 0x%02x: expected class %v, got %v", test.tag, test.class, class)
		}
		if class.LengthWidth() != test.lengthWidth {
			t.Errorf("tag 0x%02x: expected length width %d, got %d", test.tag, test.lengthWidth, class.LengthWidth())
		}
	}

	if _, ok := StringClassOf(0x15); ok {
		t.Error("expected 0x15 not to be a string tag")
	}
}

func TestSmallestStringClass(t *testing.T) {
	tests := []struct {
		length int
		class  StringClass
	}{
		{0, StringInline},
		{63, StringInline},
		{64, String8},
		{255, String8},
		{256, String16},
		{65535, String16},
		{65536, String32},
	}

	for _, test := range tests {
		if got := SmallestStringClass(test.length); got != test.class {
			t.Errorf("length %d: expected class %v, got %v", test.length, test.class, got)
		}
	}
}
