// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"math"
	"unicode/utf8"
	"unsafe"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// Decoder walks a TBin encoded buffer and drives a Visitor with the values it
// finds. Each Decode method describes the shape the caller expects at the
// current position; the decoder checks the tag against that shape, consumes
// the value and reports it to the visitor.
//
// A Decoder owns its cursor exclusively and must not be shared between
// goroutines. Independent decoders may run in parallel.
type Decoder struct {
	tbin     *TBin
	cursor   *tbinutils.Cursor
	depth    int
	maxDepth int
	zeroCopy bool
}

func newDecoder(tbin *TBin, data []byte) *Decoder {
	maxDepth := tbin.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Decoder{
		tbin:     tbin,
		cursor:   tbinutils.NewCursor(data),
		maxDepth: maxDepth,
		zeroCopy: tbin.ZeroCopyStrings,
	}
}

// Unmarshal decodes the value at the current position into target through
// the reflection layer. Custom Unmarshaler implementations use it for nested
// values.
func (d *Decoder) Unmarshal(target any) error {
	return d.tbin.unmarshalTarget(d, target)
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.cursor.Position()
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int {
	return d.cursor.Len()
}

// End fails with ErrTrailingCharacters unless the whole input was consumed.
func (d *Decoder) End() error {
	if d.cursor.Len() != 0 {
		return d.fail(tbinutils.ErrTrailingCharacters)
	}
	return nil
}

func (d *Decoder) fail(err error) error {
	tag := -1
	if b, perr := d.cursor.Peek(); perr == nil {
		tag = int(b)
	}
	return &tbinutils.DecodeError{
		Offset: d.cursor.Position(),
		Tag:    tag,
		Err:    err,
	}
}

func (d *Decoder) failAt(offset int, tag byte, err error) error {
	return &tbinutils.DecodeError{
		Offset: offset,
		Tag:    int(tag),
		Err:    err,
	}
}

func (d *Decoder) peek() (byte, error) {
	tag, err := d.cursor.Peek()
	if err != nil {
		return 0, d.fail(err)
	}
	return tag, nil
}

// DecodeAny decodes whatever value starts at the current position.
// Enums are indistinguishable from maps and strings here and are reported as such.
func (d *Decoder) DecodeAny(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}

	switch shape := tbinutils.ShapeOf(tag); {
	case shape == tbinutils.ShapeNone:
		d.cursor.Advance(1)
		return v.VisitNone()
	case shape == tbinutils.ShapeBool:
		return d.DecodeBool(v)
	case shape.IsInteger(), shape.IsFloat():
		return d.decodeNumber(shape, v)
	case shape == tbinutils.ShapeString:
		return d.DecodeString(v)
	case shape == tbinutils.ShapeSeqOpen:
		return d.DecodeSeq(v)
	case shape == tbinutils.ShapeMapOpen:
		return d.DecodeMap(v)
	default:
		return d.fail(tbinutils.ErrSyntax)
	}
}

// DecodeIgnoredAny consumes the value at the current position. The visitor
// is driven like DecodeAny; pass IgnoredAny{} to discard the value.
func (d *Decoder) DecodeIgnoredAny(v Visitor) error {
	return d.DecodeAny(v)
}

// Skip consumes and discards the value at the current position.
func (d *Decoder) Skip() error {
	return d.DecodeAny(IgnoredAny{})
}

func (d *Decoder) DecodeBool(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}

	switch tag {
	case tbinutils.TagTrue:
		d.cursor.Advance(1)
		return v.VisitBool(true)
	case tbinutils.TagFalse:
		d.cursor.Advance(1)
		return v.VisitBool(false)
	default:
		return d.fail(tbinutils.ErrExpectedBoolean)
	}
}

func (d *Decoder) decodeNumber(shape tbinutils.Shape, v Visitor) error {
	switch shape {
	case tbinutils.ShapeUint8, tbinutils.ShapeInt8:
		val, err := d.cursor.ReadUint8()
		if err != nil {
			return d.fail(err)
		}
		if shape == tbinutils.ShapeInt8 {
			return v.VisitInt8(int8(val))
		}
		return v.VisitUint8(val)
	case tbinutils.ShapeUint16, tbinutils.ShapeInt16:
		val, err := d.cursor.ReadUint16()
		if err != nil {
			return d.fail(err)
		}
		if shape == tbinutils.ShapeInt16 {
			return v.VisitInt16(int16(val))
		}
		return v.VisitUint16(val)
	case tbinutils.ShapeUint32, tbinutils.ShapeInt32, tbinutils.ShapeFloat32:
		val, err := d.cursor.ReadUint32()
		if err != nil {
			return d.fail(err)
		}
		switch shape {
		case tbinutils.ShapeInt32:
			return v.VisitInt32(int32(val))
		case tbinutils.ShapeFloat32:
			return v.VisitFloat32(math.Float32frombits(val))
		}
		return v.VisitUint32(val)
	case tbinutils.ShapeUint64, tbinutils.ShapeInt64, tbinutils.ShapeFloat64:
		val, err := d.cursor.ReadUint64()
		if err != nil {
			return d.fail(err)
		}
		switch shape {
		case tbinutils.ShapeInt64:
			return v.VisitInt64(int64(val))
		case tbinutils.ShapeFloat64:
			return v.VisitFloat64(math.Float64frombits(val))
		}
		return v.VisitUint64(val)
	}
	return d.fail(tbinutils.ErrSyntax)
}

// decodeInteger accepts any integer tag and reports the value with its
// encoded width. Narrowing to the requested width is left to the visitor.
func (d *Decoder) decodeInteger(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	shape := tbinutils.ShapeOf(tag)
	if !shape.IsInteger() {
		return d.fail(tbinutils.ErrExpectedInteger)
	}
	return d.decodeNumber(shape, v)
}

func (d *Decoder) decodeFloat(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	shape := tbinutils.ShapeOf(tag)
	if !shape.IsFloat() {
		return d.fail(tbinutils.ErrExpectedFloat)
	}
	return d.decodeNumber(shape, v)
}

// DecodeUint8 accepts any integer tag. The visitor receives the value at its
// encoded width and decides whether it fits.
func (d *Decoder) DecodeUint8(v Visitor) error { return d.decodeInteger(v) }

// DecodeUint16 accepts any integer tag, see DecodeUint8.
func (d *Decoder) DecodeUint16(v Visitor) error { return d.decodeInteger(v) }

// DecodeUint32 accepts any integer tag, see DecodeUint8.
func (d *Decoder) DecodeUint32(v Visitor) error { return d.decodeInteger(v) }

// DecodeUint64 accepts any integer tag, see DecodeUint8.
func (d *Decoder) DecodeUint64(v Visitor) error { return d.decodeInteger(v) }

// DecodeInt8 accepts any integer tag, signed or unsigned, see DecodeUint8.
func (d *Decoder) DecodeInt8(v Visitor) error { return d.decodeInteger(v) }

// DecodeInt16 accepts any integer tag, see DecodeInt8.
func (d *Decoder) DecodeInt16(v Visitor) error { return d.decodeInteger(v) }

// DecodeInt32 accepts any integer tag, see DecodeInt8.
func (d *Decoder) DecodeInt32(v Visitor) error { return d.decodeInteger(v) }

// DecodeInt64 accepts any integer tag, see DecodeInt8.
func (d *Decoder) DecodeInt64(v Visitor) error { return d.decodeInteger(v) }

// DecodeFloat32 accepts both float tags. A f64 value is passed to
// VisitFloat64 unchanged.
func (d *Decoder) DecodeFloat32(v Visitor) error { return d.decodeFloat(v) }

// DecodeFloat64 accepts both float tags, see DecodeFloat32.
func (d *Decoder) DecodeFloat64(v Visitor) error { return d.decodeFloat(v) }

// parseString reads a string of any length class.
func (d *Decoder) parseString() (string, error) {
	start := d.cursor.Position()
	tag, err := d.peek()
	if err != nil {
		return "", err
	}

	class, ok := tbinutils.StringClassOf(tag)
	if !ok {
		return "", d.fail(tbinutils.ErrExpectedString)
	}

	var length uint64
	switch class {
	case tbinutils.StringInline:
		d.cursor.Advance(1)
		length = uint64(tag &^ tbinutils.TagInlineStringMask)
	case tbinutils.String8:
		l, err := d.cursor.ReadUint8()
		if err != nil {
			return "", d.fail(err)
		}
		length = uint64(l)
	case tbinutils.String16:
		l, err := d.cursor.ReadUint16()
		if err != nil {
			return "", d.fail(err)
		}
		length = uint64(l)
	case tbinutils.String32:
		l, err := d.cursor.ReadUint32()
		if err != nil {
			return "", d.fail(err)
		}
		length = uint64(l)
	case tbinutils.String64:
		l, err := d.cursor.ReadUint64()
		if err != nil {
			return "", d.fail(err)
		}
		if l > uint64(math.MaxInt) {
			return "", d.failAt(start, tag, tbinutils.ErrTooLarge)
		}
		length = l
	}

	n := int(length)
	if err := d.cursor.Require(n); err != nil {
		return "", d.fail(err)
	}

	raw := d.cursor.Remaining()[:n]
	if !utf8.Valid(raw) {
		return "", d.failAt(start, tag, tbinutils.ErrSyntax)
	}
	d.cursor.Advance(n)

	if n == 0 {
		return "", nil
	}
	if d.zeroCopy {
		return unsafe.String(&raw[0], n), nil
	}
	return string(raw), nil
}

func (d *Decoder) DecodeString(v Visitor) error {
	s, err := d.parseString()
	if err != nil {
		return err
	}
	return v.VisitString(s)
}

// DecodeIdentifier decodes a struct field name or enum variant name.
func (d *Decoder) DecodeIdentifier(v Visitor) error {
	return d.DecodeString(v)
}

// DecodeOption consumes the absent marker and reports VisitNone, or leaves the
// input untouched and hands the decoder to VisitSome for the wrapped value.
func (d *Decoder) DecodeOption(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	if tag == tbinutils.TagNone {
		d.cursor.Advance(1)
		return v.VisitNone()
	}
	return v.VisitSome(d)
}

func (d *Decoder) DecodeUnit(v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	if tag != tbinutils.TagNone {
		return d.fail(tbinutils.ErrExpectedNull)
	}
	d.cursor.Advance(1)
	return v.VisitUnit()
}

func (d *Decoder) DecodeUnitStruct(name string, v Visitor) error {
	return d.DecodeUnit(v)
}

// DecodeNewtypeStruct treats a named wrapper as its contained value.
func (d *Decoder) DecodeNewtypeStruct(name string, v Visitor) error {
	return v.VisitNewtype(d)
}

func (d *Decoder) openContainer(open byte, mismatch error) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	if tag != open {
		return d.fail(mismatch)
	}
	if d.depth >= d.maxDepth {
		return d.fail(tbinutils.ErrDepthLimit)
	}
	d.depth++
	d.cursor.Advance(1)
	return nil
}

func (d *Decoder) closeContainer() error {
	tag, err := d.peek()
	if err != nil {
		return err
	}
	if tag != tbinutils.TagClose {
		return d.fail(tbinutils.ErrExpectedSequenceEnd)
	}
	d.depth--
	d.cursor.Advance(1)
	return nil
}

func (d *Decoder) DecodeSeq(v Visitor) error {
	if err := d.openContainer(tbinutils.TagSeqOpen, tbinutils.ErrExpectedArray); err != nil {
		return err
	}
	if err := v.VisitSeq(&containerAccess{d: d}); err != nil {
		return err
	}
	return d.closeContainer()
}

// DecodeTuple decodes a sequence of a length known to the caller. The length
// is not encoded; surplus elements are caught by the container end check.
func (d *Decoder) DecodeTuple(n int, v Visitor) error {
	return d.DecodeSeq(v)
}

func (d *Decoder) DecodeTupleStruct(name string, n int, v Visitor) error {
	return d.DecodeSeq(v)
}

func (d *Decoder) DecodeMap(v Visitor) error {
	if err := d.openContainer(tbinutils.TagMapOpen, tbinutils.ErrExpectedMap); err != nil {
		return err
	}
	if err := v.VisitMap(&containerAccess{d: d}); err != nil {
		return err
	}
	return d.closeContainer()
}

// DecodeStruct decodes a struct encoded as a map keyed by field name.
func (d *Decoder) DecodeStruct(name string, fields []string, v Visitor) error {
	return d.DecodeMap(v)
}

// DecodeEnum decodes an externally tagged enum: either a bare string naming a
// unit variant, or a single entry map from variant name to payload.
func (d *Decoder) DecodeEnum(name string, variants []string, v Visitor) error {
	tag, err := d.peek()
	if err != nil {
		return err
	}

	if tbinutils.IsStringTag(tag) {
		variant, err := d.parseString()
		if err != nil {
			return err
		}
		return v.VisitEnum(&unitEnumAccess{name: variant})
	}

	if err := d.openContainer(tbinutils.TagMapOpen, tbinutils.ErrExpectedEnum); err != nil {
		return err
	}
	if err := v.VisitEnum(&enumAccess{d: d}); err != nil {
		return err
	}
	return d.closeContainer()
}
