// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// Visitor is the capability set a decode target exposes to the Decoder.
//
// The Decoder calls exactly one method per decoded value, in the order the
// byte grammar dictates. Scalars are handed over directly; containers and
// enums are handed over as access objects the visitor pulls from. Values that
// need further decoding (VisitSome, VisitNewtype) receive the Decoder itself,
// positioned at the wrapped value.
//
// Strings passed to VisitString may alias the input buffer when the decoder
// runs with zero-copy strings enabled; visitors that keep them must not
// outlive the buffer or must copy.
type Visitor interface {
	VisitBool(v bool) error
	VisitUint8(v uint8) error
	VisitUint16(v uint16) error
	VisitUint32(v uint32) error
	VisitUint64(v uint64) error
	VisitInt8(v int8) error
	VisitInt16(v int16) error
	VisitInt32(v int32) error
	VisitInt64(v int64) error
	VisitFloat32(v float32) error
	VisitFloat64(v float64) error
	VisitString(v string) error
	VisitNone() error
	VisitSome(d *Decoder) error
	VisitUnit() error
	VisitNewtype(d *Decoder) error
	VisitSeq(seq SeqAccess) error
	VisitMap(m MapAccess) error
	VisitEnum(e EnumAccess) error
}

// Seed decodes exactly one value from the Decoder's current position.
type Seed interface {
	DecodeTBin(d *Decoder) error
}

// SeedFunc adapts a function to the Seed interface.
type SeedFunc func(d *Decoder) error

func (f SeedFunc) DecodeTBin(d *Decoder) error {
	return f(d)
}

// SeqAccess yields the elements of a sequence.
type SeqAccess interface {
	// NextElement decodes the next element with seed. It returns false
	// without calling seed once the end of the sequence is reached.
	NextElement(seed Seed) (bool, error)
}

// MapAccess yields the entries of a map as alternating keys and values.
type MapAccess interface {
	// NextKey decodes the next key with seed. It returns false without
	// calling seed once the end of the map is reached.
	NextKey(seed Seed) (bool, error)
	// NextValue decodes the value belonging to the last key.
	NextValue(seed Seed) error
}

// EnumAccess identifies the variant of an externally tagged enum.
type EnumAccess interface {
	Variant() (string, VariantAccess, error)
}

// VariantAccess decodes the payload of the identified variant.
type VariantAccess interface {
	UnitVariant() error
	NewtypeVariant(seed Seed) error
	TupleVariant(n int, v Visitor) error
	StructVariant(fields []string, v Visitor) error
}

// BaseVisitor rejects every value with ErrInvalidType. Embed it and override
// the methods a target accepts.
type BaseVisitor struct {
	// Expecting names the accepted value in error messages.
	Expecting string
}

var _ Visitor = BaseVisitor{}

func (b BaseVisitor) invalid(got string) error {
	if b.Expecting == "" {
		return fmt.Errorf("%w: unexpected %v", tbinutils.ErrInvalidType, got)
	}
	return fmt.Errorf("%w: unexpected %v, expected %v", tbinutils.ErrInvalidType, got, b.Expecting)
}

func (b BaseVisitor) VisitBool(bool) error { return b.invalid("bool") }
func (b BaseVisitor) VisitUint8(uint8) error { return b.invalid("uint8") }
func (b BaseVisitor) VisitUint16(uint16) error { return b.invalid("uint16") }
func (b BaseVisitor) VisitUint32(uint32) error { return b.invalid("uint32") }
func (b BaseVisitor) VisitUint64(uint64) error { return b.invalid("uint64") }
func (b BaseVisitor) VisitInt8(int8) error { return b.invalid("int8") }
func (b BaseVisitor) VisitInt16(int16) error { return b.invalid("int16") }
func (b BaseVisitor) VisitInt32(int32) error { return b.invalid("int32") }
func (b BaseVisitor) VisitInt64(int64) error { return b.invalid("int64") }
func (b BaseVisitor) VisitFloat32(float32) error { return b.invalid("float32") }
func (b BaseVisitor) VisitFloat64(float64) error { return b.invalid("float64") }
func (b BaseVisitor) VisitString(string) error { return b.invalid("string") }
func (b BaseVisitor) VisitNone() error { return b.invalid("none") }
func (b BaseVisitor) VisitSome(*Decoder) error { return b.invalid("option") }
func (b BaseVisitor) VisitUnit() error { return b.invalid("unit") }
func (b BaseVisitor) VisitNewtype(*Decoder) error { return b.invalid("newtype") }
func (b BaseVisitor) VisitSeq(SeqAccess) error { return b.invalid("sequence") }
func (b BaseVisitor) VisitMap(MapAccess) error { return b.invalid("map") }
func (b BaseVisitor) VisitEnum(EnumAccess) error { return b.invalid("enum") }
