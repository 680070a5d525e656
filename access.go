// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// containerAccess iterates sequence elements and map entries up to the
// container end tag. The end tag itself is left for the decoder to consume.
type containerAccess struct {
	d *Decoder
}

var _ SeqAccess = (*containerAccess)(nil)
var _ MapAccess = (*containerAccess)(nil)

func (a *containerAccess) atEnd() (bool, error) {
	tag, err := a.d.peek()
	if err != nil {
		return false, err
	}
	return tag == tbinutils.TagClose, nil
}

func (a *containerAccess) NextElement(seed Seed) (bool, error) {
	if end, err := a.atEnd(); err != nil || end {
		return false, err
	}
	if err := seed.DecodeTBin(a.d); err != nil {
		return false, err
	}
	return true, nil
}

func (a *containerAccess) NextKey(seed Seed) (bool, error) {
	return a.NextElement(seed)
}

func (a *containerAccess) NextValue(seed Seed) error {
	return seed.DecodeTBin(a.d)
}

// enumAccess reads the variant name key of a map framed enum.
type enumAccess struct {
	d *Decoder
}

func (a *enumAccess) Variant() (string, VariantAccess, error) {
	name, err := a.d.parseString()
	if err != nil {
		return "", nil, err
	}
	return name, &variantAccess{d: a.d}, nil
}

// variantAccess decodes the payload following the variant name.
type variantAccess struct {
	d *Decoder
}

func (a *variantAccess) UnitVariant() error {
	return a.d.fail(tbinutils.ErrExpectedString)
}

func (a *variantAccess) NewtypeVariant(seed Seed) error {
	return seed.DecodeTBin(a.d)
}

func (a *variantAccess) TupleVariant(n int, v Visitor) error {
	return a.d.DecodeTuple(n, v)
}

func (a *variantAccess) StructVariant(fields []string, v Visitor) error {
	return a.d.DecodeStruct("", fields, v)
}

// unitEnumAccess serves the bare string form, which can only be a unit variant.
type unitEnumAccess struct {
	name string
}

func (a *unitEnumAccess) Variant() (string, VariantAccess, error) {
	return a.name, a, nil
}

func (a *unitEnumAccess) UnitVariant() error {
	return nil
}

func (a *unitEnumAccess) payloadError(kind string) error {
	return fmt.Errorf("%w: unit variant %q, expected %v variant", tbinutils.ErrInvalidType, a.name, kind)
}

func (a *unitEnumAccess) NewtypeVariant(Seed) error {
	return a.payloadError("newtype")
}

func (a *unitEnumAccess) TupleVariant(int, Visitor) error {
	return a.payloadError("tuple")
}

func (a *unitEnumAccess) StructVariant([]string, Visitor) error {
	return a.payloadError("struct")
}
