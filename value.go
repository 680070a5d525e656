// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"
	"reflect"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// IgnoredAny accepts and discards any value, draining containers and enum
// payloads so the decoder ends up past the value.
type IgnoredAny struct{}

var (
	_ Visitor = IgnoredAny{}
	_ Seed    = IgnoredAny{}
)

func (IgnoredAny) VisitBool(bool) error { return nil }
func (IgnoredAny) VisitUint8(uint8) error { return nil }
func (IgnoredAny) VisitUint16(uint16) error { return nil }
func (IgnoredAny) VisitUint32(uint32) error { return nil }
func (IgnoredAny) VisitUint64(uint64) error { return nil }
func (IgnoredAny) VisitInt8(int8) error { return nil }
func (IgnoredAny) VisitInt16(int16) error { return nil }
func (IgnoredAny) VisitInt32(int32) error { return nil }
func (IgnoredAny) VisitInt64(int64) error { return nil }
func (IgnoredAny) VisitFloat32(float32) error { return nil }
func (IgnoredAny) VisitFloat64(float64) error { return nil }
func (IgnoredAny) VisitString(string) error { return nil }
func (IgnoredAny) VisitNone() error { return nil }
func (IgnoredAny) VisitUnit() error { return nil }

func (IgnoredAny) VisitSome(d *Decoder) error {
	return d.Skip()
}

func (IgnoredAny) VisitNewtype(d *Decoder) error {
	return d.Skip()
}

func (IgnoredAny) VisitSeq(seq SeqAccess) error {
	for {
		ok, err := seq.NextElement(skipSeed)
		if err != nil || !ok {
			return err
		}
	}
}

func (IgnoredAny) VisitMap(m MapAccess) error {
	for {
		ok, err := m.NextKey(skipSeed)
		if err != nil || !ok {
			return err
		}
		if err := m.NextValue(skipSeed); err != nil {
			return err
		}
	}
}

func (IgnoredAny) VisitEnum(e EnumAccess) error {
	_, variant, err := e.Variant()
	if err != nil {
		return err
	}
	if _, unitOnly := variant.(*unitEnumAccess); unitOnly {
		return variant.UnitVariant()
	}
	return variant.NewtypeVariant(skipSeed)
}

// DecodeTBin lets IgnoredAny be passed wherever a Seed is expected.
func (IgnoredAny) DecodeTBin(d *Decoder) error {
	return d.Skip()
}

var skipSeed = SeedFunc(func(d *Decoder) error {
	return d.Skip()
})

// anyVisitor materialises self-describing values into plain Go values:
// nil, bool, the sized integer and float types, string, []any and
// map[string]any. Maps with a non-string key become map[any]any.
type anyVisitor struct {
	result any
}

var _ Visitor = (*anyVisitor)(nil)

func (v *anyVisitor) VisitBool(b bool) error { v.result = b; return nil }
func (v *anyVisitor) VisitUint8(n uint8) error { v.result = n; return nil }
func (v *anyVisitor) VisitUint16(n uint16) error { v.result = n; return nil }
func (v *anyVisitor) VisitUint32(n uint32) error { v.result = n; return nil }
func (v *anyVisitor) VisitUint64(n uint64) error { v.result = n; return nil }
func (v *anyVisitor) VisitInt8(n int8) error { v.result = n; return nil }
func (v *anyVisitor) VisitInt16(n int16) error { v.result = n; return nil }
func (v *anyVisitor) VisitInt32(n int32) error { v.result = n; return nil }
func (v *anyVisitor) VisitInt64(n int64) error { v.result = n; return nil }
func (v *anyVisitor) VisitFloat32(f float32) error { v.result = f; return nil }
func (v *anyVisitor) VisitFloat64(f float64) error { v.result = f; return nil }
func (v *anyVisitor) VisitString(s string) error { v.result = s; return nil }
func (v *anyVisitor) VisitNone() error { v.result = nil; return nil }
func (v *anyVisitor) VisitUnit() error { v.result = nil; return nil }

func (v *anyVisitor) VisitSome(d *Decoder) error {
	return d.DecodeAny(v)
}

func (v *anyVisitor) VisitNewtype(d *Decoder) error {
	return d.DecodeAny(v)
}

func (v *anyVisitor) VisitSeq(seq SeqAccess) error {
	items := []any{}
	for {
		item := &anyVisitor{}
		ok, err := seq.NextElement(item)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		items = append(items, item.result)
	}
	v.result = items
	return nil
}

func (v *anyVisitor) VisitMap(m MapAccess) error {
	entries := map[string]any{}
	var mixed map[any]any
	for {
		key := &anyVisitor{}
		ok, err := m.NextKey(key)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		value := &anyVisitor{}
		if err := m.NextValue(value); err != nil {
			return err
		}

		name, isString := key.result.(string)
		if isString && mixed == nil {
			entries[name] = value.result
			continue
		}

		if key.result != nil && !reflect.TypeOf(key.result).Comparable() {
			return fmt.Errorf("%w: map key of type %T is not comparable", tbinutils.ErrInvalidType, key.result)
		}
		if mixed == nil {
			mixed = make(map[any]any, len(entries)+1)
			for k, e := range entries {
				mixed[k] = e
			}
		}
		mixed[key.result] = value.result
	}
	if mixed != nil {
		v.result = mixed
	} else {
		v.result = entries
	}
	return nil
}

// VisitEnum represents a variant as a single entry map, or as the bare name
// for unit variants.
func (v *anyVisitor) VisitEnum(e EnumAccess) error {
	name, variant, err := e.Variant()
	if err != nil {
		return err
	}
	if _, unitOnly := variant.(*unitEnumAccess); unitOnly {
		v.result = name
		return variant.UnitVariant()
	}

	payload := &anyVisitor{}
	if err := variant.NewtypeVariant(payload); err != nil {
		return err
	}
	v.result = map[string]any{name: payload.result}
	return nil
}

// DecodeTBin lets anyVisitor act as its own seed.
func (v *anyVisitor) DecodeTBin(d *Decoder) error {
	return d.DecodeAny(v)
}
