// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// unmarshalType is the recursive dispatcher of the reflection layer.
//
// It requests the decoder method matching the descriptor's class and lets a
// valueVisitor write the visited value into targetValue, which must be
// addressable. Nested values recurse through seeds built by valueSeed.
//
// Parameters:
//   - dec: the decoder positioned at the value
//   - targetType: the TypeDescriptor of the target
//   - targetValue: the reflect.Value receiving the decoded value
//   - idt: Indentation level for verbose logging (when enabled)
func (t *TBin) unmarshalType(dec *Decoder, targetType *TypeDescriptor, targetValue reflect.Value, idt int) error {
	if t.Verbose {
		t.logf("%stype: %s\t kind: %v\t tbin: %v\t offset: %d\n", strings.Repeat(" ", idt), targetType.Type.String(), targetType.Kind, targetType.TBinType, dec.Offset())
	}

	visitor := &valueVisitor{
		BaseVisitor: BaseVisitor{Expecting: targetType.Type.String()},
		tbin:        t,
		desc:        targetType,
		value:       targetValue,
		idt:         idt,
	}

	switch targetType.TBinType {
	case TBinAnyType:
		result := &anyVisitor{}
		if err := dec.DecodeAny(result); err != nil {
			return err
		}
		if result.result == nil {
			targetValue.Set(reflect.Zero(targetType.Type))
		} else {
			targetValue.Set(reflect.ValueOf(result.result))
		}
		return nil
	case TBinCustomType:
		unmarshaler, ok := targetValue.Addr().Interface().(Unmarshaler)
		if !ok {
			return fmt.Errorf("type %v does not implement Unmarshaler", targetType.Type)
		}
		return unmarshaler.UnmarshalTBin(dec)
	case TBinTextType, TBinStringType:
		return dec.DecodeString(visitor)
	case TBinBoolType:
		return dec.DecodeBool(visitor)
	case TBinUintType:
		return dec.DecodeUint64(visitor)
	case TBinIntType:
		return dec.DecodeInt64(visitor)
	case TBinFloatType:
		if targetType.Kind == reflect.Float32 {
			return dec.DecodeFloat32(visitor)
		}
		return dec.DecodeFloat64(visitor)
	case TBinOptionType:
		return dec.DecodeOption(visitor)
	case TBinUnitType:
		return dec.DecodeUnitStruct(targetType.Type.Name(), visitor)
	case TBinSeqType:
		return dec.DecodeSeq(visitor)
	case TBinTupleType:
		return dec.DecodeTuple(targetType.Len, visitor)
	case TBinMapType:
		return dec.DecodeMap(visitor)
	case TBinStructType:
		return dec.DecodeStruct(targetType.Type.Name(), targetType.FieldNames, visitor)
	case TBinEnumType:
		return dec.DecodeEnum(targetType.Type.Name(), targetType.VariantNames, visitor)
	}

	return fmt.Errorf("unsupported type %v", targetType.Type)
}

// valueSeed decodes the next value into targetValue.
func (t *TBin) valueSeed(targetType *TypeDescriptor, targetValue reflect.Value, idt int) Seed {
	return SeedFunc(func(d *Decoder) error {
		return t.unmarshalType(d, targetType, targetValue, idt)
	})
}

// valueVisitor writes visited values into a reflect.Value. Callbacks that do
// not fit the descriptor fall through to BaseVisitor and fail with
// ErrInvalidType.
type valueVisitor struct {
	BaseVisitor
	tbin  *TBin
	desc  *TypeDescriptor
	value reflect.Value
	idt   int
}

func (v *valueVisitor) outOfRange(n any) error {
	return fmt.Errorf("%w: %v does not fit into %v", tbinutils.ErrNumberOutOfRange, n, v.desc.Type)
}

func (v *valueVisitor) checkLimit(n int, what string) error {
	if v.desc.HasLimit && uint64(n) > v.desc.Limit {
		return fmt.Errorf("%w: %d %s exceed limit %d of %v", tbinutils.ErrLengthLimit, n, what, v.desc.Limit, v.desc.Type)
	}
	return nil
}

func (v *valueVisitor) VisitBool(b bool) error {
	if v.desc.TBinType != TBinBoolType {
		return v.BaseVisitor.VisitBool(b)
	}
	v.value.SetBool(b)
	return nil
}

func (v *valueVisitor) setUnsigned(n uint64) error {
	switch v.desc.TBinType {
	case TBinUintType:
		if v.value.OverflowUint(n) {
			return v.outOfRange(n)
		}
		v.value.SetUint(n)
	case TBinIntType:
		if n > math.MaxInt64 || v.value.OverflowInt(int64(n)) {
			return v.outOfRange(n)
		}
		v.value.SetInt(int64(n))
	default:
		return v.BaseVisitor.VisitUint64(n)
	}
	return nil
}

func (v *valueVisitor) setSigned(n int64) error {
	switch v.desc.TBinType {
	case TBinIntType:
		if v.value.OverflowInt(n) {
			return v.outOfRange(n)
		}
		v.value.SetInt(n)
	case TBinUintType:
		if n < 0 || v.value.OverflowUint(uint64(n)) {
			return v.outOfRange(n)
		}
		v.value.SetUint(uint64(n))
	default:
		return v.BaseVisitor.VisitInt64(n)
	}
	return nil
}

func (v *valueVisitor) VisitUint8(n uint8) error { return v.setUnsigned(uint64(n)) }
func (v *valueVisitor) VisitUint16(n uint16) error { return v.setUnsigned(uint64(n)) }
func (v *valueVisitor) VisitUint32(n uint32) error { return v.setUnsigned(uint64(n)) }
func (v *valueVisitor) VisitUint64(n uint64) error { return v.setUnsigned(n) }
func (v *valueVisitor) VisitInt8(n int8) error { return v.setSigned(int64(n)) }
func (v *valueVisitor) VisitInt16(n int16) error { return v.setSigned(int64(n)) }
func (v *valueVisitor) VisitInt32(n int32) error { return v.setSigned(int64(n)) }
func (v *valueVisitor) VisitInt64(n int64) error { return v.setSigned(n) }

func (v *valueVisitor) VisitFloat32(f float32) error {
	if v.desc.TBinType != TBinFloatType {
		return v.BaseVisitor.VisitFloat32(f)
	}
	if v.desc.Kind == reflect.Float32 {
		// write the bits directly, SetFloat rounds through float64
		*(*float32)(v.value.Addr().UnsafePointer()) = f
		return nil
	}
	v.value.SetFloat(float64(f))
	return nil
}

func (v *valueVisitor) VisitFloat64(f float64) error {
	if v.desc.TBinType != TBinFloatType {
		return v.BaseVisitor.VisitFloat64(f)
	}
	if v.desc.Kind == reflect.Float32 {
		if v.value.OverflowFloat(f) {
			return v.outOfRange(f)
		}
		*(*float32)(v.value.Addr().UnsafePointer()) = float32(f)
		return nil
	}
	v.value.SetFloat(f)
	return nil
}

func (v *valueVisitor) VisitString(s string) error {
	switch v.desc.TBinType {
	case TBinStringType:
		if err := v.checkLimit(len(s), "bytes"); err != nil {
			return err
		}
		v.value.SetString(s)
		return nil
	case TBinTextType:
		unmarshaler := v.value.Addr().Interface().(interface{ UnmarshalText([]byte) error })
		return unmarshaler.UnmarshalText([]byte(s))
	}
	return v.BaseVisitor.VisitString(s)
}

func (v *valueVisitor) VisitNone() error {
	if v.desc.TBinType != TBinOptionType {
		return v.BaseVisitor.VisitNone()
	}
	v.value.Set(reflect.Zero(v.desc.Type))
	return nil
}

func (v *valueVisitor) VisitSome(d *Decoder) error {
	if v.desc.TBinType != TBinOptionType {
		return v.BaseVisitor.VisitSome(d)
	}
	elemValue := reflect.New(v.desc.ElemDesc.Type)
	if err := v.tbin.unmarshalType(d, v.desc.ElemDesc, elemValue.Elem(), v.idt+2); err != nil {
		return err
	}
	v.value.Set(elemValue)
	return nil
}

func (v *valueVisitor) VisitUnit() error {
	if v.desc.TBinType != TBinUnitType {
		return v.BaseVisitor.VisitUnit()
	}
	return nil
}

func (v *valueVisitor) VisitSeq(seq SeqAccess) error {
	switch v.desc.TBinType {
	case TBinSeqType:
		return v.visitSlice(seq)
	case TBinTupleType:
		return v.visitArray(seq)
	}
	return v.BaseVisitor.VisitSeq(seq)
}

func (v *valueVisitor) visitSlice(seq SeqAccess) error {
	elemDesc := v.desc.ElemDesc
	sliceValue := reflect.MakeSlice(v.desc.Type, 0, 0)
	zeroElem := reflect.Zero(elemDesc.Type)

	for {
		sliceValue = reflect.Append(sliceValue, zeroElem)
		idx := sliceValue.Len() - 1

		ok, err := seq.NextElement(v.tbin.valueSeed(elemDesc, sliceValue.Index(idx), v.idt+2))
		if err != nil {
			return err
		}
		if !ok {
			sliceValue = sliceValue.Slice(0, idx)
			break
		}
		if err := v.checkLimit(sliceValue.Len(), "elements"); err != nil {
			return err
		}
	}

	v.value.Set(sliceValue)
	return nil
}

func (v *valueVisitor) visitArray(seq SeqAccess) error {
	for i := 0; i < v.desc.Len; i++ {
		ok, err := seq.NextElement(v.tbin.valueSeed(v.desc.ElemDesc, v.value.Index(i), v.idt+2))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: sequence of %d elements, expected %d for %v", tbinutils.ErrInvalidLength, i, v.desc.Len, v.desc.Type)
		}
	}
	return nil
}

func (v *valueVisitor) VisitMap(m MapAccess) error {
	switch v.desc.TBinType {
	case TBinMapType:
		return v.visitMap(m)
	case TBinStructType:
		return v.visitStruct(m)
	}
	return v.BaseVisitor.VisitMap(m)
}

func (v *valueVisitor) visitMap(m MapAccess) error {
	keyDesc := v.desc.KeyDesc
	elemDesc := v.desc.ElemDesc
	mapValue := reflect.MakeMap(v.desc.Type)

	for {
		keyValue := reflect.New(keyDesc.Type).Elem()
		ok, err := m.NextKey(v.tbin.valueSeed(keyDesc, keyValue, v.idt+2))
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		elemValue := reflect.New(elemDesc.Type).Elem()
		if err := m.NextValue(v.tbin.valueSeed(elemDesc, elemValue, v.idt+2)); err != nil {
			return err
		}

		mapValue.SetMapIndex(keyValue, elemValue)
		if err := v.checkLimit(mapValue.Len(), "entries"); err != nil {
			return err
		}
	}

	v.value.Set(mapValue)
	return nil
}

func (v *valueVisitor) visitStruct(m MapAccess) error {
	for {
		var name string
		ok, err := m.NextKey(SeedFunc(func(d *Decoder) error {
			return d.DecodeIdentifier(&identifierVisitor{
				BaseVisitor: BaseVisitor{Expecting: "field name"},
				name:        &name,
			})
		}))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		field, known := v.desc.LookupField(name)
		if !known {
			if v.tbin.Verbose {
				v.tbin.logf("%sskipping unknown field '%s' of %s\n", strings.Repeat(" ", v.idt+2), name, v.desc.Type.String())
			}
			if err := m.NextValue(skipSeed); err != nil {
				return err
			}
			continue
		}

		if v.tbin.Verbose {
			v.tbin.logf("%sfield %s\n", strings.Repeat(" ", v.idt+1), field.Name)
		}
		if err := m.NextValue(v.tbin.valueSeed(field.Type, v.value.Field(field.Index), v.idt+2)); err != nil {
			return fmt.Errorf("failed decoding field %v: %w", field.Name, err)
		}
	}
}

func (v *valueVisitor) VisitEnum(e EnumAccess) error {
	if v.desc.TBinType != TBinEnumType {
		return v.BaseVisitor.VisitEnum(e)
	}

	name, access, err := e.Variant()
	if err != nil {
		return err
	}

	variant, known := v.desc.LookupVariant(name)
	if !known {
		return fmt.Errorf("%w: '%s' for %v, expected one of %v", tbinutils.ErrUnknownVariant, name, v.desc.Type, v.desc.VariantNames)
	}

	var payload reflect.Value
	switch variant.Kind {
	case VariantUnit:
		err = access.UnitVariant()
	case VariantNewtype:
		payload = reflect.New(variant.Type.Type).Elem()
		err = access.NewtypeVariant(v.tbin.valueSeed(variant.Type, payload, v.idt+2))
	case VariantTuple:
		payload = reflect.New(variant.Type.Type).Elem()
		err = access.TupleVariant(variant.Type.Len, v.payloadVisitor(variant.Type, payload))
	case VariantStruct:
		payload = reflect.New(variant.Type.Type).Elem()
		err = access.StructVariant(variant.Type.FieldNames, v.payloadVisitor(variant.Type, payload))
	}
	if err != nil {
		return err
	}

	v.value.FieldByName("Variant").SetString(name)
	dataValue := v.value.FieldByName("Data")
	if payload.IsValid() {
		dataValue.Set(payload)
	} else {
		dataValue.Set(reflect.Zero(dataValue.Type()))
	}
	return nil
}

func (v *valueVisitor) payloadVisitor(desc *TypeDescriptor, value reflect.Value) *valueVisitor {
	return &valueVisitor{
		BaseVisitor: BaseVisitor{Expecting: desc.Type.String()},
		tbin:        v.tbin,
		desc:        desc,
		value:       value,
		idt:         v.idt + 2,
	}
}

// identifierVisitor captures struct field names.
type identifierVisitor struct {
	BaseVisitor
	name *string
}

func (v *identifierVisitor) VisitString(s string) error {
	*v.name = s
	return nil
}
