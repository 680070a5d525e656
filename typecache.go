// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TBinType classifies how a Go type is decoded.
type TBinType uint8

const (
	TBinUnspecifiedType TBinType = iota
	TBinAnyType
	TBinCustomType
	TBinTextType

	// scalars
	TBinBoolType
	TBinUintType
	TBinIntType
	TBinFloatType
	TBinStringType

	// compound
	TBinOptionType
	TBinUnitType
	TBinSeqType
	TBinTupleType
	TBinMapType
	TBinStructType
	TBinEnumType
)

var tbinTypeNames = map[TBinType]string{
	TBinUnspecifiedType: "unspecified",
	TBinAnyType:         "any",
	TBinCustomType:      "custom",
	TBinTextType:        "text",
	TBinBoolType:        "bool",
	TBinUintType:        "uint",
	TBinIntType:         "int",
	TBinFloatType:       "float",
	TBinStringType:      "string",
	TBinOptionType:      "option",
	TBinUnitType:        "unit",
	TBinSeqType:         "seq",
	TBinTupleType:       "tuple",
	TBinMapType:         "map",
	TBinStructType:      "struct",
	TBinEnumType:        "enum",
}

func (t TBinType) String() string {
	if name, ok := tbinTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TBinType(%d)", uint8(t))
}

// VariantKind is the payload shape of an enum variant.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewtype
	VariantTuple
	VariantStruct
)

var (
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	descriptorType      = reflect.TypeOf((*descriptorProvider)(nil)).Elem()
	enumPkgPath         = reflect.TypeOf(Unit{}).PkgPath()
)

// TypeCache manages cached type descriptors
type TypeCache struct {
	tbin        *TBin
	mutex       sync.RWMutex
	descriptors map[reflect.Type]*TypeDescriptor
	pending     []reflect.Type
	hinted      map[hintedTypeKey]*TypeDescriptor
}

// hintedTypeKey identifies a descriptor built with max hints during a single
// GetTypeDescriptor call.
type hintedTypeKey struct {
	typ   reflect.Type
	hints string
}

// TypeDescriptor describes how values of one Go type are decoded.
type TypeDescriptor struct {
	Type          reflect.Type
	Kind          reflect.Kind        // Go kind of the type
	TBinType      TBinType            // decoding class of the type
	ElemDesc      *TypeDescriptor     // option target, seq/tuple element, map value
	KeyDesc       *TypeDescriptor     // map key
	Len           int                 // tuple length (arrays)
	Limit         uint64              // element or byte limit (tbin-max / dyntbin-max)
	HasLimit      bool                // whether Limit applies
	MaxExpression string              // the dyntbin-max expression Limit came from
	Fields        []FieldDescriptor   // struct fields in declaration order
	FieldNames    []string            // wire names of Fields
	Variants      []VariantDescriptor // enum variants in declaration order
	VariantNames  []string            // wire names of Variants
	fieldIndex    map[string]int
	variantIndex  map[string]int
}

// FieldDescriptor represents a cached descriptor for a struct field
type FieldDescriptor struct {
	Name  string
	Index int             // index of the field in the Go struct
	Type  *TypeDescriptor // Type descriptor
}

// VariantDescriptor represents one enum variant
type VariantDescriptor struct {
	Name string
	Kind VariantKind
	Type *TypeDescriptor // payload type, nil for unit variants
}

// NewTypeCache creates a new type cache
func NewTypeCache(tbin *TBin) *TypeCache {
	return &TypeCache{
		tbin:        tbin,
		descriptors: make(map[reflect.Type]*TypeDescriptor),
	}
}

// GetTypeDescriptor returns a cached type descriptor for the given type,
// computing it if necessary.
//
// Descriptors built with max hints depend on the field they were declared on
// and are not cached across calls. Recursive types are supported: a type
// referencing itself through a pointer, slice or map resolves to the same
// descriptor, also when the reference carries max hints.
//
// Example:
//
//	desc, err := cache.GetTypeDescriptor(reflect.TypeOf(MyStruct{}), nil)
//	if err != nil {
//	    log.Fatal("Failed to get type descriptor:", err)
//	}
//	fmt.Printf("decoded as %v\n", desc.TBinType)
func (tc *TypeCache) GetTypeDescriptor(t reflect.Type, maxHints []TBinMaxHint) (*TypeDescriptor, error) {
	if len(maxHints) == 0 {
		tc.mutex.RLock()
		if desc, exists := tc.descriptors[t]; exists {
			tc.mutex.RUnlock()
			return desc, nil
		}
		tc.mutex.RUnlock()
	}

	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.pending = tc.pending[:0]
	tc.hinted = make(map[hintedTypeKey]*TypeDescriptor)
	desc, err := tc.getTypeDescriptor(t, maxHints)
	if err != nil {
		// drop everything built during this call, entries may reference
		// the failed descriptor
		for _, pendingType := range tc.pending {
			delete(tc.descriptors, pendingType)
		}
	}
	tc.pending = tc.pending[:0]
	tc.hinted = nil

	return desc, err
}

// getTypeDescriptor returns a cached type descriptor, computing it if necessary
func (tc *TypeCache) getTypeDescriptor(t reflect.Type, maxHints []TBinMaxHint) (*TypeDescriptor, error) {
	cacheable := len(maxHints) == 0
	if desc, exists := tc.descriptors[t]; exists && cacheable {
		return desc, nil
	}

	// hinted descriptors are shared within one call only, a recursive type
	// with per-level hints reaches the same (type, hints) pair again
	hintKey := hintedTypeKey{typ: t, hints: fmt.Sprintf("%v", maxHints)}
	if !cacheable {
		if desc, exists := tc.hinted[hintKey]; exists {
			return desc, nil
		}
	}

	desc := &TypeDescriptor{
		Type: t,
		Kind: t.Kind(),
	}

	// register before building so self references resolve to desc
	if cacheable {
		tc.descriptors[t] = desc
		tc.pending = append(tc.pending, t)
	} else {
		tc.hinted[hintKey] = desc
	}

	if err := tc.buildTypeDescriptor(desc, t, maxHints); err != nil {
		return nil, err
	}

	return desc, nil
}

// buildTypeDescriptor fills desc for the given type
func (tc *TypeCache) buildTypeDescriptor(desc *TypeDescriptor, t reflect.Type, maxHints []TBinMaxHint) error {
	var childHints []TBinMaxHint
	if len(maxHints) > 0 {
		if !maxHints[0].NoValue {
			desc.Limit = maxHints[0].Size
			desc.HasLimit = true
		}
		desc.MaxExpression = maxHints[0].Expr
		childHints = maxHints[1:]
	}

	ptrType := reflect.PointerTo(t)

	switch {
	case t.Kind() == reflect.Pointer:
		desc.TBinType = TBinOptionType
	case t.Kind() == reflect.Struct && t.PkgPath() == enumPkgPath && strings.HasPrefix(t.Name(), "Enum[") && ptrType.Implements(descriptorType):
		desc.TBinType = TBinEnumType
	case ptrType.Implements(unmarshalerType):
		desc.TBinType = TBinCustomType
	case t.Kind() != reflect.String && ptrType.Implements(textUnmarshalerType):
		desc.TBinType = TBinTextType
	default:
		switch t.Kind() {
		case reflect.Bool:
			desc.TBinType = TBinBoolType
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			desc.TBinType = TBinUintType
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			desc.TBinType = TBinIntType
		case reflect.Float32, reflect.Float64:
			desc.TBinType = TBinFloatType
		case reflect.String:
			desc.TBinType = TBinStringType
		case reflect.Interface:
			if t.NumMethod() != 0 {
				return fmt.Errorf("unsupported interface type %v: only empty interfaces can be decoded", t)
			}
			desc.TBinType = TBinAnyType
		case reflect.Struct:
			if t.NumField() == 0 {
				desc.TBinType = TBinUnitType
			} else {
				desc.TBinType = TBinStructType
			}
		case reflect.Slice:
			desc.TBinType = TBinSeqType
		case reflect.Array:
			desc.TBinType = TBinTupleType
		case reflect.Map:
			desc.TBinType = TBinMapType
		default:
			return fmt.Errorf("unsupported type kind: %v (%v)", t.Kind(), t)
		}
	}

	var err error
	switch desc.TBinType {
	case TBinOptionType:
		desc.ElemDesc, err = tc.getTypeDescriptor(t.Elem(), maxHints)
		desc.Limit, desc.HasLimit, desc.MaxExpression = 0, false, ""
	case TBinSeqType:
		desc.ElemDesc, err = tc.getTypeDescriptor(t.Elem(), childHints)
	case TBinTupleType:
		desc.Len = t.Len()
		desc.ElemDesc, err = tc.getTypeDescriptor(t.Elem(), childHints)
	case TBinMapType:
		desc.KeyDesc, err = tc.getTypeDescriptor(t.Key(), nil)
		if err == nil {
			desc.ElemDesc, err = tc.getTypeDescriptor(t.Elem(), childHints)
		}
	case TBinStructType:
		err = tc.buildStructDescriptor(desc, t)
	case TBinEnumType:
		err = tc.buildEnumDescriptor(desc, t)
	}
	if err != nil {
		return err
	}

	if desc.HasLimit {
		switch desc.TBinType {
		case TBinSeqType, TBinMapType, TBinStringType:
		default:
			return fmt.Errorf("max size hint not supported for %v type %v", desc.TBinType, t)
		}
	}

	return nil
}

// buildStructDescriptor collects the decodable fields of a struct
func (tc *TypeCache) buildStructDescriptor(desc *TypeDescriptor, t reflect.Type) error {
	desc.Fields = make([]FieldDescriptor, 0, t.NumField())
	desc.FieldNames = make([]string, 0, t.NumField())
	desc.fieldIndex = make(map[string]int, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := getTBinNameTag(&field)
		if skip {
			continue
		}
		if _, exists := desc.fieldIndex[name]; exists {
			return fmt.Errorf("duplicate field name '%v' in struct %v", name, t)
		}

		maxHints, err := tc.tbin.getTBinMaxTag(&field)
		if err != nil {
			return err
		}

		fieldDesc := FieldDescriptor{
			Name:  name,
			Index: i,
		}
		fieldDesc.Type, err = tc.getTypeDescriptor(field.Type, maxHints)
		if err != nil {
			return fmt.Errorf("failed to build descriptor for field %v.%v: %w", t, field.Name, err)
		}

		desc.fieldIndex[name] = len(desc.Fields)
		desc.Fields = append(desc.Fields, fieldDesc)
		desc.FieldNames = append(desc.FieldNames, name)
	}

	return nil
}

// buildEnumDescriptor builds a descriptor for Enum types
func (tc *TypeCache) buildEnumDescriptor(desc *TypeDescriptor, t reflect.Type) error {
	variantsType, err := tc.extractGenericTypeParameter(t)
	if err != nil {
		return err
	}
	if variantsType.Kind() != reflect.Struct {
		return fmt.Errorf("enum descriptor must be a struct, got %v", variantsType)
	}

	desc.Variants = make([]VariantDescriptor, 0, variantsType.NumField())
	desc.VariantNames = make([]string, 0, variantsType.NumField())
	desc.variantIndex = make(map[string]int, variantsType.NumField())

	for i := 0; i < variantsType.NumField(); i++ {
		field := variantsType.Field(i)
		name, skip := getTBinNameTag(&field)
		if skip {
			continue
		}
		if _, exists := desc.variantIndex[name]; exists {
			return fmt.Errorf("duplicate variant name '%v' in enum %v", name, t)
		}

		variant := VariantDescriptor{Name: name}
		if field.Type != reflect.TypeOf(Unit{}) {
			maxHints, err := tc.tbin.getTBinMaxTag(&field)
			if err != nil {
				return err
			}

			variant.Type, err = tc.getTypeDescriptor(field.Type, maxHints)
			if err != nil {
				return fmt.Errorf("failed to build descriptor for enum variant %v: %w", name, err)
			}

			switch variant.Type.TBinType {
			case TBinTupleType, TBinSeqType:
				variant.Kind = VariantTuple
			case TBinStructType:
				variant.Kind = VariantStruct
			default:
				variant.Kind = VariantNewtype
			}
		}

		desc.variantIndex[name] = len(desc.Variants)
		desc.Variants = append(desc.Variants, variant)
		desc.VariantNames = append(desc.VariantNames, name)
	}

	return nil
}

// LookupField returns the field decoded for a wire name.
func (desc *TypeDescriptor) LookupField(name string) (*FieldDescriptor, bool) {
	idx, ok := desc.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return &desc.Fields[idx], true
}

// LookupVariant returns the enum variant with the given name.
func (desc *TypeDescriptor) LookupVariant(name string) (*VariantDescriptor, bool) {
	idx, ok := desc.variantIndex[name]
	if !ok {
		return nil, false
	}
	return &desc.Variants[idx], true
}

// GetAllTypes returns a slice of all types currently cached in the TypeCache.
func (tc *TypeCache) GetAllTypes() []reflect.Type {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	types := make([]reflect.Type, 0, len(tc.descriptors))
	for t := range tc.descriptors {
		types = append(types, t)
	}

	return types
}

// RemoveType removes a specific type from the cache, forcing it to be rebuilt
// on the next lookup.
func (tc *TypeCache) RemoveType(t reflect.Type) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	delete(tc.descriptors, t)
}

// RemoveAllTypes clears all cached type descriptors from the cache.
//
// Limits resolved from spec values are baked into the descriptors, so the
// cache has to be cleared when the spec values change.
func (tc *TypeCache) RemoveAllTypes() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.descriptors = make(map[reflect.Type]*TypeDescriptor)
}

// extractGenericTypeParameter extracts the descriptor struct from an Enum type.
func (tc *TypeCache) extractGenericTypeParameter(enumType reflect.Type) (reflect.Type, error) {
	provider, ok := reflect.New(enumType).Interface().(descriptorProvider)
	if !ok {
		return nil, fmt.Errorf("GetDescriptorType method not found on type %s", enumType)
	}

	variantsType := provider.GetDescriptorType()
	if variantsType == nil {
		return nil, fmt.Errorf("GetDescriptorType returned no type for %s", enumType)
	}

	return variantsType, nil
}
