// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"reflect"
)

// Enum holds one variant of an externally tagged enum. T is a descriptor
// struct that is never instantiated: each of its fields declares one variant,
// named by the field name or its `tbin` tag, with the field type as payload.
// A field of type Unit declares a variant without payload.
//
// Usage:
//
//	type Command = dyntbin.Enum[struct {
//	    Quit  dyntbin.Unit
//	    Move  MovePayload    `tbin:"move"`
//	    Write string
//	    Color [3]uint8
//	}]
//
// After decoding, Variant holds the variant name and Data the payload value
// (nil for unit variants).
type Enum[T any] struct {
	Variant string
	Data    any
}

// Unit is the payload type of enum variants that carry no data.
type Unit struct{}

// NewEnum creates an Enum holding the named variant.
func NewEnum[T any](variant string, data any) *Enum[T] {
	return &Enum[T]{
		Variant: variant,
		Data:    data,
	}
}

// GetDescriptorType returns the reflect.Type of the descriptor struct T.
func (e *Enum[T]) GetDescriptorType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}
