// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package tbinutils

import "fmt"

// decoder errors
var (
	ErrUnexpectedEnd       = fmt.Errorf("unexpected end of input")
	ErrSyntax              = fmt.Errorf("syntax error")
	ErrExpectedBoolean     = fmt.Errorf("expected boolean")
	ErrExpectedInteger     = fmt.Errorf("expected integer")
	ErrExpectedFloat       = fmt.Errorf("expected float")
	ErrExpectedString      = fmt.Errorf("expected string")
	ErrExpectedArray       = fmt.Errorf("expected sequence")
	ErrExpectedMap         = fmt.Errorf("expected map")
	ErrExpectedEnum        = fmt.Errorf("expected enum")
	ErrExpectedNull        = fmt.Errorf("expected null")
	ErrExpectedSequenceEnd = fmt.Errorf("expected end of container")
	ErrTooLarge            = fmt.Errorf("declared length exceeds addressable size")
	ErrTrailingCharacters  = fmt.Errorf("trailing bytes after value")
	ErrDepthLimit          = fmt.Errorf("maximum nesting depth exceeded")
)

// visitor errors
var (
	ErrInvalidType      = fmt.Errorf("invalid type")
	ErrInvalidLength    = fmt.Errorf("invalid length")
	ErrUnknownVariant   = fmt.Errorf("unknown enum variant")
	ErrNumberOutOfRange = fmt.Errorf("number out of range")
	ErrLengthLimit      = fmt.Errorf("length limit exceeded")
)

// DecodeError annotates a decoder error with the input offset it occurred at.
// Tag is the byte found at Offset, or -1 when the input was exhausted.
type DecodeError struct {
	Offset int
	Tag    int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Tag < 0 {
		return fmt.Sprintf("tbin: %v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("tbin: %v at offset %d (tag 0x%02x)", e.Err, e.Offset, e.Tag)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
