// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin_test

import (
	"encoding/hex"
	"strings"

	"github.com/pk910/dynamic-tbin/tbinutils"
)

// fromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x" and may contain spaces for readability.
func fromHex(s string) []byte {
	s = strings.ReplaceAll(s, " ", "")
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	h, _ := hex.DecodeString(s)
	return h
}

// has0xPrefix validates str begins with '0x' or '0X'.
func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

// encode builds a document with a BufferEncoder.
func encode(fn func(e *tbinutils.BufferEncoder)) []byte {
	e := tbinutils.NewBufferEncoder(nil)
	fn(e)
	return e.GetBuffer()
}
