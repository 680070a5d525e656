// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	. "github.com/pk910/dynamic-tbin"
	"github.com/pk910/dynamic-tbin/tbinutils"
)

type decodeVector struct {
	Name  string `yaml:"name"`
	Hex   string `yaml:"hex"`
	Value any    `yaml:"value"`
	Error string `yaml:"error"`
}

var vectorErrors = map[string]error{
	"unexpected_end":      tbinutils.ErrUnexpectedEnd,
	"syntax":              tbinutils.ErrSyntax,
	"trailing_characters": tbinutils.ErrTrailingCharacters,
	"invalid_type":        tbinutils.ErrInvalidType,
}

func TestDecodeVectors(t *testing.T) {
	data, err := os.ReadFile("testdata/vectors.yaml")
	require.NoError(t, err)

	var vectors []decodeVector
	require.NoError(t, yaml.Unmarshal(data, &vectors))
	require.NotEmpty(t, vectors)

	tb := NewTBin(nil)
	for _, vector := range vectors {
		t.Run(vector.Name, func(t *testing.T) {
			value, err := tb.DecodeValue(fromHex(vector.Hex))
			if vector.Error != "" {
				expected, ok := vectorErrors[vector.Error]
				require.True(t, ok, "unknown error name %v", vector.Error)
				require.ErrorIs(t, err, expected)
				return
			}

			require.NoError(t, err)
			require.Equal(t, vector.Value, value)
		})
	}
}
