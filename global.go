// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import "sync"

var (
	globalTBin      *TBin
	globalTBinMutex sync.Mutex
)

func GetGlobalTBin() *TBin {
	globalTBinMutex.Lock()
	defer globalTBinMutex.Unlock()

	if globalTBin == nil {
		globalTBin = NewTBin(nil)
	}
	return globalTBin
}

func SetGlobalSpecs(specs map[string]any) {
	globalTBinMutex.Lock()
	defer globalTBinMutex.Unlock()

	globalTBin = NewTBin(specs)
}

// NewDecoder returns a Decoder using the global instance's configuration.
func NewDecoder(data []byte) *Decoder {
	return GetGlobalTBin().NewDecoder(data)
}

// Decode decodes data with seed using the global instance.
func Decode(data []byte, seed Seed) error {
	return GetGlobalTBin().Decode(data, seed)
}

// Unmarshal decodes data into target using the global instance.
func Unmarshal(target any, data []byte) error {
	return GetGlobalTBin().Unmarshal(target, data)
}
