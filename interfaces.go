// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import "reflect"

// Unmarshaler is implemented by types that decode themselves. UnmarshalTBin
// must consume exactly one value from d, typically by calling one of the
// Decode methods with its own visitor or by handing nested values to
// d.Unmarshal.
type Unmarshaler interface {
	UnmarshalTBin(d *Decoder) error
}

// descriptorProvider is implemented by Enum instantiations.
type descriptorProvider interface {
	GetDescriptorType() reflect.Type
}
