// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

// DefaultMaxDepth is the container nesting limit used when none is configured.
const DefaultMaxDepth = 128

type TBinOption func(*TBinOptions)

type TBinOptions struct {
	MaxDepth        int
	ZeroCopyStrings bool
	Verbose         bool
	LogCb           func(format string, args ...any)
}

// WithMaxDepth limits how deep containers and enum payloads may nest.
// Deeper input fails with ErrDepthLimit instead of growing the stack.
func WithMaxDepth(depth int) TBinOption {
	return func(opts *TBinOptions) {
		opts.MaxDepth = depth
	}
}

// WithZeroCopyStrings makes decoded strings alias the input buffer instead of
// copying it. The buffer must not be modified while decoded strings are in use.
func WithZeroCopyStrings() TBinOption {
	return func(opts *TBinOptions) {
		opts.ZeroCopyStrings = true
	}
}

func WithVerbose() TBinOption {
	return func(opts *TBinOptions) {
		opts.Verbose = true
	}
}

func WithLogCb(logCb func(format string, args ...any)) TBinOption {
	return func(opts *TBinOptions) {
		opts.LogCb = logCb
	}
}
