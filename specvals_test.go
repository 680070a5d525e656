// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin_test

import (
	"testing"

	. "github.com/pk910/dynamic-tbin"
)

func TestResolveSpecValue(t *testing.T) {
	tb := NewTBin(map[string]any{
		"MAX_PEERS":   uint64(64),
		"SHARD_COUNT": 3,
		"RATIO":       float64(2.5),
	})

	tests := []struct {
		expr     string
		resolved bool
		value    uint64
	}{
		{"MAX_PEERS", true, 64},
		{"MAX_PEERS*2", true, 128},
		{"MAX_PEERS/SHARD_COUNT", true, 22},
		{"RATIO", true, 3},
		{"UNKNOWN", false, 0},
		{"MAX_PEERS-100", false, 0},
	}

	for _, test := range tests {
		ok, value, err := tb.ResolveSpecValue(test.expr)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", test.expr, err)
		}
		if ok != test.resolved || value != test.value {
			t.Errorf("%v: expected (%v, %v), got (%v, %v)", test.expr, test.resolved, test.value, ok, value)
		}

		// second lookup is served from the cache
		ok2, value2, _ := tb.ResolveSpecValue(test.expr)
		if ok2 != ok || value2 != value {
			t.Errorf("%v: cached lookup differs", test.expr)
		}
	}

	if _, _, err := tb.ResolveSpecValue("MAX_PEERS +* 2"); err == nil {
		t.Fatal("expected parse error")
	}
}
