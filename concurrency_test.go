// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin_test

import (
	"fmt"
	"reflect"
	"testing"

	"golang.org/x/sync/errgroup"

	. "github.com/pk910/dynamic-tbin"
	"github.com/pk910/dynamic-tbin/tbinutils"
)

func TestConcurrentDecoding(t *testing.T) {
	tb := NewTBin(nil)

	documents := make([][]byte, 32)
	for i := range documents {
		documents[i] = encode(func(e *tbinutils.BufferEncoder) {
			e.EncodeMapOpen()
			e.EncodeString("name")
			e.EncodeString(fmt.Sprintf("doc-%d", i))
			e.EncodeString("tags")
			e.EncodeSeqOpen()
			for j := 0; j < i%5; j++ {
				e.EncodeString(fmt.Sprintf("t%d", j))
			}
			e.EncodeClose()
			e.EncodeString("origin")
			e.EncodeMapOpen()
			e.EncodeString("x")
			e.EncodeInt32(int32(i))
			e.EncodeClose()
			e.EncodeClose()
		})
	}

	results := make([]testRecord, len(documents))
	values := make([]any, len(documents))

	var group errgroup.Group
	group.SetLimit(8)
	for round := 0; round < 4; round++ {
		round := round
		for i := range documents {
			i := i
			group.Go(func() error {
				var record testRecord
				if err := tb.Unmarshal(&record, documents[i]); err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
				value, err := tb.DecodeValue(documents[i])
				if err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
				if round == 0 {
					results[i] = record
					values[i] = value
				}
				return nil
			})
		}
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, record := range results {
		if record.Name != fmt.Sprintf("doc-%d", i) || record.Origin.X != int32(i) || len(record.Tags) != i%5 {
			t.Fatalf("document %d decoded incorrectly: %+v", i, record)
		}
		name := values[i].(map[string]any)["name"]
		if !reflect.DeepEqual(name, record.Name) {
			t.Fatalf("document %d: dynamic and typed decode disagree", i)
		}
	}
}
