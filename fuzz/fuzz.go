// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package fuzz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"time"

	dyntbin "github.com/pk910/dynamic-tbin"
	"github.com/pk910/dynamic-tbin/tbinutils"
)

// Fuzzer generates random TBin documents together with the value they encode
type Fuzzer struct {
	r        *rand.Rand
	edgeProb float64 // probability of generating edge case values
	maxDepth int
}

// NewFuzzer creates a new fuzzer with optional seed
func NewFuzzer(seed int64) *Fuzzer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Fuzzer{
		r:        rand.New(rand.NewSource(seed)),
		edgeProb: 0.1, // 10% chance of edge cases
		maxDepth: 6,
	}
}

// SetEdgeProbability sets the probability of generating edge case values
func (f *Fuzzer) SetEdgeProbability(prob float64) {
	f.edgeProb = prob
}

// RandomValue returns a random value in the shape DecodeValue produces:
// nil, bool, sized numbers, string, []any or map[string]any.
func (f *Fuzzer) RandomValue() any {
	return f.randomValue(0)
}

func (f *Fuzzer) randomValue(depth int) any {
	kinds := 14
	if depth >= f.maxDepth {
		kinds = 12
	}

	switch f.r.Intn(kinds) {
	case 0:
		return nil
	case 1:
		return f.r.Intn(2) == 1
	case 2:
		return uint8(f.randomUint64())
	case 3:
		return uint16(f.randomUint64())
	case 4:
		return uint32(f.randomUint64())
	case 5:
		return f.randomUint64()
	case 6:
		return int8(f.randomUint64())
	case 7:
		return int16(f.randomUint64())
	case 8:
		return int32(f.randomUint64())
	case 9:
		return int64(f.randomUint64())
	case 10:
		if f.r.Intn(2) == 0 {
			return float32(f.randomFloat())
		}
		return f.randomFloat()
	case 11:
		return f.randomString()
	case 12:
		items := make([]any, f.r.Intn(5))
		for i := range items {
			items[i] = f.randomValue(depth + 1)
		}
		return items
	default:
		entries := make(map[string]any)
		for i := f.r.Intn(5); i > 0; i-- {
			entries[f.randomString()] = f.randomValue(depth + 1)
		}
		return entries
	}
}

func (f *Fuzzer) randomUint64() uint64 {
	if f.r.Float64() < f.edgeProb {
		edges := []uint64{0, 1, math.MaxUint8, math.MaxUint16, math.MaxUint32, math.MaxUint64, 1 << 63}
		return edges[f.r.Intn(len(edges))]
	}
	return f.r.Uint64()
}

// randomFloat never returns NaN so generated values stay comparable.
func (f *Fuzzer) randomFloat() float64 {
	if f.r.Float64() < f.edgeProb {
		edges := []float64{0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1), math.SmallestNonzeroFloat64}
		return edges[f.r.Intn(len(edges))]
	}
	return (f.r.Float64() - 0.5) * math.Pow(2, float64(f.r.Intn(64)))
}

func (f *Fuzzer) randomString() string {
	length := f.r.Intn(12)
	if f.r.Float64() < f.edgeProb {
		length = 60 + f.r.Intn(300)
	}

	var sb strings.Builder
	alphabet := []rune("abcxyz019 _-äöü€")
	for i := 0; i < length; i++ {
		sb.WriteRune(alphabet[f.r.Intn(len(alphabet))])
	}
	return sb.String()
}

// Encode writes value with randomly chosen string length classes.
func (f *Fuzzer) Encode(value any) ([]byte, error) {
	enc := tbinutils.NewBufferEncoder(nil)
	if err := f.encodeValue(enc, value); err != nil {
		return nil, err
	}
	return enc.GetBuffer(), nil
}

func (f *Fuzzer) encodeValue(enc *tbinutils.BufferEncoder, value any) error {
	switch v := value.(type) {
	case nil:
		enc.EncodeNone()
	case bool:
		enc.EncodeBool(v)
	case uint8:
		enc.EncodeUint8(v)
	case uint16:
		enc.EncodeUint16(v)
	case uint32:
		enc.EncodeUint32(v)
	case uint64:
		enc.EncodeUint64(v)
	case int8:
		enc.EncodeInt8(v)
	case int16:
		enc.EncodeInt16(v)
	case int32:
		enc.EncodeInt32(v)
	case int64:
		enc.EncodeInt64(v)
	case float32:
		enc.EncodeFloat32(v)
	case float64:
		enc.EncodeFloat64(v)
	case string:
		f.encodeString(enc, v)
	case []any:
		enc.EncodeSeqOpen()
		for _, item := range v {
			if err := f.encodeValue(enc, item); err != nil {
				return err
			}
		}
		enc.EncodeClose()
	case map[string]any:
		enc.EncodeMapOpen()
		for key, item := range v {
			f.encodeString(enc, key)
			if err := f.encodeValue(enc, item); err != nil {
				return err
			}
		}
		enc.EncodeClose()
	default:
		return fmt.Errorf("cannot encode %T", value)
	}
	return nil
}

func (f *Fuzzer) encodeString(enc *tbinutils.BufferEncoder, s string) {
	class := tbinutils.SmallestStringClass(len(s))
	if f.r.Float64() < f.edgeProb {
		class += tbinutils.StringClass(f.r.Intn(int(tbinutils.String64-class) + 1))
	}
	enc.EncodeStringClass(s, class)
}

// FuzzRoundtrip encodes value and checks that DecodeValue restores it and
// consumes exactly the encoded bytes.
func (f *Fuzzer) FuzzRoundtrip(value any) error {
	data, err := f.Encode(value)
	if err != nil {
		return err
	}

	tb := dyntbin.NewTBin(nil)
	decoded, err := tb.DecodeValue(data)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if !reflect.DeepEqual(decoded, value) {
		return fmt.Errorf("roundtrip mismatch: %#v != %#v", decoded, value)
	}

	if err := tb.Decode(data, dyntbin.IgnoredAny{}); err != nil {
		return fmt.Errorf("skip failed: %w", err)
	}
	return nil
}

// FuzzTruncation checks that every strict prefix of a valid document fails
// with ErrUnexpectedEnd.
func (f *Fuzzer) FuzzTruncation(data []byte) error {
	tb := dyntbin.NewTBin(nil)
	for i := 0; i < len(data); i++ {
		_, err := tb.DecodeValue(data[:i])
		if !errors.Is(err, tbinutils.ErrUnexpectedEnd) {
			return fmt.Errorf("prefix of %d/%d bytes: expected ErrUnexpectedEnd, got %v", i, len(data), err)
		}
	}
	return nil
}

// FuzzArbitrary decodes arbitrary input and checks that the dynamic decoder
// and the skipping decoder agree on validity and length.
func FuzzArbitrary(data []byte) error {
	tb := dyntbin.NewTBin(nil, dyntbin.WithMaxDepth(32))

	valueLen, valueErr := tb.DecodePrefix(data, dyntbin.SeedFunc(func(d *dyntbin.Decoder) error {
		return d.DecodeAny(&discardValue{})
	}))
	skipLen, skipErr := tb.DecodePrefix(data, dyntbin.IgnoredAny{})

	if valueErr != nil {
		var decErr *tbinutils.DecodeError
		if !errors.As(valueErr, &decErr) && !errors.Is(valueErr, tbinutils.ErrInvalidType) {
			return fmt.Errorf("unexpected error type %T: %v", valueErr, valueErr)
		}
		return nil
	}
	if skipErr != nil {
		return fmt.Errorf("skip failed on decodable input: %v", skipErr)
	}
	if valueLen != skipLen {
		return fmt.Errorf("length mismatch: value %d, skip %d", valueLen, skipLen)
	}
	return nil
}

// discardValue walks values like IgnoredAny but reads map keys as strings.
type discardValue struct {
	dyntbin.IgnoredAny
}

func (v *discardValue) VisitSome(d *dyntbin.Decoder) error {
	return d.DecodeAny(v)
}

func (v *discardValue) VisitSeq(seq dyntbin.SeqAccess) error {
	for {
		ok, err := seq.NextElement(dyntbin.SeedFunc(func(d *dyntbin.Decoder) error { return d.DecodeAny(v) }))
		if err != nil || !ok {
			return err
		}
	}
}

func (v *discardValue) VisitMap(m dyntbin.MapAccess) error {
	for {
		ok, err := m.NextKey(dyntbin.SeedFunc(func(d *dyntbin.Decoder) error { return d.DecodeString(v) }))
		if err != nil || !ok {
			return err
		}
		if err := m.NextValue(dyntbin.SeedFunc(func(d *dyntbin.Decoder) error { return d.DecodeAny(v) })); err != nil {
			return err
		}
	}
}
