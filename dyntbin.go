// Package dyntbin implements the TBin self-describing binary format: a compact,
// tag-prefixed encoding of booleans, fixed-width numbers, strings, sequences,
// maps, optional values and externally tagged enums. Decoding is driven by a
// visitor protocol, so values are materialised directly into their target
// without an intermediate tree. A reflection layer on top maps Go types onto
// that protocol.
//
// Copyright (c) 2025 pk910. See LICENSE file for details.
package dyntbin

import (
	"fmt"
	"reflect"
	"sync"
)

// TBin is a TBin decoder factory holding configuration, the type descriptor
// cache and the named spec values referenced by dyntbin-max tags.
//
// The instance is safe for concurrent use. Every decode call gets its own
// Decoder, so decodes over independent buffers run in parallel without
// coordination. Reuse one instance to benefit from the type cache.
//
// Example usage:
//
//	specs := map[string]any{
//	    "MAX_PEERS": uint64(64),
//	}
//	tb := dyntbin.NewTBin(specs)
//
//	var msg PeerList
//	err := tb.Unmarshal(&msg, data)
type TBin struct {
	typeCache      *TypeCache
	specValues     map[string]any
	specValueCache map[string]*cachedSpecValue
	specValueMutex sync.Mutex

	// MaxDepth bounds container nesting, see WithMaxDepth.
	MaxDepth int

	// ZeroCopyStrings makes decoded strings alias the input buffer.
	ZeroCopyStrings bool

	// Verbose enables logging of every visited type during reflection decoding.
	// Useful for debugging but impacts performance.
	Verbose bool

	// LogCb receives verbose log lines. Defaults to stdout.
	LogCb func(format string, args ...any)
}

// NewTBin creates a new TBin instance.
//
// The specs map provides named values for the expressions in dyntbin-max
// tags, allowing length limits to follow runtime configuration. It can be nil.
func NewTBin(specs map[string]any, options ...TBinOption) *TBin {
	if specs == nil {
		specs = map[string]any{}
	}

	opts := TBinOptions{}
	for _, option := range options {
		option(&opts)
	}

	tbin := &TBin{
		specValues:      specs,
		specValueCache:  map[string]*cachedSpecValue{},
		MaxDepth:        opts.MaxDepth,
		ZeroCopyStrings: opts.ZeroCopyStrings,
		Verbose:         opts.Verbose,
		LogCb:           opts.LogCb,
	}
	if tbin.MaxDepth <= 0 {
		tbin.MaxDepth = DefaultMaxDepth
	}
	tbin.typeCache = NewTypeCache(tbin)

	return tbin
}

// GetTypeCache returns the type descriptor cache of this instance.
func (t *TBin) GetTypeCache() *TypeCache {
	return t.typeCache
}

func (t *TBin) logf(format string, args ...any) {
	if t.LogCb != nil {
		t.LogCb(format, args...)
	} else {
		fmt.Printf(format, args...)
	}
}

// NewDecoder returns a Decoder positioned at the start of data, configured
// with this instance's depth limit and string mode.
func (t *TBin) NewDecoder(data []byte) *Decoder {
	return newDecoder(t, data)
}

// DecodePrefix decodes one value from the start of data with seed and returns
// the number of bytes it occupied. Bytes after the value are left untouched.
func (t *TBin) DecodePrefix(data []byte, seed Seed) (int, error) {
	dec := t.NewDecoder(data)
	if err := seed.DecodeTBin(dec); err != nil {
		return 0, err
	}
	return dec.Offset(), nil
}

// Decode decodes data with seed and requires the value to span the whole
// buffer. Leftover bytes fail with ErrTrailingCharacters.
func (t *TBin) Decode(data []byte, seed Seed) error {
	dec := t.NewDecoder(data)
	if err := seed.DecodeTBin(dec); err != nil {
		return err
	}
	return dec.End()
}

// DecodeValue decodes the self-describing value in data into plain Go values
// (nil, bool, sized numbers, string, []any, map[string]any). A map with a
// non-string key decodes to map[any]any.
func (t *TBin) DecodeValue(data []byte) (any, error) {
	value := &anyVisitor{}
	if err := t.Decode(data, value); err != nil {
		return nil, err
	}
	return value.result, nil
}

// UnmarshalPrefix decodes one value from the start of data into target, which
// must be a non-nil pointer, and returns the number of bytes consumed.
func (t *TBin) UnmarshalPrefix(target any, data []byte) (int, error) {
	dec := t.NewDecoder(data)
	if err := t.unmarshalTarget(dec, target); err != nil {
		return 0, err
	}
	return dec.Offset(), nil
}

// Unmarshal decodes data into target, which must be a non-nil pointer.
//
// The whole buffer must be consumed by the value. The value is decoded into a
// fresh instance and stored in target only on success, so target is left
// untouched on error. Struct fields missing from the input are zero.
//
// Example:
//
//	var header BlockHeader
//	if err := tb.Unmarshal(&header, data); err != nil {
//	    log.Fatal("Failed to unmarshal:", err)
//	}
func (t *TBin) Unmarshal(target any, data []byte) error {
	dec := t.NewDecoder(data)
	value, err := t.decodeTarget(dec, target)
	if err != nil {
		return err
	}
	if err := dec.End(); err != nil {
		return err
	}

	reflect.ValueOf(target).Elem().Set(value)
	return nil
}

func (t *TBin) unmarshalTarget(dec *Decoder, target any) error {
	value, err := t.decodeTarget(dec, target)
	if err != nil {
		return err
	}

	reflect.ValueOf(target).Elem().Set(value)
	return nil
}

// decodeTarget decodes the next value into a new instance of the type target
// points to.
func (t *TBin) decodeTarget(dec *Decoder, target any) (reflect.Value, error) {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Pointer || targetValue.IsNil() {
		return reflect.Value{}, fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}

	targetDesc, err := t.typeCache.GetTypeDescriptor(targetValue.Type().Elem(), nil)
	if err != nil {
		return reflect.Value{}, err
	}

	value := reflect.New(targetDesc.Type).Elem()
	if err := t.unmarshalType(dec, targetDesc, value, 0); err != nil {
		return reflect.Value{}, err
	}
	return value, nil
}

// ValidateType checks whether values of type t can be decoded by the
// reflection layer, without decoding anything.
//
// Example:
//
//	err := tb.ValidateType(reflect.TypeOf(MyStruct{}))
//	if err != nil {
//	    log.Fatal("Type validation failed:", err)
//	}
func (t *TBin) ValidateType(typ reflect.Type) error {
	_, err := t.typeCache.GetTypeDescriptor(typ, nil)
	if err != nil {
		return fmt.Errorf("type validation failed: %w", err)
	}

	return nil
}
