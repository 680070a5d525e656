// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TBinMaxHint carries a length limit parsed from `tbin-max` and `dyntbin-max`
// tags. The tags take a comma separated list: the first entry limits the
// field itself, each following entry limits one level of nested elements.
//
// Fields:
//   - Size: the effective limit
//   - NoValue: set for "?" entries, meaning no limit at this level
//   - Custom: the limit was resolved from a spec value and differs from the
//     static `tbin-max` default
//   - Expr: the dyntbin-max expression the limit came from, if any
type TBinMaxHint struct {
	Size    uint64
	NoValue bool
	Custom  bool
	Expr    string
}

// getTBinNameTag returns the wire name of a struct field or enum variant.
// A `tbin:"-"` tag excludes the field.
func getTBinNameTag(field *reflect.StructField) (name string, skip bool) {
	name = field.Name
	tag, ok := field.Tag.Lookup("tbin")
	if !ok {
		return name, false
	}

	tagName, _, _ := strings.Cut(tag, ",")
	switch tagName {
	case "-":
		return "", true
	case "":
		return name, false
	default:
		return tagName, false
	}
}

func (t *TBin) getTBinMaxTag(field *reflect.StructField) ([]TBinMaxHint, error) {
	maxHints := []TBinMaxHint{}

	// parse `tbin-max` first, these are the static defaults
	if fieldMaxStr, fieldHasMax := field.Tag.Lookup("tbin-max"); fieldHasMax {
		for _, maxStr := range strings.Split(fieldMaxStr, ",") {
			maxHint := TBinMaxHint{}

			if maxStr == "?" {
				maxHint.NoValue = true
			} else {
				maxInt, err := strconv.ParseUint(maxStr, 10, 64)
				if err != nil {
					return maxHints, fmt.Errorf("error parsing tbin-max tag for '%v' field: %v", field.Name, err)
				}
				maxHint.Size = maxInt
			}

			maxHints = append(maxHints, maxHint)
		}
	}

	fieldDynMaxStr, fieldHasDynMax := field.Tag.Lookup("dyntbin-max")
	if fieldHasDynMax {
		for i, maxStr := range strings.Split(fieldDynMaxStr, ",") {
			maxHint := TBinMaxHint{}
			isExpr := false

			if maxStr == "?" {
				maxHint.NoValue = true
			} else if maxInt, err := strconv.ParseUint(maxStr, 10, 64); err == nil {
				maxHint.Size = maxInt
			} else {
				ok, specVal, err := t.ResolveSpecValue(maxStr)
				if err != nil {
					return maxHints, fmt.Errorf("error parsing dyntbin-max tag for '%v' field (%v): %v", field.Name, maxStr, err)
				}

				isExpr = true
				if ok {
					maxHint.Size = specVal
					maxHint.Custom = true
				} else {
					// unknown spec value, keep the static default
					if i < len(maxHints) {
						maxHints[i].Expr = maxStr
					} else {
						maxHints = append(maxHints, TBinMaxHint{NoValue: true, Expr: maxStr})
					}
					continue
				}
			}

			if i >= len(maxHints) {
				maxHints = append(maxHints, maxHint)
			} else if maxHints[i].Size != maxHint.Size || maxHints[i].NoValue != maxHint.NoValue {
				maxHints[i] = maxHint
			}

			if isExpr {
				maxHints[i].Expr = maxStr
			}
		}
	}

	return maxHints, nil
}
