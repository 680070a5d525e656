// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tbin library.

package dyntbin

import (
	"fmt"
	"math"

	"github.com/casbin/govaluate"
)

type cachedSpecValue struct {
	resolved bool
	value    uint64
}

// ResolveSpecValue evaluates a dyntbin-max expression against the spec values
// of this instance. The boolean result is false when the expression references
// an unknown name or does not evaluate to a non-negative number; callers fall
// back to the static limit in that case. Fractional results are rounded up.
func (t *TBin) ResolveSpecValue(expr string) (bool, uint64, error) {
	t.specValueMutex.Lock()
	defer t.specValueMutex.Unlock()

	if cachedValue := t.specValueCache[expr]; cachedValue != nil {
		return cachedValue.resolved, cachedValue.value, nil
	}

	expression, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return false, 0, fmt.Errorf("error parsing dynamic spec expression: %v", err)
	}

	cachedValue := &cachedSpecValue{}
	result, err := expression.Evaluate(t.specValues)
	if err == nil {
		value, ok := toFloat(result)
		if ok && value >= 0 && value < math.MaxUint64 {
			cachedValue.resolved = true
			cachedValue.value = uint64(value)
			if float64(cachedValue.value) < value {
				cachedValue.value++
			}
		}
	}

	t.specValueCache[expr] = cachedValue
	return cachedValue.resolved, cachedValue.value, nil
}

// toFloat normalizes the numeric results govaluate can produce. A bare
// parameter reference evaluates to the spec value itself, so plain integer
// types show up here too.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}
