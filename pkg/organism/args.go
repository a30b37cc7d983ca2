package organism

import (
	"math"
	"reflect"

	"github.com/aretw0/cells/pkg/dna"
)

// pack rebuilds the single input of an attribute from call arguments.
// Several arguments become a []any.
func pack(args []any) any {
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	default:
		out := make([]any, len(args))
		copy(out, args)
		return out
	}
}

// unpack returns the positional reactor arguments for input. Tuple
// attributes, and calls made with several arguments, are spread.
func unpack(a dna.Amino, input any, argc int) []any {
	if a.Spread() || argc > 1 {
		if elems, ok := toSlice(input); ok {
			return elems
		}
	}
	return []any{input}
}

func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// same reports whether a state write would leave the value unchanged.
// Values of non-comparable types always count as changed. NaN is the same
// as NaN.
func same(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	if k := ta.Kind(); k == reflect.Float32 || k == reflect.Float64 {
		x, y := reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
