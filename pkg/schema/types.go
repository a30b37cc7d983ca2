package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type defines the contract for value validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	// ParseType(t.Name()) yields an equivalent type for all built-ins.
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Coercer is implemented by types that normalise the value they accept,
// e.g. a whole float64 decoded from JSON becoming an int.
type Coercer interface {
	Coerce(value any) (any, error)
}

// Spreader is implemented by types whose values are spread positionally into
// reactor calls.
type Spreader interface {
	Spread() bool
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

// Coerce accepts every signed integer kind unchanged and turns whole
// float64 values (from JSON unmarshaling) into int.
func (t *IntType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int(v), nil
		}
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return nil, fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

// Coerce widens every numeric kind to float64.
func (t *FloatType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// AnyType accepts every value, nil included.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(any) error { return nil }

// NilType accepts only nil. It declares attributes that take no input.
type NilType struct{}

func (t *NilType) Name() string { return "nil" }

func (t *NilType) Validate(value any) error {
	if value != nil {
		return fmt.Errorf("expected nil, got %T", value)
	}
	return nil
}

// OptionalType accepts nil or a value of its element type.
type OptionalType struct {
	elemType Type
}

func (t *OptionalType) Name() string { return t.elemType.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *OptionalType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return Check(t.elemType, value)
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

// TupleType validates fixed-length, positionally typed sequences. Accepted
// values are normalised to []any.
type TupleType struct {
	elemTypes []Type
}

func (t *TupleType) Name() string {
	names := make([]string, len(t.elemTypes))
	for i, e := range t.elemTypes {
		names[i] = e.Name()
	}
	return "(" + strings.Join(names, ",") + ")"
}

func (t *TupleType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *TupleType) Coerce(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected tuple of %d, got %T", len(t.elemTypes), value)
	}
	if rv.Len() != len(t.elemTypes) {
		return nil, fmt.Errorf("expected tuple of %d, got %d elements", len(t.elemTypes), rv.Len())
	}
	out := make([]any, rv.Len())
	for i, et := range t.elemTypes {
		v, err := Check(et, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Spread reports that tuple values are spread into reactor calls.
func (t *TupleType) Spread() bool { return true }

// Elems returns the positional element types.
func (t *TupleType) Elems() []Type { return t.elemTypes }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Any creates a validator accepting every value.
func Any() Type { return &AnyType{} }

// Nil creates a validator accepting only nil.
func Nil() Type { return &NilType{} }

// Optional creates a validator accepting nil or a value of elemType.
func Optional(elemType Type) Type { return &OptionalType{elemType: elemType} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Tuple creates a positional tuple validator.
func Tuple(elemTypes ...Type) Type {
	return &TupleType{elemTypes: elemTypes}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// IsSpread reports whether values of t are spread into reactor calls.
func IsSpread(t Type) bool {
	s, ok := t.(Spreader)
	return ok && s.Spread()
}
