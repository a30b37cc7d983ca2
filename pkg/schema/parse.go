package schema

import (
	"fmt"
	"strings"
)

// ParseType converts a type string to a Type.
// Supports "string", "int", "float", "bool", "any", "nil", slices "[T]",
// tuples "(T,U,...)" and optionals "T?". Whitespace is ignored.
func ParseType(typeStr string) (Type, error) {
	s := strings.TrimSpace(typeStr)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}

	if strings.HasSuffix(s, "?") {
		elem, err := ParseType(s[:len(s)-1])
		if err != nil {
			return nil, err
		}
		return Optional(elem), nil
	}

	// Handle slice types: [string], [int], etc.
	if len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']' {
		elemType, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		parts, err := splitTopLevel(s[1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("tuple %s: %w", s, err)
		}
		elems := make([]Type, 0, len(parts))
		for i, p := range parts {
			et, err := ParseType(p)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			elems = append(elems, et)
		}
		return Tuple(elems...), nil
	}

	// Handle built-in types
	switch s {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any":
		return Any(), nil
	case "nil":
		return Nil(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", s)
	}
}

// MustParse is ParseType for static declarations; it panics on error.
func MustParse(typeStr string) Type {
	t, err := ParseType(typeStr)
	if err != nil {
		panic(err)
	}
	return t
}

// splitTopLevel splits a comma separated list, ignoring commas nested in
// brackets or parentheses.
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	return append(parts, s[start:]), nil
}
