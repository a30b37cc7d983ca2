// Package sequence normalises attribute declarations into a canonical dna.Dna.
//
// Two inputs are recognised. An already classified map (every value is a
// dna.Amino carrying a validator) is returned as is. Anything else is treated
// as a raw declaration bundle: one entry per attribute, each exposing a kind
// discriminator, a request type, a response type for queries and an optional
// default for state.
//
//	d, err := sequence.Sequence(map[string]any{
//	    "version": map[string]any{"kind": "config", "req": "string"},
//	    "count":   map[string]any{"kind": "state", "req": "int = 7"},
//	    "calc":    map[string]any{"kind": "query", "req": "(int,int)", "res": "int"},
//	})
package sequence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/schema"
)

// Declaration is the raw shape of a single bundle entry.
type Declaration struct {
	Kind    string `mapstructure:"kind" yaml:"kind"`
	Type    string `mapstructure:"type" yaml:"type"` // alias of Kind
	Req     any    `mapstructure:"req" yaml:"req"`
	Res     any    `mapstructure:"res" yaml:"res"`
	Default any    `mapstructure:"default" yaml:"default"`
}

// Sequence converts src into a canonical Dna. Accepted sources are dna.Dna,
// map[string]dna.Amino, map[string]Declaration, map[string]any (classified or
// raw) and YAML documents as []byte or string.
func Sequence(src any) (dna.Dna, error) {
	switch v := src.(type) {
	case nil:
		return dna.Dna{}, nil
	case dna.Dna:
		return v.Clone(), nil
	case map[string]dna.Amino:
		return dna.Dna(v).Clone(), nil
	case map[string]Declaration:
		return fromDeclarations(v)
	case map[string]any:
		if d, ok := classified(v); ok {
			return d, nil
		}
		return fromBundle(v)
	case []byte:
		return FromYAML(v)
	case string:
		return FromYAML([]byte(v))
	default:
		return nil, fmt.Errorf("sequence: unsupported source %T", src)
	}
}

// Must is Sequence for static declarations; it panics on error.
func Must(src any) dna.Dna {
	d, err := Sequence(src)
	if err != nil {
		panic(err)
	}
	return d
}

// FromYAML sequences a YAML mapping of attribute name to declaration.
func FromYAML(data []byte) (dna.Dna, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sequence: invalid yaml: %w", err)
	}
	return fromBundle(raw)
}

// classified reports whether every value is already an amino with a validator.
func classified(m map[string]any) (dna.Dna, bool) {
	if len(m) == 0 {
		return nil, false
	}
	out := make(dna.Dna, len(m))
	for k, v := range m {
		var a dna.Amino
		switch av := v.(type) {
		case dna.Amino:
			a = av
		case *dna.Amino:
			if av == nil {
				return nil, false
			}
			a = *av
		default:
			return nil, false
		}
		if a.Req == nil {
			return nil, false
		}
		out[k] = a
	}
	return out, true
}

func fromBundle(raw map[string]any) (dna.Dna, error) {
	decls := make(map[string]Declaration, len(raw))
	var errs []error
	for _, name := range sortedKeys(raw) {
		decl, err := decode(raw[name])
		if err != nil {
			errs = append(errs, &schema.ValidationError{Key: name, Reason: err.Error(), Value: raw[name]})
			continue
		}
		decls[name] = decl
	}
	d, err := fromDeclarations(decls)
	if err != nil {
		errs = append(errs, schema.ValidationErrors(err)...)
	}
	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return d, nil
}

func decode(entry any) (Declaration, error) {
	var decl Declaration
	if a, ok := entry.(dna.Amino); ok {
		return Declaration{Kind: string(a.Kind), Req: a.Req, Res: a.Res, Default: a.Default}, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decl,
		ErrorUnused: true,
	})
	if err != nil {
		return decl, err
	}
	if err := dec.Decode(entry); err != nil {
		return decl, err
	}
	return decl, nil
}

func fromDeclarations(decls map[string]Declaration) (dna.Dna, error) {
	out := make(dna.Dna, len(decls))
	var errs []error
	names := make([]string, 0, len(decls))
	for k := range decls {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		a, err := toAmino(decls[name])
		if err != nil {
			errs = append(errs, &schema.ValidationError{Key: name, Reason: err.Error()})
			continue
		}
		out[name] = a
	}
	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return out, nil
}

func toAmino(decl Declaration) (dna.Amino, error) {
	kind := dna.Kind(strings.ToLower(strings.TrimSpace(decl.Kind)))
	if kind == "" {
		kind = dna.Kind(strings.ToLower(strings.TrimSpace(decl.Type)))
	}
	if !kind.Valid() {
		return dna.Amino{}, fmt.Errorf("unknown kind %q", kind)
	}

	req, def, hasDef, err := resolveReq(decl.Req)
	if err != nil {
		return dna.Amino{}, fmt.Errorf("req: %w", err)
	}
	a := dna.Amino{Kind: kind, Req: req}

	switch kind {
	case dna.KindQuery:
		res, _, _, err := resolveReq(decl.Res)
		if err != nil {
			return dna.Amino{}, fmt.Errorf("res: %w", err)
		}
		a.Res = res
	case dna.KindState:
		switch {
		case decl.Default != nil:
			a.Default = decl.Default
		case hasDef:
			a.Default = def
		}
	}
	return a, nil
}

// resolveReq turns a type descriptor into a schema.Type. String descriptors
// may embed a default value: "int = 7", "string = 'idle'".
func resolveReq(desc any) (schema.Type, any, bool, error) {
	switch v := desc.(type) {
	case nil:
		return schema.Any(), nil, false, nil
	case schema.Type:
		return v, nil, false, nil
	case string:
		typeStr, literal, found := strings.Cut(v, "=")
		t, err := schema.ParseType(typeStr)
		if err != nil {
			return nil, nil, false, err
		}
		if !found {
			return t, nil, false, nil
		}
		var def any
		if err := yaml.Unmarshal([]byte(strings.TrimSpace(literal)), &def); err != nil {
			return nil, nil, false, fmt.Errorf("default %q: %w", literal, err)
		}
		return t, def, true, nil
	default:
		return nil, nil, false, fmt.Errorf("unsupported type descriptor %T", desc)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
