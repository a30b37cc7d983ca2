package dna

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/cells/pkg/schema"
)

// Kind classifies an attribute.
type Kind string

const (
	KindConfig Kind = "config"
	KindState  Kind = "state"
	KindEvent  Kind = "event"
	KindListen Kind = "listen"
	KindQuery  Kind = "query"
)

// Kinds lists every attribute kind.
var Kinds = []Kind{KindConfig, KindState, KindEvent, KindListen, KindQuery}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindConfig, KindState, KindEvent, KindListen, KindQuery:
		return true
	}
	return false
}

// Stored reports whether the Cistern holds values of this kind.
func (k Kind) Stored() bool { return k == KindConfig || k == KindState }

// Observable reports whether probes and inhibitors may attach to this kind.
func (k Kind) Observable() bool {
	return k == KindState || k == KindEvent || k == KindQuery
}

// Transportable reports whether the kind gets a transport binding.
func (k Kind) Transportable() bool { return k.Valid() && k != KindListen }

// Amino is a single classified attribute.
type Amino struct {
	Kind Kind
	// Req validates the attribute input (or value for config/state).
	Req schema.Type
	// Res describes the query result. Only set for queries.
	Res schema.Type
	// Default is the initial state value. Only meaningful for state.
	Default any
}

// Config declares an immutable configuration attribute.
func Config(req schema.Type) Amino { return Amino{Kind: KindConfig, Req: req} }

// State declares a mutable attribute starting at def when no input is given.
func State(req schema.Type, def any) Amino {
	return Amino{Kind: KindState, Req: req, Default: def}
}

// Event declares a write-only trigger.
func Event(req schema.Type) Amino { return Amino{Kind: KindEvent, Req: req} }

// Listen declares a receiver for the host's same-named event.
func Listen(req schema.Type) Amino { return Amino{Kind: KindListen, Req: req} }

// Query declares an asynchronous request/response attribute.
func Query(req, res schema.Type) Amino { return Amino{Kind: KindQuery, Req: req, Res: res} }

// Spread reports whether inputs of a are passed positionally to reactors.
func (a Amino) Spread() bool { return schema.IsSpread(a.Req) }

// Check validates a raw input for a.
func (a Amino) Check(raw any) (any, error) { return schema.Check(a.Req, raw) }

func (a Amino) String() string {
	switch a.Kind {
	case KindQuery:
		return fmt.Sprintf("%s(%s) -> %s", a.Kind, typeName(a.Req), typeName(a.Res))
	case KindState:
		return fmt.Sprintf("%s(%s = %v)", a.Kind, typeName(a.Req), a.Default)
	default:
		return fmt.Sprintf("%s(%s)", a.Kind, typeName(a.Req))
	}
}

type aminoJSON struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Req     string `json:"req" yaml:"req"`
	Res     string `json:"res,omitempty" yaml:"res,omitempty"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// MarshalJSON serializes the amino with its types as type strings.
func (a Amino) MarshalJSON() ([]byte, error) {
	out := aminoJSON{Kind: a.Kind, Req: typeName(a.Req)}
	if a.Kind == KindQuery {
		out.Res = typeName(a.Res)
	}
	if a.Kind == KindState {
		out.Default = a.Default
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses an amino written by MarshalJSON.
func (a *Amino) UnmarshalJSON(data []byte) error {
	var raw aminoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Kind.Valid() {
		return fmt.Errorf("unknown attribute kind %q", raw.Kind)
	}
	req, err := schema.ParseType(raw.Req)
	if err != nil {
		return fmt.Errorf("req: %w", err)
	}
	*a = Amino{Kind: raw.Kind, Req: req}
	switch raw.Kind {
	case KindQuery:
		res, err := schema.ParseType(raw.Res)
		if err != nil {
			return fmt.Errorf("res: %w", err)
		}
		a.Res = res
	case KindState:
		a.Default = raw.Default
	}
	return nil
}

func typeName(t schema.Type) string {
	if t == nil {
		return "any"
	}
	return t.Name()
}
