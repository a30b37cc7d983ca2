// Package schema provides the value validators consumed by the cells runtime.
//
// A Type both checks and normalises a raw value. The runtime only ever talks
// to a Type through Check, which returns the validated value or an error:
//
//	v, err := schema.Check(schema.Int(), 42.0) // v == 42 (int)
//	_, err = schema.Check(schema.String(), 7)  // err != nil
//
// Types can be built programmatically or parsed from type strings:
//
//	schema.ParseType("string")      // String()
//	schema.ParseType("[int]")       // Slice(Int())
//	schema.ParseType("(int,float)") // Tuple(Int(), Float())
//	schema.ParseType("string?")     // Optional(String())
//	schema.ParseType("any")         // Any()
//
// Tuple types mark multi-argument attributes: the runtime spreads their
// elements positionally into reactor calls.
//
// Custom validators can be registered for domain-specific rules:
//
//	positive := schema.Custom("positive", func(v any) error {
//	    i, ok := v.(int)
//	    if !ok || i <= 0 {
//	        return fmt.Errorf("must be a positive int")
//	    }
//	    return nil
//	})
package schema
