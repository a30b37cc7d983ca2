package domain

// Signal is handed to probes and inhibitors. Which fields are populated
// depends on the attribute kind:
//
//   - state:  Prev, Next
//   - event:  Value (the raw input; a []any for multi-argument events)
//   - query:  Req before the call, Req and Res after it
type Signal struct {
	Value any
	Prev  any
	Next  any
	Req   any
	Res   any
}

// Probe observes an attribute after its effect has committed.
// A returned error is fatal for the call that triggered the probe.
type Probe func(Signal) error

// Inhibitor vetoes an effect before it commits by returning true.
// A returned error is fatal for the call being inspected.
type Inhibitor func(Signal) (bool, error)
