package domain

import (
	"encoding/json"
	"time"
)

// RecordType defines the category of a record.
type RecordType string

const (
	// RecordSet is part of the wire vocabulary for direct writes; the runtime
	// itself only writes through the update path.
	RecordSet          RecordType = "set"
	RecordUpdate       RecordType = "update"
	RecordComputeStart RecordType = "compute:start"
	RecordComputeEnd   RecordType = "compute:end"
	RecordEvent        RecordType = "event"
	RecordListen       RecordType = "listen"
)

// SystemAction is the action id of records emitted outside any trace.
const SystemAction = "system"

// Record is the structured event delivered to observers.
type Record struct {
	Type      RecordType `json:"type"`
	NodeID    string     `json:"nodeId"`
	ActionID  string     `json:"actionId"`
	Attribute string     `json:"attribute"`
	Timestamp time.Time  `json:"-"`

	Value any `json:"value,omitempty"`
	Prev  any `json:"prev,omitempty"`
	Next  any `json:"next,omitempty"`
	Req   any `json:"req,omitempty"`
	Res   any `json:"res,omitempty"`
}

type recordJSON struct {
	Type      RecordType `json:"type"`
	NodeID    string     `json:"nodeId"`
	ActionID  string     `json:"actionId"`
	Attribute string     `json:"attribute"`
	Timestamp int64      `json:"timestamp"`
	Value     any        `json:"value,omitempty"`
	Prev      any        `json:"prev,omitempty"`
	Next      any        `json:"next,omitempty"`
	Req       any        `json:"req,omitempty"`
	Res       any        `json:"res,omitempty"`
}

// MarshalJSON writes the record with its timestamp in unix milliseconds.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Type:      r.Type,
		NodeID:    r.NodeID,
		ActionID:  r.ActionID,
		Attribute: r.Attribute,
		Timestamp: r.Timestamp.UnixMilli(),
		Value:     r.Value,
		Prev:      r.Prev,
		Next:      r.Next,
		Req:       r.Req,
		Res:       r.Res,
	})
}

// UnmarshalJSON reads a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Type:      raw.Type,
		NodeID:    raw.NodeID,
		ActionID:  raw.ActionID,
		Attribute: raw.Attribute,
		Timestamp: time.UnixMilli(raw.Timestamp),
		Value:     raw.Value,
		Prev:      raw.Prev,
		Next:      raw.Next,
		Req:       raw.Req,
		Res:       raw.Res,
	}
	return nil
}

// Observer receives every record emitted by a node and its descendants.
type Observer func(Record)
