package data

import (
	"encoding/json"
)

// Record represents a single stored record.
// Key = column name, Value = typed cell value. Absent columns are simply
// missing from the map and are not indexed.
type Record map[string]Value

// Copy returns an independent record so callers cannot mutate store data.
func (r Record) Copy() Record {
	copy := make(Record, len(r))
	for k, v := range r {
		copy[k] = v
	}
	return copy
}

// Plain unwraps the record into native Go values, e.g. for display or JSON.
func (r Record) Plain() map[string]any {
	m := make(map[string]any, len(r))
	for k, v := range r {
		if v.IsZero() {
			continue
		}
		m[k] = v.Interface()
	}
	return m
}

// MarshalJSON writes the record as a flat JSON object of native scalars.
// Decoding needs the schema to recover types and lives in the storage layer.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Plain())
}
