package types

import "encoding/json"

// Record is one row of a resource, keyed by header name.
// RowIndex is the 1-based position among data rows (header excluded).
// Row indices shift when earlier rows are inserted or deleted, so a
// record additionally carries a UUID in its ID column (when the sheet
// has one) as its durable identity.
type Record struct {
	RowIndex int
	Fields   map[string]string
}

// Get returns the value for a header name, or "" when absent.
func (r Record) Get(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// MarshalJSON flattens the field map and adds the positional index,
// matching the shape clients page through ({"Plate Number": ..., "rowIndex": 3}).
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["rowIndex"] = r.RowIndex
	return json.Marshal(out)
}
