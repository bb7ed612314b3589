package api

import (
	"encoding/json"
	"time"
)

// Document is one record of an owner-scoped resource collection. The wire
// shape is flat: server-managed fields (id, ownerId, createdAt) sit next to
// the caller-chosen resource fields.
type Document struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
	Fields    map[string]any
}

// MarshalJSON flattens Fields alongside the server-managed attributes.
func (d Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		flat[k] = v
	}
	if d.ID != "" {
		flat["id"] = d.ID
	}
	if d.OwnerID != "" {
		flat["ownerId"] = d.OwnerID
	}
	if !d.CreatedAt.IsZero() {
		flat["createdAt"] = d.CreatedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the server-managed attributes back out of the flat
// object; everything else lands in Fields.
func (d *Document) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if v, ok := flat["id"].(string); ok {
		d.ID = v
	}
	if v, ok := flat["ownerId"].(string); ok {
		d.OwnerID = v
	}
	if v, ok := flat["createdAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			d.CreatedAt = ts
		}
	}
	delete(flat, "id")
	delete(flat, "ownerId")
	delete(flat, "createdAt")
	d.Fields = flat
	return nil
}
