// Package documents stores the owner-scoped resource collections (todos,
// plans) as schemaless records: the server manages identity, ownership and
// ordering, clients own the payload shape.
package documents

import (
	"encoding/json"
	"time"
)

type Document struct {
	ID         string
	OwnerID    string
	Collection string
	Payload    json.RawMessage
	CreatedAt  time.Time
}
