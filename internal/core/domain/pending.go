// internal/core/domain/pending.go
package domain

import (
	"encoding/json"
	"time"
)

// OpKind is the kind of mutation captured by a pending operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// EntityKind is the collection a pending operation targets.
type EntityKind string

const (
	EntityItem        EntityKind = "item"
	EntityTransaction EntityKind = "transaction"
)

// PendingOperation is a durable intent to replicate a local mutation to the
// remote authority. Entries are replayed in creation order and removed only
// after the remote confirmed the operation.
type PendingOperation struct {
	ID        string          `json:"id"`
	Op        OpKind          `json:"op"`
	Entity    EntityKind      `json:"entity"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
}

// TargetID extracts the identifier of the record captured in the payload
// snapshot. Every snapshot carries its entity id, which the remote honors for
// idempotent upserts and deletes.
func (p *PendingOperation) TargetID() string {
	var snapshot struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(p.Payload, &snapshot); err != nil {
		return ""
	}
	return snapshot.ID
}
