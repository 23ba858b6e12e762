// internal/core/domain/transaction.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction indicates whether a transaction increases or decreases stock.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Reason represents transaction reason codes
type Reason string

// Reason constants
const (
	ReasonDonation     Reason = "donation"
	ReasonPurchase     Reason = "purchase"
	ReasonReturn       Reason = "return"
	ReasonDistribution Reason = "distribution"
	ReasonExpired      Reason = "expired"
	ReasonDamaged      Reason = "damaged"
	ReasonTransfer     Reason = "transfer"
	ReasonCorrection   Reason = "correction"
	ReasonOther        Reason = "other"
)

// Transaction is an immutable record of inventory movement. Once created it
// is never updated, only deleted together with its item.
type Transaction struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"item_id"`
	Direction   Direction  `json:"direction"`
	Quantity    int        `json:"quantity"`
	Reason      Reason     `json:"reason"`
	Recipient   string     `json:"recipient,omitempty"`
	PerformedBy string     `json:"performed_by,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Notes       string     `json:"notes,omitempty"`
	OrgID       OrgID      `json:"org_id,omitempty"`
	SyncStatus  SyncStatus `json:"sync_status"`
}

// Validate performs domain validation on the transaction
func (t *Transaction) Validate() error {
	if t.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}
	if t.Direction != DirectionIn && t.Direction != DirectionOut {
		return fmt.Errorf("direction must be %q or %q", DirectionIn, DirectionOut)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if !t.OrgID.Valid() {
		return fmt.Errorf("invalid org_id %q", t.OrgID)
	}
	if t.Reason == "" {
		t.Reason = ReasonOther
	}
	return nil
}

// PrepareForStorage assigns an identifier and timestamps before the
// transaction is first persisted.
func (t *Transaction) PrepareForStorage() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = time.Now().UTC()
	}
	t.OrgID = t.OrgID.Normalize()
}

// Apply adjusts the item's quantity for a newly created transaction. Outbound
// movements are clamped at zero after each step; stock never goes negative.
// The remote authority applies the same rule on insert, so both sides must
// stay in agreement.
func (i *Item) Apply(t *Transaction) {
	switch t.Direction {
	case DirectionIn:
		i.Quantity += t.Quantity
	case DirectionOut:
		i.Quantity -= t.Quantity
		if i.Quantity < 0 {
			i.Quantity = 0
		}
	}
}
