// internal/core/domain/organization.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrgID identifies the organization partition an item or transaction belongs
// to. The empty value is the designated sentinel for the default/global
// partition; it is normalized at the boundary instead of being defaulted ad
// hoc at call sites.
type OrgID string

// OrgAll is the sentinel for the default/global partition.
const OrgAll OrgID = ""

// Normalize trims whitespace and collapses sentinel spellings to OrgAll.
func (o OrgID) Normalize() OrgID {
	trimmed := strings.TrimSpace(string(o))
	if trimmed == "" || strings.EqualFold(trimmed, "default") {
		return OrgAll
	}
	return OrgID(trimmed)
}

// Valid reports whether the value is the sentinel or a well-formed id.
func (o OrgID) Valid() bool {
	n := o.Normalize()
	if n == OrgAll {
		return true
	}
	return !strings.ContainsAny(string(n), " \t\n")
}

// Scoped reports whether the id names a concrete organization.
func (o OrgID) Scoped() bool {
	return o.Normalize() != OrgAll
}

// OrgType represents organization types
type OrgType string

const (
	OrgTypeShelter      OrgType = "shelter"
	OrgTypeFoodBank     OrgType = "food_bank"
	OrgTypeCommunity    OrgType = "community"
	OrgTypeReligious    OrgType = "religious"
	OrgTypeSchool       OrgType = "school"
	OrgTypeOtherNonprof OrgType = "other"
)

// Organization is a named partition of items and transactions. Organization
// CRUD is synchronous and online-only; organizations never enter the pending
// queue.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         OrgType   `json:"type"`
	Icon         string    `json:"icon,omitempty"`
	Color        string    `json:"color,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate performs domain validation on the organization
func (o *Organization) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	if o.Type == "" {
		o.Type = OrgTypeOtherNonprof
	}
	return nil
}

// PrepareForStorage assigns an identifier and timestamps before the
// organization is first persisted.
func (o *Organization) PrepareForStorage() {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}
