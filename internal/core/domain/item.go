// internal/core/domain/item.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks whether a local record has been replicated to the
// remote authority.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// ItemCategory represents item categories
type ItemCategory string

// Category constants
const (
	CategoryFood        ItemCategory = "food"
	CategoryClothing    ItemCategory = "clothing"
	CategoryHygiene     ItemCategory = "hygiene"
	CategoryHousehold   ItemCategory = "household"
	CategoryBedding     ItemCategory = "bedding"
	CategorySchool      ItemCategory = "school"
	CategoryToys        ItemCategory = "toys"
	CategoryBooks       ItemCategory = "books"
	CategoryMedical     ItemCategory = "medical"
	CategoryElectronics ItemCategory = "electronics"
	CategoryFurniture   ItemCategory = "furniture"
	CategoryOther       ItemCategory = "other"
)

// ItemCondition represents item conditions
type ItemCondition string

// Condition constants
const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
	ConditionUnknown ItemCondition = "unknown"
)

// Item represents a single trackable unit of donated goods held in the
// local replica.
type Item struct {
	ID         string        `json:"id"`
	Barcode    string        `json:"barcode,omitempty"`
	Name       string        `json:"name"`
	Category   ItemCategory  `json:"category"`
	Quantity   int           `json:"quantity"`
	Unit       string        `json:"unit"`
	Condition  ItemCondition `json:"condition"`
	MinStock   int           `json:"min_stock"`
	Location   string        `json:"location,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	ImageRef   string        `json:"image_ref,omitempty"`
	OrgID      OrgID         `json:"org_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	SyncStatus SyncStatus    `json:"sync_status"`
}

// Validate performs domain validation on the item
func (i *Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if i.MinStock < 0 {
		return fmt.Errorf("min_stock cannot be negative")
	}
	if !i.OrgID.Valid() {
		return fmt.Errorf("invalid org_id %q", i.OrgID)
	}
	if i.Category == "" {
		i.Category = CategoryOther
	}
	if i.Condition == "" {
		i.Condition = ConditionUnknown
	}
	if i.Unit == "" {
		i.Unit = "pcs"
	}
	return nil
}

// PrepareForStorage assigns an identifier and timestamps before the item is
// first persisted.
func (i *Item) PrepareForStorage() {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
	i.OrgID = i.OrgID.Normalize()
}

// LowStock reports whether the item's quantity is at or below its
// minimum-stock threshold.
func (i *Item) LowStock() bool {
	return i.MinStock > 0 && i.Quantity <= i.MinStock
}
