// Package models defines client-side data models used by the QuickFlip CLI.
package models

import (
	"fmt"
	"time"
)

// Item is a tracked physical good. Price fields are nil when absent; a
// present price is always a finite number.
type Item struct {
	ID       ItemID
	OwnerID  string
	ImageRef string

	Title       string
	Description string
	Condition   string
	Category    string

	EstimatedPrice      *float64
	PriceSampleCount    int
	TotalAvailableCount *int

	Status    Status
	PricePaid *float64
	PriceSold *float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PurchasedAt *time.Time
	SoldAt      *time.Time
}

// IsPlaceholder reports whether the item still awaits enrichment.
func (i Item) IsPlaceholder() bool {
	return i.ID.IsPending()
}

// ComparableLabel renders the number of comparable sales. When the backend
// found more listings than it sampled, the label is "<n>+".
func (i Item) ComparableLabel() string {
	if i.TotalAvailableCount != nil && *i.TotalAvailableCount > i.PriceSampleCount {
		return fmt.Sprintf("%d+", i.PriceSampleCount)
	}
	return fmt.Sprintf("%d", i.PriceSampleCount)
}

// Enrichment is the backend's answer for a submitted photo.
type Enrichment struct {
	ID                  string
	Title               string
	Description         string
	Condition           string
	Category            string
	EstimatedPrice      *float64
	PriceSampleCount    int
	TotalAvailableCount *int
	ImageURL            string
}

// Patch is a partial update of an item. Nil fields are left untouched.
type Patch struct {
	Title          *string
	Description    *string
	Condition      *string
	EstimatedPrice *float64
	PricePaid      *float64
	PriceSold      *float64
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Condition == nil &&
		p.EstimatedPrice == nil && p.PricePaid == nil && p.PriceSold == nil
}

// Apply copies the non-nil fields of p onto item.
func (p Patch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Condition != nil {
		item.Condition = *p.Condition
	}
	if p.EstimatedPrice != nil {
		item.EstimatedPrice = cloneFloat(p.EstimatedPrice)
	}
	if p.PricePaid != nil {
		item.PricePaid = cloneFloat(p.PricePaid)
	}
	if p.PriceSold != nil {
		item.PriceSold = cloneFloat(p.PriceSold)
	}
}

// Clone returns a deep copy so callers can never alias store-owned pointers.
func (i Item) Clone() Item {
	c := i
	c.EstimatedPrice = cloneFloat(i.EstimatedPrice)
	c.PricePaid = cloneFloat(i.PricePaid)
	c.PriceSold = cloneFloat(i.PriceSold)
	if i.TotalAvailableCount != nil {
		v := *i.TotalAvailableCount
		c.TotalAvailableCount = &v
	}
	if i.PurchasedAt != nil {
		v := *i.PurchasedAt
		c.PurchasedAt = &v
	}
	if i.SoldAt != nil {
		v := *i.SoldAt
		c.SoldAt = &v
	}
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to v. Handy for building patches and fixtures.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
