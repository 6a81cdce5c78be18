package models

import "time"

// SupplyCategory enumerates supply kinds.
type SupplyCategory string

const (
	SupplyVaccine  SupplyCategory = "vaccine"
	SupplyMedicine SupplyCategory = "medicine"
	SupplyFeed     SupplyCategory = "feed"
)

// Supply is a purchasable input: feed, vaccine or medicine.
type Supply struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	AccountID    string         `gorm:"size:36;index;not null" json:"-"`
	Name         string         `gorm:"size:120;not null" json:"name"`
	Category     SupplyCategory `gorm:"size:20;index;not null" json:"category"`
	Unit         string         `gorm:"size:20" json:"unit"`
	UnitCost     float64        `json:"unit_cost"`
	Stock        float64        `json:"stock"`
	MinimumStock *float64       `json:"minimum_stock"`
	Supplier     string         `gorm:"size:120" json:"supplier"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (s Supply) OwnerID() string { return s.AccountID }

// LowStock reports whether the stock is at or below the configured minimum.
func (s Supply) LowStock() bool {
	return s.MinimumStock != nil && s.Stock <= *s.MinimumStock
}

// FeedCompound is a ration mixed from feed supplies.
type FeedCompound struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string               `gorm:"size:36;index;not null" json:"-"`
	Name        string               `gorm:"size:120;not null" json:"name"`
	TotalCost   float64              `json:"total_cost"`
	CostPerKg   float64              `json:"cost_per_kg"`
	Ingredients []CompoundIngredient `gorm:"foreignKey:CompoundID" json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func (c FeedCompound) OwnerID() string { return c.AccountID }

// CompoundIngredient is one ordered line of a compound.
type CompoundIngredient struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	CompoundID string  `gorm:"size:36;index;not null" json:"-"`
	Position   int     `gorm:"not null" json:"-"`
	SupplyID   string  `gorm:"size:36;index;not null" json:"supply_id"`
	Quantity   float64 `json:"quantity"`
}
