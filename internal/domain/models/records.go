package models

import "time"

// FeedingRecord logs feed given to an enclosure, a single animal, or both.
type FeedingRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string    `gorm:"size:36;index;not null" json:"-"`
	Date        time.Time `gorm:"index" json:"date"`
	EnclosureID *string   `gorm:"size:36;index" json:"enclosure_id"`
	AnimalID    *string   `gorm:"size:36;index" json:"animal_id"`
	SupplyID    *string   `gorm:"size:36;index" json:"supply_id"`
	CompoundID  *string   `gorm:"size:36;index" json:"compound_id"`
	Quantity    float64   `json:"quantity"`
	TotalCost   float64   `json:"total_cost"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f FeedingRecord) OwnerID() string { return f.AccountID }

// HealthRecord logs a vaccine or medicine application to a set of animals.
type HealthRecord struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	AccountID           string     `gorm:"size:36;index;not null" json:"-"`
	Date                time.Time  `gorm:"index" json:"date"`
	SupplyID            string     `gorm:"size:36;index;not null" json:"supply_id"`
	Quantity            float64    `json:"quantity"`
	Responsible         string     `gorm:"size:120" json:"responsible"`
	Notes               string     `gorm:"type:text" json:"notes"`
	NextApplicationDate *time.Time `json:"next_application_date"`
	AnimalIDs           []string   `gorm:"-" json:"animal_ids"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (h HealthRecord) OwnerID() string { return h.AccountID }

// HealthRecordAnimal is the join row between a health record and an animal.
type HealthRecordAnimal struct {
	HealthRecordID string `gorm:"primaryKey;size:36"`
	AnimalID       string `gorm:"primaryKey;size:36;index"`
}

// WeighingRecord logs a single weight measurement.
type WeighingRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID string    `gorm:"size:36;index;not null" json:"-"`
	AnimalID  string    `gorm:"size:36;index;not null" json:"animal_id"`
	Date      time.Time `gorm:"index" json:"date"`
	Weight    float64   `json:"weight"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w WeighingRecord) OwnerID() string { return w.AccountID }

// CostCategory enumerates operational cost kinds.
type CostCategory string

const (
	CostCommission     CostCategory = "commission"
	CostOperational    CostCategory = "operational"
	CostAdministrative CostCategory = "administrative"
	CostOther          CostCategory = "other"
)

// Cost is an operational expense not tied to any animal.
type Cost struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string       `gorm:"size:36;index;not null" json:"-"`
	Category    CostCategory `gorm:"size:20;index;not null" json:"category"`
	Description string       `gorm:"size:255" json:"description"`
	Amount      float64      `json:"amount"`
	Date        time.Time    `gorm:"index" json:"date"`
	Notes       string       `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (c Cost) OwnerID() string { return c.AccountID }
