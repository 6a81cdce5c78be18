package models

import "time"

// AnimalStatus enumerates the lifecycle states of an animal.
type AnimalStatus string

const (
	AnimalActive AnimalStatus = "active"
	AnimalSold   AnimalStatus = "sold"
	AnimalDead   AnimalStatus = "dead"
)

// Animal is one pig tracked from purchase or birth until sale or death.
type Animal struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	AccountID     string       `gorm:"size:36;index;not null" json:"-"`
	Identifier    string       `gorm:"size:60;index" json:"identifier"`
	BirthDate     time.Time    `json:"birth_date"`
	InitialWeight float64      `json:"initial_weight"`
	TargetWeight  float64      `json:"target_weight"`
	CurrentWeight *float64     `json:"current_weight"`
	EnclosureID   *string      `gorm:"size:36;index" json:"enclosure_id"`
	PurchasePrice float64      `json:"purchase_price"`
	SalePrice     *float64     `json:"sale_price"`
	SaleDate      *time.Time   `json:"sale_date"`
	Breed         string       `gorm:"size:60" json:"breed"`
	Sex           string       `gorm:"size:10" json:"sex"`
	Origin        string       `gorm:"size:120" json:"origin"`
	Status        AnimalStatus `gorm:"size:10;index;not null;default:active" json:"status"`
	Notes         string       `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (a Animal) OwnerID() string { return a.AccountID }

// InEnclosure reports whether the animal is housed in the given enclosure.
func (a Animal) InEnclosure(enclosureID string) bool {
	return a.EnclosureID != nil && *a.EnclosureID == enclosureID
}

// Enclosure is a pen or paddock holding animals.
type Enclosure struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID string    `gorm:"size:36;index;not null" json:"-"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Area      float64   `json:"area"`
	Type      string    `gorm:"size:60" json:"type"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Enclosure) OwnerID() string { return e.AccountID }
