package models

import "time"

// Sale groups one or more animals sold to a buyer.
type Sale struct {
	ID                   string     `gorm:"primaryKey;size:36" json:"id"`
	AccountID            string     `gorm:"size:36;index;not null" json:"-"`
	Date                 time.Time  `gorm:"index" json:"date"`
	TotalWeight          float64    `json:"total_weight"`
	TotalValue           float64    `json:"total_value"`
	CommissionPercentage float64    `json:"commission_percentage"`
	Buyer                string     `gorm:"size:120" json:"buyer"`
	Notes                string     `gorm:"type:text" json:"notes"`
	Lines                []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (s Sale) OwnerID() string { return s.AccountID }

// Commission returns the farm-wide commission for the sale, based on its total value.
func (s Sale) Commission() float64 {
	return s.TotalValue * s.CommissionPercentage / 100
}

// SaleLine is one animal's share of a sale. An animal appears on at most one line.
type SaleLine struct {
	SaleID   string  `gorm:"primaryKey;size:36" json:"-"`
	AnimalID string  `gorm:"primaryKey;size:36;uniqueIndex" json:"animal_id"`
	Value    float64 `json:"value"`
}
