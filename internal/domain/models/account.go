package models

import "time"

// Account is the tenant boundary: one farm operator and everything they own.
type Account struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:120;not null" json:"name"`
	Email          string    `gorm:"size:160;uniqueIndex" json:"email"`
	WhatsAppNumber string    `gorm:"column:whatsapp_number;size:32;index" json:"whatsapp_number"`
	DigestEnabled  bool      `gorm:"not null" json:"digest_enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Owned is implemented by every account-scoped record.
type Owned interface {
	OwnerID() string
}
