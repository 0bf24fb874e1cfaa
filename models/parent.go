package models

import (
	"time"
)

// Parent adalah profil wallet untuk user dengan role 'parent'.
// Balance adalah proyeksi dari parent_transactions dan harus selalu
// sama dengan jumlah seluruh amount pada ledger.
type Parent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	Balance   float64   `gorm:"type:decimal(12,2);not null;default:0.00" json:"balance"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
