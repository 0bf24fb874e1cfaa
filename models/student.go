package models

import (
	"time"
)

type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100)" json:"last_name"`
	Grade        string    `gorm:"type:varchar(20)" json:"grade"`
	ParentID     *uint     `gorm:"index" json:"parent_id,omitempty"` // nullable sampai di-link ke parent
	Parent       *Parent   `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	AllergyNotes string    `gorm:"type:text" json:"allergy_notes"`
	DietaryNotes string    `gorm:"type:text" json:"dietary_notes"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
