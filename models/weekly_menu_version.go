package models

import (
	"time"
)

// WeeklyMenuVersion adalah snapshot immutable dari konten menu pada saat
// publish. Append-only: audit trail untuk revert-to-version.
type WeeklyMenuVersion struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	WeeklyMenuID uint       `gorm:"not null;index;uniqueIndex:idx_menu_version" json:"weekly_menu_id"`
	WeeklyMenu   WeeklyMenu `gorm:"foreignKey:WeeklyMenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Version      int        `gorm:"not null;uniqueIndex:idx_menu_version" json:"version"`
	MenuData     string     `gorm:"type:text;not null" json:"menu_data"`
	CreatedBy    uint       `json:"created_by"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}
