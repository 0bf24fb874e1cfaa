package models

import (
	"time"
)

// OrderItem menyimpan snapshot nama dan harga saat order dibuat, supaya
// perubahan katalog belakangan tidak mengubah order historis.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint      `gorm:"not null" json:"menu_item_id"`
	ItemName   string    `gorm:"type:varchar(255);not null" json:"item_name"`     // snapshot
	Price      float64   `gorm:"type:decimal(12,2);not null" json:"price"`        // snapshot
	Quantity   int       `gorm:"not null" json:"quantity"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
