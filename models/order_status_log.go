package models

import (
	"time"
)

// OrderStatusLog mencatat setiap transisi status order untuk audit.
type OrderStatusLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FromStatus string    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`
	ChangedBy  uint      `json:"changed_by"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
