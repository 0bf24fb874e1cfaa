package models

import (
	"time"
)

type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ParentID     uint      `gorm:"not null;index" json:"parent_id"`
	Parent       Parent    `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	Student      Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"student"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  float64   `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_amount"`
	DeliveryDate time.Time `gorm:"type:date;not null;index" json:"delivery_date"`
	DeliverySlot string    `gorm:"type:varchar(50)" json:"delivery_slot"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	// IdempotencyKey mencegah double-charge saat klien retry placeOrder
	IdempotencyKey *string     `gorm:"type:varchar(64);uniqueIndex" json:"idempotency_key,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems     []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
