package models

import (
	"time"
)

// Metode top-up
const (
	TopupMethodManual  = "manual"  // disetujui admin secara manual
	TopupMethodGateway = "gateway" // dibayar lewat payment gateway (QRIS)
)

// Topup adalah permintaan penambahan saldo wallet parent.
type Topup struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ParentID uint    `gorm:"not null;index" json:"parent_id"`
	Parent   Parent  `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Amount   float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method   string  `gorm:"type:varchar(20);not null;default:'manual'" json:"method"`
	Status   string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	// Reference adalah ID unik yang dipakai sebagai order_id di gateway
	// dan sebagai reference di ledger saat kredit diterapkan
	Reference     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	QRImageURL    string     `gorm:"type:varchar(255)" json:"qr_image_url,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	RequestedAt   time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedBy   *uint      `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	AdminNote     string     `gorm:"type:text" json:"admin_note"`
	DeclineReason string     `gorm:"type:text" json:"decline_reason"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
