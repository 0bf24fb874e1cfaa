package models

import (
	"time"
)

// Tipe transaksi ledger
const (
	TransactionTypeTopup      = "topup"
	TransactionTypeOrder      = "order"
	TransactionTypeRefund     = "refund"
	TransactionTypeCorrection = "correction"
)

// ParentTransaction adalah baris ledger append-only. Tidak pernah
// di-update atau di-delete setelah dibuat.
type ParentTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParentID      uint      `gorm:"not null;index" json:"parent_id"`
	Parent        Parent    `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Amount        float64   `gorm:"type:decimal(12,2);not null" json:"amount"` // signed: debit negatif, kredit positif
	BalanceBefore float64   `gorm:"type:decimal(12,2);not null" json:"balance_before"`
	BalanceAfter  float64   `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	Reference     string    `gorm:"type:varchar(64);index" json:"reference"`
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`
	Reason        string    `gorm:"type:text" json:"reason"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
