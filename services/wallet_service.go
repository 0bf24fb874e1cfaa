package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService menangani saldo parent dan ledger append-only.
// Ledger adalah source of truth: Parent.Balance hanyalah proyeksi cache
// yang harus selalu sama dengan jumlah amount seluruh transaksinya.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// AdjustOptions mengontrol satu penyesuaian saldo.
type AdjustOptions struct {
	// AllowNegative mengizinkan saldo turun di bawah nol. Hanya untuk
	// koreksi yang diinisiasi admin; debit normal selalu menolak.
	AllowNegative bool
	Type          string // topup, order, refund, correction
	Reference     string
	OrderID       *uint
	Reason        string
}

// AdjustBalance melakukan read-modify-write atomik terhadap saldo parent
// dan menulis tepat satu baris ledger dengan saldo before/after.
func (s *WalletService) AdjustBalance(parentID uint, amount float64, opts AdjustOptions) (*models.ParentTransaction, error) {
	tx := s.db.Begin()

	txn, err := s.adjustTx(tx, parentID, amount, opts)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit balance adjustment: %w", err)
	}
	return txn, nil
}

// adjustTx menjalankan penyesuaian di dalam transaksi milik caller, supaya
// placeOrder bisa menggabungkan pembuatan order + debit + ledger dalam satu
// transaksi all-or-nothing. Row parent dikunci selama transaksi.
func (s *WalletService) adjustTx(tx *gorm.DB, parentID uint, amount float64, opts AdjustOptions) (*models.ParentTransaction, error) {
	var parent models.Parent
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&parent, parentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to lock parent row: %w", err)
	}

	before := parent.Balance
	after := before + amount
	if after < 0 && !opts.AllowNegative {
		return nil, ErrInsufficientBalance
	}

	now := time.Now()
	parent.Balance = after
	parent.UpdatedAt = now
	if err := tx.Save(&parent).Error; err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	txn := models.ParentTransaction{
		ParentID:      parentID,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Type:          opts.Type,
		Reference:     opts.Reference,
		OrderID:       opts.OrderID,
		Reason:        opts.Reason,
		CreatedAt:     now,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to append ledger row: %w", err)
	}

	return &txn, nil
}

// GetParentByID mengembalikan profil parent
func (s *WalletService) GetParentByID(parentID uint) (*models.Parent, error) {
	var parent models.Parent
	if err := s.db.First(&parent, parentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return &parent, nil
}

// GetParentByUserID mengembalikan profil parent milik satu user
func (s *WalletService) GetParentByUserID(userID uint) (*models.Parent, error) {
	var parent models.Parent
	if err := s.db.Where("user_id = ?", userID).First(&parent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return &parent, nil
}

// GetTransactions mengembalikan ledger parent, terbaru dulu
func (s *WalletService) GetTransactions(parentID uint, limit, offset int) ([]models.ParentTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var txns []models.ParentTransaction
	if err := s.db.Where("parent_id = ?", parentID).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// VerifyLedger menghitung ulang saldo dari ledger dan membandingkannya
// dengan proyeksi di parents.balance (alat audit).
func (s *WalletService) VerifyLedger(parentID uint) (bool, float64, error) {
	parent, err := s.GetParentByID(parentID)
	if err != nil {
		return false, 0, err
	}

	var sum float64
	if err := s.db.Model(&models.ParentTransaction{}).
		Where("parent_id = ?", parentID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&sum); err != nil {
		return false, 0, err
	}

	return parent.Balance == sum, sum, nil
}
