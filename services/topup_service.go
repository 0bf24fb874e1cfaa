package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// Status top-up: pending -> {approved, declined} -> completed.
// Top-up approved diterapkan ke wallet lalu ditandai completed; declined
// tidak pernah menyentuh ledger. expired hanya untuk top-up gateway yang
// lewat batas waktu pembayaran.
const (
	TopupStatusPending   = "pending"
	TopupStatusApproved  = "approved"
	TopupStatusDeclined  = "declined"
	TopupStatusCompleted = "completed"
	TopupStatusExpired   = "expired"
)

// TopupService menangani permintaan top-up wallet dan persetujuannya.
type TopupService struct {
	db     *gorm.DB
	wallet *WalletService
}

func NewTopupService(db *gorm.DB, wallet *WalletService) *TopupService {
	return &TopupService{db: db, wallet: wallet}
}

// Request membuat permintaan top-up manual berstatus pending
func (s *TopupService) Request(parentID uint, amount float64) (*models.Topup, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.wallet.GetParentByID(parentID); err != nil {
		return nil, err
	}

	now := time.Now()
	topup := models.Topup{
		ParentID:    parentID,
		Amount:      amount,
		Method:      models.TopupMethodManual,
		Status:      TopupStatusPending,
		Reference:   uuid.New().String(),
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&topup).Error; err != nil {
		return nil, fmt.Errorf("failed to create topup request: %w", err)
	}
	return &topup, nil
}

// Approve menyetujui top-up pending dan menerapkan kreditnya ke wallet,
// lalu menandai completed -- dalam satu transaksi.
func (s *TopupService) Approve(topupID uint, adminID uint, note string) (*models.Topup, error) {
	tx := s.db.Begin()

	var topup models.Topup
	if err := tx.First(&topup, topupID).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}

	if topup.Status != TopupStatusPending {
		tx.Rollback()
		return nil, ErrTopupNotPending
	}

	now := time.Now()
	if _, err := s.wallet.adjustTx(tx, topup.ParentID, topup.Amount, AdjustOptions{
		Type:      models.TransactionTypeTopup,
		Reference: topup.Reference,
		Reason:    fmt.Sprintf("topup #%d approved by admin %d", topup.ID, adminID),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	topup.Status = TopupStatusCompleted
	topup.ProcessedBy = &adminID
	topup.ProcessedAt = &now
	topup.AdminNote = note
	topup.UpdatedAt = now
	if err := tx.Save(&topup).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update topup status: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit topup approval: %w", err)
	}
	return &topup, nil
}

// Decline menolak top-up pending; alasan wajib dan ledger tidak disentuh.
func (s *TopupService) Decline(topupID uint, adminID uint, reason string) (*models.Topup, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var topup models.Topup
	if err := s.db.First(&topup, topupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}

	if topup.Status != TopupStatusPending {
		return nil, ErrTopupNotPending
	}

	now := time.Now()
	topup.Status = TopupStatusDeclined
	topup.ProcessedBy = &adminID
	topup.ProcessedAt = &now
	topup.DeclineReason = reason
	topup.UpdatedAt = now
	if err := s.db.Save(&topup).Error; err != nil {
		return nil, fmt.Errorf("failed to decline topup: %w", err)
	}
	return &topup, nil
}

// CompleteGatewayTopup menerapkan kredit untuk top-up gateway yang sudah
// settlement (dipanggil dari callback gateway). Idempotent terhadap
// callback ganda: hanya top-up pending yang diproses.
func (s *TopupService) CompleteGatewayTopup(reference string) (*models.Topup, error) {
	tx := s.db.Begin()

	var topup models.Topup
	if err := tx.Where("reference = ?", reference).First(&topup).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}

	if topup.Status != TopupStatusPending {
		tx.Rollback()
		return &topup, nil
	}

	now := time.Now()
	if _, err := s.wallet.adjustTx(tx, topup.ParentID, topup.Amount, AdjustOptions{
		Type:      models.TransactionTypeTopup,
		Reference: topup.Reference,
		Reason:    fmt.Sprintf("gateway topup #%d settled", topup.ID),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	topup.Status = TopupStatusCompleted
	topup.ProcessedAt = &now
	topup.UpdatedAt = now
	if err := tx.Save(&topup).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to complete gateway topup: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit gateway topup: %w", err)
	}
	return &topup, nil
}

// GetByID mengembalikan satu top-up
func (s *TopupService) GetByID(topupID uint) (*models.Topup, error) {
	var topup models.Topup
	if err := s.db.First(&topup, topupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}
	return &topup, nil
}

// ListPending mengembalikan antrian top-up pending untuk admin, tertua dulu
func (s *TopupService) ListPending() ([]models.Topup, error) {
	var topups []models.Topup
	if err := s.db.Where("status = ?", TopupStatusPending).
		Order("requested_at asc").
		Find(&topups).Error; err != nil {
		return nil, err
	}
	return topups, nil
}

// ListByParent mengembalikan riwayat top-up milik parent
func (s *TopupService) ListByParent(parentID uint) ([]models.Topup, error) {
	var topups []models.Topup
	if err := s.db.Where("parent_id = ?", parentID).
		Order("requested_at desc").
		Find(&topups).Error; err != nil {
		return nil, err
	}
	return topups, nil
}

// TopupExpiryChecker adalah goroutine yang menandai top-up gateway pending
// yang sudah lewat waktu pembayaran sebagai expired.
func (s *TopupService) TopupExpiryChecker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.CheckExpiredTopups()
	}
}

// CheckExpiredTopups memeriksa top-up gateway yang kedaluwarsa
func (s *TopupService) CheckExpiredTopups() {
	var topups []models.Topup
	if err := s.db.Where("status = ? AND method = ? AND expires_at IS NOT NULL",
		TopupStatusPending, models.TopupMethodGateway).
		Find(&topups).Error; err != nil {
		log.Printf("Error checking expired topups: %v", err)
		return
	}

	now := time.Now()
	for i := range topups {
		topup := &topups[i]
		if !now.After(*topup.ExpiresAt) {
			continue
		}
		topup.Status = TopupStatusExpired
		topup.UpdatedAt = now
		if err := s.db.Save(topup).Error; err != nil {
			log.Printf("Error expiring topup %d: %v", topup.ID, err)
			continue
		}
		log.Printf("Topup %d expired", topup.ID)
	}
}

// StartExpiryChecker memulai goroutine pemeriksa kedaluwarsa
func (s *TopupService) StartExpiryChecker() {
	go s.TopupExpiryChecker(5 * time.Minute)
	log.Println("Topup expiry checker started")
}
