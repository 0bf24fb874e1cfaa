package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// GatewayService menangani top-up lewat payment gateway (Midtrans QRIS).
type GatewayService struct {
	client    coreapi.Client
	serverKey string
	db        *gorm.DB
	wallet    *WalletService
}

var (
	gatewayService *GatewayService
	gatewayOnce    sync.Once
)

// InitGatewayService membuat instance dengan dependency eksplisit
func InitGatewayService(db *gorm.DB, wallet *WalletService) *GatewayService {
	gatewayOnce.Do(func() {
		serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
		env := midtrans.Sandbox
		if os.Getenv("MIDTRANS_ENV") == "production" {
			env = midtrans.Production
		}

		client := coreapi.Client{}
		client.New(serverKey, env)

		gatewayService = &GatewayService{
			client:    client,
			serverKey: serverKey,
			db:        db,
			wallet:    wallet,
		}
	})
	return gatewayService
}

// GetGatewayService mengembalikan instance yang sudah diinisialisasi
func GetGatewayService() *GatewayService {
	return gatewayService
}

// CreateGatewayTopup membuat top-up gateway pending dan charge QRIS di
// Midtrans; QR url dan waktu kedaluwarsa disimpan di record top-up.
func (s *GatewayService) CreateGatewayTopup(parentID uint, amount float64) (*models.Topup, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var parent models.Parent
	if err := s.db.First(&parent, parentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	now := time.Now()
	topup := models.Topup{
		ParentID:    parentID,
		Amount:      amount,
		Method:      models.TopupMethodGateway,
		Status:      TopupStatusPending,
		Reference:   fmt.Sprintf("TOPUP-%d-%d", parentID, now.UnixNano()),
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  topup.Reference,
			GrossAmt: int64(amount),
		},
	}

	resp, chargeErr := s.client.ChargeTransaction(chargeReq)
	if chargeErr != nil {
		return nil, fmt.Errorf("failed to charge gateway transaction: %w", chargeErr)
	}

	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			topup.QRImageURL = action.URL
			break
		}
	}
	if resp.ExpiryTime != "" {
		if expiry, err := time.ParseInLocation("2006-01-02 15:04:05", resp.ExpiryTime, time.Local); err == nil {
			topup.ExpiresAt = &expiry
		}
	}
	if topup.ExpiresAt == nil {
		expiry := now.Add(15 * time.Minute)
		topup.ExpiresAt = &expiry
	}

	if err := s.db.Create(&topup).Error; err != nil {
		return nil, fmt.Errorf("failed to create gateway topup: %w", err)
	}
	return &topup, nil
}

// ValidateSignature memverifikasi signature SHA512 dari notifikasi gateway:
// sha512(order_id + status_code + gross_amount + server_key)
func (s *GatewayService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	signatureString := fmt.Sprintf("%s%s%s%s", orderID, statusCode, grossAmount, s.serverKey)
	hash := sha512.New()
	hash.Write([]byte(signatureString))
	calculated := hex.EncodeToString(hash.Sum(nil))
	return calculated == signature
}

// CheckTransactionStatus menanyakan status transaksi ke gateway
func (s *GatewayService) CheckTransactionStatus(reference string) (string, error) {
	resp, err := s.client.CheckTransaction(reference)
	if err != nil {
		return "", fmt.Errorf("failed to check transaction status: %w", err)
	}
	return resp.TransactionStatus, nil
}
