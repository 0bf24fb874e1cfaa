package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type TopupController struct {
	DB     *gorm.DB
	topups *services.TopupService
	wallet *services.WalletService
}

func NewTopupController(db *gorm.DB) *TopupController {
	wallet := services.NewWalletService(db)
	return &TopupController{
		DB:     db,
		topups: services.NewTopupService(db, wallet),
		wallet: wallet,
	}
}

// RequestTopup -> parent mengajukan top-up manual (menunggu approval admin)
func (tc *TopupController) RequestTopup(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := tc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	topup, err := tc.topups.Request(parent.ID, req.Amount)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Topup %d requested by parent %d (amount %.2f)", topup.ID, parent.ID, req.Amount)
	live.BroadcastAdminNotification("New topup request pending approval")

	utils.RespondJSON(c, http.StatusCreated, "Topup requested", topup)
}

// CreateGatewayTopup -> parent membuat top-up via QRIS; QR url dikembalikan
func (tc *TopupController) CreateGatewayTopup(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := tc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	gateway := services.GetGatewayService()
	if gateway == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("payment gateway is not configured"))
		return
	}

	topup, err := gateway.CreateGatewayTopup(parent.ID, req.Amount)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Gateway topup created", topup)
}

// GatewayCallback menerima notifikasi pembayaran dari Midtrans.
// Signature diverifikasi sebelum apapun; settlement -> kredit wallet.
func (tc *TopupController) GatewayCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	gateway := services.GetGatewayService()
	if gateway == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("payment gateway is not configured"))
		return
	}

	if !gateway.ValidateSignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.ErrorLogger.Printf("Invalid gateway signature for reference %s", notif.OrderID)
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	switch notif.TransactionStatus {
	case "settlement", "capture":
		if notif.FraudStatus != "" && notif.FraudStatus != "accept" {
			utils.InfoLogger.Printf("Gateway topup %s held by fraud status %s", notif.OrderID, notif.FraudStatus)
			utils.RespondJSON(c, http.StatusOK, "Notification received", nil)
			return
		}
		topup, err := tc.topups.CompleteGatewayTopup(notif.OrderID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		live.BroadcastTopupUpdate(*topup)
		if parent, err := tc.wallet.GetParentByID(topup.ParentID); err == nil {
			live.BroadcastWalletUpdate(parent.UserID, parent.Balance)
		}
	case "expire", "cancel", "deny":
		utils.InfoLogger.Printf("Gateway topup %s ended with status %s", notif.OrderID, notif.TransactionStatus)
	default:
		// pending dan status lain hanya dicatat
		utils.InfoLogger.Printf("Gateway topup %s status %s", notif.OrderID, notif.TransactionStatus)
	}

	utils.RespondJSON(c, http.StatusOK, "Notification processed", nil)
}

// GetMyTopups -> riwayat top-up milik parent yang login
func (tc *TopupController) GetMyTopups(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := tc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	topups, err := tc.topups.ListByParent(parent.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Topup history", topups)
}

// GetPendingTopups -> antrian approval untuk admin (tertua dulu)
func (tc *TopupController) GetPendingTopups(c *gin.Context) {
	topups, err := tc.topups.ListPending()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending topups", topups)
}

// ApproveTopup -> setujui top-up pending dan kredit wallet
func (tc *TopupController) ApproveTopup(c *gin.Context) {
	topupID, _ := strconv.Atoi(c.Param("topup_id"))

	var req struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&req)

	userIDInterface, _ := c.Get("user_id")
	adminID, _ := userIDInterface.(uint)

	topup, err := tc.topups.Approve(uint(topupID), adminID, req.Note)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastTopupUpdate(*topup)
	if parent, err := tc.wallet.GetParentByID(topup.ParentID); err == nil {
		live.BroadcastWalletUpdate(parent.UserID, parent.Balance)
	}
	utils.RespondJSON(c, http.StatusOK, "Topup approved", topup)
}

// DeclineTopup -> tolak top-up pending; alasan wajib, ledger tidak disentuh
func (tc *TopupController) DeclineTopup(c *gin.Context) {
	topupID, _ := strconv.Atoi(c.Param("topup_id"))

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userIDInterface, _ := c.Get("user_id")
	adminID, _ := userIDInterface.(uint)

	topup, err := tc.topups.Decline(uint(topupID), adminID, req.Reason)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastTopupUpdate(*topup)
	utils.RespondJSON(c, http.StatusOK, "Topup declined", topup)
}

// GetTopupStatus -> cek status satu top-up; untuk gateway topup pending,
// status juga ditanyakan langsung ke gateway.
func (tc *TopupController) GetTopupStatus(c *gin.Context) {
	topupID, _ := strconv.Atoi(c.Param("topup_id"))

	topup, err := tc.topups.GetByID(uint(topupID))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	payload := gin.H{"topup": topup}
	if topup.Method == models.TopupMethodGateway && topup.Status == services.TopupStatusPending {
		if gateway := services.GetGatewayService(); gateway != nil {
			if status, err := gateway.CheckTransactionStatus(topup.Reference); err == nil {
				payload["gateway_status"] = status
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Topup status", payload)
}
