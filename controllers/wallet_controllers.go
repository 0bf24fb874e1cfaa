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

type WalletController struct {
	DB     *gorm.DB
	wallet *services.WalletService
}

func NewWalletController(db *gorm.DB) *WalletController {
	return &WalletController{
		DB:     db,
		wallet: services.NewWalletService(db),
	}
}

// GetBalance -> saldo wallet parent yang login
func (wc *WalletController) GetBalance(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := wc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Wallet balance", gin.H{
		"parent_id": parent.ID,
		"balance":   parent.Balance,
	})
}

// GetTransactions -> riwayat ledger parent yang login (paged)
func (wc *WalletController) GetTransactions(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := wc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txns, err := wc.wallet.GetTransactions(parent.ID, limit, offset)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Wallet transactions", txns)
}

// AdjustBalance -> koreksi saldo manual oleh admin. Satu-satunya jalur yang
// boleh membuat saldo negatif (allow_negative).
func (wc *WalletController) AdjustBalance(c *gin.Context) {
	parentID, _ := strconv.Atoi(c.Param("parent_id"))

	var req struct {
		Amount        float64 `json:"amount" binding:"required"`
		Reason        string  `json:"reason" binding:"required"`
		AllowNegative bool    `json:"allow_negative"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userIDInterface, _ := c.Get("user_id")
	adminID, _ := userIDInterface.(uint)

	txn, err := wc.wallet.AdjustBalance(uint(parentID), req.Amount, services.AdjustOptions{
		AllowNegative: req.AllowNegative,
		Type:          models.TransactionTypeCorrection,
		Reason:        req.Reason,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Admin %d adjusted balance of parent %d by %.2f (%s)",
		adminID, parentID, req.Amount, req.Reason)

	if parent, err := wc.wallet.GetParentByID(uint(parentID)); err == nil {
		live.BroadcastWalletUpdate(parent.UserID, parent.Balance)
	}
	utils.RespondJSON(c, http.StatusOK, "Balance adjusted", txn)
}

// VerifyLedger -> alat audit admin: cek proyeksi saldo == SUM(ledger)
func (wc *WalletController) VerifyLedger(c *gin.Context) {
	parentID, _ := strconv.Atoi(c.Param("parent_id"))

	ok, sum, err := wc.wallet.VerifyLedger(uint(parentID))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	if !ok {
		utils.ErrorLogger.Printf("Ledger mismatch for parent %d: ledger sum %.2f", parentID, sum)
	}

	utils.RespondJSON(c, http.StatusOK, "Ledger verification", gin.H{
		"consistent": ok,
		"ledger_sum": sum,
	})
}

// GetParentTransactions -> ledger parent mana pun (admin)
func (wc *WalletController) GetParentTransactions(c *gin.Context) {
	parentID, err := strconv.Atoi(c.Param("parent_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("parent_id must be an integer"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txns, err := wc.wallet.GetTransactions(uint(parentID), limit, offset)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Wallet transactions", txns)
}
