package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

// CartController menyimpan/memuat snapshot keranjang milik parent.
// Keranjang adalah state klien: tidak ada validasi menu/availability di sini,
// aturan itu baru berlaku saat checkout (place order).
type CartController struct {
	DB     *gorm.DB
	orders *services.OrderService
	wallet *services.WalletService
}

func NewCartController(db *gorm.DB) *CartController {
	wallet := services.NewWalletService(db)
	return &CartController{
		DB:     db,
		orders: services.NewOrderService(db, wallet),
		wallet: wallet,
	}
}

// parentFromContext me-resolve profil parent milik user yang login
func (cc *CartController) parentFromContext(c *gin.Context) (*models.Parent, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return nil, false
	}
	userID, _ := userIDInterface.(uint)

	parent, err := cc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return nil, false
	}
	return parent, true
}

// GetCart -> snapshot keranjang saat ini
func (cc *CartController) GetCart(c *gin.Context) {
	parent, ok := cc.parentFromContext(c)
	if !ok {
		return
	}

	cart, err := cc.orders.GetCart(parent.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart snapshot", cart)
}

// SaveCart -> replace snapshot keranjang (upsert)
func (cc *CartController) SaveCart(c *gin.Context) {
	parent, ok := cc.parentFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Items []models.CartItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := cc.orders.SaveCart(parent.ID, req.Items)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart saved", cart)
}

// ClearCart -> hapus snapshot keranjang
func (cc *CartController) ClearCart(c *gin.Context) {
	parent, ok := cc.parentFromContext(c)
	if !ok {
		return
	}

	if err := cc.orders.ClearCart(parent.ID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}
