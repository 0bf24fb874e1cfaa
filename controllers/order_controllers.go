package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type OrderController struct {
	DB     *gorm.DB
	orders *services.OrderService
	wallet *services.WalletService
}

func NewOrderController(db *gorm.DB) *OrderController {
	wallet := services.NewWalletService(db)
	return &OrderController{
		DB:     db,
		orders: services.NewOrderService(db, wallet),
		wallet: wallet,
	}
}

// PlaceOrder -> checkout keranjang menjadi order + debit wallet dalam satu
// transaksi. Kalau klien tidak mengirim idempotency key, kita generate di
// boundary ini supaya retry internal tetap aman.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := oc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var req struct {
		StudentID      uint                      `json:"student_id" binding:"required"`
		Items          []services.OrderItemInput `json:"items" binding:"required"`
		DeliveryDate   string                    `json:"delivery_date" binding:"required"`
		DeliverySlot   string                    `json:"delivery_slot"`
		Instructions   string                    `json:"instructions"`
		IdempotencyKey string                    `json:"idempotency_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("delivery_date must be a date in YYYY-MM-DD format"))
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}

	order, err := oc.orders.PlaceOrder(services.PlaceOrderInput{
		ParentID:       parent.ID,
		StudentID:      req.StudentID,
		Items:          req.Items,
		DeliveryDate:   deliveryDate,
		DeliverySlot:   req.DeliverySlot,
		Instructions:   req.Instructions,
		IdempotencyKey: key,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d placed by parent %d (total %.2f)", order.ID, parent.ID, order.TotalAmount)

	live.BroadcastOrderUpdate(*order)
	if updated, err := oc.wallet.GetParentByID(parent.ID); err == nil {
		live.BroadcastWalletUpdate(updated.UserID, updated.Balance)
	}
	live.BroadcastAdminNotification("New order placed")

	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetMyOrders -> riwayat order milik parent yang login
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := oc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	orders, err := oc.orders.ListOrdersByParent(parent.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail order. Parent hanya boleh melihat ordernya sendiri.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.orders.GetOrderByID(uint(orderID))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		userIDInterface, _ := c.Get("user_id")
		userID, _ := userIDInterface.(uint)
		parent, err := oc.wallet.GetParentByUserID(userID)
		if err != nil || parent.ID != order.ParentID {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrdersByDate -> order untuk satu tanggal antar (admin, untuk dapur)
func (oc *OrderController) GetOrdersByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be in YYYY-MM-DD format"))
		return
	}

	orders, err := oc.orders.ListOrdersByDeliveryDate(date)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders for delivery date", orders)
}

// UpdateOrderStatus -> transisi status order (admin)
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userIDInterface, _ := c.Get("user_id")
	adminID, _ := userIDInterface.(uint)

	order, err := oc.orders.UpdateOrderStatus(uint(orderID), req.Status, adminID, req.Note)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CancelOrder bisa dipanggil parent (order miliknya) maupun admin.
// Cancel TIDAK otomatis me-refund; refund adalah endpoint admin terpisah.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Note string `json:"note"`
	}
	// Body opsional untuk cancel
	_ = c.ShouldBindJSON(&req)

	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		order, err := oc.orders.GetOrderByID(uint(orderID))
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		parent, err := oc.wallet.GetParentByUserID(userID)
		if err != nil || parent.ID != order.ParentID {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
	}

	order, err := oc.orders.CancelOrder(uint(orderID), userID, req.Note)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// RefundOrder -> kredit kembali total order cancelled ke wallet (admin)
func (oc *OrderController) RefundOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	userIDInterface, _ := c.Get("user_id")
	adminID, _ := userIDInterface.(uint)

	txn, err := oc.orders.RefundOrder(uint(orderID), adminID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	if parent, err := oc.wallet.GetParentByID(txn.ParentID); err == nil {
		live.BroadcastWalletUpdate(parent.UserID, parent.Balance)
	}
	utils.RespondJSON(c, http.StatusOK, "Order refunded", txn)
}

// GetOrderStatistics -> agregat count/revenue per status (admin).
// Default rentang: 30 hari terakhir.
func (oc *OrderController) GetOrderStatistics(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("from must be in YYYY-MM-DD format"))
			return
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("to must be in YYYY-MM-DD format"))
			return
		}
		// inklusif sampai akhir hari
		to = parsed.AddDate(0, 0, 1)
	}

	stats, err := oc.orders.GetOrderStatistics(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order statistics", stats)
}
