package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status order. cancelled adalah absorbing state yang bisa dicapai dari
// semua status non-terminal; completed dan cancelled terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusPreparing: true,
	OrderStatusReady:     true,
	OrderStatusCompleted: true,
	OrderStatusCancelled: true,
}

func isTerminalStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// OrderService menangani keranjang, penempatan order, dan lifecycle order.
type OrderService struct {
	db     *gorm.DB
	wallet *WalletService
}

func NewOrderService(db *gorm.DB, wallet *WalletService) *OrderService {
	return &OrderService{db: db, wallet: wallet}
}

/*
========================================
 CART (snapshot klien, tanpa validasi server sampai checkout)
========================================
*/

// SaveCart menyimpan snapshot keranjang milik parent (upsert)
func (s *OrderService) SaveCart(parentID uint, items []models.CartItem) (*models.SavedCart, error) {
	var cart models.SavedCart
	err := s.db.Where("parent_id = ?", parentID).First(&cart).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cart.ParentID = parentID
	if err := cart.SetItems(items); err != nil {
		return nil, fmt.Errorf("failed to encode cart items: %w", err)
	}
	cart.UpdatedAt = time.Now()

	if err := s.db.Save(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return &cart, nil
}

// GetCart mengembalikan snapshot keranjang; keranjang kosong jika belum ada
func (s *OrderService) GetCart(parentID uint) (*models.SavedCart, error) {
	var cart models.SavedCart
	if err := s.db.Where("parent_id = ?", parentID).First(&cart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.SavedCart{ParentID: parentID, Items: "[]"}, nil
		}
		return nil, err
	}
	return &cart, nil
}

// ClearCart menghapus snapshot keranjang
func (s *OrderService) ClearCart(parentID uint) error {
	return s.db.Where("parent_id = ?", parentID).Delete(&models.SavedCart{}).Error
}

/*
========================================
 ORDER PLACEMENT
========================================
*/

type OrderItemInput struct {
	MenuItemID uint   `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type PlaceOrderInput struct {
	ParentID     uint
	StudentID    uint
	Items        []OrderItemInput
	DeliveryDate time.Time
	DeliverySlot string
	Instructions string
	// IdempotencyKey membuat retry aman: kalau key sudah pernah dipakai,
	// order yang sama dikembalikan tanpa debit kedua.
	IdempotencyKey string
}

// PlaceOrder membuat order, mendebit saldo wallet sebesar total, dan menulis
// satu baris ledger -- semuanya dalam satu transaksi all-or-nothing. Saldo
// dicek di bawah row lock, bukan lewat read terpisah, sehingga placeOrder
// yang berjalan bersamaan untuk parent yang sama tidak pernah double-spend.
func (s *OrderService) PlaceOrder(input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	tx := s.db.Begin()

	// Retry dengan key yang sama mengembalikan order yang sudah ada
	if input.IdempotencyKey != "" {
		var existing models.Order
		err := tx.Preload("OrderItems").
			Where("idempotency_key = ?", input.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			tx.Rollback()
			return &existing, nil
		}
		if err != gorm.ErrRecordNotFound {
			tx.Rollback()
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	var student models.Student
	if err := tx.First(&student, input.StudentID).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// Snapshot nama/harga dari katalog dan hitung total. Checkout adalah
	// titik validasi keranjang: item yang sudah tidak available menolak
	// seluruh order sebelum wallet tersentuh.
	now := time.Now()
	var total float64
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		var menuItem models.MenuItem
		if err := tx.First(&menuItem, item.MenuItemID).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, item.MenuItemID)
			}
			return nil, err
		}
		if !menuItem.Available {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, menuItem.Name)
		}

		total += menuItem.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menuItem.ID,
			ItemName:   menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
			CreatedAt:  now,
		})
	}

	order := models.Order{
		ParentID:     input.ParentID,
		StudentID:    input.StudentID,
		Status:       OrderStatusPending,
		TotalAmount:  total,
		DeliveryDate: input.DeliveryDate,
		DeliverySlot: input.DeliverySlot,
		Instructions: input.Instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		order.IdempotencyKey = &key
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
		if err := tx.Create(&orderItems[i]).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	order.OrderItems = orderItems

	// Debit wallet + append ledger di transaksi yang sama; saldo kurang
	// membatalkan seluruh order
	orderID := order.ID
	if _, err := s.wallet.adjustTx(tx, input.ParentID, -total, AdjustOptions{
		Type:    models.TransactionTypeOrder,
		OrderID: &orderID,
		Reason:  fmt.Sprintf("order #%d for %s", orderID, input.DeliveryDate.Format("2006-01-02")),
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Create(&models.OrderStatusLog{
		OrderID:    order.ID,
		FromStatus: "",
		ToStatus:   OrderStatusPending,
		Note:       "order placed",
		CreatedAt:  now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to log order status: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order placement: %w", err)
	}

	return &order, nil
}

/*
========================================
 ORDER LIFECYCLE
========================================
*/

// UpdateOrderStatus mentransisikan order ke status baru. Dari status
// non-terminal boleh ke status mana pun; completed dan cancelled terminal.
// Menyelesaikan order men-stamp completed_at. Setiap transisi dicatat di
// order_status_logs.
func (s *OrderService) UpdateOrderStatus(orderID uint, newStatus string, changedBy uint, note string) (*models.Order, error) {
	if !orderStatuses[newStatus] {
		return nil, ErrInvalidStatus
	}

	tx := s.db.Begin()

	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if isTerminalStatus(order.Status) {
		tx.Rollback()
		return nil, ErrTerminalStatus
	}

	now := time.Now()
	fromStatus := order.Status
	order.Status = newStatus
	order.UpdatedAt = now
	switch newStatus {
	case OrderStatusCompleted:
		order.CompletedAt = &now
	case OrderStatusCancelled:
		order.CancelledAt = &now
	}

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Create(&models.OrderStatusLog{
		OrderID:    order.ID,
		FromStatus: fromStatus,
		ToStatus:   newStatus,
		ChangedBy:  changedBy,
		Note:       note,
		CreatedAt:  now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to log order status: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return &order, nil
}

// CancelOrder -> cancelled dari status non-terminal mana pun. Debit wallet
// TIDAK otomatis dikembalikan: refund adalah operasi admin eksplisit
// (RefundOrder), bukan efek samping cancel.
func (s *OrderService) CancelOrder(orderID uint, changedBy uint, note string) (*models.Order, error) {
	return s.UpdateOrderStatus(orderID, OrderStatusCancelled, changedBy, note)
}

// RefundOrder mengembalikan total order yang sudah cancelled ke wallet
// parent lewat ledger. Guard "sudah direfund" dan kredit berjalan dalam
// satu transaksi di bawah row lock parent: refund bersamaan untuk order
// yang sama antre di lock dan yang kalah melihat baris ledger pemenang.
func (s *OrderService) RefundOrder(orderID uint, adminID uint) (*models.ParentTransaction, error) {
	tx := s.db.Begin()

	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != OrderStatusCancelled {
		tx.Rollback()
		return nil, ErrNotCancelled
	}

	var parent models.Parent
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&parent, order.ParentID).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	var refundCount int64
	if err := tx.Model(&models.ParentTransaction{}).
		Where("order_id = ? AND type = ?", orderID, models.TransactionTypeRefund).
		Count(&refundCount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if refundCount > 0 {
		tx.Rollback()
		return nil, ErrAlreadyRefunded
	}

	id := order.ID
	txn, err := s.wallet.adjustTx(tx, order.ParentID, order.TotalAmount, AdjustOptions{
		Type:    models.TransactionTypeRefund,
		OrderID: &id,
		Reason:  fmt.Sprintf("refund for cancelled order #%d by admin %d", order.ID, adminID),
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit refund: %w", err)
	}
	return txn, nil
}

/*
========================================
 QUERIES & STATISTICS
========================================
*/

// GetOrderByID -> detail 1 order beserta items
func (s *OrderService) GetOrderByID(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderItems").Preload("Student").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrdersByParent mengembalikan order milik satu parent, terbaru dulu
func (s *OrderService) ListOrdersByParent(parentID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Where("parent_id = ?", parentID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersByDeliveryDate mengembalikan order untuk satu tanggal antar
func (s *OrderService) ListOrdersByDeliveryDate(date time.Time) ([]models.Order, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var orders []models.Order
	if err := s.db.Preload("OrderItems").Preload("Student").
		Where("delivery_date >= ? AND delivery_date < ?", day, day.AddDate(0, 0, 1)).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersInRange mengembalikan order dalam rentang tanggal dibuat
func (s *OrderService) ListOrdersInRange(from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

type StatusStat struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type OrderStatistics struct {
	PerStatus    map[string]StatusStat `json:"per_status"`
	TotalOrders  int64                 `json:"total_orders"`
	TotalRevenue float64               `json:"total_revenue"`
	// AverageOrderValue dihitung atas order completed saja, bukan semua
	// order (pilihan divisor yang disengaja).
	AverageOrderValue float64 `json:"average_order_value"`
}

// GetOrderStatistics mengagregasi count dan revenue per status untuk order
// yang dibuat dalam rentang [from, to).
func (s *OrderService) GetOrderStatistics(from, to time.Time) (*OrderStatistics, error) {
	stats := &OrderStatistics{PerStatus: make(map[string]StatusStat)}

	rows := []struct {
		Status  string
		Count   int64
		Revenue float64
	}{}
	if err := s.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as revenue").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats.PerStatus[row.Status] = StatusStat{Count: row.Count, Revenue: row.Revenue}
		stats.TotalOrders += row.Count
		stats.TotalRevenue += row.Revenue
	}

	if completed, ok := stats.PerStatus[OrderStatusCompleted]; ok && completed.Count > 0 {
		stats.AverageOrderValue = completed.Revenue / float64(completed.Count)
	}

	return stats, nil
}
