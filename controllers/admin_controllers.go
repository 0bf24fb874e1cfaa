package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB     *gorm.DB
	orders *services.OrderService
	topups *services.TopupService
}

func NewAdminController(db *gorm.DB) *AdminController {
	wallet := services.NewWalletService(db)
	return &AdminController{
		DB:     db,
		orders: services.NewOrderService(db, wallet),
		topups: services.NewTopupService(db, wallet),
	}
}

// GetDashboardStats mengambil statistik untuk dashboard admin
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no role found"))
		return
	}
	if role, ok := roleInterface.(string); !ok || role != "admin" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized access"))
		return
	}

	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalOrders  int64   `json:"total_orders"`
		TodayOrders  int64   `json:"today_orders"`
		TotalRevenue float64 `json:"total_revenue"`
		TodayRevenue float64 `json:"today_revenue"`
		OrderStats   struct {
			Pending   int64 `json:"pending"`
			Confirmed int64 `json:"confirmed"`
			Preparing int64 `json:"preparing"`
			Ready     int64 `json:"ready"`
			Completed int64 `json:"completed"`
			Cancelled int64 `json:"cancelled"`
		} `json:"order_stats"`
		TopupStats struct {
			Pending   int64   `json:"pending"`
			Completed int64   `json:"completed"`
			Total     float64 `json:"total"`
		} `json:"topup_stats"`
		StudentStats struct {
			Active int64 `json:"active"`
			Total  int64 `json:"total"`
		} `json:"student_stats"`
	}

	ac.DB.Model(&models.Order{}).Count(&stats.TotalOrders)
	ac.DB.Model(&models.Order{}).Where("DATE(created_at) = ?", today).Count(&stats.TodayOrders)

	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusPending).Count(&stats.OrderStats.Pending)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusConfirmed).Count(&stats.OrderStats.Confirmed)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusPreparing).Count(&stats.OrderStats.Preparing)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusReady).Count(&stats.OrderStats.Ready)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusCompleted).Count(&stats.OrderStats.Completed)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusCancelled).Count(&stats.OrderStats.Cancelled)

	ac.DB.Model(&models.Topup{}).Where("status = ?", services.TopupStatusPending).Count(&stats.TopupStats.Pending)
	ac.DB.Model(&models.Topup{}).Where("status = ?", services.TopupStatusCompleted).Count(&stats.TopupStats.Completed)
	ac.DB.Model(&models.Topup{}).Where("status = ?", services.TopupStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TopupStats.Total)

	ac.DB.Model(&models.Student{}).Where("active = ?", true).Count(&stats.StudentStats.Active)
	ac.DB.Model(&models.Student{}).Count(&stats.StudentStats.Total)

	// Revenue dari order completed
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TotalRevenue)
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND DATE(created_at) = ?", services.OrderStatusCompleted, today).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TodayRevenue)

	live.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// GetKitchenSummary -> agregat item per slot untuk satu tanggal antar,
// supaya dapur tahu berapa porsi tiap menu yang harus disiapkan.
func (ac *AdminController) GetKitchenSummary(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be in YYYY-MM-DD format"))
		return
	}

	orders, err := ac.orders.ListOrdersByDeliveryDate(date)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type itemSummary struct {
		ItemName string `json:"item_name"`
		Quantity int    `json:"quantity"`
	}
	summary := make(map[string]map[string]int) // slot -> item -> qty
	for _, order := range orders {
		if order.Status == services.OrderStatusCancelled {
			continue
		}
		slot := order.DeliverySlot
		if slot == "" {
			slot = "unspecified"
		}
		if summary[slot] == nil {
			summary[slot] = make(map[string]int)
		}
		for _, item := range order.OrderItems {
			summary[slot][item.ItemName] += item.Quantity
		}
	}

	result := make(map[string][]itemSummary)
	for slot, items := range summary {
		for name, qty := range items {
			result[slot] = append(result[slot], itemSummary{ItemName: name, Quantity: qty})
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen summary", gin.H{
		"date":  dateStr,
		"slots": result,
	})
}

// reportRange membaca ?from= dan ?to= dengan default 30 hari terakhir
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, errors.New("from must be in YYYY-MM-DD format")
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, errors.New("to must be in YYYY-MM-DD format")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// ExportOrdersCSV -> laporan order dalam rentang tanggal sebagai CSV
func (ac *AdminController) ExportOrdersCSV(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := ac.orders.ListOrdersInRange(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{"order_id", "parent_id", "student_id", "status", "total_amount", "delivery_date", "delivery_slot", "created_at"})
	for _, order := range orders {
		writer.Write([]string{
			strconv.FormatUint(uint64(order.ID), 10),
			strconv.FormatUint(uint64(order.ParentID), 10),
			strconv.FormatUint(uint64(order.StudentID), 10),
			order.Status,
			strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
			order.DeliveryDate.Format("2006-01-02"),
			order.DeliverySlot,
			order.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportOrdersPDF -> laporan order dalam rentang tanggal sebagai PDF
func (ac *AdminController) ExportOrdersPDF(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stats, err := ac.orders.GetOrderStatistics(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	orders, err := ac.orders.ListOrdersInRange(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Laporan Order Kantin")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Periode: %s s/d %s",
		from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total order: %d | Total revenue: %s | Rata-rata order (completed): %s",
		stats.TotalOrders,
		utils.FormatCurrencyIDR(stats.TotalRevenue),
		utils.FormatCurrencyIDR(stats.AverageOrderValue)))
	pdf.Ln(10)

	// Header tabel
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(15, 7, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Tanggal Antar", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Slot", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, order := range orders {
		pdf.CellFormat(15, 6, strconv.FormatUint(uint64(order.ID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, order.DeliveryDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, order.DeliverySlot, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, order.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, utils.FormatCurrencyIDR(order.TotalAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GetRevenueChart -> grafik batang revenue per status order sebagai PNG
func (ac *AdminController) GetRevenueChart(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stats, err := ac.orders.GetOrderStatistics(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	bars := make([]chart.Value, 0, len(stats.PerStatus))
	for _, status := range []string{
		services.OrderStatusPending,
		services.OrderStatusConfirmed,
		services.OrderStatusPreparing,
		services.OrderStatusReady,
		services.OrderStatusCompleted,
		services.OrderStatusCancelled,
	} {
		stat, ok := stats.PerStatus[status]
		if !ok {
			continue
		}
		bars = append(bars, chart.Value{Label: status, Value: stat.Revenue})
	}
	if len(bars) == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("no order data in range"))
		return
	}

	graph := chart.BarChart{
		Title:    "Revenue per Status",
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
