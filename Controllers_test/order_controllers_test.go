package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

type orderCtrlFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	parent  models.Parent
	student models.Student
	rice    models.MenuItem
}

func setupOrderControllerTest(t *testing.T) *orderCtrlFixture {
	db, err := gorm.Open(sqlite.Open("file:orderctrltest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Parent{}, &models.Student{}, &models.MenuItem{},
		&models.SavedCart{}, &models.Order{}, &models.OrderItem{},
		&models.OrderStatusLog{}, &models.ParentTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{
		"parent_transactions", "order_status_logs", "order_items", "orders",
		"saved_carts", "menu_items", "students", "parents", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}

	now := time.Now()
	user := models.User{Name: "Ibu Sari", Email: "sari@test.local", Password: "x", Role: "parent"}
	assert.NoError(t, db.Create(&user).Error)
	parent := models.Parent{UserID: user.ID, Balance: 100000, CreatedAt: now, UpdatedAt: now}
	assert.NoError(t, db.Create(&parent).Error)
	student := models.Student{FirstName: "Dewi", ParentID: &parent.ID, Active: true, CreatedAt: now, UpdatedAt: now}
	assert.NoError(t, db.Create(&student).Error)
	rice := models.MenuItem{Name: "Nasi Uduk", Price: 15000, Category: "main", Available: true,
		Allergens: "[]", DietaryLabels: "[]", AvailableDays: "[]"}
	assert.NoError(t, db.Create(&rice).Error)

	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db)
	cartCtrl := controllers.NewCartController(db)

	api := router.Group("/api")
	api.Use(fakeAuth(user.ID, "parent"))
	{
		api.POST("/orders", orderCtrl.PlaceOrder)
		api.GET("/orders", orderCtrl.GetMyOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		api.GET("/cart", cartCtrl.GetCart)
		api.PUT("/cart", cartCtrl.SaveCart)
		api.DELETE("/cart", cartCtrl.ClearCart)
	}

	admin := router.Group("/admin")
	admin.Use(fakeAuth(99, "admin"))
	{
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		admin.POST("/orders/:order_id/refund", orderCtrl.RefundOrder)
		admin.GET("/orders/statistics", orderCtrl.GetOrderStatistics)
	}

	return &orderCtrlFixture{db: db, router: router, parent: parent, student: student, rice: rice}
}

func (f *orderCtrlFixture) placeOrderRequest(t *testing.T, quantity int) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]interface{}{
		"student_id": f.student.ID,
		"items": []map[string]interface{}{
			{"menu_item_id": f.rice.ID, "quantity": quantity},
		},
		"delivery_date": "2025-03-05",
		"delivery_slot": "lunch",
	})
	req, _ := http.NewRequest("POST", "/api/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderEndpoint(t *testing.T) {
	utils.InitLogger()
	f := setupOrderControllerTest(t)

	w := f.placeOrderRequest(t, 2)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.EqualValues(t, 30000, data["total_amount"])

	// Saldo terdebit
	var parent models.Parent
	assert.NoError(t, f.db.First(&parent, f.parent.ID).Error)
	assert.Equal(t, float64(70000), parent.Balance)
}

func TestPlaceOrderInsufficientBalanceEndpoint(t *testing.T) {
	utils.InitLogger()
	f := setupOrderControllerTest(t)

	// 10 * 15000 = 150000 > saldo 100000
	w := f.placeOrderRequest(t, 10)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPlaceOrderUnavailableItemEndpoint(t *testing.T) {
	utils.InitLogger()
	f := setupOrderControllerTest(t)

	// Item dimatikan admin sebelum checkout
	assert.NoError(t, f.db.Model(&f.rice).Update("available", false).Error)

	w := f.placeOrderRequest(t, 1)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Tidak ada order dan saldo tidak berubah
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
	var parent models.Parent
	assert.NoError(t, f.db.First(&parent, f.parent.ID).Error)
	assert.Equal(t, float64(100000), parent.Balance)
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	utils.InitLogger()
	f := setupOrderControllerTest(t)

	w := f.placeOrderRequest(t, 1)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orderID := int(resp["data"].(map[string]interface{})["id"].(float64))

	// Admin transisi status
	statusBody, _ := json.Marshal(map[string]string{"status": "confirmed"})
	req, _ := http.NewRequest("PATCH", fmt.Sprintf("/admin/orders/%d/status", orderID), bytes.NewBuffer(statusBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Status tak dikenal -> 400
	badBody, _ := json.Marshal(map[string]string{"status": "teleported"})
	req, _ = http.NewRequest("PATCH", fmt.Sprintf("/admin/orders/%d/status", orderID), bytes.NewBuffer(badBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Parent membatalkan ordernya sendiri
	req, _ = http.NewRequest("POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Saldo belum kembali: cancel tidak auto-refund
	var parent models.Parent
	assert.NoError(t, f.db.First(&parent, f.parent.ID).Error)
	assert.Equal(t, float64(85000), parent.Balance)

	// Admin me-refund
	req, _ = http.NewRequest("POST", fmt.Sprintf("/admin/orders/%d/refund", orderID), nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, f.db.First(&parent, f.parent.ID).Error)
	assert.Equal(t, float64(100000), parent.Balance)

	// Refund kedua -> 409
	req, _ = http.NewRequest("POST", fmt.Sprintf("/admin/orders/%d/refund", orderID), nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	utils.InitLogger()
	f := setupOrderControllerTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{
			{"student_id": f.student.ID, "menu_item_id": f.rice.ID, "date": "2025-03-05", "quantity": 2, "slot": "lunch"},
		},
	})
	req, _ := http.NewRequest("PUT", "/api/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/cart", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, items, 1)

	req, _ = http.NewRequest("DELETE", "/api/cart", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/cart", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items, _ = resp["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, items, 0)
}
