package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

func setupTestDBForMenuItems(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:menuitemctrltest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.MenuItem{}, &models.WeeklyMenu{}, &models.WeeklyMenuVersion{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Exec("DELETE FROM menu_items")
	db.Exec("DELETE FROM weekly_menus")
	db.Exec("DELETE FROM weekly_menu_versions")
	return db
}

func setupMenuItemRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	itemCtrl := controllers.NewMenuItemController(db)
	router.GET("/menu-items", itemCtrl.GetAllItems)
	router.POST("/menu-items", itemCtrl.CreateItem)
	router.GET("/menu-items/:item_id", itemCtrl.GetItemByID)
	router.PATCH("/menu-items/:item_id", itemCtrl.UpdateItem)
	router.PATCH("/menu-items/:item_id/availability", itemCtrl.SetAvailability)
	router.DELETE("/menu-items/:item_id", itemCtrl.DeleteItem)
	return router
}

func TestMenuItemCRUD(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenuItems(t)
	router := setupMenuItemRouter(db)

	// Create
	payload := map[string]interface{}{
		"name":           "Nasi Ayam",
		"description":    "Nasi dengan ayam goreng",
		"price":          18000,
		"category":       "main",
		"allergens":      []string{"soy"},
		"dietary_labels": []string{"halal"},
		"prep_minutes":   15,
	}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", "/menu-items", bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	data, ok := createResp["data"].(map[string]interface{})
	assert.True(t, ok)
	itemID := int(data["id"].(float64))
	assert.Equal(t, "Nasi Ayam", data["name"])
	assert.Equal(t, []interface{}{"soy"}, data["allergens"])

	// Duplicate name -> 409
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/menu-items", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Get by ID
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/menu-items/"+strconv.Itoa(itemID), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Update
	payload["description"] = "Porsi besar"
	payloadBytes, _ = json.Marshal(payload)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/menu-items/"+strconv.Itoa(itemID), bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Toggle availability
	availPayload, _ := json.Marshal(map[string]interface{}{"available": false})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/menu-items/"+strconv.Itoa(itemID)+"/availability", bytes.NewBuffer(availPayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var item models.MenuItem
	assert.NoError(t, db.First(&item, itemID).Error)
	assert.False(t, item.Available)
	assert.Equal(t, "Porsi besar", item.Description)

	// Delete
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/menu-items/"+strconv.Itoa(itemID), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/menu-items/"+strconv.Itoa(itemID), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuItemSearchAndFilter(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenuItems(t)
	router := setupMenuItemRouter(db)

	seed := []models.MenuItem{
		{Name: "Ayam Bakar", Price: 20000, Category: "main", Available: true, Allergens: "[]", DietaryLabels: "[]", AvailableDays: "[]"},
		{Name: "Es Teh", Price: 5000, Category: "drinks", Available: true, Allergens: "[]", DietaryLabels: "[]", AvailableDays: "[]"},
	}
	for i := range seed {
		assert.NoError(t, db.Create(&seed[i]).Error)
	}

	// Filter kategori
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/menu-items?category=drinks", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	assert.Len(t, items, 1)

	// Search substring
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/menu-items?q=ayam", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items = resp["data"].([]interface{})
	assert.Len(t, items, 1)
}

func TestMenuItemImportCSV(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenuItems(t)

	gin.SetMode(gin.TestMode)
	router := gin.Default()
	itemCtrl := controllers.NewMenuItemController(db)
	router.POST("/menu-items/import", itemCtrl.ImportItems)

	csvBody := "name,description,price,category\n" +
		"Mie Goreng,with vegetables,15000,main\n" +
		"Bad Row,negative,-10,main\n"

	var buf bytes.Buffer
	mw := newMultipartCSV(t, &buf, "file", "items.csv", csvBody)

	req, _ := http.NewRequest("POST", "/menu-items/import", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["success"])
	failed := data["failed"].([]interface{})
	assert.Len(t, failed, 1)
}
