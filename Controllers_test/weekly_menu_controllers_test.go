package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

func setupTestDBForWeeklyMenus(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:weeklymenuctrltest?mode=memory&cache=shared"), &gorm.Config{})
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

func setupWeeklyMenuRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	menuCtrl := controllers.NewWeeklyMenuController(db)

	admin := router.Group("/admin")
	admin.Use(fakeAuth(1, "admin"))
	{
		admin.GET("/weekly-menus/:week_start", menuCtrl.GetMenuByWeek)
		admin.PUT("/weekly-menus/:week_start", menuCtrl.UpdateMenu)
		admin.POST("/weekly-menus/:week_start/publish", menuCtrl.PublishMenu)
		admin.POST("/weekly-menus/:week_start/unpublish", menuCtrl.UnpublishMenu)
		admin.POST("/weekly-menus/:week_start/revert/:version", menuCtrl.RevertMenu)
		admin.GET("/weekly-menus/:week_start/versions", menuCtrl.ListVersions)
		admin.POST("/weekly-menus/validate", menuCtrl.ValidateMenu)
	}
	return router
}

func publishPayload(week string, lunchIDs []uint) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"week_start": week,
		"menu_by_day": map[string]interface{}{
			"monday": map[string]interface{}{"lunch": lunchIDs},
		},
	})
	return body
}

func TestWeeklyMenuPublishFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForWeeklyMenus(t)
	router := setupWeeklyMenuRouter(db)

	week := "2025-03-03"

	// Publish v1
	req, _ := http.NewRequest("POST", "/admin/weekly-menus/"+week+"/publish", bytes.NewBuffer(publishPayload(week, []uint{1})))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	menu := data["menu"].(map[string]interface{})
	assert.Equal(t, "published", menu["status"])
	assert.EqualValues(t, 1, menu["current_version"])

	// Publish v2 dengan konten lain
	req, _ = http.NewRequest("POST", "/admin/weekly-menus/"+week+"/publish", bytes.NewBuffer(publishPayload(week, []uint{1, 2})))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Dua snapshot versi tersimpan
	req, _ = http.NewRequest("GET", "/admin/weekly-menus/"+week+"/versions", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	versions := resp["data"].([]interface{})
	assert.Len(t, versions, 2)

	// Revert ke v1 -> draft
	req, _ = http.NewRequest("POST", "/admin/weekly-menus/"+week+"/revert/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	reverted := resp["data"].(map[string]interface{})
	assert.Equal(t, "draft", reverted["status"])

	// Revert ke versi tak dikenal -> 404
	req, _ = http.NewRequest("POST", "/admin/weekly-menus/"+week+"/revert/9", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeeklyMenuBadWeekStart(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForWeeklyMenus(t)
	router := setupWeeklyMenuRouter(db)

	req, _ := http.NewRequest("GET", "/admin/weekly-menus/bukan-tanggal", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Minggu yang belum ada menunya -> 404
	req, _ = http.NewRequest("GET", "/admin/weekly-menus/2030-01-07", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeeklyMenuValidateEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForWeeklyMenus(t)
	router := setupWeeklyMenuRouter(db)

	// 9 item di lunch melebihi batas default 8
	ids := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9}
	body, _ := json.Marshal(map[string]interface{}{
		"menu_by_day": map[string]interface{}{
			"monday": map[string]interface{}{"lunch": ids},
		},
	})
	req, _ := http.NewRequest("POST", "/admin/weekly-menus/validate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	structure := data["structure"].(map[string]interface{})
	assert.Equal(t, false, structure["is_valid"])
	errs := structure["errors"].([]interface{})
	assert.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "monday", first["day"])
	assert.Equal(t, "lunch", first["meal_type"])
}
