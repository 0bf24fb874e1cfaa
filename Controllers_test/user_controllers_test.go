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

func setupTestDBForUsers(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:userctrltest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Parent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Exec("DELETE FROM parents")
	db.Exec("DELETE FROM users")
	return db
}

func setupUserRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)
	return router
}

func TestRegisterParentProvisionsProfile(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	body, _ := json.Marshal(map[string]string{
		"name":     "Ibu Rina",
		"email":    "rina@test.local",
		"password": "rahasia123",
		"role":     "parent",
		"phone":    "081234567890",
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotNil(t, data["parent_id"])

	// Profil parent ikut dibuat dengan saldo awal 0
	var parent models.Parent
	assert.NoError(t, db.Where("user_id = ?", uint(data["user_id"].(float64))).First(&parent).Error)
	assert.Equal(t, float64(0), parent.Balance)
	assert.Equal(t, "081234567890", parent.Phone)
}

func TestRegisterValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	// Password terlalu pendek
	body, _ := json.Marshal(map[string]string{
		"name": "X", "email": "x@test.local", "password": "123", "role": "parent",
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Role di luar admin/parent
	body, _ = json.Marshal(map[string]string{
		"name": "X", "email": "x@test.local", "password": "rahasia123", "role": "chef",
	})
	req, _ = http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	body, _ := json.Marshal(map[string]string{
		"name":     "Admin Kantin",
		"email":    "admin@test.local",
		"password": "rahasia123",
		"role":     "admin",
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Login benar -> token
	loginBody, _ := json.Marshal(map[string]string{
		"email": "admin@test.local", "password": "rahasia123",
	})
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "admin", data["user_role"])

	// Password salah -> 401
	badBody, _ := json.Marshal(map[string]string{
		"email": "admin@test.local", "password": "salah",
	})
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(badBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Email tak terdaftar -> 401
	unknownBody, _ := json.Marshal(map[string]string{
		"email": "tidak-ada@test.local", "password": "rahasia123",
	})
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(unknownBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
