package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type MenuItemController struct {
	DB      *gorm.DB
	catalog *services.CatalogService
}

func NewMenuItemController(db *gorm.DB) *MenuItemController {
	return &MenuItemController{
		DB:      db,
		catalog: services.NewCatalogService(db),
	}
}

type menuItemRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Category      string   `json:"category" binding:"required"`
	Allergens     []string `json:"allergens"`
	DietaryLabels []string `json:"dietary_labels"`
	Available     *bool    `json:"available"`
	PrepMinutes   int      `json:"prep_minutes"`
	ImageURL      string   `json:"image_url"`
}

// GetAllItems -> list seluruh katalog; mendukung ?category= dan ?q=
func (mc *MenuItemController) GetAllItems(c *gin.Context) {
	var items []models.MenuItem
	var err error

	if q := c.Query("q"); q != "" {
		items, err = mc.catalog.SearchItems(q)
	} else if category := c.Query("category"); category != "" {
		items, err = mc.catalog.ListByCategory(category)
	} else {
		items, err = mc.catalog.ListItems()
	}

	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// CreateItem -> buat menu item baru (admin)
func (mc *MenuItemController) CreateItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   true,
		PrepMinutes: req.PrepMinutes,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	item.SetAllergens(req.Allergens)
	item.SetDietaryLabels(req.DietaryLabels)

	if err := mc.catalog.CreateItem(&item); err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastMenuItemUpdate(item)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// GetItemByID
func (mc *MenuItemController) GetItemByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	item, err := mc.catalog.GetItemByID(uint(id))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// UpdateItem -> update in place, stamp updated_at
func (mc *MenuItemController) UpdateItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	item, err := mc.catalog.GetItemByID(uint(id))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.Category = req.Category
	item.PrepMinutes = req.PrepMinutes
	if req.ImageURL != "" {
		item.ImageURL = req.ImageURL
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	item.SetAllergens(req.Allergens)
	item.SetDietaryLabels(req.DietaryLabels)

	if err := mc.catalog.UpdateItem(item); err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastMenuItemUpdate(*item)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// SetAvailability -> toggle flag available
func (mc *MenuItemController) SetAvailability(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.catalog.SetAvailability(uint(id), *req.Available)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastMenuItemUpdate(*item)
	utils.RespondJSON(c, http.StatusOK, "Availability updated", item)
}

// DeleteItem -> hapus item + cleanup referensi di weekly menu. Warning dari
// cleanup ikut di payload sukses supaya caller bisa menampilkannya.
func (mc *MenuItemController) DeleteItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	result, err := mc.catalog.DeleteItem(uint(id))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastMenuItemUpdate(models.MenuItem{ID: uint(id)})
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", result)
}

// UploadItemImage menyimpan foto menu item ke local storage
func (mc *MenuItemController) UploadItemImage(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	item, err := mc.catalog.GetItemByID(uint(id))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	// Batasi ukuran upload ke 10MB
	c.Request.ParseMultipartForm(10 << 20)

	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image file is required"))
		return
	}

	uploadDir := "public/uploads/menu_images"
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("error creating upload directory"))
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), file.Filename)
	filepath := fmt.Sprintf("%s/%s", uploadDir, filename)
	if err := c.SaveUploadedFile(file, filepath); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("error saving image"))
		return
	}

	item.ImageURL = fmt.Sprintf("/uploads/menu_images/%s", filename)
	if err := mc.DB.Model(&models.MenuItem{}).
		Where("id = ?", item.ID).
		Update("image_url", item.ImageURL).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Image uploaded", gin.H{"image_url": item.ImageURL})
}

// ImportItems menerima file CSV dan meneruskannya ke bulk import.
// Parsing CSV hanya terjadi di boundary ini; row gagal dilaporkan per-row
// tanpa menggagalkan batch.
func (mc *MenuItemController) ImportItems(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("csv file is required"))
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot open uploaded file"))
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // jumlah kolom divalidasi per-row oleh service
	rows, err := reader.ReadAll()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid csv: %w", err))
		return
	}

	result, err := mc.catalog.BulkImport(rows)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Import finished", result)
}
