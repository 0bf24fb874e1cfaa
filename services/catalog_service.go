package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// importChunkSize membatasi jumlah row per transaksi bulk import supaya
// batch besar tidak melebihi limit backend; setiap chunk di-commit sendiri
// sehingga chunk yang gagal tidak merusak chunk yang sudah tersimpan.
const importChunkSize = 50

// CatalogService menangani katalog menu item
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateItem membuat menu item baru; nama harus unik (case-insensitive)
func (s *CatalogService) CreateItem(item *models.MenuItem) error {
	if item.Price < 0 {
		return ErrInvalidPrice
	}

	var count int64
	if err := s.db.Model(&models.MenuItem{}).
		Where("LOWER(name) = ?", strings.ToLower(item.Name)).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check duplicate name: %w", err)
	}
	if count > 0 {
		return ErrDuplicateName
	}

	if item.Allergens == "" {
		item.Allergens = "[]"
	}
	if item.DietaryLabels == "" {
		item.DietaryLabels = "[]"
	}
	if item.AvailableDays == "" {
		item.AvailableDays = "[]"
	}

	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// GetItemByID mendapatkan menu item berdasarkan ID
func (s *CatalogService) GetItemByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListItems mengembalikan semua menu item
func (s *CatalogService) ListItems() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByCategory mengembalikan menu item per kategori
func (s *CatalogService) ListByCategory(category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.Where("category = ?", category).Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems mencari berdasarkan substring nama atau deskripsi (case-insensitive)
func (s *CatalogService) SearchItems(query string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	pattern := "%" + strings.ToLower(query) + "%"
	if err := s.db.
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem mengupdate menu item in place dan stamp updated_at
func (s *CatalogService) UpdateItem(item *models.MenuItem) error {
	if item.Price < 0 {
		return ErrInvalidPrice
	}

	var existing models.MenuItem
	if err := s.db.First(&existing, item.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrItemNotFound
		}
		return err
	}

	// Nama baru tidak boleh bentrok dengan item lain
	var count int64
	if err := s.db.Model(&models.MenuItem{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(item.Name), item.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check duplicate name: %w", err)
	}
	if count > 0 {
		return ErrDuplicateName
	}

	item.UpdatedAt = time.Now()
	if err := s.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

// SetAvailability mengubah flag availability
func (s *CatalogService) SetAvailability(id uint, available bool) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	item.Available = available
	item.UpdatedAt = time.Now()
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItemResult adalah hasil delete dengan cleanup best-effort. Kegagalan
// cleanup tidak menggagalkan delete, tapi dilaporkan sebagai warning supaya
// caller bisa mengamatinya.
type DeleteItemResult struct {
	ItemID       uint     `json:"item_id"`
	SlotsCleaned int      `json:"slots_cleaned"`
	Warnings     []string `json:"warnings,omitempty"`
}

// DeleteItem menghapus menu item lalu membersihkan referensinya dari semua
// slot weekly menu (orphan cleanup, best-effort).
func (s *CatalogService) DeleteItem(id uint) (*DeleteItemResult, error) {
	var item models.MenuItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if err := s.db.Delete(&models.MenuItem{}, id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete menu item: %w", err)
	}

	result := &DeleteItemResult{ItemID: id}

	// Cleanup referensi di weekly menu. Gagal di sini tidak membatalkan delete.
	var menus []models.WeeklyMenu
	if err := s.db.Find(&menus).Error; err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("failed to scan weekly menus for cleanup: %v", err))
		return result, nil
	}

	for i := range menus {
		menu := &menus[i]
		menuData := menu.GetMenuData()
		cleaned := 0
		for day, meals := range menuData {
			for mealType, ids := range meals {
				filtered := ids[:0]
				for _, itemID := range ids {
					if itemID != id {
						filtered = append(filtered, itemID)
					}
				}
				if len(filtered) != len(ids) {
					cleaned += len(ids) - len(filtered)
					menuData[day][mealType] = filtered
				}
			}
		}
		if cleaned == 0 {
			continue
		}

		if err := menu.SetMenuData(menuData); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to encode menu for week %s: %v", menu.WeekStart.Format("2006-01-02"), err))
			continue
		}
		if err := s.db.Model(&models.WeeklyMenu{}).
			Where("id = ?", menu.ID).
			Update("menu_data", menu.MenuData).Error; err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to clean menu for week %s: %v", menu.WeekStart.Format("2006-01-02"), err))
			continue
		}
		result.SlotsCleaned += cleaned
	}

	return result, nil
}

// ImportRowError adalah kegagalan per-row pada bulk import. Row dihitung
// 1-indexed termasuk baris header.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult merangkum hasil bulk import (PartialBatchFailure: row gagal
// tidak menggagalkan batch).
type ImportResult struct {
	Success    int              `json:"success"`
	Duplicates int              `json:"duplicates"`
	Failed     []ImportRowError `json:"failed"`
}

// BulkImport mengimpor menu item dari data tabular yang sudah di-parse
// (baris pertama adalah header). Kolom wajib: name, description, price,
// category. Kolom opsional: allergens, dietary_labels, prep_minutes
// (allergens/labels dipisah ';').
func (s *CatalogService) BulkImport(rows [][]string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("import data is empty")
	}

	colIndex := make(map[string]int)
	for i, col := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"name", "description", "price", "category"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	// Nama yang sudah ada di katalog dihitung sebagai duplikat
	var existingNames []string
	if err := s.db.Model(&models.MenuItem{}).Pluck("name", &existingNames).Error; err != nil {
		return nil, fmt.Errorf("failed to read existing names: %w", err)
	}
	seen := make(map[string]bool)
	for _, name := range existingNames {
		seen[strings.ToLower(name)] = true
	}

	result := &ImportResult{Failed: []ImportRowError{}}

	type pendingItem struct {
		item models.MenuItem
		row  int
	}
	var chunk []pendingItem

	flush := func() {
		if len(chunk) == 0 {
			return
		}
		tx := s.db.Begin()
		failed := false
		for _, p := range chunk {
			item := p.item
			if err := tx.Create(&item).Error; err != nil {
				failed = true
				break
			}
		}
		if failed {
			tx.Rollback()
			// Seluruh chunk gagal; chunk yang sudah commit tidak tersentuh
			for _, p := range chunk {
				result.Failed = append(result.Failed, ImportRowError{
					Row:   p.row,
					Error: "chunk write failed",
				})
			}
		} else {
			if err := tx.Commit().Error; err != nil {
				for _, p := range chunk {
					result.Failed = append(result.Failed, ImportRowError{
						Row:   p.row,
						Error: fmt.Sprintf("chunk commit failed: %v", err),
					})
				}
			} else {
				result.Success += len(chunk)
			}
		}
		chunk = chunk[:0]
	}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-indexed, header = row 1

		get := func(col string) string {
			idx, ok := colIndex[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := get("name")
		if name == "" {
			result.Failed = append(result.Failed, ImportRowError{Row: rowNum, Error: "name is required"})
			continue
		}

		price, err := strconv.ParseFloat(get("price"), 64)
		if err != nil || price < 0 {
			result.Failed = append(result.Failed, ImportRowError{
				Row:   rowNum,
				Error: fmt.Sprintf("invalid price %q: %v", get("price"), ErrInvalidPrice),
			})
			continue
		}

		category := get("category")
		if category == "" {
			result.Failed = append(result.Failed, ImportRowError{Row: rowNum, Error: "category is required"})
			continue
		}

		// Duplikat dalam batch yang sama di-suppress setelah insert pertama
		if seen[strings.ToLower(name)] {
			result.Duplicates++
			continue
		}
		seen[strings.ToLower(name)] = true

		item := models.MenuItem{
			Name:          name,
			Description:   get("description"),
			Price:         price,
			Category:      category,
			Available:     true,
			Allergens:     "[]",
			DietaryLabels: "[]",
			AvailableDays: "[]",
		}
		if v := get("allergens"); v != "" {
			item.SetAllergens(splitList(v))
		}
		if v := get("dietary_labels"); v != "" {
			item.SetDietaryLabels(splitList(v))
		}
		if v := get("prep_minutes"); v != "" {
			if mins, err := strconv.Atoi(v); err == nil {
				item.PrepMinutes = mins
			}
		}

		chunk = append(chunk, pendingItem{item: item, row: rowNum})
		if len(chunk) >= importChunkSize {
			flush()
		}
	}
	flush()

	return result, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RecomputeAvailableDays menghitung ulang kolom turunan available_days
// berdasarkan konten menu yang baru di-publish. Best-effort: kegagalan
// dikembalikan sebagai warning, bukan error.
func (s *CatalogService) RecomputeAvailableDays(menuData models.MenuByDay) []string {
	var warnings []string

	dayByItem := make(map[uint][]string)
	for _, day := range models.Weekdays {
		meals, ok := menuData[day]
		if !ok {
			continue
		}
		for _, mealType := range models.MealTypes {
			for _, id := range meals[mealType] {
				days := dayByItem[id]
				if len(days) == 0 || days[len(days)-1] != day {
					dayByItem[id] = append(days, day)
				}
			}
		}
	}

	// Reset dulu, lalu set untuk item yang dirujuk
	if err := s.db.Model(&models.MenuItem{}).
		Where("available_days <> ?", "[]").
		Update("available_days", "[]").Error; err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to reset available days: %v", err))
	}

	for id, days := range dayByItem {
		item := models.MenuItem{}
		if err := item.SetAvailableDays(days); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to encode days for item %d: %v", id, err))
			continue
		}
		if err := s.db.Model(&models.MenuItem{}).
			Where("id = ?", id).
			Update("available_days", item.AvailableDays).Error; err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to update days for item %d: %v", id, err))
		}
	}

	return warnings
}
