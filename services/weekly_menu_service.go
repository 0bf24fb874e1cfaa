package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// Batas jumlah item per slot (day, meal type). Bisa dioverride per instance.
var defaultMaxItemsPerMealType = map[string]int{
	"breakfast": 5,
	"lunch":     8,
	"snack":     5,
	"drinks":    5,
}

// WeeklyMenuService menangani lifecycle menu mingguan:
// draft -> published -> archived, dengan versioned snapshot per publish.
type WeeklyMenuService struct {
	db      *gorm.DB
	catalog *CatalogService

	MaxItemsPerMealType map[string]int
}

func NewWeeklyMenuService(db *gorm.DB, catalog *CatalogService) *WeeklyMenuService {
	return &WeeklyMenuService{
		db:                  db,
		catalog:             catalog,
		MaxItemsPerMealType: defaultMaxItemsPerMealType,
	}
}

// NormalizeWeekStart menggeser tanggal ke hari Senin minggu tersebut
// (jam dibuang).
func NormalizeWeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset)
}

// NormalizeMenuByDay membentuk menu ke bentuk kanonis: tepat lima weekday
// dengan empat meal type masing-masing. Slot Sabtu/Minggu dan meal type tak
// dikenal sengaja di-drop (minggu sekolah); slot yang hilang jadi list kosong.
func NormalizeMenuByDay(in models.MenuByDay) models.MenuByDay {
	out := make(models.MenuByDay, len(models.Weekdays))
	for _, day := range models.Weekdays {
		meals := make(map[string][]uint, len(models.MealTypes))
		for _, mealType := range models.MealTypes {
			ids := []uint{}
			if in != nil && in[day] != nil && in[day][mealType] != nil {
				ids = append(ids, in[day][mealType]...)
			}
			meals[mealType] = ids
		}
		out[day] = meals
	}
	return out
}

// weekCreateError menerjemahkan kegagalan create baris weekly menu: kalau
// minggu itu ternyata sudah punya baris (kalah race dengan request lain
// lewat unique index week_start), kembalikan ErrWeekConflict alih-alih
// error unique-violation mentah dari driver.
func (s *WeeklyMenuService) weekCreateError(weekStart time.Time, err error) error {
	var count int64
	if s.db.Model(&models.WeeklyMenu{}).
		Where("week_start = ?", weekStart).
		Count(&count).Error == nil && count > 0 {
		return ErrWeekConflict
	}
	return fmt.Errorf("failed to create weekly menu: %w", err)
}

// PublishResult membawa menu yang di-publish plus warning dari side effect
// best-effort (recompute available days).
type PublishResult struct {
	Menu     *models.WeeklyMenu `json:"menu"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Publish menormalisasi lalu mem-publish menu untuk minggu weekStart.
// Jika menu untuk minggu itu sudah ada, versi naik 1 dan konten diupdate
// in place; jika belum, dibuat versi 1. Setiap publish menulis tepat satu
// WeeklyMenuVersion snapshot.
func (s *WeeklyMenuService) Publish(weekStart time.Time, menuByDay models.MenuByDay, userID uint) (*PublishResult, error) {
	weekStart = NormalizeWeekStart(weekStart)
	normalized := NormalizeMenuByDay(menuByDay)

	tx := s.db.Begin()

	var menu models.WeeklyMenu
	now := time.Now()
	err := tx.Where("week_start = ?", weekStart).First(&menu).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		tx.Rollback()
		return nil, fmt.Errorf("failed to load weekly menu: %w", err)
	}

	if err == gorm.ErrRecordNotFound {
		menu = models.WeeklyMenu{
			WeekStart:      weekStart,
			Status:         models.MenuStatusPublished,
			CurrentVersion: 1,
			PublishedAt:    &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := menu.SetMenuData(normalized); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to encode menu data: %w", err)
		}
		if err := tx.Create(&menu).Error; err != nil {
			tx.Rollback()
			return nil, s.weekCreateError(weekStart, err)
		}
	} else {
		if err := menu.SetMenuData(normalized); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to encode menu data: %w", err)
		}
		menu.Status = models.MenuStatusPublished
		menu.CurrentVersion++
		menu.PublishedAt = &now
		menu.UpdatedAt = now
		if err := tx.Save(&menu).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update weekly menu: %w", err)
		}
	}

	// Append snapshot immutable untuk versi ini
	version := models.WeeklyMenuVersion{
		WeeklyMenuID: menu.ID,
		Version:      menu.CurrentVersion,
		MenuData:     menu.MenuData,
		CreatedBy:    userID,
		CreatedAt:    now,
	}
	if err := tx.Create(&version).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create menu version snapshot: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit publish: %w", err)
	}

	// Side effect best-effort: kolom turunan available_days
	warnings := s.catalog.RecomputeAvailableDays(normalized)

	return &PublishResult{Menu: &menu, Warnings: warnings}, nil
}

// Update menyimpan konten tanpa publish: status dipaksa kembali ke draft
// dan tidak ada snapshot versi. Edit setelah publish tidak pernah membiarkan
// menu diam-diam tetap published dengan audit state basi.
func (s *WeeklyMenuService) Update(weekStart time.Time, menuByDay models.MenuByDay) (*models.WeeklyMenu, error) {
	weekStart = NormalizeWeekStart(weekStart)
	normalized := NormalizeMenuByDay(menuByDay)

	var menu models.WeeklyMenu
	now := time.Now()
	err := s.db.Where("week_start = ?", weekStart).First(&menu).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load weekly menu: %w", err)
	}

	if err == gorm.ErrRecordNotFound {
		menu = models.WeeklyMenu{
			WeekStart:      weekStart,
			Status:         models.MenuStatusDraft,
			CurrentVersion: 0,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := menu.SetMenuData(normalized); err != nil {
			return nil, fmt.Errorf("failed to encode menu data: %w", err)
		}
		if err := s.db.Create(&menu).Error; err != nil {
			return nil, s.weekCreateError(weekStart, err)
		}
		return &menu, nil
	}

	if err := menu.SetMenuData(normalized); err != nil {
		return nil, fmt.Errorf("failed to encode menu data: %w", err)
	}
	menu.Status = models.MenuStatusDraft
	menu.UpdatedAt = now
	if err := s.db.Save(&menu).Error; err != nil {
		return nil, fmt.Errorf("failed to update weekly menu: %w", err)
	}
	return &menu, nil
}

// Unpublish -> published kembali ke draft (transisi status murni)
func (s *WeeklyMenuService) Unpublish(weekStart time.Time) (*models.WeeklyMenu, error) {
	return s.setStatus(weekStart, models.MenuStatusDraft)
}

// Archive -> menu diarsipkan
func (s *WeeklyMenuService) Archive(weekStart time.Time) (*models.WeeklyMenu, error) {
	return s.setStatus(weekStart, models.MenuStatusArchived)
}

func (s *WeeklyMenuService) setStatus(weekStart time.Time, status string) (*models.WeeklyMenu, error) {
	weekStart = NormalizeWeekStart(weekStart)

	var menu models.WeeklyMenu
	if err := s.db.Where("week_start = ?", weekStart).First(&menu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	menu.Status = status
	menu.UpdatedAt = time.Now()
	if err := s.db.Save(&menu).Error; err != nil {
		return nil, fmt.Errorf("failed to update menu status: %w", err)
	}
	return &menu, nil
}

// RevertToVersion menyalin snapshot versi v ke konten current dan memaksa
// status draft. Tidak pernah otomatis republish.
func (s *WeeklyMenuService) RevertToVersion(weekStart time.Time, version int) (*models.WeeklyMenu, error) {
	weekStart = NormalizeWeekStart(weekStart)

	var menu models.WeeklyMenu
	if err := s.db.Where("week_start = ?", weekStart).First(&menu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	var snapshot models.WeeklyMenuVersion
	if err := s.db.Where("weekly_menu_id = ? AND version = ?", menu.ID, version).
		First(&snapshot).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	menu.MenuData = snapshot.MenuData
	menu.Status = models.MenuStatusDraft
	menu.UpdatedAt = time.Now()
	if err := s.db.Save(&menu).Error; err != nil {
		return nil, fmt.Errorf("failed to revert menu: %w", err)
	}
	return &menu, nil
}

// CopyFromPreviousWeek menyalin konten minggu sebelumnya ke targetWeekStart
// sebagai draft (tanpa auto-publish).
func (s *WeeklyMenuService) CopyFromPreviousWeek(targetWeekStart time.Time) (*models.WeeklyMenu, error) {
	targetWeekStart = NormalizeWeekStart(targetWeekStart)
	prevWeekStart := targetWeekStart.AddDate(0, 0, -7)

	var prev models.WeeklyMenu
	if err := s.db.Where("week_start = ?", prevWeekStart).First(&prev).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNoPreviousMenu
		}
		return nil, err
	}

	return s.Update(targetWeekStart, prev.GetMenuData())
}

// GetByWeek mengembalikan menu untuk minggu tertentu
func (s *WeeklyMenuService) GetByWeek(weekStart time.Time) (*models.WeeklyMenu, error) {
	weekStart = NormalizeWeekStart(weekStart)

	var menu models.WeeklyMenu
	if err := s.db.Where("week_start = ?", weekStart).First(&menu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &menu, nil
}

// GetCurrentPublished mengembalikan menu published untuk minggu berjalan.
// Hanya menu published yang ditampilkan ke parent untuk ordering.
func (s *WeeklyMenuService) GetCurrentPublished() (*models.WeeklyMenu, error) {
	weekStart := NormalizeWeekStart(time.Now())

	var menu models.WeeklyMenu
	if err := s.db.Where("week_start = ? AND status = ?", weekStart, models.MenuStatusPublished).
		First(&menu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &menu, nil
}

// ListVersions mengembalikan seluruh snapshot versi untuk satu minggu
func (s *WeeklyMenuService) ListVersions(weekStart time.Time) ([]models.WeeklyMenuVersion, error) {
	menu, err := s.GetByWeek(weekStart)
	if err != nil {
		return nil, err
	}

	var versions []models.WeeklyMenuVersion
	if err := s.db.Where("weekly_menu_id = ?", menu.ID).
		Order("version asc").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// MenuValidationError menunjuk slot (day, meal type) yang melanggar batas.
type MenuValidationError struct {
	Day      string `json:"day"`
	MealType string `json:"meal_type"`
	Message  string `json:"message"`
}

// MenuValidationResult adalah hasil validateMenu / validateItemsAvailability.
type MenuValidationResult struct {
	IsValid  bool                  `json:"is_valid"`
	Errors   []MenuValidationError `json:"errors"`
	Warnings []MenuValidationError `json:"warnings"`
}

// ValidateMenu memeriksa jumlah item per slot terhadap tabel max-items.
// Fungsi murni, tanpa I/O: slot melebihi batas jadi error, slot kosong
// jadi warning.
func (s *WeeklyMenuService) ValidateMenu(menuByDay models.MenuByDay) MenuValidationResult {
	result := MenuValidationResult{
		IsValid:  true,
		Errors:   []MenuValidationError{},
		Warnings: []MenuValidationError{},
	}

	normalized := NormalizeMenuByDay(menuByDay)
	for _, day := range models.Weekdays {
		for _, mealType := range models.MealTypes {
			ids := normalized[day][mealType]
			max := s.MaxItemsPerMealType[mealType]
			if max > 0 && len(ids) > max {
				result.IsValid = false
				result.Errors = append(result.Errors, MenuValidationError{
					Day:      day,
					MealType: mealType,
					Message:  fmt.Sprintf("%d items exceeds the maximum of %d", len(ids), max),
				})
			}
			if len(ids) == 0 {
				result.Warnings = append(result.Warnings, MenuValidationError{
					Day:      day,
					MealType: mealType,
					Message:  "slot is empty",
				})
			}
		}
	}

	return result
}

// ValidateItemsAvailability mengecek id yang dirujuk menu terhadap katalog:
// item yang tidak tersedia atau sudah tidak ada jadi warning, dengan nama
// item di-resolve untuk display.
func (s *WeeklyMenuService) ValidateItemsAvailability(menuByDay models.MenuByDay) (MenuValidationResult, error) {
	result := MenuValidationResult{
		IsValid:  true,
		Errors:   []MenuValidationError{},
		Warnings: []MenuValidationError{},
	}

	normalized := NormalizeMenuByDay(menuByDay)
	ids := normalized.ReferencedItemIDs()
	if len(ids) == 0 {
		return result, nil
	}

	var items []models.MenuItem
	if err := s.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return result, fmt.Errorf("failed to load referenced items: %w", err)
	}
	byID := make(map[uint]*models.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	for _, day := range models.Weekdays {
		for _, mealType := range models.MealTypes {
			for _, id := range normalized[day][mealType] {
				item, ok := byID[id]
				if !ok {
					result.Warnings = append(result.Warnings, MenuValidationError{
						Day:      day,
						MealType: mealType,
						Message:  fmt.Sprintf("item %d no longer exists", id),
					})
					continue
				}
				if !item.Available {
					result.Warnings = append(result.Warnings, MenuValidationError{
						Day:      day,
						MealType: mealType,
						Message:  fmt.Sprintf("item %q is not available", item.Name),
					})
				}
			}
		}
	}

	return result, nil
}
