package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWeeklyMenuTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:weeklymenutest?mode=memory&cache=shared"), &gorm.Config{})
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

func newWeeklyMenuService(db *gorm.DB) *WeeklyMenuService {
	return NewWeeklyMenuService(db, NewCatalogService(db))
}

func TestNormalizeWeekStart(t *testing.T) {
	// Kamis 2025-03-06 -> Senin 2025-03-03
	thursday := time.Date(2025, 3, 6, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), NormalizeWeekStart(thursday))

	// Senin tetap Senin
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, NormalizeWeekStart(monday))

	// Minggu masuk ke minggu yang dimulai Senin sebelumnya
	sunday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, NormalizeWeekStart(sunday))
}

func TestNormalizeMenuByDayDropsWeekends(t *testing.T) {
	normalized := NormalizeMenuByDay(models.MenuByDay{
		"monday":   {"lunch": {1, 2}},
		"saturday": {"lunch": {3}},
		"sunday":   {"breakfast": {4}},
		"tuesday":  {"supper": {5}}, // meal type tak dikenal
	})

	assert.Len(t, normalized, 5)
	assert.NotContains(t, normalized, "saturday")
	assert.NotContains(t, normalized, "sunday")
	assert.NotContains(t, normalized["tuesday"], "supper")
	assert.Equal(t, []uint{1, 2}, normalized["monday"]["lunch"])

	// Slot yang hilang jadi list kosong, bukan nil
	assert.NotNil(t, normalized["friday"]["drinks"])
	assert.Len(t, normalized["friday"]["drinks"], 0)
}

func TestPublishIncrementsVersionAndSnapshots(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	week := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	result, err := svc.Publish(week, models.MenuByDay{"monday": {"lunch": {1}}}, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.MenuStatusPublished, result.Menu.Status)
	assert.Equal(t, 1, result.Menu.CurrentVersion)
	assert.NotNil(t, result.Menu.PublishedAt)

	// Publish kedua menaikkan versi dan menulis snapshot baru
	result, err = svc.Publish(week, models.MenuByDay{"monday": {"lunch": {1, 2}}}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Menu.CurrentVersion)

	versions, err := svc.ListVersions(week)
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)

	// Snapshot versi terakhir sama persis dengan konten current
	assert.Equal(t, result.Menu.MenuData, versions[1].MenuData)
}

func TestUpdateForcesDraftWithoutSnapshot(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	week := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Publish(week, models.MenuByDay{"monday": {"lunch": {1}}}, 1)
	assert.NoError(t, err)

	menu, err := svc.Update(week, models.MenuByDay{"monday": {"lunch": {1, 2}}})
	assert.NoError(t, err)
	assert.Equal(t, models.MenuStatusDraft, menu.Status)
	// Versi tidak naik dan tidak ada snapshot baru
	assert.Equal(t, 1, menu.CurrentVersion)

	versions, err := svc.ListVersions(week)
	assert.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestRevertToVersionByteEqual(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	week := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

	_, err := svc.Publish(week, models.MenuByDay{"monday": {"lunch": {1}}}, 1)
	assert.NoError(t, err)
	_, err = svc.Publish(week, models.MenuByDay{"monday": {"lunch": {9, 9, 9}}}, 1)
	assert.NoError(t, err)

	versions, err := svc.ListVersions(week)
	assert.NoError(t, err)

	menu, err := svc.RevertToVersion(week, 1)
	assert.NoError(t, err)
	// Konten hasil revert identik byte-for-byte dengan snapshot
	assert.Equal(t, versions[0].MenuData, menu.MenuData)
	// Revert selalu meninggalkan status draft, tidak auto-republish
	assert.Equal(t, models.MenuStatusDraft, menu.Status)

	_, err = svc.RevertToVersion(week, 42)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestCopyFromPreviousWeek(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	prevWeek := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	nextWeek := prevWeek.AddDate(0, 0, 7)

	_, err := svc.CopyFromPreviousWeek(nextWeek)
	assert.ErrorIs(t, err, ErrNoPreviousMenu)

	_, err = svc.Publish(prevWeek, models.MenuByDay{"monday": {"lunch": {7}}}, 1)
	assert.NoError(t, err)

	menu, err := svc.CopyFromPreviousWeek(nextWeek)
	assert.NoError(t, err)
	assert.Equal(t, models.MenuStatusDraft, menu.Status)
	assert.Equal(t, []uint{7}, menu.GetMenuData()["monday"]["lunch"])
}

func TestValidateMenuPerSlotLimits(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	svc.MaxItemsPerMealType = map[string]int{
		"breakfast": 5,
		"lunch":     2,
		"snack":     5,
		"drinks":    5,
	}

	// Rabu lunch melebihi batas 2
	result := svc.ValidateMenu(models.MenuByDay{
		"wednesday": {"lunch": {1, 2, 3}},
	})
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "wednesday", result.Errors[0].Day)
	assert.Equal(t, "lunch", result.Errors[0].MealType)

	// Slot kosong jadi warning, bukan error
	assert.NotEmpty(t, result.Warnings)

	result = svc.ValidateMenu(models.MenuByDay{
		"wednesday": {"lunch": {1, 2}},
	})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateItemsAvailability(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	catalog := NewCatalogService(db)
	svc := NewWeeklyMenuService(db, catalog)

	available := &models.MenuItem{Name: "Soto", Price: 15000, Category: "main", Available: true}
	unavailable := &models.MenuItem{Name: "Bakso", Price: 12000, Category: "main", Available: false}
	assert.NoError(t, catalog.CreateItem(available))
	assert.NoError(t, catalog.CreateItem(unavailable))

	result, err := svc.ValidateItemsAvailability(models.MenuByDay{
		"monday": {"lunch": {available.ID, unavailable.ID, 9999}},
	})
	assert.NoError(t, err)
	assert.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0].Message, "Bakso")
	assert.Contains(t, result.Warnings[1].Message, "no longer exists")
}

func TestWeekCreateErrorMapsDuplicateWeek(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	svc := newWeeklyMenuService(db)
	week := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)

	// Belum ada baris untuk minggu itu: error create dibungkus apa adanya
	driverErr := errors.New("database is locked")
	err := svc.weekCreateError(week, driverErr)
	assert.NotErrorIs(t, err, ErrWeekConflict)
	assert.ErrorIs(t, err, driverErr)

	// Begitu ada baris, kegagalan create diterjemahkan jadi konflik minggu
	_, perr := svc.Publish(week, models.MenuByDay{"monday": {"lunch": {1}}}, 1)
	assert.NoError(t, perr)

	err = svc.weekCreateError(week, errors.New("UNIQUE constraint failed: weekly_menus.week_start"))
	assert.ErrorIs(t, err, ErrWeekConflict)
	assert.True(t, IsConflict(err))
}

func TestPublishRecomputesAvailableDays(t *testing.T) {
	db := setupWeeklyMenuTestDB(t)
	catalog := NewCatalogService(db)
	svc := NewWeeklyMenuService(db, catalog)

	item := &models.MenuItem{Name: "Gado Gado", Price: 14000, Category: "main", Available: true}
	assert.NoError(t, catalog.CreateItem(item))

	week := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	result, err := svc.Publish(week, models.MenuByDay{
		"monday": {"lunch": {item.ID}},
		"friday": {"lunch": {item.ID}},
	}, 1)
	assert.NoError(t, err)
	assert.Empty(t, result.Warnings)

	reloaded, err := catalog.GetItemByID(item.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"monday", "friday"}, reloaded.GetAvailableDays())
}
