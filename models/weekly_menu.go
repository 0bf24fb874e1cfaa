package models

import (
	"encoding/json"
	"time"
)

// Status weekly menu
const (
	MenuStatusDraft     = "draft"
	MenuStatusPublished = "published"
	MenuStatusArchived  = "archived"
)

// Weekdays dan MealTypes adalah bentuk kanonis menu mingguan:
// tepat Senin-Jumat dengan empat meal type per hari. Slot di luar
// itu sengaja di-drop saat normalisasi (minggu sekolah).
var (
	Weekdays  = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	MealTypes = []string{"breakfast", "lunch", "snack", "drinks"}
)

// MenuByDay memetakan weekday -> meal type -> daftar menu item ID terurut.
type MenuByDay map[string]map[string][]uint

// WeeklyMenu menampung jadwal menu untuk satu minggu (key: Senin minggu tsb).
// Invariant: paling banyak satu WeeklyMenu per week_start.
type WeeklyMenu struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	WeekStart      time.Time  `gorm:"type:date;uniqueIndex;not null" json:"week_start"`
	MenuData       string     `gorm:"type:text;not null" json:"-"` // JSON MenuByDay
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CurrentVersion int        `gorm:"not null;default:0" json:"current_version"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

// SetMenuData menyimpan MenuByDay sebagai JSON
func (wm *WeeklyMenu) SetMenuData(m MenuByDay) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	wm.MenuData = string(data)
	return nil
}

// GetMenuData mengembalikan MenuByDay dari kolom JSON
func (wm *WeeklyMenu) GetMenuData() MenuByDay {
	var m MenuByDay
	if wm.MenuData == "" {
		return MenuByDay{}
	}
	if err := json.Unmarshal([]byte(wm.MenuData), &m); err != nil {
		return MenuByDay{}
	}
	return m
}

// ReferencedItemIDs mengumpulkan semua menu item ID yang dirujuk menu ini (unik)
func (m MenuByDay) ReferencedItemIDs() []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, meals := range m {
		for _, itemIDs := range meals {
			for _, id := range itemIDs {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}

// MarshalJSON menyertakan menu_by_day sebagai object di response
func (wm WeeklyMenu) MarshalJSON() ([]byte, error) {
	type Alias WeeklyMenu
	return json.Marshal(&struct {
		Alias
		MenuByDay MenuByDay `json:"menu_by_day"`
	}{
		Alias:     Alias(wm),
		MenuByDay: wm.GetMenuData(),
	})
}
