package models

import (
	"encoding/json"
	"time"
)

type MenuItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    string  `gorm:"type:varchar(50);not null;index" json:"category"` // main_course, snack, drink, dessert
	// Allergens dan DietaryLabels disimpan sebagai JSON array di kolom text
	Allergens     string    `gorm:"type:text" json:"-"`
	DietaryLabels string    `gorm:"type:text" json:"-"`
	Available     bool      `gorm:"not null;default:true" json:"available"`
	PrepMinutes   int       `json:"prep_minutes"`
	ImageURL      string    `gorm:"type:varchar(255)" json:"image_url"`
	AvailableDays string    `gorm:"type:text" json:"-"` // turunan: hari (monday..friday) di mana item tampil pada menu published minggu ini
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// SetAllergens menyimpan daftar allergen sebagai JSON
func (m *MenuItem) SetAllergens(allergens []string) error {
	data, err := json.Marshal(allergens)
	if err != nil {
		return err
	}
	m.Allergens = string(data)
	return nil
}

// GetAllergens mengembalikan daftar allergen dari kolom JSON
func (m *MenuItem) GetAllergens() []string {
	var allergens []string
	if m.Allergens == "" {
		return allergens
	}
	if err := json.Unmarshal([]byte(m.Allergens), &allergens); err != nil {
		return nil
	}
	return allergens
}

func (m *MenuItem) SetDietaryLabels(labels []string) error {
	data, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	m.DietaryLabels = string(data)
	return nil
}

func (m *MenuItem) GetDietaryLabels() []string {
	var labels []string
	if m.DietaryLabels == "" {
		return labels
	}
	if err := json.Unmarshal([]byte(m.DietaryLabels), &labels); err != nil {
		return nil
	}
	return labels
}

func (m *MenuItem) SetAvailableDays(days []string) error {
	data, err := json.Marshal(days)
	if err != nil {
		return err
	}
	m.AvailableDays = string(data)
	return nil
}

func (m *MenuItem) GetAvailableDays() []string {
	var days []string
	if m.AvailableDays == "" {
		return days
	}
	if err := json.Unmarshal([]byte(m.AvailableDays), &days); err != nil {
		return nil
	}
	return days
}

// MarshalJSON menyertakan field JSON-column sebagai array di response
func (m MenuItem) MarshalJSON() ([]byte, error) {
	type Alias MenuItem
	return json.Marshal(&struct {
		Alias
		Allergens     []string `json:"allergens"`
		DietaryLabels []string `json:"dietary_labels"`
		AvailableDays []string `json:"available_days"`
	}{
		Alias:         Alias(m),
		Allergens:     m.GetAllergens(),
		DietaryLabels: m.GetDietaryLabels(),
		AvailableDays: m.GetAvailableDays(),
	})
}
