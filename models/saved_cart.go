package models

import (
	"encoding/json"
	"time"
)

// CartItem adalah satu baris keranjang milik parent. Keranjang murni state
// klien: tidak ada validasi server sampai keranjang diubah menjadi order.
type CartItem struct {
	StudentID  uint      `json:"student_id"`
	MenuItemID uint      `json:"menu_item_id"`
	Date       string    `json:"date,omitempty"` // YYYY-MM-DD, diisi untuk weekly cart item
	Quantity   int       `json:"quantity"`
	Slot       string    `json:"slot,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// SavedCart adalah snapshot keranjang per parent untuk session continuity.
type SavedCart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ParentID  uint      `gorm:"uniqueIndex;not null" json:"parent_id"`
	Items     string    `gorm:"type:text;not null" json:"-"` // JSON []CartItem
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (sc *SavedCart) SetItems(items []CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	sc.Items = string(data)
	return nil
}

func (sc *SavedCart) GetItems() []CartItem {
	var items []CartItem
	if sc.Items == "" {
		return items
	}
	if err := json.Unmarshal([]byte(sc.Items), &items); err != nil {
		return nil
	}
	return items
}

func (sc SavedCart) MarshalJSON() ([]byte, error) {
	type Alias SavedCart
	return json.Marshal(&struct {
		Alias
		Items []CartItem `json:"items"`
	}{
		Alias: Alias(sc),
		Items: sc.GetItems(),
	})
}
