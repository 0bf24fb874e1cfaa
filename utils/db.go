package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
	mu   sync.RWMutex
)

// InitDB menyimpan koneksi database global. Hanya pemanggilan pertama
// yang berlaku; sisanya diabaikan.
func InitDB(database *gorm.DB) {
	once.Do(func() {
		db = database
	})
}

// GetDB mengembalikan koneksi database yang disimpan InitDB.
// Dipakai komponen yang tidak menerima *gorm.DB lewat constructor.
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}
