package services

import (
	"log"
	"time"

	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// ChangeMonitor mem-polling tabel db_changes (diisi trigger SQL) dan
// me-re-emit event ke hub websocket supaya stream "current weekly menu"
// dan "orders" di klien selalu segar setelah write apa pun.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	// Gunakan transaction untuk mencegah race condition
	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "menu_items":
			cm.processMenuItemChange(change)
		case "weekly_menus":
			cm.processWeeklyMenuChange(change)
		case "orders":
			cm.processOrderChange(change)
		case "topups":
			cm.processTopupChange(change)
		case "notifications":
			cm.processNotificationChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing transaction: %v", err)
		return
	}
}

func (cm *ChangeMonitor) processMenuItemChange(change models.DBChange) {
	var item models.MenuItem

	if change.ActionType == "DELETE" {
		live.BroadcastMenuItemUpdate(models.MenuItem{ID: uint(change.RecordID)})
		return
	}
	if err := cm.DB.First(&item, change.RecordID).Error; err != nil {
		log.Printf("Error fetching menu item: %v", err)
		return
	}
	live.BroadcastMenuItemUpdate(item)
}

func (cm *ChangeMonitor) processWeeklyMenuChange(change models.DBChange) {
	var menu models.WeeklyMenu

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.First(&menu, change.RecordID).Error; err != nil {
		log.Printf("Error fetching weekly menu: %v", err)
		return
	}
	live.BroadcastWeeklyMenuUpdate(menu)
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.Preload("OrderItems").First(&order, change.RecordID).Error; err != nil {
		log.Printf("Error fetching order: %v", err)
		return
	}
	live.BroadcastOrderUpdate(order)
}

func (cm *ChangeMonitor) processTopupChange(change models.DBChange) {
	var topup models.Topup

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.First(&topup, change.RecordID).Error; err != nil {
		log.Printf("Error fetching topup: %v", err)
		return
	}
	live.BroadcastTopupUpdate(topup)

	if topup.Status == TopupStatusPending && change.ActionType == "INSERT" {
		live.BroadcastAdminNotification("New topup request waiting for approval")
	}
}

func (cm *ChangeMonitor) processNotificationChange(change models.DBChange) {
	var notif models.Notification

	if change.ActionType != "INSERT" {
		return
	}
	if err := cm.DB.First(&notif, change.RecordID).Error; err != nil {
		log.Printf("Error fetching notification: %v", err)
		return
	}
	if notif.UserID != nil {
		live.BroadcastNotification(*notif.UserID, notif)
	}
}
