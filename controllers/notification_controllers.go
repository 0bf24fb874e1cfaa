package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetMyNotifications -> notifikasi milik user yang login, terbaru dulu
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	var notifs []models.Notification
	if err := nc.DB.Where("user_id = ? OR user_id IS NULL", userID).
		Order("created_at desc").
		Limit(100).
		Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My notifications", notifs)
}

// CreateNotification -> admin membuat pengumuman (broadcast atau per user)
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	type reqBody struct {
		UserID  *uint  `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif := models.Notification{
		Message: body.Message,
	}
	if body.Title != "" {
		notif.Title = &body.Title
	}
	if body.UserID != nil {
		notif.UserID = body.UserID
	}

	if err := nc.DB.Create(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Notification created: %v", notif.Message)

	if notif.UserID != nil {
		live.BroadcastNotification(*notif.UserID, notif)
	} else {
		live.BroadcastMessage(live.Message{Event: live.EventNotification, Data: notif})
	}

	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

// MarkAsRead -> tandai satu notifikasi sebagai dibaca
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if notif.UserID != nil && *notif.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	notif.Read = true
	if err := nc.DB.Save(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}

// DeleteNotification -> hapus notifikasi (admin)
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
