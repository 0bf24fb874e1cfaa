package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type ParentController struct {
	DB     *gorm.DB
	wallet *services.WalletService
}

func NewParentController(db *gorm.DB) *ParentController {
	return &ParentController{
		DB:     db,
		wallet: services.NewWalletService(db),
	}
}

// GetMyProfile -> profil parent yang login beserta anak-anaknya
func (pc *ParentController) GetMyProfile(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := pc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var students []models.Student
	if err := pc.DB.Where("parent_id = ?", parent.ID).Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Parent profile", gin.H{
		"parent":   parent,
		"students": students,
	})
}

// UpdateMyProfile -> parent memperbarui alamat/telepon
func (pc *ParentController) UpdateMyProfile(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := pc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var req struct {
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	parent.Address = req.Address
	parent.Phone = req.Phone
	parent.UpdatedAt = time.Now()
	if err := pc.DB.Save(parent).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", parent)
}

// GetAllParents -> seluruh profil parent (admin)
func (pc *ParentController) GetAllParents(c *gin.Context) {
	var parents []models.Parent
	if err := pc.DB.Preload("User").Order("id asc").Find(&parents).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of parents", parents)
}

// GetParentByID -> detail parent + anak-anaknya (admin)
func (pc *ParentController) GetParentByID(c *gin.Context) {
	parentID, _ := strconv.Atoi(c.Param("parent_id"))

	parent, err := pc.wallet.GetParentByID(uint(parentID))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var students []models.Student
	if err := pc.DB.Where("parent_id = ?", parent.ID).Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Parent detail", gin.H{
		"parent":   parent,
		"students": students,
	})
}
