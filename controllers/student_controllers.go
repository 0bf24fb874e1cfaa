package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type StudentController struct {
	DB     *gorm.DB
	wallet *services.WalletService
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{
		DB:     db,
		wallet: services.NewWalletService(db),
	}
}

type studentRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name"`
	Grade        string `json:"grade"`
	AllergyNotes string `json:"allergy_notes"`
	DietaryNotes string `json:"dietary_notes"`
}

// CreateStudent -> admin mendaftarkan siswa baru (belum ter-link ke parent)
func (sc *StudentController) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	student := models.Student{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Grade:        req.Grade,
		AllergyNotes: req.AllergyNotes,
		DietaryNotes: req.DietaryNotes,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := sc.DB.Create(&student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Student created", student)
}

// GetAllStudents -> seluruh siswa (admin); ?active=true untuk filter
func (sc *StudentController) GetAllStudents(c *gin.Context) {
	query := sc.DB.Model(&models.Student{})
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var students []models.Student
	if err := query.Order("first_name asc").Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of students", students)
}

// GetMyStudents -> anak-anak milik parent yang login
func (sc *StudentController) GetMyStudents(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	parent, err := sc.wallet.GetParentByUserID(userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var students []models.Student
	if err := sc.DB.Where("parent_id = ?", parent.ID).
		Order("first_name asc").
		Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My students", students)
}

// GetStudentByID
func (sc *StudentController) GetStudentByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("student_id"))

	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Student detail", student)
}

// UpdateStudent -> update profil siswa (admin)
func (sc *StudentController) UpdateStudent(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("student_id"))

	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Grade = req.Grade
	student.AllergyNotes = req.AllergyNotes
	student.DietaryNotes = req.DietaryNotes
	student.UpdatedAt = time.Now()

	if err := sc.DB.Save(&student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Student updated", student)
}

// LinkToParent -> admin menautkan siswa ke profil parent
func (sc *StudentController) LinkToParent(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("student_id"))

	var req struct {
		ParentID uint `json:"parent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := sc.wallet.GetParentByID(req.ParentID); err != nil {
		RespondServiceError(c, err)
		return
	}

	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	student.ParentID = &req.ParentID
	student.UpdatedAt = time.Now()
	if err := sc.DB.Save(&student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Student linked to parent", student)
}

// SetActive -> aktif/nonaktifkan siswa (pindah sekolah, lulus, dll)
func (sc *StudentController) SetActive(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("student_id"))

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	student.Active = *req.Active
	student.UpdatedAt = time.Now()
	if err := sc.DB.Save(&student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Student status updated", student)
}
