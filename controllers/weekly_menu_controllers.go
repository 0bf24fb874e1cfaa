package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/live"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
	"gorm.io/gorm"
)

type WeeklyMenuController struct {
	DB      *gorm.DB
	planner *services.WeeklyMenuService
}

func NewWeeklyMenuController(db *gorm.DB) *WeeklyMenuController {
	catalog := services.NewCatalogService(db)
	return &WeeklyMenuController{
		DB:      db,
		planner: services.NewWeeklyMenuService(db, catalog),
	}
}

func parseWeekStart(c *gin.Context) (time.Time, error) {
	weekStr := c.Param("week_start")
	if weekStr == "" {
		weekStr = c.Query("week_start")
	}
	week, err := time.Parse("2006-01-02", weekStr)
	if err != nil {
		return time.Time{}, errors.New("week_start must be a date in YYYY-MM-DD format")
	}
	return week, nil
}

// GetCurrentMenu -> menu published minggu berjalan (endpoint parent)
func (wc *WeeklyMenuController) GetCurrentMenu(c *gin.Context) {
	menu, err := wc.planner.GetCurrentPublished()
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current weekly menu", menu)
}

// GetMenuByWeek -> menu untuk minggu tertentu (admin)
func (wc *WeeklyMenuController) GetMenuByWeek(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := wc.planner.GetByWeek(week)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Weekly menu", menu)
}

type weeklyMenuRequest struct {
	WeekStart string           `json:"week_start" binding:"required"`
	MenuByDay models.MenuByDay `json:"menu_by_day" binding:"required"`
}

// PublishMenu -> publish konten untuk satu minggu; versi naik dan snapshot
// ditulis. Warning dari recompute available_days ikut di payload.
func (wc *WeeklyMenuController) PublishMenu(c *gin.Context) {
	var req weeklyMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	week, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("week_start must be a date in YYYY-MM-DD format"))
		return
	}

	userID, _ := c.Get("user_id")
	uid, _ := userID.(uint)

	result, err := wc.planner.Publish(week, req.MenuByDay, uid)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastWeeklyMenuUpdate(*result.Menu)
	utils.RespondJSON(c, http.StatusOK, "Weekly menu published", result)
}

// UpdateMenu -> simpan konten tanpa publish; status dipaksa draft
func (wc *WeeklyMenuController) UpdateMenu(c *gin.Context) {
	var req weeklyMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	week, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("week_start must be a date in YYYY-MM-DD format"))
		return
	}

	menu, err := wc.planner.Update(week, req.MenuByDay)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastWeeklyMenuUpdate(*menu)
	utils.RespondJSON(c, http.StatusOK, "Weekly menu saved as draft", menu)
}

// UnpublishMenu -> published kembali ke draft
func (wc *WeeklyMenuController) UnpublishMenu(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := wc.planner.Unpublish(week)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastWeeklyMenuUpdate(*menu)
	utils.RespondJSON(c, http.StatusOK, "Weekly menu unpublished", menu)
}

// ArchiveMenu -> arsipkan menu
func (wc *WeeklyMenuController) ArchiveMenu(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := wc.planner.Archive(week)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Weekly menu archived", menu)
}

// RevertMenu -> kembalikan konten ke snapshot versi tertentu (status draft)
func (wc *WeeklyMenuController) RevertMenu(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("version must be an integer"))
		return
	}

	menu, err := wc.planner.RevertToVersion(week, version)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	live.BroadcastWeeklyMenuUpdate(*menu)
	utils.RespondJSON(c, http.StatusOK, "Weekly menu reverted", menu)
}

// ListVersions -> seluruh snapshot versi untuk satu minggu
func (wc *WeeklyMenuController) ListVersions(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	versions, err := wc.planner.ListVersions(week)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu versions", versions)
}

// CopyFromPreviousWeek -> salin konten minggu lalu sebagai draft
func (wc *WeeklyMenuController) CopyFromPreviousWeek(c *gin.Context) {
	week, err := parseWeekStart(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := wc.planner.CopyFromPreviousWeek(week)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu copied from previous week", menu)
}

// ValidateMenu -> validasi jumlah item per slot + availability item
func (wc *WeeklyMenuController) ValidateMenu(c *gin.Context) {
	var req struct {
		MenuByDay models.MenuByDay `json:"menu_by_day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	structure := wc.planner.ValidateMenu(req.MenuByDay)
	availability, err := wc.planner.ValidateItemsAvailability(req.MenuByDay)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu validation result", gin.H{
		"structure":    structure,
		"availability": availability,
	})
}
